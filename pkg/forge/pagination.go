package forge

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/clientforge-io/forge/internal/path"
)

// PageState is the paginator lifecycle state.
type PageState int

const (
	// PageStateNotStarted means no page request has been produced yet.
	PageStateNotStarted PageState = iota
	// PageStateFetching means a fetch sequence is underway.
	PageStateFetching
	// PageStateExhausted means the series is complete; a paginator never
	// transitions past this state.
	PageStateExhausted
)

func (s PageState) String() string {
	switch s {
	case PageStateNotStarted:
		return "not-started"
	case PageStateFetching:
		return "fetching"
	default:
		return "exhausted"
	}
}

// Paginator drives one logical fetch sequence. Each NextPageRequest /
// RecordResponse cycle brackets exactly one HTTP call; the paginator never
// performs I/O and never retries — a failed fetch leaves it in Fetching so
// the caller may retry the same page. A Paginator instance must not be
// shared across concurrent callers.
type Paginator interface {
	// NextPageRequest produces the query parameters for the next fetch,
	// to be merged over the caller's base parameters.
	NextPageRequest() (url.Values, error)
	// RecordResponse consumes one page node, returns the items extracted
	// from it, and decides continuation.
	RecordResponse(page any) ([]any, error)
	// State reports the current lifecycle state.
	State() PageState
}

// Defaults shared by the paginator variants.
const (
	DefaultPageSize        = 100
	DefaultPageSizeParam   = "limit"
	DefaultPageOffsetParam = "offset"
	DefaultPageParam       = "page"
	DefaultCursorParam     = "cursor"
	DefaultPathToData      = "$"
)

// pagePaths owns the lazily compiled data/total/cursor expressions shared
// by the variants. A malformed configured path is a configuration error
// surfaced once at first use and remembered.
type pagePaths struct {
	dataPath string
	data     *path.Expr
	err      error
	compiled bool
}

func (p *pagePaths) compileData() (*path.Expr, error) {
	if p.compiled {
		return p.data, p.err
	}

	p.compiled = true

	expr, err := path.Compile(p.dataPath)
	if err != nil {
		p.err = &ConfigurationError{Message: "invalid path_to_data expression", Err: err}

		return nil, p.err
	}

	p.data = expr

	return expr, nil
}

// extractItems resolves the data path against a page and requires the match
// to be a sequence node.
func (p *pagePaths) extractItems(page any) ([]any, error) {
	expr, err := p.compileData()
	if err != nil {
		return nil, err
	}

	res, err := expr.Resolve(page)
	if err != nil {
		return nil, err
	}

	if len(res.Values) == 0 {
		return nil, &PathEvaluationError{Expr: p.dataPath}
	}

	items, ok := res.Values[0].([]any)
	if !ok {
		return nil, newConfigurationError("path_to_data %q matched a %T, not a sequence", p.dataPath, res.Values[0])
	}

	return items, nil
}

// resolveOptionalNumber evaluates an optional path, tolerating absence.
type optionalPath struct {
	expr     string
	compiled *path.Expr
	err      error
	done     bool
}

func (p *optionalPath) resolve(page any) (any, bool, error) {
	if p.expr == "" {
		return nil, false, nil
	}

	if !p.done {
		p.done = true

		compiled, err := path.Compile(p.expr)
		if err != nil {
			p.err = &ConfigurationError{Message: "invalid paginator path expression", Err: err}
		} else {
			p.compiled = compiled
		}
	}

	if p.err != nil {
		return nil, false, p.err
	}

	res, err := p.compiled.Resolve(page)
	if err != nil {
		return nil, false, err
	}

	if len(res.Values) == 0 {
		return nil, false, nil
	}

	return res.Values[0], true, nil
}

// OffsetPaginatorOptions configures an offset-based fetch sequence.
type OffsetPaginatorOptions struct {
	// PageSize is the number of results requested per page (default 100).
	PageSize int
	// PageSizeParam names the page-size query parameter (default "limit").
	PageSizeParam string
	// PageOffsetParam names the offset query parameter (default "offset").
	PageOffsetParam string
	// PathToData locates the item sequence in a page (default "$").
	PathToData string
	// PathToTotal optionally locates the total result count; when absent
	// the sequence ends at the first empty page.
	PathToTotal string
}

// OffsetPaginator pages through a series using a running item offset.
type OffsetPaginator struct {
	opts  OffsetPaginatorOptions
	paths pagePaths
	total optionalPath

	state      PageState
	fetched    int
	total_     int
	totalKnown bool
}

// NewOffsetPaginator validates the options and returns a paginator in the
// NotStarted state.
func NewOffsetPaginator(opts OffsetPaginatorOptions) (*OffsetPaginator, error) {
	if opts.PageSize < 0 {
		return nil, newConfigurationError("page size must not be negative, got %d", opts.PageSize)
	}

	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}

	if opts.PageSizeParam == "" {
		opts.PageSizeParam = DefaultPageSizeParam
	}

	if opts.PageOffsetParam == "" {
		opts.PageOffsetParam = DefaultPageOffsetParam
	}

	if opts.PathToData == "" {
		opts.PathToData = DefaultPathToData
	}

	return &OffsetPaginator{
		opts:  opts,
		paths: pagePaths{dataPath: opts.PathToData},
		total: optionalPath{expr: opts.PathToTotal},
	}, nil
}

// NextPageRequest implements Paginator.
func (p *OffsetPaginator) NextPageRequest() (url.Values, error) {
	if p.state == PageStateExhausted {
		return nil, ErrPaginatorExhausted
	}

	params := url.Values{}
	params.Set(p.opts.PageSizeParam, strconv.Itoa(p.opts.PageSize))

	if p.state == PageStateFetching {
		params.Set(p.opts.PageOffsetParam, strconv.Itoa(p.fetched))
	}

	p.state = PageStateFetching

	return params, nil
}

// RecordResponse implements Paginator.
func (p *OffsetPaginator) RecordResponse(page any) ([]any, error) {
	if p.state == PageStateExhausted {
		return nil, ErrPaginatorExhausted
	}

	p.state = PageStateFetching

	items, err := p.paths.extractItems(page)
	if err != nil {
		return nil, err
	}

	p.fetched += len(items)

	if totalValue, found, err := p.total.resolve(page); err != nil {
		return nil, err
	} else if found {
		total, ok := path.AsNumber(totalValue)
		if !ok {
			return nil, newConfigurationError("path_to_total %q matched non-numeric %T", p.opts.PathToTotal, totalValue)
		}

		p.total_ = int(total)
		p.totalKnown = true
	}

	if len(items) == 0 || (p.totalKnown && p.fetched >= p.total_) {
		p.state = PageStateExhausted
	}

	return items, nil
}

// State implements Paginator.
func (p *OffsetPaginator) State() PageState { return p.state }

// Fetched returns the number of items recorded so far.
func (p *OffsetPaginator) Fetched() int { return p.fetched }

// CursorPaginatorOptions configures a cursor-based fetch sequence.
type CursorPaginatorOptions struct {
	// CursorParam names the cursor query parameter (default "cursor").
	CursorParam string
	// PathToCursor locates the next-page cursor in a page. Required: an
	// absent cursor ends the sequence.
	PathToCursor string
	// PathToData locates the item sequence in a page (default "$").
	PathToData string
	// PageSize optionally requests a page size via PageSizeParam.
	PageSize int
	// PageSizeParam names the page-size parameter (default "limit").
	PageSizeParam string
}

// CursorPaginator pages through a series using an opaque continuation
// token extracted from each response.
type CursorPaginator struct {
	opts   CursorPaginatorOptions
	paths  pagePaths
	cursor optionalPath

	state PageState
	token string
}

// NewCursorPaginator validates the options and returns a paginator in the
// NotStarted state.
func NewCursorPaginator(opts CursorPaginatorOptions) (*CursorPaginator, error) {
	if opts.PathToCursor == "" {
		return nil, newConfigurationError("cursor paginator requires path_to_cursor")
	}

	if opts.PageSize < 0 {
		return nil, newConfigurationError("page size must not be negative, got %d", opts.PageSize)
	}

	if opts.CursorParam == "" {
		opts.CursorParam = DefaultCursorParam
	}

	if opts.PageSizeParam == "" {
		opts.PageSizeParam = DefaultPageSizeParam
	}

	if opts.PathToData == "" {
		opts.PathToData = DefaultPathToData
	}

	return &CursorPaginator{
		opts:   opts,
		paths:  pagePaths{dataPath: opts.PathToData},
		cursor: optionalPath{expr: opts.PathToCursor},
	}, nil
}

// NextPageRequest implements Paginator.
func (p *CursorPaginator) NextPageRequest() (url.Values, error) {
	if p.state == PageStateExhausted {
		return nil, ErrPaginatorExhausted
	}

	params := url.Values{}

	if p.opts.PageSize > 0 {
		params.Set(p.opts.PageSizeParam, strconv.Itoa(p.opts.PageSize))
	}

	if p.state == PageStateFetching && p.token != "" {
		params.Set(p.opts.CursorParam, p.token)
	}

	p.state = PageStateFetching

	return params, nil
}

// RecordResponse implements Paginator.
func (p *CursorPaginator) RecordResponse(page any) ([]any, error) {
	if p.state == PageStateExhausted {
		return nil, ErrPaginatorExhausted
	}

	p.state = PageStateFetching

	items, err := p.paths.extractItems(page)
	if err != nil {
		return nil, err
	}

	cursorValue, found, err := p.cursor.resolve(page)
	if err != nil {
		return nil, err
	}

	token := ""
	if found {
		token = cursorString(cursorValue)
	}

	p.token = token

	if len(items) == 0 || token == "" {
		p.state = PageStateExhausted
	}

	return items, nil
}

// State implements Paginator.
func (p *CursorPaginator) State() PageState { return p.state }

func cursorString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		if num, ok := path.AsNumber(c); ok {
			return strconv.FormatFloat(num, 'f', -1, 64)
		}

		return fmt.Sprint(c)
	}
}

// PageNumberPaginatorOptions configures a page-number-based fetch sequence.
type PageNumberPaginatorOptions struct {
	// PageParam names the page-number query parameter (default "page").
	PageParam string
	// StartPage is the first page number (default 1).
	StartPage int
	// PageSize optionally requests a page size via PageSizeParam.
	PageSize int
	// PageSizeParam names the page-size parameter (default "limit").
	PageSizeParam string
	// PathToData locates the item sequence in a page (default "$").
	PathToData string
	// PathToTotalPages optionally locates the total page count.
	PathToTotalPages string
}

// PageNumberPaginator pages through a series by incrementing a page number.
type PageNumberPaginator struct {
	opts       PageNumberPaginatorOptions
	paths      pagePaths
	totalPages optionalPath

	state PageState
	page  int
}

// NewPageNumberPaginator validates the options and returns a paginator in
// the NotStarted state.
func NewPageNumberPaginator(opts PageNumberPaginatorOptions) (*PageNumberPaginator, error) {
	if opts.PageSize < 0 {
		return nil, newConfigurationError("page size must not be negative, got %d", opts.PageSize)
	}

	if opts.StartPage < 0 {
		return nil, newConfigurationError("start page must not be negative, got %d", opts.StartPage)
	}

	if opts.PageParam == "" {
		opts.PageParam = DefaultPageParam
	}

	if opts.StartPage == 0 {
		opts.StartPage = 1
	}

	if opts.PageSizeParam == "" {
		opts.PageSizeParam = DefaultPageSizeParam
	}

	if opts.PathToData == "" {
		opts.PathToData = DefaultPathToData
	}

	return &PageNumberPaginator{
		opts:       opts,
		paths:      pagePaths{dataPath: opts.PathToData},
		totalPages: optionalPath{expr: opts.PathToTotalPages},
		page:       opts.StartPage,
	}, nil
}

// NextPageRequest implements Paginator.
func (p *PageNumberPaginator) NextPageRequest() (url.Values, error) {
	if p.state == PageStateExhausted {
		return nil, ErrPaginatorExhausted
	}

	params := url.Values{}
	params.Set(p.opts.PageParam, strconv.Itoa(p.page))

	if p.opts.PageSize > 0 {
		params.Set(p.opts.PageSizeParam, strconv.Itoa(p.opts.PageSize))
	}

	p.state = PageStateFetching

	return params, nil
}

// RecordResponse implements Paginator.
func (p *PageNumberPaginator) RecordResponse(page any) ([]any, error) {
	if p.state == PageStateExhausted {
		return nil, ErrPaginatorExhausted
	}

	p.state = PageStateFetching

	items, err := p.paths.extractItems(page)
	if err != nil {
		return nil, err
	}

	lastPage := len(items) == 0

	if totalValue, found, err := p.totalPages.resolve(page); err != nil {
		return nil, err
	} else if found {
		if total, ok := path.AsNumber(totalValue); ok && p.page >= int(total) {
			lastPage = true
		}
	}

	if lastPage {
		p.state = PageStateExhausted
	} else {
		p.page++
	}

	return items, nil
}

// State implements Paginator.
func (p *PageNumberPaginator) State() PageState { return p.state }
