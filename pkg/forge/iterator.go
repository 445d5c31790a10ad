package forge

import (
	"context"
	"net/url"
)

// PageFetcher performs one page request with the paginator's query
// parameters merged in and returns the decoded page node.
type PageFetcher func(ctx context.Context, params url.Values) (any, error)

// PaginationOptions controls the pagination helpers.
type PaginationOptions struct {
	// MaxPages bounds the number of pages fetched; 0 means unbounded.
	MaxPages int
}

// DefaultPaginationOptions returns the default helper options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{}
}

// PageResult carries one fetched page or the error that ended the stream.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// fetchPage runs one NextPageRequest / fetch / RecordResponse cycle and
// decodes the extracted items.
func fetchPage[T any](ctx context.Context, paginator Paginator, fetch PageFetcher) ([]T, error) {
	params, err := paginator.NextPageRequest()
	if err != nil {
		return nil, err
	}

	page, err := fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	raw, err := paginator.RecordResponse(page)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(raw))

	for _, node := range raw {
		item, err := Decode[T](node)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// PageIterator walks a paginated series item by item, fetching pages
// lazily. Not safe for concurrent use.
type PageIterator[T any] struct {
	ctx       context.Context
	paginator Paginator
	fetch     PageFetcher

	buffer []T
	err    error
}

// NewPageIterator returns an iterator over the series driven by paginator.
func NewPageIterator[T any](ctx context.Context, paginator Paginator, fetch PageFetcher) *PageIterator[T] {
	return &PageIterator[T]{
		ctx:       ctx,
		paginator: paginator,
		fetch:     fetch,
	}
}

// HasNext reports whether another item is available. It may fetch the next
// page to find out; a fetch failure is reported by the following Next call.
func (it *PageIterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}

	for len(it.buffer) == 0 {
		if it.paginator.State() == PageStateExhausted {
			return false
		}

		items, err := fetchPage[T](it.ctx, it.paginator, it.fetch)
		if err != nil {
			it.err = err

			return true
		}

		it.buffer = items
	}

	return true
}

// Next returns the next item, or ErrNoMoreItems once the series is done.
func (it *PageIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		return zero, ErrNoMoreItems
	}

	if it.err != nil {
		err := it.err
		it.err = nil

		return zero, err
	}

	item := it.buffer[0]
	it.buffer = it.buffer[1:]

	return item, nil
}

// All drains the remaining items into a slice.
func (it *PageIterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return items, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach applies fn to each remaining item, stopping at the first error.
func (it *PageIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	return nil
}

// FetchAllPages drains an entire paginated series into one slice.
func FetchAllPages[T any](ctx context.Context, paginator Paginator, fetch PageFetcher, options *PaginationOptions) ([]T, error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	var all []T

	pages := 0

	for paginator.State() != PageStateExhausted {
		if options.MaxPages > 0 && pages >= options.MaxPages {
			break
		}

		if err := ctx.Err(); err != nil {
			return all, err
		}

		items, err := fetchPage[T](ctx, paginator, fetch)
		if err != nil {
			return all, err
		}

		all = append(all, items...)
		pages++
	}

	return all, nil
}

// StreamPages fetches pages in a background goroutine and delivers them on
// the returned channel. The channel closes after the final page or the
// first error; cancel ctx to stop early.
func StreamPages[T any](ctx context.Context, paginator Paginator, fetch PageFetcher, options *PaginationOptions) <-chan PageResult[T] {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		pages := 0

		for paginator.State() != PageStateExhausted {
			if options.MaxPages > 0 && pages >= options.MaxPages {
				return
			}

			items, err := fetchPage[T](ctx, paginator, fetch)

			result := PageResult[T]{Items: items, Err: err}

			select {
			case results <- result:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}

			pages++
		}
	}()

	return results
}
