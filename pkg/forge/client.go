package forge

import (
	"context"
	"net/url"
)

// Client performs API requests and returns decoded nodes. Build one with
// pkg/forgeclient.New; the concrete implementation lives in internal/client.
type Client interface {
	// Get performs a GET request and returns the decoded response node.
	Get(ctx context.Context, path string, params url.Values) (any, error)
	// Post performs a POST request with a JSON body.
	Post(ctx context.Context, path string, body any) (any, error)
	// Put performs a PUT request with a JSON body.
	Put(ctx context.Context, path string, body any) (any, error)
	// Patch performs a PATCH request with a JSON body.
	Patch(ctx context.Context, path string, body any) (any, error)
	// Delete performs a DELETE request. The returned node is nil for
	// empty response bodies.
	Delete(ctx context.Context, path string) (any, error)

	// Endpoint returns the normalized API base URL.
	Endpoint() string
}

// Fetch performs a GET request and decodes the response into T.
func Fetch[T any](ctx context.Context, client Client, path string, params *QueryParams) (T, error) {
	var zero T

	node, err := client.Get(ctx, path, params.ToValues())
	if err != nil {
		return zero, err
	}

	return Decode[T](node)
}

// FetchResult performs a GET request and wraps the response in a Result,
// collection-shaped for sequence responses and single-shaped otherwise.
func FetchResult[T any](ctx context.Context, client Client, path string, params *QueryParams) (*Result[T], error) {
	node, err := client.Get(ctx, path, params.ToValues())
	if err != nil {
		return nil, err
	}

	return DecodeResult[T](node)
}

// PageFetcherFor adapts a Client GET into a PageFetcher, merging the
// paginator's parameters over base.
func PageFetcherFor(client Client, path string, base *QueryParams) PageFetcher {
	return func(ctx context.Context, params url.Values) (any, error) {
		merged := base.ToValues()
		for name, values := range params {
			merged[name] = values
		}

		return client.Get(ctx, path, merged)
	}
}

// FetchAll drains a paginated series behind path into one slice, driven
// by the given paginator.
func FetchAll[T any](ctx context.Context, client Client, path string, params *QueryParams, paginator Paginator, options *PaginationOptions) ([]T, error) {
	return FetchAllPages[T](ctx, paginator, PageFetcherFor(client, path, params), options)
}

// Iterate returns a PageIterator over a paginated series behind path.
func Iterate[T any](ctx context.Context, client Client, path string, params *QueryParams, paginator Paginator) *PageIterator[T] {
	return NewPageIterator[T](ctx, paginator, PageFetcherFor(client, path, params))
}
