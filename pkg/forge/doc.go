// Package forge provides the building blocks for typed REST API client
// libraries: path expressions, field conditions, result containers, and
// pagination.
//
// # Overview
//
// The forge package defines the query surface an API wrapper exposes to its
// users. Responses are held in a Result, which can be filtered with field
// conditions, queried with path expressions, and projected with Select. A
// concrete HTTP client implementing the Client interface is provided by the
// forgeclient package, which wires configuration, transport, authentication,
// caching, and retries. Most consumers construct a client there and use the
// helpers exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/clientforge-io/forge/pkg/forge"
//	  "github.com/clientforge-io/forge/pkg/forgeclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := forgeclient.New(&forge.Config{APIEndpoint: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  books, err := forge.FetchResult[Book](ctx, cli, "/books", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = books
//	}
//
// # Filtering and projection
//
// Declare a schema for a model type once, then build conditions from its
// fields:
//
//	schema := forge.MustSchemaOf[Book]()
//	price := schema.MustField("price")
//	cheap, err := books.Filter(price.Lt(10))
//
// Path expressions address nodes inside raw responses:
//
//	titles, err := books.Query("$[?(@.price < 10)].title")
//
// # Pagination
//
// A Paginator drives one fetch sequence; OffsetPaginator, CursorPaginator,
// and PageNumberPaginator cover the common wire conventions. Iterate a
// series item by item, or collect it at once:
//
//	pg, _ := forge.NewOffsetPaginator(forge.OffsetPaginatorOptions{PathToData: "data", PathToTotal: "total"})
//	all, err := forge.FetchAll[Book](ctx, cli, "/books", nil, pg, nil)
//
// # Errors
//
// API failures are represented by ResponseError and APIError; helpers such
// as IsNotFound, IsUnauthorized, and IsForbidden branch on common cases.
// Engine failures have their own types (PathSyntaxError,
// PathEvaluationError, TypeConversionError, ConfigurationError) with
// matching Is helpers.
//
// # Interceptors and caching
//
// The package also includes generic building blocks such as request and
// response interceptors (logging, auth headers, metrics, rate limiting) and
// a pluggable Cache abstraction with in-memory and NATS KV backends. The
// forgeclient package composes these pieces into a sensible default client;
// applications with advanced needs can use the primitives directly.
package forge
