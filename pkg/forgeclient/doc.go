// Package forgeclient provides the primary entry point for constructing a
// client that implements the forge.Client interface.
//
// It layers configuration, HTTP transport, authentication, and response
// caching on top of the generic types defined in the forge package. Most
// applications should import forgeclient to build a client, then use the
// returned forge.Client with the forge fetch and pagination helpers.
//
// Quick start
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
//
//	  // Minimal: just an API endpoint (no auth).
//	  cli, err := forgeclient.New(&forge.Config{APIEndpoint: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an access token you already have:
//	  cli, err = forgeclient.New(&forge.Config{
//	    APIEndpoint: "https://api.example.com",
//	    AccessToken: "eyJhbGciOi...", // bearer token
//	  })
//
//	  // Or with username/password or client credentials. When credentials
//	  // are provided and no TokenURL is set, the token endpoint defaults to
//	  // APIEndpoint + "/oauth/token".
//	  cli, err = forgeclient.New(&forge.Config{
//	    APIEndpoint:  "https://api.example.com",
//	    Username:     "user",
//	    Password:     "pass",
//	    // alternatively:
//	    // ClientID:     "client-id",
//	    // ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Fetch typed results and query them.
//	  books, err := forge.Fetch[Book](ctx, cli, "/books", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = books
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithToken, NewWithAPIKey, NewWithClientCredentials, and NewWithPassword
// that wrap New with the appropriate configuration.
package forgeclient
