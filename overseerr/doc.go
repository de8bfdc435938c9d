// Package overseerr provides a client for interacting with the Overseerr API.
//
// Overseerr is a request management and media discovery tool for Plex/Jellyfin/Emby.
// This package implements a clean, idiomatic Go client covering search, request
// listing and creation, user lookup, and availability status resolution.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: The main API client holding one shared HTTP client
//   - Types: Domain models representing Overseerr entities (requests, media, users)
//   - API: Interface definition for testability and modularity
//   - Errors: Structured error types for better error handling
//
// # Usage
//
// Create a new client with your Overseerr URL and API key:
//
//	logger := zerolog.New(os.Stdout)
//	client, err := overseerr.NewClient(
//		"https://overseerr.example.com",
//		"your-api-key",
//		logger,
//		overseerr.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	results, err := client.Search(ctx, "dune", overseerr.MediaTypeMovie)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Parsing semantics
//
// List endpoints parse each item individually: a malformed entry is
// dropped and counted, never surfaced as a list-level failure. Status
// codes outside the known range resolve to the unknown value instead of
// erroring.
//
// # Error Handling
//
// The package defines several error types:
//
//   - ErrInvalidConfig: Missing URL or API key at construction
//   - ErrUnauthorized: Authentication failure (HTTP 401/403)
//   - ErrNotFound: Resource not found (HTTP 404)
//   - APIError: Any other 4xx/5xx, carrying status code and body
//
// Transport failures are wrapped as connection errors. No call is
// retried automatically.
package overseerr
