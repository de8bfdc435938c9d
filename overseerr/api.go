package overseerr

import (
	"context"
	"time"
)

// API defines the full Overseerr surface the adapter consumes.
type API interface {
	// GetStatus returns the raw server status
	GetStatus(ctx context.Context) (*ServerStatus, error)

	// Search runs the combined search endpoint with an optional type filter
	Search(ctx context.Context, query string, mediaType MediaType) ([]MediaSearchResult, error)

	// GetUsers retrieves one page of users
	GetUsers(ctx context.Context) ([]UserInfo, error)

	// GetUser retrieves a single user by ID
	GetUser(ctx context.Context, userID int) (*UserInfo, error)

	// GetRequests fetches a page of media requests
	GetRequests(ctx context.Context, status RequestStatus, take, skip int, sort string) ([]MediaRequest, error)

	// GetRequestsWithMediaInfo fetches requests with titles resolved
	GetRequestsWithMediaInfo(ctx context.Context, status RequestStatus, since time.Time, take int) ([]RequestSummary, error)

	// GetUserRequests fetches one user's requests with titles resolved
	GetUserRequests(ctx context.Context, userID int, mediaStatus string, limit int) (*UserRequests, error)

	// CreateRequest submits a new media request
	CreateRequest(ctx context.Context, mediaType MediaType, tmdbID int, seasons []int) (*RequestResponse, error)

	// GetMovieDetails fetches the movie detail endpoint
	GetMovieDetails(ctx context.Context, tmdbID int) (*MovieDetails, error)

	// GetTvDetails fetches the TV detail endpoint
	GetTvDetails(ctx context.Context, tmdbID int) (*TvDetails, error)

	// GetMediaStatus summarizes a title's availability
	GetMediaStatus(ctx context.Context, tmdbID int, mediaType MediaType) (*MediaStatusResult, error)
}

var _ API = (*Client)(nil)
