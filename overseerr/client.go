package overseerr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 30 * time.Second

	// userPageSize is how many users a single listing fetches.
	userPageSize = 100

	// enrichConcurrency bounds the detail fetches issued while resolving
	// request titles.
	enrichConcurrency = 4
)

// Client represents an Overseerr API client. The embedded http.Client is
// shared across calls and safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Overseerr client. It fails only on missing
// configuration; connectivity is not probed until the first call.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidConfig)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// do performs an authenticated request against the Overseerr v1 API and
// returns the raw response body.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, payload any) ([]byte, error) {
	requestURL := fmt.Sprintf("%s/api/v1%s", c.baseURL, endpoint)
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case resp.StatusCode >= 400:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// rawListResponse is the common paginated envelope. Results stay raw so
// each item is parsed individually and malformed ones can be dropped
// without failing the list.
type rawListResponse struct {
	PageInfo PageInfo          `json:"pageInfo"`
	Results  []json.RawMessage `json:"results"`
}

// GetStatus returns the raw Overseerr server status.
func (c *Client) GetStatus(ctx context.Context) (*ServerStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/status", nil, nil)
	if err != nil {
		return nil, err
	}

	var status ServerStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}
	return &status, nil
}

// Search runs the combined search endpoint for the given query, page 1.
// Hits that are neither movies nor TV shows (e.g. people) are skipped,
// as are hits filtered out by mediaType when it is non-empty. Each kept
// hit carries its availability status resolved from the nested mediaInfo
// block, defaulting to unknown.
func (c *Client) Search(ctx context.Context, query string, mediaType MediaType) ([]MediaSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")

	body, err := c.do(ctx, http.MethodGet, "/search", params, nil)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var list rawListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	results := make([]MediaSearchResult, 0, len(list.Results))
	dropped := 0
	for _, raw := range list.Results {
		var hit struct {
			MediaSearchResult
			MediaInfo *struct {
				Status int `json:"status"`
			} `json:"mediaInfo"`
		}
		if err := json.Unmarshal(raw, &hit); err != nil {
			dropped++
			continue
		}
		if !hit.MediaType.Valid() {
			continue
		}
		if mediaType != "" && hit.MediaType != mediaType {
			continue
		}
		if err := hit.validate(); err != nil {
			dropped++
			continue
		}

		result := hit.MediaSearchResult
		result.Status = MediaStatusUnknown
		if hit.MediaInfo != nil {
			result.Status = NormalizeMediaStatus(hit.MediaInfo.Status)
		}
		results = append(results, result)
	}

	if dropped > 0 {
		c.logger.Warn().Int("dropped", dropped).Str("query", query).Msg("Skipped malformed search results")
	}

	return results, nil
}

// GetUsers retrieves up to one page of users, dropping malformed entries.
func (c *Client) GetUsers(ctx context.Context) ([]UserInfo, error) {
	params := url.Values{}
	params.Set("take", strconv.Itoa(userPageSize))

	body, err := c.do(ctx, http.MethodGet, "/user", params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	var list rawListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse users response: %w", err)
	}

	users := make([]UserInfo, 0, len(list.Results))
	dropped := 0
	for _, raw := range list.Results {
		var user UserInfo
		if err := json.Unmarshal(raw, &user); err != nil {
			dropped++
			continue
		}
		if err := user.validate(); err != nil {
			dropped++
			continue
		}
		users = append(users, user)
	}

	if dropped > 0 {
		c.logger.Warn().Int("dropped", dropped).Msg("Skipped malformed user entries")
	}

	return users, nil
}

// GetUser retrieves a single user by ID.
func (c *Client) GetUser(ctx context.Context, userID int) (*UserInfo, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/user/%d", userID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	var user UserInfo
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	return &user, nil
}

// GetRequests fetches a page of media requests. A zero status fetches
// all requests; otherwise the status code is passed through as the
// upstream filter. Malformed entries are dropped, not surfaced.
func (c *Client) GetRequests(ctx context.Context, status RequestStatus, take, skip int, sort string) ([]MediaRequest, error) {
	if sort == "" {
		sort = "added"
	}

	params := url.Values{}
	params.Set("take", strconv.Itoa(take))
	params.Set("skip", strconv.Itoa(skip))
	params.Set("sort", sort)
	if status != 0 {
		params.Set("filter", strconv.Itoa(int(status)))
	}

	body, err := c.do(ctx, http.MethodGet, "/request", params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}

	var list rawListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse requests response: %w", err)
	}

	requests := make([]MediaRequest, 0, len(list.Results))
	dropped := 0
	for _, raw := range list.Results {
		var request MediaRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			dropped++
			continue
		}
		if err := request.validate(); err != nil {
			dropped++
			continue
		}
		requests = append(requests, request)
	}

	if dropped > 0 {
		c.logger.Warn().Int("dropped", dropped).Msg("Skipped malformed request entries")
	}

	return requests, nil
}

// GetRequestsWithMediaInfo fetches requests and resolves a human title
// for each one via a follow-up detail call. Requests created strictly
// before since are dropped (boundary-equal is kept); pass the zero time
// to skip date filtering. Enrichment failures degrade to "Unknown"
// titles rather than failing the call.
func (c *Client) GetRequestsWithMediaInfo(ctx context.Context, status RequestStatus, since time.Time, take int) ([]RequestSummary, error) {
	requests, err := c.GetRequests(ctx, status, take, 0, "added")
	if err != nil {
		return nil, err
	}

	if !since.IsZero() {
		kept := requests[:0]
		for _, req := range requests {
			if req.CreatedAt.UTC().Before(since.UTC()) {
				continue
			}
			kept = append(kept, req)
		}
		requests = kept
	}

	return c.summarize(ctx, requests)
}

// summarize flattens requests into summary records, resolving titles
// with bounded concurrency.
func (c *Client) summarize(ctx context.Context, requests []MediaRequest) ([]RequestSummary, error) {
	summaries := make([]RequestSummary, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for i, req := range requests {
		g.Go(func() error {
			summary := RequestSummary{
				ID:          req.ID,
				Title:       c.resolveTitle(ctx, req),
				Type:        req.Type,
				Status:      req.Status.Text(),
				RequestedBy: req.RequesterName(),
				RequestedAt: req.CreatedAt.UTC().Format(time.RFC3339),
			}
			if req.RequestedBy != nil {
				summary.UserID = req.RequestedBy.ID
			}
			if req.Media != nil {
				summary.MediaStatus = req.Media.MediaStatus().Text()
			}
			summaries[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// resolveTitle fetches the detail endpoint matching the request's type
// to find a display title. Any failure falls back to "Unknown".
func (c *Client) resolveTitle(ctx context.Context, req MediaRequest) string {
	if req.Media == nil || req.Media.TmdbID == 0 {
		return "Unknown"
	}

	if req.Type == MediaTypeMovie {
		details, err := c.GetMovieDetails(ctx, req.Media.TmdbID)
		if err != nil {
			c.logger.Debug().Err(err).Int("tmdb_id", req.Media.TmdbID).Msg("Failed to resolve movie title")
			return "Unknown"
		}
		if details.Title == "" {
			return "Unknown Movie"
		}
		return details.Title
	}

	details, err := c.GetTvDetails(ctx, req.Media.TmdbID)
	if err != nil {
		c.logger.Debug().Err(err).Int("tmdb_id", req.Media.TmdbID).Msg("Failed to resolve TV title")
		return "Unknown"
	}
	if details.Name == "" {
		return "Unknown TV Show"
	}
	return details.Name
}

// GetUserRequests fetches the user, then up to one page of requests
// filtered to that requester, with titles resolved. A non-empty
// mediaStatus keeps only requests whose availability text matches it
// case-insensitively. A positive limit truncates the result.
func (c *Client) GetUserRequests(ctx context.Context, userID int, mediaStatus string, limit int) (*UserRequests, error) {
	user, err := c.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := c.GetRequests(ctx, 0, 100, 0, "added")
	if err != nil {
		return nil, err
	}

	var mine []MediaRequest
	for _, req := range all {
		if req.RequestedBy != nil && req.RequestedBy.ID == userID {
			mine = append(mine, req)
		}
	}

	summaries, err := c.summarize(ctx, mine)
	if err != nil {
		return nil, err
	}

	if mediaStatus != "" {
		kept := summaries[:0]
		for _, s := range summaries {
			if strings.EqualFold(s.MediaStatus, mediaStatus) {
				kept = append(kept, s)
			}
		}
		summaries = kept
	}

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}

	return &UserRequests{
		User:         user.Name(),
		UserID:       userID,
		RequestCount: len(summaries),
		Requests:     summaries,
	}, nil
}

// CreateRequest submits a new request. For TV with no explicit seasons
// the upstream default of "all" seasons is requested. This is the one
// mutating call in the adapter; duplicate submissions may create
// duplicate requests upstream.
func (c *Client) CreateRequest(ctx context.Context, mediaType MediaType, tmdbID int, seasons []int) (*RequestResponse, error) {
	payload := map[string]any{
		"mediaType": mediaType,
		"mediaId":   tmdbID,
	}
	if mediaType == MediaTypeTV {
		if len(seasons) > 0 {
			payload["seasons"] = seasons
		} else {
			payload["seasons"] = "all"
		}
	}

	body, err := c.do(ctx, http.MethodPost, "/request", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var response RequestResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse create response: %w", err)
	}

	c.logger.Info().
		Int("request_id", response.ID).
		Str("media_type", string(mediaType)).
		Int("tmdb_id", tmdbID).
		Msg("Created media request")

	return &response, nil
}

// GetMovieDetails fetches the movie detail endpoint for a TMDB ID.
func (c *Client) GetMovieDetails(ctx context.Context, tmdbID int) (*MovieDetails, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/movie/%d", tmdbID), nil, nil)
	if err != nil {
		return nil, err
	}

	var details MovieDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to parse movie details: %w", err)
	}
	return &details, nil
}

// GetTvDetails fetches the TV detail endpoint for a TMDB ID.
func (c *Client) GetTvDetails(ctx context.Context, tmdbID int) (*TvDetails, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tv/%d", tmdbID), nil, nil)
	if err != nil {
		return nil, err
	}

	var details TvDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to parse TV details: %w", err)
	}
	return &details, nil
}

// GetMediaStatus fetches a title's detail record and summarizes its
// availability: overall status, whether a request exists, the latest
// request's approval text, and for TV the count of non-special seasons.
func (c *Client) GetMediaStatus(ctx context.Context, tmdbID int, mediaType MediaType) (*MediaStatusResult, error) {
	result := &MediaStatusResult{
		TmdbID:    tmdbID,
		MediaType: mediaType,
		Status:    MediaStatusUnknown,
	}

	var mediaInfo *DetailMediaInfo
	if mediaType == MediaTypeMovie {
		details, err := c.GetMovieDetails(ctx, tmdbID)
		if err != nil {
			return nil, err
		}
		result.Title = details.Title
		if result.Title == "" {
			result.Title = "Unknown Movie"
		}
		mediaInfo = details.MediaInfo
	} else {
		details, err := c.GetTvDetails(ctx, tmdbID)
		if err != nil {
			return nil, err
		}
		result.Title = details.Name
		if result.Title == "" {
			result.Title = "Unknown TV Show"
		}
		result.SeasonCount = len(details.RegularSeasons())
		mediaInfo = details.MediaInfo
	}

	if mediaInfo != nil {
		result.Status = NormalizeMediaStatus(mediaInfo.Status)
		if len(mediaInfo.Requests) > 0 {
			result.HasRequest = true
			latest := mediaInfo.Requests[len(mediaInfo.Requests)-1]
			result.RequestStatus = RequestStatus(latest.Status).Text()
		}
	}

	result.StatusText = result.Status.Text()
	return result, nil
}
