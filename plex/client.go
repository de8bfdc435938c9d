// Package plex provides a read-only client for browsing a Plex Media
// Server library: server identity, library sections, and title search.
// Sections are fetched once and cached for the process lifetime.
package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 30 * time.Second

	// searchResultCap is the hard ceiling across all sections, not a
	// page size. Search short-circuits once it is reached.
	searchResultCap = 50

	sectionsCacheKey = "library_sections"
)

// Client wraps the Plex Media Server API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      *gocache.Cache
	logger     zerolog.Logger
}

// NewClient creates a new Plex client. It fails only on missing
// configuration; connectivity is not probed until the first call.
func NewClient(baseURL, token string, logger zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidConfig)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidConfig)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      gocache.New(gocache.NoExpiration, 0),
		logger:     logger,
	}, nil
}

// do performs an authenticated GET against the Plex API and returns the
// raw response body.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")

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
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidToken
	case resp.StatusCode >= 400:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// GetStatus returns the Plex server identity.
func (c *Client) GetStatus(ctx context.Context) (*ServerIdentity, error) {
	body, err := c.do(ctx, "/identity", nil)
	if err != nil {
		return nil, err
	}

	var identity identityResponse
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity response: %w", err)
	}

	return &ServerIdentity{
		Version:   identity.MediaContainer.Version,
		MachineID: identity.MediaContainer.MachineIdentifier,
	}, nil
}

// GetLibrarySections returns the movie and show sections of the library.
// The first successful fetch is cached for the process lifetime.
func (c *Client) GetLibrarySections(ctx context.Context) ([]LibrarySection, error) {
	if cached, ok := c.cache.Get(sectionsCacheKey); ok {
		return cached.([]LibrarySection), nil
	}

	body, err := c.do(ctx, "/library/sections", nil)
	if err != nil {
		return nil, err
	}

	var response sectionsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse sections response: %w", err)
	}

	var sections []LibrarySection
	for _, dir := range response.MediaContainer.Directory {
		if dir.Type == "movie" || dir.Type == "show" {
			sections = append(sections, dir)
		}
	}

	c.cache.Set(sectionsCacheKey, sections, gocache.NoExpiration)
	c.logger.Debug().Int("sections", len(sections)).Msg("Cached Plex library sections")

	return sections, nil
}

// SearchLibrary searches library sections for titles containing the
// query. mediaType may be "movie", "tv", or empty for both; "tv" maps
// back to Plex's "show" for the upstream query while results always use
// "tv". Results are capped at 50 across all sections.
func (c *Client) SearchLibrary(ctx context.Context, query, mediaType string) ([]MediaItem, error) {
	sections, err := c.GetLibrarySections(ctx)
	if err != nil {
		return nil, err
	}

	if mediaType != "" {
		plexType := mediaType
		if mediaType == "tv" {
			plexType = "show"
		}
		var filtered []LibrarySection
		for _, s := range sections {
			if s.Type == plexType {
				filtered = append(filtered, s)
			}
		}
		sections = filtered
	}

	params := url.Values{}
	params.Set("title", query)

	var results []MediaItem
	for _, section := range sections {
		body, err := c.do(ctx, fmt.Sprintf("/library/sections/%s/all", section.Key), params)
		if err != nil {
			return nil, err
		}

		var response libraryResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("failed to parse library response: %w", err)
		}

		normalizedType := section.Type
		if normalizedType == "show" {
			normalizedType = "tv"
		}

		for _, item := range response.MediaContainer.Metadata {
			title := item.Title
			if title == "" {
				title = "Unknown"
			}
			results = append(results, MediaItem{
				Title:         title,
				Year:          item.Year,
				Rating:        item.Rating,
				Summary:       item.Summary,
				ContentRating: item.ContentRating,
				MediaType:     normalizedType,
			})
			if len(results) >= searchResultCap {
				return results, nil
			}
		}
	}

	return results, nil
}
