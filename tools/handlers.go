package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"overseerr-mcp/overseerr"
)

const (
	// searchResultLimit caps what search_media returns to the caller.
	searchResultLimit = 20

	// overviewLimit is how many characters of an overview are kept
	// before truncating with an ellipsis.
	overviewLimit = 200

	// showAllPageSize is how many requests are fetched when show_all
	// bypasses the limit.
	showAllPageSize = 100
)

// truncateOverview trims an overview to overviewLimit characters.
func truncateOverview(s string) string {
	runes := []rune(s)
	if len(runes) <= overviewLimit {
		return s
	}
	return string(runes[:overviewLimit]) + "..."
}

// roundRating rounds a vote average to one decimal place.
func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// parseMediaType validates an optional media_type argument.
func parseMediaType(raw string) (overseerr.MediaType, error) {
	if raw == "" {
		return "", nil
	}
	mt := overseerr.MediaType(strings.ToLower(raw))
	if !mt.Valid() {
		return "", fmt.Errorf("invalid media_type %q: must be \"movie\" or \"tv\"", raw)
	}
	return mt, nil
}

// parseRequestStatus validates an optional status argument.
func parseRequestStatus(raw string) (overseerr.RequestStatus, error) {
	switch strings.ToLower(raw) {
	case "":
		return 0, nil
	case "pending":
		return overseerr.RequestStatusPending, nil
	case "approved":
		return overseerr.RequestStatusApproved, nil
	case "declined":
		return overseerr.RequestStatusDeclined, nil
	default:
		return 0, fmt.Errorf("invalid status %q: must be \"pending\", \"approved\", or \"declined\"", raw)
	}
}

type searchResultItem struct {
	TmdbID     int                 `json:"tmdb_id"`
	Title      string              `json:"title"`
	Year       string              `json:"year,omitempty"`
	Type       overseerr.MediaType `json:"type"`
	Overview   string              `json:"overview,omitempty"`
	Rating     float64             `json:"rating,omitempty"`
	Status     int                 `json:"status"`
	StatusText string              `json:"status_text"`
}

type searchResponse struct {
	Query   string             `json:"query"`
	Count   int                `json:"count"`
	Results []searchResultItem `json:"results"`
}

func (s *Server) handleSearchMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mediaType, err := parseMediaType(req.GetString("media_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := s.overseerrClient()
	if err != nil {
		return mcp.NewToolResultError("configuration error: " + err.Error()), nil
	}

	results, err := client.Search(ctx, query, mediaType)
	if err != nil {
		return mcp.NewToolResultError("search failed: " + err.Error()), nil
	}

	if len(results) > searchResultLimit {
		results = results[:searchResultLimit]
	}

	items := make([]searchResultItem, 0, len(results))
	for _, r := range results {
		items = append(items, searchResultItem{
			TmdbID:     r.ID,
			Title:      r.DisplayTitle(),
			Year:       r.Year(),
			Type:       r.MediaType,
			Overview:   truncateOverview(r.Overview),
			Rating:     roundRating(r.VoteAverage),
			Status:     int(r.Status),
			StatusText: r.Status.Text(),
		})
	}

	return jsonResult(searchResponse{
		Query:   query,
		Count:   len(items),
		Results: items,
	})
}

type requestsFilter struct {
	Status      string `json:"status,omitempty"`
	MediaStatus string `json:"media_status,omitempty"`
	Days        int    `json:"days,omitempty"`
	Expression  string `json:"filter,omitempty"`
}

type requestsResponse struct {
	Filter   requestsFilter             `json:"filter"`
	Count    int                        `json:"count"`
	Requests []overseerr.RequestSummary `json:"requests"`
}

func (s *Server) handleGetRequests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statusArg := req.GetString("status", "")
	status, err := parseRequestStatus(statusArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mediaStatus := req.GetString("media_status", "")
	days := req.GetInt("days", 0)
	limit := req.GetInt("limit", 20)
	showAll := req.GetBool("show_all", false)
	expression := req.GetString("filter", "")

	var program *requestFilter
	if expression != "" {
		program, err = compileRequestFilter(expression)
		if err != nil {
			return mcp.NewToolResultError("invalid filter expression: " + err.Error()), nil
		}
	}

	var since time.Time
	if days > 0 {
		since = time.Now().UTC().AddDate(0, 0, -days)
	}

	take := limit
	if showAll {
		take = showAllPageSize
	}

	client, err := s.overseerrClient()
	if err != nil {
		return mcp.NewToolResultError("configuration error: " + err.Error()), nil
	}

	summaries, err := client.GetRequestsWithMediaInfo(ctx, status, since, take)
	if err != nil {
		return mcp.NewToolResultError("failed to get requests: " + err.Error()), nil
	}

	if mediaStatus != "" {
		kept := summaries[:0]
		for _, sum := range summaries {
			if strings.EqualFold(sum.MediaStatus, mediaStatus) {
				kept = append(kept, sum)
			}
		}
		summaries = kept
	}

	if program != nil {
		kept := summaries[:0]
		for _, sum := range summaries {
			match, err := program.match(sum)
			if err != nil {
				return mcp.NewToolResultError("filter evaluation failed: " + err.Error()), nil
			}
			if match {
				kept = append(kept, sum)
			}
		}
		summaries = kept
	}

	if !showAll && len(summaries) > limit {
		summaries = summaries[:limit]
	}

	if summaries == nil {
		summaries = []overseerr.RequestSummary{}
	}

	return jsonResult(requestsResponse{
		Filter: requestsFilter{
			Status:      statusArg,
			MediaStatus: mediaStatus,
			Days:        days,
			Expression:  expression,
		},
		Count:    len(summaries),
		Requests: summaries,
	})
}

type userItem struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	RequestCount int    `json:"request_count"`
}

type usersResponse struct {
	Count int        `json:"count"`
	Users []userItem `json:"users"`
}

func (s *Server) handleGetUsers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := s.overseerrClient()
	if err != nil {
		return mcp.NewToolResultError("configuration error: " + err.Error()), nil
	}

	users, err := client.GetUsers(ctx)
	if err != nil {
		return mcp.NewToolResultError("failed to get users: " + err.Error()), nil
	}

	items := make([]userItem, 0, len(users))
	for i := range users {
		u := &users[i]
		items = append(items, userItem{
			ID:           u.ID,
			Name:         u.Name(),
			Email:        u.Email,
			RequestCount: u.RequestCount,
		})
	}

	return jsonResult(usersResponse{Count: len(items), Users: items})
}

func (s *Server) handleGetUserRequests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mediaStatus := req.GetString("media_status", "")
	limit := req.GetInt("limit", 20)
	if req.GetBool("show_all", false) {
		limit = 0
	}

	client, err := s.overseerrClient()
	if err != nil {
		return mcp.NewToolResultError("configuration error: " + err.Error()), nil
	}

	result, err := client.GetUserRequests(ctx, userID, mediaStatus, limit)
	if err != nil {
		return mcp.NewToolResultError("failed to get user requests: " + err.Error()), nil
	}
	if result.Requests == nil {
		result.Requests = []overseerr.RequestSummary{}
	}

	return jsonResult(result)
}

func (s *Server) handleGetMediaStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tmdbID, err := req.RequireInt("tmdb_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawType, err := req.RequireString("media_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mediaType, err := parseMediaType(rawType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := s.overseerrClient()
	if err != nil {
		return mcp.NewToolResultError("configuration error: " + err.Error()), nil
	}

	status, err := client.GetMediaStatus(ctx, tmdbID, mediaType)
	if err != nil {
		return mcp.NewToolResultError("failed to get media status: " + err.Error()), nil
	}

	return jsonResult(status)
}

type plexSearchResponse struct {
	Query   string `json:"query"`
	Count   int    `json:"count"`
	Results any    `json:"results"`
}

func (s *Server) handleSearchPlex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mediaType, err := parseMediaType(req.GetString("media_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := s.plexClient()
	if err != nil {
		return mcp.NewToolResultError("configuration error: " + err.Error()), nil
	}

	results, err := client.SearchLibrary(ctx, query, string(mediaType))
	if err != nil {
		return mcp.NewToolResultError("plex search failed: " + err.Error()), nil
	}

	return jsonResult(plexSearchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	})
}

type upstreamHealth struct {
	Reachable       bool   `json:"reachable"`
	Version         string `json:"version,omitempty"`
	UpdateAvailable bool   `json:"update_available,omitempty"`
	MachineID       string `json:"machine_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

type healthReport struct {
	Status    string          `json:"status"`
	Overseerr upstreamHealth  `json:"overseerr"`
	Plex      *upstreamHealth `json:"plex,omitempty"`
}

// handleHealthCheck is the one place an upstream failure is converted
// into a normal degraded result instead of an error.
func (s *Server) handleHealthCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := healthReport{Status: "healthy"}

	client, err := s.overseerrClient()
	if err != nil {
		report.Status = "unhealthy"
		report.Overseerr.Error = err.Error()
	} else if status, err := client.GetStatus(ctx); err != nil {
		report.Status = "unhealthy"
		report.Overseerr.Error = err.Error()
	} else {
		report.Overseerr.Reachable = true
		report.Overseerr.Version = status.Version
		report.Overseerr.UpdateAvailable = status.UpdateAvailable
	}

	if s.cfg.HasPlex() {
		report.Plex = &upstreamHealth{}
		client, err := s.plexClient()
		if err != nil {
			report.Status = "unhealthy"
			report.Plex.Error = err.Error()
		} else if identity, err := client.GetStatus(ctx); err != nil {
			report.Status = "unhealthy"
			report.Plex.Error = err.Error()
		} else {
			report.Plex.Reachable = true
			report.Plex.Version = identity.Version
			report.Plex.MachineID = identity.MachineID
		}
	}

	return jsonResult(report)
}
