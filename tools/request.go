package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"overseerr-mcp/overseerr"
)

// maxSeasonSuggestions bounds how many not-yet-requested seasons the
// preview guidance lists.
const maxSeasonSuggestions = 3

type seasonPreview struct {
	Season   int    `json:"season"`
	Episodes int    `json:"episodes,omitempty"`
	Status   string `json:"status"`
}

type requestPreview struct {
	TmdbID          int                 `json:"tmdb_id"`
	MediaType       overseerr.MediaType `json:"media_type"`
	Title           string              `json:"title"`
	Year            string              `json:"year,omitempty"`
	Overview        string              `json:"overview,omitempty"`
	Genres          []string            `json:"genres,omitempty"`
	Rating          float64             `json:"rating,omitempty"`
	Status          string              `json:"status,omitempty"`
	Seasons         []seasonPreview     `json:"seasons,omitempty"`
	SelectedSeasons []int               `json:"selected_seasons,omitempty"`
	ConfirmRequired bool                `json:"confirm_required"`
	Message         string              `json:"message"`
}

type requestConfirmation struct {
	Success   bool                `json:"success"`
	RequestID int                 `json:"request_id"`
	Status    string              `json:"status"`
	Type      overseerr.MediaType `json:"type"`
	Message   string              `json:"message"`
}

// handleRequestMedia implements the preview/confirm protocol: without
// confirm=true nothing is ever submitted; with it, exactly one create
// call is made once a season selection is resolvable.
func (s *Server) handleRequestMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	seasonsArg := strings.TrimSpace(req.GetString("seasons", ""))
	confirm := req.GetBool("confirm", false)

	client, err := s.overseerrClient()
	if err != nil {
		return mcp.NewToolResultError("configuration error: " + err.Error()), nil
	}

	if mediaType == overseerr.MediaTypeMovie {
		if !confirm {
			return s.previewMovie(ctx, client, tmdbID)
		}
		return s.submit(ctx, client, mediaType, tmdbID, nil)
	}

	if !confirm {
		return s.previewTV(ctx, client, tmdbID, seasonsArg)
	}

	seasons, err := resolveSeasonSelection(ctx, client, tmdbID, seasonsArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.submit(ctx, client, mediaType, tmdbID, seasons)
}

// submit performs the single mutating call.
func (s *Server) submit(ctx context.Context, client *overseerr.Client, mediaType overseerr.MediaType, tmdbID int, seasons []int) (*mcp.CallToolResult, error) {
	response, err := client.CreateRequest(ctx, mediaType, tmdbID, seasons)
	if err != nil {
		return mcp.NewToolResultError("request failed: " + err.Error()), nil
	}

	return jsonResult(requestConfirmation{
		Success:   true,
		RequestID: response.ID,
		Status:    response.Status.Text(),
		Type:      response.Type,
		Message:   fmt.Sprintf("Request created successfully (ID: %d)", response.ID),
	})
}

func (s *Server) previewMovie(ctx context.Context, client *overseerr.Client, tmdbID int) (*mcp.CallToolResult, error) {
	details, err := client.GetMovieDetails(ctx, tmdbID)
	if err != nil {
		return mcp.NewToolResultError("failed to fetch movie details: " + err.Error()), nil
	}

	status := overseerr.MediaStatusUnknown
	if details.MediaInfo != nil {
		status = overseerr.NormalizeMediaStatus(details.MediaInfo.Status)
	}

	preview := requestPreview{
		TmdbID:          tmdbID,
		MediaType:       overseerr.MediaTypeMovie,
		Title:           details.Title,
		Year:            yearOf(details.ReleaseDate),
		Overview:        truncateOverview(details.Overview),
		Genres:          genreNames(details.Genres),
		Rating:          roundRating(details.VoteAverage),
		Status:          status.Text(),
		ConfirmRequired: true,
		Message:         "Resubmit with confirm=true to request this movie.",
	}
	if status == overseerr.MediaStatusAvailable {
		preview.Message = "This movie is already available. Resubmit with confirm=true to request it anyway."
	}

	return jsonResult(preview)
}

func (s *Server) previewTV(ctx context.Context, client *overseerr.Client, tmdbID int, seasonsArg string) (*mcp.CallToolResult, error) {
	details, err := client.GetTvDetails(ctx, tmdbID)
	if err != nil {
		return mcp.NewToolResultError("failed to fetch TV details: " + err.Error()), nil
	}

	regular := details.RegularSeasons()

	previews := make([]seasonPreview, 0, len(regular))
	var notRequested []int
	for _, season := range regular {
		status := details.SeasonStatus(season.SeasonNumber)
		previews = append(previews, seasonPreview{
			Season:   season.SeasonNumber,
			Episodes: season.EpisodeCount,
			Status:   status.Text(),
		})
		if status == overseerr.MediaStatusUnknown {
			notRequested = append(notRequested, season.SeasonNumber)
		}
	}

	preview := requestPreview{
		TmdbID:          tmdbID,
		MediaType:       overseerr.MediaTypeTV,
		Title:           details.Name,
		Year:            yearOf(details.FirstAirDate),
		Overview:        truncateOverview(details.Overview),
		Genres:          genreNames(details.Genres),
		Rating:          roundRating(details.VoteAverage),
		Seasons:         previews,
		ConfirmRequired: true,
	}

	switch {
	case seasonsArg == "all":
		preview.Message = "Resubmit with confirm=true to request all seasons."
	case seasonsArg != "":
		selected, err := parseSeasonList(seasonsArg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		preview.SelectedSeasons = selected
		preview.Message = fmt.Sprintf("Resubmit with confirm=true to request season(s) %s.", joinInts(selected))
	case len(regular) == 1:
		preview.SelectedSeasons = []int{regular[0].SeasonNumber}
		preview.Message = fmt.Sprintf("This show has a single season. Resubmit with confirm=true to request season %d.", regular[0].SeasonNumber)
	case len(notRequested) > 0:
		suggestions := notRequested
		if len(suggestions) > maxSeasonSuggestions {
			suggestions = suggestions[:maxSeasonSuggestions]
		}
		preview.Message = fmt.Sprintf(
			"Specify which seasons to request, e.g. seasons=%q or seasons=\"all\". Not yet requested: %s. Then resubmit with confirm=true.",
			joinInts(suggestions), joinInts(suggestions))
	default:
		preview.Message = "All seasons are already requested or available."
	}

	return jsonResult(preview)
}

// resolveSeasonSelection turns the seasons argument into the list passed
// to the create call: nil means "all seasons". When no argument was
// given, a single-season show selects its one season; a multi-season
// show is rejected rather than guessed at.
func resolveSeasonSelection(ctx context.Context, client *overseerr.Client, tmdbID int, seasonsArg string) ([]int, error) {
	if seasonsArg == "all" {
		return nil, nil
	}
	if seasonsArg != "" {
		return parseSeasonList(seasonsArg)
	}

	details, err := client.GetTvDetails(ctx, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch TV details: %w", err)
	}

	regular := details.RegularSeasons()
	if len(regular) == 1 {
		return []int{regular[0].SeasonNumber}, nil
	}
	return nil, fmt.Errorf("this show has %d seasons: specify which to request with seasons=\"1,2\" or seasons=\"all\"", len(regular))
}

// parseSeasonList parses a comma-separated season list like "1,2,3".
func parseSeasonList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	seasons := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid seasons list %q: expected comma-separated numbers or \"all\"", raw)
		}
		seasons = append(seasons, n)
	}
	return seasons, nil
}

func genreNames(genres []overseerr.Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
