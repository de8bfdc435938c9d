// Package tools exposes the Overseerr and Plex clients as MCP tools.
// Each tool is a thin, stateless handler on a Server that owns the
// upstream clients; clients are built lazily so a missing credential
// surfaces as a per-call configuration error instead of a crash.
package tools

import (
	"encoding/json"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"overseerr-mcp/config"
	"overseerr-mcp/overseerr"
	"overseerr-mcp/plex"
)

// Server holds the configuration and the lazily constructed upstream
// clients shared by every tool handler.
type Server struct {
	cfg    *config.Config
	logger zerolog.Logger

	mu        sync.Mutex
	overseerr *overseerr.Client
	plex      *plex.Client
}

// NewServer creates a tool server over the given configuration.
func NewServer(cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// overseerrClient returns the shared Overseerr client, constructing it
// on first use.
func (s *Server) overseerrClient() (*overseerr.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overseerr == nil {
		client, err := overseerr.NewClient(s.cfg.Overseerr.URL, s.cfg.Overseerr.APIKey, s.logger)
		if err != nil {
			return nil, err
		}
		s.overseerr = client
	}
	return s.overseerr, nil
}

// plexClient returns the shared Plex client, constructing it on first use.
func (s *Server) plexClient() (*plex.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plex == nil {
		client, err := plex.NewClient(s.cfg.Plex.URL, s.cfg.Plex.Token, s.logger)
		if err != nil {
			return nil, err
		}
		s.plex = client
	}
	return s.plex, nil
}

// MCPServer builds the MCP server with every tool registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	m := server.NewMCPServer("overseerr-mcp", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	m.AddTool(mcp.NewTool("search_media",
		mcp.WithDescription("Search Overseerr for movies and TV shows. Returns TMDB IDs needed for requesting media, along with titles, years, ratings, and availability status."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term (movie or TV show title)")),
		mcp.WithString("media_type", mcp.Description("Optional filter"), mcp.Enum("movie", "tv")),
	), s.handleSearchMedia)

	m.AddTool(mcp.NewTool("get_requests",
		mcp.WithDescription("List media requests showing who requested what and when. Supports filtering by approval status, availability, age in days, and an optional boolean filter expression over the fields ID, Title, Type, Status, MediaStatus, RequestedBy, UserID, RequestedAt."),
		mcp.WithString("status", mcp.Description("Optional approval filter"), mcp.Enum("pending", "approved", "declined")),
		mcp.WithString("media_status", mcp.Description("Optional availability filter, e.g. \"Available\" or \"Processing\"")),
		mcp.WithNumber("days", mcp.Description("Only show requests from the last N days")),
		mcp.WithString("filter", mcp.Description("Optional expression, e.g. Type == \"movie\" && Status == \"Pending\"")),
		mcp.WithNumber("limit", mcp.DefaultNumber(20), mcp.Description("Maximum number of requests to return")),
		mcp.WithBoolean("show_all", mcp.DefaultBool(false), mcp.Description("Fetch a full page instead of stopping at limit")),
	), s.handleGetRequests)

	m.AddTool(mcp.NewTool("get_users",
		mcp.WithDescription("List all Overseerr users with their IDs and request counts. Use the ID with get_user_requests."),
	), s.handleGetUsers)

	m.AddTool(mcp.NewTool("get_user_requests",
		mcp.WithDescription("Get all requests made by a specific user, with resolved titles."),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("The Overseerr user ID (from get_users)")),
		mcp.WithString("media_status", mcp.Description("Optional availability filter, e.g. \"Available\"")),
		mcp.WithNumber("limit", mcp.DefaultNumber(20), mcp.Description("Maximum number of requests to return")),
		mcp.WithBoolean("show_all", mcp.DefaultBool(false), mcp.Description("Return every matching request instead of stopping at limit")),
	), s.handleGetUserRequests)

	m.AddTool(mcp.NewTool("request_media",
		mcp.WithDescription("Request a movie or TV show. Without confirm=true this is a dry run: it returns a preview with season availability and never submits anything. Resubmit with confirm=true to create the request."),
		mcp.WithNumber("tmdb_id", mcp.Required(), mcp.Description("TMDB ID of the movie or TV show (from search_media)")),
		mcp.WithString("media_type", mcp.Required(), mcp.Enum("movie", "tv")),
		mcp.WithString("seasons", mcp.Description("For TV: comma-separated season numbers (e.g. \"1,2,3\") or \"all\"")),
		mcp.WithBoolean("confirm", mcp.DefaultBool(false), mcp.Description("Set true to actually submit the request")),
	), s.handleRequestMedia)

	m.AddTool(mcp.NewTool("get_media_status",
		mcp.WithDescription("Get the availability status of a movie or TV show: whether it is requested, processing, or available."),
		mcp.WithNumber("tmdb_id", mcp.Required(), mcp.Description("TMDB ID of the media")),
		mcp.WithString("media_type", mcp.Required(), mcp.Enum("movie", "tv")),
	), s.handleGetMediaStatus)

	m.AddTool(mcp.NewTool("search_plex",
		mcp.WithDescription("Search the Plex library by title substring. Only returns media already in the library."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Title substring to search for")),
		mcp.WithString("media_type", mcp.Description("Optional filter"), mcp.Enum("movie", "tv")),
	), s.handleSearchPlex)

	m.AddTool(mcp.NewTool("health_check",
		mcp.WithDescription("Check connectivity to Overseerr (and Plex when configured). Always returns a status report, never an error."),
	), s.handleHealthCheck)

	return m
}

// jsonResult marshals v into an indented text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
