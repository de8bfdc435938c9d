package tools

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overseerr-mcp/config"
	"overseerr-mcp/overseerr"
)

func TestHandleSearchMedia(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		var items []string
		for i := 1; i <= 25; i++ {
			items = append(items, fmt.Sprintf(
				`{"id": %d, "mediaType": "movie", "title": "Movie %d", "releaseDate": "2020-01-01", "voteAverage": 6.66}`, i, i))
		}
		fmt.Fprintf(w, `{"results": [%s]}`, strings.Join(items, ","))
	})
	server := newToolServer(t, mux)

	result, err := server.handleSearchMedia(t.Context(), toolRequest(map[string]any{
		"query": "movie",
	}))
	require.NoError(t, err)

	var response searchResponse
	decodeResult(t, result, &response)

	assert.Equal(t, "movie", response.Query)
	assert.Equal(t, 20, response.Count, "results are capped at the top 20")
	assert.Equal(t, "Movie 1", response.Results[0].Title)
	assert.Equal(t, 6.7, response.Results[0].Rating)
	assert.Equal(t, "Not Requested", response.Results[0].StatusText)
}

func TestHandleSearchMediaMissingQuery(t *testing.T) {
	server := newToolServer(t, http.NewServeMux())

	result, err := server.handleSearchMedia(t.Context(), toolRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func requestsFixture() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/request", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [
			{"id": 1, "status": 1, "type": "movie", "createdAt": "2024-01-10T00:00:00.000Z",
			 "media": {"id": 1, "tmdbId": 550, "status": 5},
			 "requestedBy": {"id": 3, "displayName": "Carol"}},
			{"id": 2, "status": 2, "type": "tv", "createdAt": "2024-01-11T00:00:00.000Z",
			 "media": {"id": 2, "tmdbId": 90228, "status": 2},
			 "requestedBy": {"id": 4, "displayName": "Dave"}}
		]}`)
	})
	mux.HandleFunc("/api/v1/movie/550", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 550, "title": "Fight Club"}`)
	})
	mux.HandleFunc("/api/v1/tv/90228", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 90228, "name": "Dune: Prophecy"}`)
	})
	return mux
}

func TestHandleGetRequests(t *testing.T) {
	t.Run("plain listing", func(t *testing.T) {
		server := newToolServer(t, requestsFixture())

		result, err := server.handleGetRequests(t.Context(), toolRequest(map[string]any{}))
		require.NoError(t, err)

		var response requestsResponse
		decodeResult(t, result, &response)
		assert.Equal(t, 2, response.Count)
		assert.Equal(t, "Fight Club", response.Requests[0].Title)
		assert.Equal(t, "Pending", response.Requests[0].Status)
	})

	t.Run("media status filter", func(t *testing.T) {
		server := newToolServer(t, requestsFixture())

		result, err := server.handleGetRequests(t.Context(), toolRequest(map[string]any{
			"media_status": "available",
		}))
		require.NoError(t, err)

		var response requestsResponse
		decodeResult(t, result, &response)
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "Fight Club", response.Requests[0].Title)
	})

	t.Run("expression filter", func(t *testing.T) {
		server := newToolServer(t, requestsFixture())

		result, err := server.handleGetRequests(t.Context(), toolRequest(map[string]any{
			"filter": `Type == "tv" && RequestedBy == "Dave"`,
		}))
		require.NoError(t, err)

		var response requestsResponse
		decodeResult(t, result, &response)
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "Dune: Prophecy", response.Requests[0].Title)
	})

	t.Run("invalid expression is rejected", func(t *testing.T) {
		server := newToolServer(t, requestsFixture())

		result, err := server.handleGetRequests(t.Context(), toolRequest(map[string]any{
			"filter": `Title +`,
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "invalid filter expression")
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		server := newToolServer(t, requestsFixture())

		result, err := server.handleGetRequests(t.Context(), toolRequest(map[string]any{
			"status": "maybe",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("limit truncates", func(t *testing.T) {
		server := newToolServer(t, requestsFixture())

		result, err := server.handleGetRequests(t.Context(), toolRequest(map[string]any{
			"limit": 1,
		}))
		require.NoError(t, err)

		var response requestsResponse
		decodeResult(t, result, &response)
		assert.Equal(t, 1, response.Count)
	})
}

func TestHandleGetUsers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [
			{"id": 1, "displayName": "Admin", "email": "admin@example.com", "requestCount": 12},
			{"id": 2, "plexUsername": "bob", "requestCount": 3}
		]}`)
	})
	server := newToolServer(t, mux)

	result, err := server.handleGetUsers(t.Context(), toolRequest(nil))
	require.NoError(t, err)

	var response usersResponse
	decodeResult(t, result, &response)
	require.Equal(t, 2, response.Count)
	assert.Equal(t, "Admin", response.Users[0].Name)
	assert.Equal(t, 12, response.Users[0].RequestCount)
	assert.Equal(t, "bob", response.Users[1].Name)
}

func TestHandleGetUserRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/user/3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 3, "displayName": "Carol"}`)
	})
	mux.HandleFunc("/api/v1/request", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [
			{"id": 1, "status": 2, "type": "movie", "createdAt": "2024-01-10T00:00:00.000Z",
			 "media": {"id": 1, "tmdbId": 550, "status": 5},
			 "requestedBy": {"id": 3, "displayName": "Carol"}}
		]}`)
	})
	mux.HandleFunc("/api/v1/movie/550", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 550, "title": "Fight Club"}`)
	})
	server := newToolServer(t, mux)

	result, err := server.handleGetUserRequests(t.Context(), toolRequest(map[string]any{
		"user_id": 3,
	}))
	require.NoError(t, err)

	var response overseerr.UserRequests
	decodeResult(t, result, &response)
	assert.Equal(t, "Carol", response.User)
	assert.Equal(t, 1, response.RequestCount)
	assert.Equal(t, "Fight Club", response.Requests[0].Title)
}

func TestHandleSearchPlexUnconfigured(t *testing.T) {
	server := newToolServer(t, http.NewServeMux())

	result, err := server.handleSearchPlex(t.Context(), toolRequest(map[string]any{
		"query": "dune",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "configuration error")
}

func TestHandleHealthCheck(t *testing.T) {
	t.Run("healthy overseerr", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"version": "1.33.2", "updateAvailable": true}`)
		})
		server := newToolServer(t, mux)

		result, err := server.handleHealthCheck(t.Context(), toolRequest(nil))
		require.NoError(t, err)

		var report healthReport
		decodeResult(t, result, &report)
		assert.Equal(t, "healthy", report.Status)
		assert.True(t, report.Overseerr.Reachable)
		assert.Equal(t, "1.33.2", report.Overseerr.Version)
		assert.True(t, report.Overseerr.UpdateAvailable)
		assert.Nil(t, report.Plex)
	})

	t.Run("upstream failure degrades instead of erroring", func(t *testing.T) {
		server := newToolServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		result, err := server.handleHealthCheck(t.Context(), toolRequest(nil))
		require.NoError(t, err)
		require.False(t, result.IsError, "health check never returns a tool error")

		var report healthReport
		decodeResult(t, result, &report)
		assert.Equal(t, "unhealthy", report.Status)
		assert.False(t, report.Overseerr.Reachable)
		assert.Contains(t, report.Overseerr.Error, "invalid API key")
	})

	t.Run("both upstreams reported", func(t *testing.T) {
		overseerrMux := http.NewServeMux()
		overseerrMux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"version": "1.33.2"}`)
		})
		overseerrUpstream := httptest.NewServer(overseerrMux)
		t.Cleanup(overseerrUpstream.Close)

		plexMux := http.NewServeMux()
		plexMux.HandleFunc("/identity", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"MediaContainer": {"version": "1.40.0", "machineIdentifier": "abc"}}`)
		})
		plexUpstream := httptest.NewServer(plexMux)
		t.Cleanup(plexUpstream.Close)

		cfg := &config.Config{}
		cfg.Overseerr.URL = overseerrUpstream.URL
		cfg.Overseerr.APIKey = "key"
		cfg.Plex.URL = plexUpstream.URL
		cfg.Plex.Token = "token"
		server := NewServer(cfg, zerolog.Nop())

		result, err := server.handleHealthCheck(t.Context(), toolRequest(nil))
		require.NoError(t, err)

		var report healthReport
		decodeResult(t, result, &report)
		assert.Equal(t, "healthy", report.Status)
		require.NotNil(t, report.Plex)
		assert.True(t, report.Plex.Reachable)
		assert.Equal(t, "abc", report.Plex.MachineID)
	})
}
