package plex

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	_, err := NewClient("", "token", logger)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewClient("http://localhost:32400", "", logger)
	require.ErrorIs(t, err, ErrInvalidConfig)

	client, err := NewClient("http://localhost:32400/", "token", logger)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:32400", client.baseURL)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "test-token", zerolog.Nop())
	require.NoError(t, err)
	return client
}

func TestGetStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/identity", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Plex-Token"))
		fmt.Fprint(w, `{"MediaContainer": {"version": "1.40.0", "machineIdentifier": "abc123"}}`)
	}))

	identity, err := client.GetStatus(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "1.40.0", identity.Version)
	assert.Equal(t, "abc123", identity.MachineID)
}

func TestErrorMapping(t *testing.T) {
	t.Run("401 maps to invalid token", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.GetStatus(t.Context())
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other 4xx maps to API error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "bad request")
		}))

		_, err := client.GetStatus(t.Context())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "bad request")
	})
}

func TestGetLibrarySections(t *testing.T) {
	var fetches atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		fmt.Fprint(w, `{"MediaContainer": {"Directory": [
			{"key": "1", "title": "Movies", "type": "movie"},
			{"key": "2", "title": "TV Shows", "type": "show"},
			{"key": "3", "title": "Music", "type": "artist"},
			{"key": "4", "title": "Photos", "type": "photo"}
		]}}`)
	}))

	sections, err := client.GetLibrarySections(t.Context())
	require.NoError(t, err)
	require.Len(t, sections, 2, "only movie and show sections survive")
	assert.Equal(t, "Movies", sections[0].Title)
	assert.Equal(t, "TV Shows", sections[1].Title)

	// Second call is served from the cache.
	again, err := client.GetLibrarySections(t.Context())
	require.NoError(t, err)
	assert.Equal(t, sections, again)
	assert.Equal(t, int32(1), fetches.Load())
}

func searchHandler(t *testing.T, perSection int) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/library/sections", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"MediaContainer": {"Directory": [
			{"key": "1", "title": "Movies", "type": "movie"},
			{"key": "2", "title": "More Movies", "type": "movie"},
			{"key": "3", "title": "TV Shows", "type": "show"}
		]}}`)
	})
	mux.HandleFunc("/library/sections/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dune", r.URL.Query().Get("title"))
		items := make([]string, 0, perSection)
		for i := 0; i < perSection; i++ {
			items = append(items, fmt.Sprintf(`{"title": "Hit %d", "year": 2020, "rating": 7.5, "summary": "s", "contentRating": "PG-13"}`, i))
		}
		fmt.Fprintf(w, `{"MediaContainer": {"Metadata": [%s]}}`, strings.Join(items, ","))
	})
	return mux
}

func TestSearchLibrary(t *testing.T) {
	t.Run("caps at 50 across sections", func(t *testing.T) {
		client := newTestClient(t, searchHandler(t, 30))

		results, err := client.SearchLibrary(t.Context(), "dune", "")
		require.NoError(t, err)
		assert.Len(t, results, 50, "search short-circuits at the cap, not 90")
	})

	t.Run("show normalized to tv", func(t *testing.T) {
		client := newTestClient(t, searchHandler(t, 2))

		results, err := client.SearchLibrary(t.Context(), "dune", "tv")
		require.NoError(t, err)
		require.Len(t, results, 2, "tv filter reaches only the show section")
		for _, item := range results {
			assert.Equal(t, "tv", item.MediaType, `catalog "show" is exposed as "tv"`)
		}
	})

	t.Run("movie filter reaches movie sections only", func(t *testing.T) {
		client := newTestClient(t, searchHandler(t, 2))

		results, err := client.SearchLibrary(t.Context(), "dune", "movie")
		require.NoError(t, err)
		require.Len(t, results, 4)
		for _, item := range results {
			assert.Equal(t, "movie", item.MediaType)
		}
	})
}
