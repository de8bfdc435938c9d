package overseerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusText(t *testing.T) {
	tests := []struct {
		status   RequestStatus
		expected string
	}{
		{RequestStatusPending, "Pending"},
		{RequestStatusApproved, "Approved"},
		{RequestStatusDeclined, "Declined"},
		{RequestStatus(0), "Unknown"},
		{RequestStatus(4), "Unknown"},
		{RequestStatus(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.Text())
		})
	}
}

func TestMediaStatusText(t *testing.T) {
	tests := []struct {
		status   MediaStatus
		expected string
	}{
		{MediaStatusUnknown, "Not Requested"},
		{MediaStatusPending, "Requested"},
		{MediaStatusProcessing, "Processing"},
		{MediaStatusPartiallyAvailable, "Partially Available"},
		{MediaStatusAvailable, "Available"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.Text())
		})
	}
}

func TestNormalizeMediaStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected MediaStatus
	}{
		{"zero defaults to unknown", 0, MediaStatusUnknown},
		{"negative defaults to unknown", -1, MediaStatusUnknown},
		{"above range defaults to unknown", 6, MediaStatusUnknown},
		{"far above range defaults to unknown", 42, MediaStatusUnknown},
		{"known code passes through", 5, MediaStatusAvailable},
		{"lower bound passes through", 1, MediaStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMediaStatus(tt.code))
		})
	}
}

func TestMediaSearchResultDisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		result   MediaSearchResult
		expected string
	}{
		{
			name:     "movie title",
			result:   MediaSearchResult{Title: "Dune", Name: "ignored"},
			expected: "Dune",
		},
		{
			name:     "show name only",
			result:   MediaSearchResult{Name: "Severance"},
			expected: "Severance",
		},
		{
			name:     "original title fallback",
			result:   MediaSearchResult{OriginalTitle: "Le Samouraï"},
			expected: "Le Samouraï",
		},
		{
			name:     "original name fallback",
			result:   MediaSearchResult{OriginalName: "Dark"},
			expected: "Dark",
		},
		{
			name:     "nothing set",
			result:   MediaSearchResult{},
			expected: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.DisplayTitle())
		})
	}
}

func TestMediaSearchResultYear(t *testing.T) {
	tests := []struct {
		name     string
		result   MediaSearchResult
		expected string
	}{
		{
			name:     "release date",
			result:   MediaSearchResult{ReleaseDate: "2021-10-22"},
			expected: "2021",
		},
		{
			name:     "first air date",
			result:   MediaSearchResult{FirstAirDate: "2022-02-18"},
			expected: "2022",
		},
		{
			name:     "release date wins",
			result:   MediaSearchResult{ReleaseDate: "2021-10-22", FirstAirDate: "2022-02-18"},
			expected: "2021",
		},
		{
			name:     "no dates",
			result:   MediaSearchResult{},
			expected: "",
		},
		{
			name:     "too short to hold a year",
			result:   MediaSearchResult{ReleaseDate: "20"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.Year())
		})
	}
}

func TestUserInfoName(t *testing.T) {
	tests := []struct {
		name     string
		user     UserInfo
		expected string
	}{
		{
			name:     "display name wins",
			user:     UserInfo{ID: 1, DisplayName: "John Doe", PlexUsername: "john_plex", Username: "johndoe", Email: "john@example.com"},
			expected: "John Doe",
		},
		{
			name:     "plex username next",
			user:     UserInfo{ID: 1, PlexUsername: "john_plex", Username: "johndoe", Email: "john@example.com"},
			expected: "john_plex",
		},
		{
			name:     "username next",
			user:     UserInfo{ID: 1, Username: "johndoe", Email: "john@example.com"},
			expected: "johndoe",
		},
		{
			name:     "email next",
			user:     UserInfo{ID: 1, Email: "john@example.com"},
			expected: "john@example.com",
		},
		{
			name:     "id fallback",
			user:     UserInfo{ID: 42},
			expected: "User 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.Name())
		})
	}
}

func TestMediaRequestRequesterName(t *testing.T) {
	withUser := MediaRequest{RequestedBy: &UserInfo{ID: 7, Username: "alice"}}
	assert.Equal(t, "alice", withUser.RequesterName())

	withoutUser := MediaRequest{}
	assert.Equal(t, "Unknown", withoutUser.RequesterName())
}

func TestTvDetailsRegularSeasons(t *testing.T) {
	details := TvDetails{
		Seasons: []SeasonInfo{
			{SeasonNumber: 0, EpisodeCount: 4},
			{SeasonNumber: 1, EpisodeCount: 10},
			{SeasonNumber: 2, EpisodeCount: 8},
		},
	}

	regular := details.RegularSeasons()
	assert.Len(t, regular, 2)
	assert.Equal(t, 1, regular[0].SeasonNumber)
	assert.Equal(t, 2, regular[1].SeasonNumber)
}

func TestTvDetailsSeasonStatus(t *testing.T) {
	details := TvDetails{
		MediaInfo: &DetailMediaInfo{
			Seasons: []MediaSeason{
				{SeasonNumber: 1, Status: 5},
				{SeasonNumber: 2, Status: 99},
			},
		},
	}

	assert.Equal(t, MediaStatusAvailable, details.SeasonStatus(1))
	assert.Equal(t, MediaStatusUnknown, details.SeasonStatus(2), "unrecognized code resolves to unknown")
	assert.Equal(t, MediaStatusUnknown, details.SeasonStatus(3), "missing season resolves to unknown")

	bare := TvDetails{}
	assert.Equal(t, MediaStatusUnknown, bare.SeasonStatus(1))
}
