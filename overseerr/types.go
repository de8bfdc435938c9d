package overseerr

import (
	"fmt"
	"time"
)

// MediaType represents the type of media
type MediaType string

const (
	// MediaTypeMovie represents a movie
	MediaTypeMovie MediaType = "movie"
	// MediaTypeTV represents a TV show
	MediaTypeTV MediaType = "tv"
)

// Valid reports whether the media type is one Overseerr can request.
func (mt MediaType) Valid() bool {
	return mt == MediaTypeMovie || mt == MediaTypeTV
}

// RequestStatus represents the approval status of a media request.
// The integer codes are Overseerr's wire format and must not be renumbered.
type RequestStatus int

const (
	// RequestStatusPending indicates a pending request
	RequestStatusPending RequestStatus = 1
	// RequestStatusApproved indicates an approved request
	RequestStatusApproved RequestStatus = 2
	// RequestStatusDeclined indicates a declined request
	RequestStatusDeclined RequestStatus = 3
)

// Text returns the human-readable form of a RequestStatus. Unrecognized
// codes render as "Unknown". This is the single lookup used everywhere
// request statuses are displayed.
func (rs RequestStatus) Text() string {
	switch rs {
	case RequestStatusPending:
		return "Pending"
	case RequestStatusApproved:
		return "Approved"
	case RequestStatusDeclined:
		return "Declined"
	default:
		return "Unknown"
	}
}

// MediaStatus represents the availability of a title within the managed
// library, distinct from request approval status. Integer codes are
// Overseerr's wire format.
type MediaStatus int

const (
	// MediaStatusUnknown means the title has never been requested
	MediaStatusUnknown MediaStatus = 1
	// MediaStatusPending means a request exists but nothing has happened yet
	MediaStatusPending MediaStatus = 2
	// MediaStatusProcessing means the title is being fetched
	MediaStatusProcessing MediaStatus = 3
	// MediaStatusPartiallyAvailable means some of the title is available
	MediaStatusPartiallyAvailable MediaStatus = 4
	// MediaStatusAvailable means the full title is available
	MediaStatusAvailable MediaStatus = 5
)

// NormalizeMediaStatus maps a raw status code to a MediaStatus, treating
// anything outside the known range as unknown rather than failing.
func NormalizeMediaStatus(code int) MediaStatus {
	s := MediaStatus(code)
	if s < MediaStatusUnknown || s > MediaStatusAvailable {
		return MediaStatusUnknown
	}
	return s
}

// Text returns the human-readable form of a MediaStatus. This is the
// single lookup used everywhere availability is displayed, including
// per-season labels in the request preview.
func (ms MediaStatus) Text() string {
	switch ms {
	case MediaStatusUnknown:
		return "Not Requested"
	case MediaStatusPending:
		return "Requested"
	case MediaStatusProcessing:
		return "Processing"
	case MediaStatusPartiallyAvailable:
		return "Partially Available"
	case MediaStatusAvailable:
		return "Available"
	default:
		return "Unknown"
	}
}

// UserInfo represents an Overseerr user
type UserInfo struct {
	ID           int       `json:"id"`
	Email        string    `json:"email,omitempty"`
	PlexUsername string    `json:"plexUsername,omitempty"`
	Username     string    `json:"username,omitempty"`
	DisplayName  string    `json:"displayName,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	RequestCount int       `json:"requestCount,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Name returns the best available display name for the user.
func (u *UserInfo) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.PlexUsername != "" {
		return u.PlexUsername
	}
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return fmt.Sprintf("User %d", u.ID)
}

func (u *UserInfo) validate() error {
	if u.ID == 0 {
		return fmt.Errorf("user is missing an id")
	}
	return nil
}

// MediaSearchResult represents a single hit from the combined search
// endpoint. Movies carry title/releaseDate, shows carry name/firstAirDate.
type MediaSearchResult struct {
	ID            int       `json:"id"`
	MediaType     MediaType `json:"mediaType"`
	Title         string    `json:"title,omitempty"`
	Name          string    `json:"name,omitempty"`
	OriginalTitle string    `json:"originalTitle,omitempty"`
	OriginalName  string    `json:"originalName,omitempty"`
	Overview      string    `json:"overview,omitempty"`
	ReleaseDate   string    `json:"releaseDate,omitempty"`
	FirstAirDate  string    `json:"firstAirDate,omitempty"`
	PosterPath    string    `json:"posterPath,omitempty"`
	Popularity    float64   `json:"popularity,omitempty"`
	VoteAverage   float64   `json:"voteAverage,omitempty"`

	// Status is resolved from the hit's nested mediaInfo block, not part
	// of the search payload itself.
	Status MediaStatus `json:"-"`
}

// DisplayTitle returns the title regardless of media type.
func (r *MediaSearchResult) DisplayTitle() string {
	for _, t := range []string{r.Title, r.Name, r.OriginalTitle, r.OriginalName} {
		if t != "" {
			return t
		}
	}
	return "Unknown"
}

// Year extracts the year from whichever date field is present, or ""
// when neither is set.
func (r *MediaSearchResult) Year() string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

func (r *MediaSearchResult) validate() error {
	if r.ID == 0 {
		return fmt.Errorf("search result is missing an id")
	}
	if !r.MediaType.Valid() {
		return fmt.Errorf("unexpected media type %q", r.MediaType)
	}
	return nil
}

// MediaInfo is the nested availability record attached to a request.
// Status is kept as the raw wire code; use MediaStatus to read it.
type MediaInfo struct {
	ID        int       `json:"id"`
	TmdbID    int       `json:"tmdbId,omitempty"`
	TvdbID    int       `json:"tvdbId,omitempty"`
	Status    int       `json:"status,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`
}

// MediaStatus returns the availability status, defaulting to unknown for
// unrecognized codes.
func (m *MediaInfo) MediaStatus() MediaStatus {
	return NormalizeMediaStatus(m.Status)
}

// MediaRequest represents a media request in Overseerr
type MediaRequest struct {
	ID          int           `json:"id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt,omitempty"`
	Type        MediaType     `json:"type"`
	Media       *MediaInfo    `json:"media,omitempty"`
	RequestedBy *UserInfo     `json:"requestedBy,omitempty"`
	ModifiedBy  *UserInfo     `json:"modifiedBy,omitempty"`
}

// RequesterName returns the requester's display name, or "Unknown" when
// the request carries no user record.
func (mr *MediaRequest) RequesterName() string {
	if mr.RequestedBy != nil {
		return mr.RequestedBy.Name()
	}
	return "Unknown"
}

func (mr *MediaRequest) validate() error {
	if mr.ID == 0 {
		return fmt.Errorf("request is missing an id")
	}
	if !mr.Type.Valid() {
		return fmt.Errorf("unexpected media type %q", mr.Type)
	}
	if mr.Status < RequestStatusPending || mr.Status > RequestStatusDeclined {
		return fmt.Errorf("unexpected request status %d", mr.Status)
	}
	if mr.CreatedAt.IsZero() {
		return fmt.Errorf("request is missing a creation time")
	}
	return nil
}

// RequestResponse is the result of creating a request
type RequestResponse struct {
	ID          int           `json:"id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	Type        MediaType     `json:"type"`
	Media       *MediaInfo    `json:"media,omitempty"`
	RequestedBy *UserInfo     `json:"requestedBy,omitempty"`
}

// RequestSummary is the flattened record produced by title enrichment,
// suitable for returning to a caller verbatim.
type RequestSummary struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Type        MediaType `json:"type"`
	Status      string    `json:"status"`
	MediaStatus string    `json:"media_status,omitempty"`
	RequestedBy string    `json:"requested_by"`
	UserID      int       `json:"user_id,omitempty"`
	RequestedAt string    `json:"requested_at"`
}

// UserRequests is the envelope returned for a single user's requests.
type UserRequests struct {
	User         string           `json:"user"`
	UserID       int              `json:"user_id"`
	RequestCount int              `json:"request_count"`
	Requests     []RequestSummary `json:"requests"`
}

// Genre is a TMDB genre record on a detail response.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SeasonInfo describes one season on a TV detail response. Season 0
// holds specials.
type SeasonInfo struct {
	SeasonNumber int    `json:"seasonNumber"`
	EpisodeCount int    `json:"episodeCount"`
	Name         string `json:"name,omitempty"`
}

// MediaSeason is the per-season availability record inside a detail
// response's mediaInfo block.
type MediaSeason struct {
	SeasonNumber int `json:"seasonNumber"`
	Status       int `json:"status"`
}

// RequestRecord is the trimmed request entry inside a detail response's
// mediaInfo block. Status stays a raw code so unrecognized values can be
// rendered as "Unknown" instead of dropped.
type RequestRecord struct {
	ID     int `json:"id"`
	Status int `json:"status"`
}

// DetailMediaInfo is the mediaInfo block on a movie or TV detail response.
type DetailMediaInfo struct {
	ID       int             `json:"id"`
	Status   int             `json:"status"`
	Requests []RequestRecord `json:"requests,omitempty"`
	Seasons  []MediaSeason   `json:"seasons,omitempty"`
}

// MovieDetails is the movie detail response, trimmed to the fields the
// adapter uses.
type MovieDetails struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Overview    string           `json:"overview,omitempty"`
	ReleaseDate string           `json:"releaseDate,omitempty"`
	VoteAverage float64          `json:"voteAverage,omitempty"`
	Genres      []Genre          `json:"genres,omitempty"`
	MediaInfo   *DetailMediaInfo `json:"mediaInfo,omitempty"`
}

// TvDetails is the TV detail response, trimmed to the fields the
// adapter uses.
type TvDetails struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview,omitempty"`
	FirstAirDate string           `json:"firstAirDate,omitempty"`
	VoteAverage  float64          `json:"voteAverage,omitempty"`
	Genres       []Genre          `json:"genres,omitempty"`
	Seasons      []SeasonInfo     `json:"seasons,omitempty"`
	MediaInfo    *DetailMediaInfo `json:"mediaInfo,omitempty"`
}

// RegularSeasons returns the seasons excluding specials (season 0).
func (d *TvDetails) RegularSeasons() []SeasonInfo {
	var out []SeasonInfo
	for _, s := range d.Seasons {
		if s.SeasonNumber > 0 {
			out = append(out, s)
		}
	}
	return out
}

// SeasonStatus returns the availability of one season, defaulting to
// unknown when the season has no mediaInfo entry.
func (d *TvDetails) SeasonStatus(seasonNumber int) MediaStatus {
	if d.MediaInfo == nil {
		return MediaStatusUnknown
	}
	for _, s := range d.MediaInfo.Seasons {
		if s.SeasonNumber == seasonNumber {
			return NormalizeMediaStatus(s.Status)
		}
	}
	return MediaStatusUnknown
}

// MediaStatusResult is the availability summary for a single title.
type MediaStatusResult struct {
	TmdbID        int         `json:"tmdb_id"`
	Title         string      `json:"title"`
	MediaType     MediaType   `json:"media_type"`
	Status        MediaStatus `json:"status"`
	StatusText    string      `json:"status_text"`
	HasRequest    bool        `json:"has_request"`
	RequestStatus string      `json:"request_status,omitempty"`
	SeasonCount   int         `json:"seasons_count,omitempty"`
}

// ServerStatus is the raw status passthrough from the Overseerr server.
type ServerStatus struct {
	Version         string `json:"version"`
	CommitTag       string `json:"commitTag,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
	CommitsBehind   int    `json:"commitsBehind,omitempty"`
}

// PageInfo contains pagination information
type PageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"pageSize"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}
