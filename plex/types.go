package plex

// LibrarySection is a Plex library section (e.g. Movies, TV Shows).
// Type is Plex's own vocabulary: "movie" or "show".
type LibrarySection struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// MediaItem is a library item normalized for callers: MediaType is
// always "movie" or "tv", never Plex's "show".
type MediaItem struct {
	Title         string  `json:"title"`
	Year          int     `json:"year,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	Summary       string  `json:"summary,omitempty"`
	ContentRating string  `json:"content_rating,omitempty"`
	MediaType     string  `json:"media_type"`
}

// ServerIdentity is the trimmed /identity response.
type ServerIdentity struct {
	Version   string `json:"version"`
	MachineID string `json:"machine_id"`
}

// Wire envelopes. Plex wraps everything in a MediaContainer.

type identityResponse struct {
	MediaContainer struct {
		Version           string `json:"version"`
		MachineIdentifier string `json:"machineIdentifier"`
	} `json:"MediaContainer"`
}

type sectionsResponse struct {
	MediaContainer struct {
		Directory []LibrarySection `json:"Directory"`
	} `json:"MediaContainer"`
}

type libraryResponse struct {
	MediaContainer struct {
		Metadata []struct {
			Title         string  `json:"title"`
			Year          int     `json:"year"`
			Rating        float64 `json:"rating"`
			Summary       string  `json:"summary"`
			ContentRating string  `json:"contentRating"`
		} `json:"Metadata"`
	} `json:"MediaContainer"`
}
