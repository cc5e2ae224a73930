package spotify

type searchResponse struct {
	Artists struct {
		Items []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
	} `json:"artists"`
}

type albumPage struct {
	Items []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"items"`
	Next string `json:"next"`
}

type simpleArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type simpleTrack struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	DurationMs       int            `json:"duration_ms"`
	Artists          []simpleArtist `json:"artists"`
	AvailableMarkets []string       `json:"available_markets"`
}

type trackPage struct {
	Items []simpleTrack `json:"items"`
	Next  string        `json:"next"`
}

type fullTrack struct {
	ID          string `json:"id"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
}

type tracksResponse struct {
	Tracks []*fullTrack `json:"tracks"`
}
