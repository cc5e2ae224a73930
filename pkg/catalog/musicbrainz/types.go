package musicbrainz

// MusicBrainz ws/2 JSON response types. Only fields we read are declared.

type searchResponse struct {
	Count   int            `json:"count"`
	Artists []searchArtist `json:"artists"`
}

type searchArtist struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Country        string   `json:"country"`
	Disambiguation string   `json:"disambiguation"`
	LifeSpan       lifeSpan `json:"life-span"`
	Tags           []tag    `json:"tags"`
}

type lifeSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Ended *bool  `json:"ended"`
}

type tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type artistDetail struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Area *area  `json:"area"`
	Tags []tag  `json:"tags"`
}

type recording struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	ISRCs []string `json:"isrcs"`
}

type recordingPage struct {
	Count      int         `json:"recording-count"`
	Offset     int         `json:"recording-offset"`
	Recordings []recording `json:"recordings"`
}

type release struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Date  string   `json:"date"`
	Media []medium `json:"media"`
}

type medium struct {
	Tracks []track `json:"tracks"`
}

type track struct {
	Title     string    `json:"title"`
	Recording recording `json:"recording"`
}

type releasePage struct {
	Count    int       `json:"release-count"`
	Offset   int       `json:"release-offset"`
	Releases []release `json:"releases"`
}
