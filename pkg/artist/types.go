package artist

import "strings"

// UnknownID is the catalog ID carried by the unknown-artist sentinel.
const UnknownID = "unknown"

// Tag is a folksonomy tag attached to an artist by the metadata catalog.
type Tag struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count,omitempty" yaml:"count,omitempty"`
}

// LifeSpan is the active period of an artist. Begin and End are catalog date
// strings ("1987", "1987-06", "1987-06-17"); nil means the catalog has no value.
type LifeSpan struct {
	Begin *string `json:"begin,omitempty" yaml:"begin,omitempty"`
	End   *string `json:"end,omitempty" yaml:"end,omitempty"`
	Ended *bool   `json:"ended,omitempty" yaml:"ended,omitempty"`
}

// Info is the canonical metadata record for an artist.
type Info struct {
	ID             string   `json:"artist_id" yaml:"id"`
	Name           string   `json:"artist_name" yaml:"name"`
	OriginCountry  *string  `json:"origin_country" yaml:"origin_country,omitempty"`
	LifeSpan       LifeSpan `json:"life_span" yaml:"life_span,omitempty"`
	Disambiguation string   `json:"disambiguation" yaml:"disambiguation,omitempty"`
	Tags           []Tag    `json:"tags" yaml:"tags,omitempty"`
}

// Unknown returns the sentinel record used when the metadata catalog has no
// match for name. It is a valid filter input: every field a predicate could
// inspect is absent.
func Unknown(name string) Info {
	return Info{
		ID:   UnknownID,
		Name: name,
		Tags: []Tag{},
	}
}

// IsUnknown reports whether info is the unknown-artist sentinel.
func (i Info) IsUnknown() bool {
	return i.ID == UnknownID
}

// Key is the graph identity of an artist: the lower-cased display name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TagNames returns the tag names in catalog order.
func (i Info) TagNames() []string {
	names := make([]string, 0, len(i.Tags))
	for _, t := range i.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Coauthor is a weak reference into the artist namespace.
type Coauthor struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// Song is a track fetched for one artist along with the other credited artists.
type Song struct {
	Title            string     `json:"song_title" yaml:"title"`
	DurationMs       int        `json:"duration" yaml:"duration_ms,omitempty"`
	Coauthors        []Coauthor `json:"coauthors" yaml:"coauthors"`
	AvailableMarkets []string   `json:"available_markets" yaml:"available_markets,omitempty"`
	ISRC             *string    `json:"isrc" yaml:"isrc,omitempty"`
}

// CoauthorRank is a coauthor with the number of songs shared with the subject.
type CoauthorRank struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Recording is a discography entry from the metadata catalog.
type Recording struct {
	Title         string   `json:"song_title" yaml:"song_title"`
	MusicBrainzID string   `json:"musicbrainz_id" yaml:"musicbrainz_id"`
	ISRCs         []string `json:"isrcs,omitempty" yaml:"isrcs,omitempty"`
	ISRC          *string  `json:"isrc,omitempty" yaml:"isrc,omitempty"`
	ReleaseDate   string   `json:"release_date" yaml:"release_date"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *s, or fallback when s is nil.
func Deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
