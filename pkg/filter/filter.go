// Package filter decides which artists are admitted into a collaboration graph.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rmax-ai/collabgraph/pkg/artist"
)

// Kind identifies a predicate variant.
type Kind string

const (
	KindGenre        Kind = "genre"
	KindCountry      Kind = "country"
	KindStartedAfter Kind = "started_after"
	KindCareerEnded  Kind = "ended"
)

// Descriptor describes a predicate kind to presentation layers.
type Descriptor struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Placeholder string   `json:"placeholder"`
	Options     []string `json:"options,omitempty"`
}

// Descriptors lists the predicate kinds in display order.
func Descriptors() []Descriptor {
	return []Descriptor{
		{Kind: KindGenre, Title: "Genre", Placeholder: "eg. rap"},
		{Kind: KindCountry, Title: "Country", Placeholder: "eg. United States"},
		{Kind: KindStartedAfter, Title: "Artist born after / Band created after", Placeholder: "eg. 1990"},
		{Kind: KindCareerEnded, Title: "Career ended", Placeholder: "eg. true/false", Options: []string{"true", "false"}},
	}
}

// Predicate is one filter. A nil Value makes it inactive.
type Predicate struct {
	Kind  Kind    `json:"kind" yaml:"kind"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
}

// New returns a predicate of kind k with value v. An empty v yields an
// inactive predicate.
func New(k Kind, v string) Predicate {
	if strings.TrimSpace(v) == "" {
		return Predicate{Kind: k}
	}
	return Predicate{Kind: k, Value: &v}
}

// Active reports whether the predicate participates in evaluation. Nil,
// empty and whitespace-only values are inactive.
func (p Predicate) Active() bool {
	return p.Value != nil && strings.TrimSpace(*p.Value) != ""
}

// Title returns the human-readable name of the predicate kind.
func (p Predicate) Title() string {
	for _, d := range Descriptors() {
		if d.Kind == p.Kind {
			return d.Title
		}
	}
	return string(p.Kind)
}

// Evaluate tests info against the predicate. Missing or malformed data on
// either side evaluates to false. Inactive predicates are vacuously true.
func (p Predicate) Evaluate(info artist.Info) bool {
	if !p.Active() {
		return true
	}
	v := *p.Value

	switch p.Kind {
	case KindGenre:
		return hasTag(info, v)
	case KindCountry:
		return sameCountry(info, v)
	case KindStartedAfter:
		return startedAfter(info, v)
	case KindCareerEnded:
		return careerEnded(info, v)
	default:
		return false
	}
}

func (p Predicate) String() string {
	if !p.Active() {
		return fmt.Sprintf("%s=*", p.Kind)
	}
	return fmt.Sprintf("%s=%s", p.Kind, *p.Value)
}

func hasTag(info artist.Info, v string) bool {
	for _, t := range info.Tags {
		if t.Name == v {
			return true
		}
	}
	return false
}

func sameCountry(info artist.Info, v string) bool {
	if info.OriginCountry == nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(v)) == strings.ToLower(strings.TrimSpace(*info.OriginCountry))
}

func startedAfter(info artist.Info, v string) bool {
	v = strings.TrimSpace(v)
	if !isNumeric(v) {
		return false
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	if info.LifeSpan.Begin == nil {
		return false
	}
	begin, ok := ParseDate(*info.LifeSpan.Begin)
	if !ok {
		return false
	}
	cutoff := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return begin.After(cutoff)
}

func careerEnded(info artist.Info, v string) bool {
	if info.LifeSpan.Ended == nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(v)) == strconv.FormatBool(*info.LifeSpan.Ended)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ParseDate parses a catalog partial date. Missing month and day default to
// the first of the period.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
