package filter

import (
	"fmt"
	"strings"

	"github.com/rmax-ai/collabgraph/pkg/artist"
)

// Set is a conjunction of predicates.
type Set []Predicate

// Active returns the predicates that participate in evaluation.
func (s Set) Active() Set {
	active := make(Set, 0, len(s))
	for _, p := range s {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active
}

// Evaluate returns true iff every active predicate passes. An empty set is
// vacuously true.
func (s Set) Evaluate(info artist.Info) bool {
	for _, p := range s.Active() {
		if !p.Evaluate(info) {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	active := s.Active()
	if len(active) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(active))
	for _, p := range active {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ",")
}

// FromValues builds a set from kind -> value pairs. Empty values are
// inactive; unknown kinds are an error.
func FromValues(values map[string]string) (Set, error) {
	set := make(Set, 0, len(values))
	for _, d := range Descriptors() {
		v, ok := values[string(d.Kind)]
		if !ok {
			continue
		}
		set = append(set, New(d.Kind, v))
	}
	for k := range values {
		if !knownKind(Kind(k)) {
			return nil, fmt.Errorf("unknown filter kind %q", k)
		}
	}
	return set, nil
}

// Parse builds a set from "kind=value" expressions.
func Parse(exprs []string) (Set, error) {
	values := make(map[string]string, len(exprs))
	for _, e := range exprs {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q: expected kind=value", e)
		}
		values[strings.TrimSpace(k)] = v
	}
	return FromValues(values)
}

func knownKind(k Kind) bool {
	for _, d := range Descriptors() {
		if d.Kind == k {
			return true
		}
	}
	return false
}
