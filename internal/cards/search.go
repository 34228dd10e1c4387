package cards

import (
	"strings"

	"golang.org/x/text/cases"
)

// Query filters catalog or collection entries.
type Query struct {
	Name    string
	Faction Faction
	Rarity  int
	AltOnly bool
}

// Match reports whether meta satisfies every set field of q. Name matching
// is a case-folded substring test, so "adderall" finds "ADDERALL® Prescription".
func (q Query) Match(meta Metadata) bool {
	if q.Faction != 0 && meta.Faction != q.Faction {
		return false
	}
	if q.Rarity != 0 && meta.Rarity != q.Rarity {
		return false
	}
	if q.AltOnly && !meta.Alt {
		return false
	}
	needle := strings.TrimSpace(q.Name)
	if needle == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(meta.Name), fold.String(needle))
}

// Filter returns the entries of all that match q, preserving order.
func Filter(all []Metadata, q Query) []Metadata {
	var out []Metadata
	for _, meta := range all {
		if q.Match(meta) {
			out = append(out, meta)
		}
	}
	return out
}

// ParseFaction accepts a faction code, number, or display name.
func ParseFaction(value string) (Faction, bool) {
	fold := cases.Fold()
	key := fold.String(strings.TrimSpace(value))
	for _, f := range []Faction{FakeTech, BumLegion2099, Femacube} {
		if key == f.Code() || key == fold.String(f.Name()) || key == string(rune('0'+int(f))) {
			return f, true
		}
	}
	return 0, false
}
