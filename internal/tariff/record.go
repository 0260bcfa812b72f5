// Package tariff loads the tariff book tables (station registry "2-РП" and the
// transit-point distance matrices "3-*") into immutable in-memory structures.
package tariff

import (
	"regexp"
	"strings"

	"rail_distance/internal/stationname"
)

// TransitPoint is a pricing point listed for a station with the local
// distance between the station and that point.
type TransitPoint struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	LocalKM int    `json:"local_km"`
}

// StationRecord is one row of the station registry.
type StationRecord struct {
	Name          string         `json:"name"`
	Code          string         `json:"code"`
	Railway       string         `json:"railway"`
	Operations    string         `json:"operations"`
	TransitPoints []TransitPoint `json:"transit_points"`
}

// IsTransitPointStation reports whether the registry marks the station itself
// as a transit point ("ТП") in its operations column.
func (s StationRecord) IsTransitPointStation() bool {
	return strings.Contains(strings.ToUpper(s.Operations), "ТП")
}

// MatrixEntry is a distance between two transit points.
type MatrixEntry struct {
	From string `json:"from"`
	To   string `json:"to"`
	KM   int    `json:"km"`
}

type pairKey struct{ a, b string }

var bracketRe = regexp.MustCompile(`\s*\([^)]*\)`)

// Matrix is one named distance matrix. Lookups are symmetric.
type Matrix struct {
	Name    string
	entries []MatrixEntry
	exact   map[pairKey]int
	loose   map[pairKey]int
}

// NewMatrix indexes entries, dropping non-positive distances and adding the
// reverse direction of every pair. The first occurrence of a pair wins.
func NewMatrix(name string, entries []MatrixEntry) *Matrix {
	m := &Matrix{
		Name:  name,
		exact: make(map[pairKey]int, len(entries)*2),
		loose: make(map[pairKey]int, len(entries)*2),
	}
	for _, e := range entries {
		m.add(e)
	}
	for _, e := range entries {
		m.add(MatrixEntry{From: e.To, To: e.From, KM: e.KM})
	}
	return m
}

func (m *Matrix) add(e MatrixEntry) {
	e.From = strings.TrimSpace(e.From)
	e.To = strings.TrimSpace(e.To)
	if e.KM <= 0 || e.From == "" || e.To == "" {
		return
	}
	key := pairKey{stationname.Normalize(e.From), stationname.Normalize(e.To)}
	if _, dup := m.exact[key]; dup {
		return
	}
	m.exact[key] = e.KM
	m.entries = append(m.entries, e)

	lk := pairKey{looseKey(e.From), looseKey(e.To)}
	if _, dup := m.loose[lk]; !dup {
		m.loose[lk] = e.KM
	}
}

// Distance looks up a pair in both orientations. Names are compared after
// Normalize; bracketed annotations are ignored as a second attempt.
func (m *Matrix) Distance(a, b string) (int, bool) {
	na, nb := stationname.Normalize(a), stationname.Normalize(b)
	if km, ok := m.exact[pairKey{na, nb}]; ok {
		return km, true
	}
	if km, ok := m.exact[pairKey{nb, na}]; ok {
		return km, true
	}
	la, lb := looseKey(a), looseKey(b)
	if km, ok := m.loose[pairKey{la, lb}]; ok {
		return km, true
	}
	if km, ok := m.loose[pairKey{lb, la}]; ok {
		return km, true
	}
	return 0, false
}

// Entries returns the indexed entries, synthesized reverse pairs included.
func (m *Matrix) Entries() []MatrixEntry {
	out := make([]MatrixEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len is the number of directed pairs in the matrix.
func (m *Matrix) Len() int {
	return len(m.entries)
}

func looseKey(name string) string {
	return stationname.Normalize(bracketRe.ReplaceAllString(name, ""))
}
