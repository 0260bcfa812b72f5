package tariff

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"rail_distance/internal/stationname"
)

// Registry is the loaded station registry plus the distance matrices.
// It is never mutated after construction; reloading builds a new Registry.
type Registry struct {
	stations []StationRecord
	byCode   map[string]int
	byCode5  map[string]int
	byName   map[string][]int
	byNorm   map[string][]int
	matrices []*Matrix
}

// Stats describes what a Registry holds.
type Stats struct {
	Stations      int `json:"stations"`
	Matrices      int `json:"matrices"`
	MatrixEntries int `json:"matrix_entries"`
}

// NewRegistry indexes stations and keeps matrices in the given order, which is
// the order MatrixDistance searches them in. Duplicate codes keep the first record.
func NewRegistry(stations []StationRecord, matrices []*Matrix) *Registry {
	r := &Registry{
		byCode:  make(map[string]int, len(stations)),
		byCode5: make(map[string]int, len(stations)),
		byName:  make(map[string][]int, len(stations)),
		byNorm:  make(map[string][]int, len(stations)),
	}
	for _, s := range stations {
		s.Name = strings.TrimSpace(s.Name)
		s.Code = strings.TrimSpace(s.Code)
		if s.Name == "" || s.Code == "" {
			continue
		}
		if _, dup := r.byCode[s.Code]; dup {
			continue
		}
		idx := len(r.stations)
		r.stations = append(r.stations, s)
		r.byCode[s.Code] = idx
		if len(s.Code) == 6 {
			if _, dup := r.byCode5[s.Code[:5]]; !dup {
				r.byCode5[s.Code[:5]] = idx
			}
		}
		lower := strings.ToLower(s.Name)
		r.byName[lower] = append(r.byName[lower], idx)
		norm := stationname.Normalize(s.Name)
		r.byNorm[norm] = append(r.byNorm[norm], idx)
	}
	for _, m := range matrices {
		if m != nil {
			r.matrices = append(r.matrices, m)
		}
	}
	return r
}

// Load reads both tables from src. Errors from the source are returned as is
// (see ErrSourceMissing, ErrSourceUnreadable) so that bootstrap can tell a
// failed load from an empty one.
func Load(ctx context.Context, src Source) (*Registry, error) {
	stations, err := src.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load station registry: %w", err)
	}
	matrices, err := src.Matrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("load distance matrices: %w", err)
	}
	reg := NewRegistry(stations, matrices)
	st := reg.Stats()
	logrus.WithFields(logrus.Fields{
		"stations":       st.Stations,
		"matrices":       st.Matrices,
		"matrix_entries": st.MatrixEntries,
	}).Info("tariff: registry loaded")
	return reg, nil
}

// Stats reports the size of the registry.
func (r *Registry) Stats() Stats {
	st := Stats{Stations: len(r.stations), Matrices: len(r.matrices)}
	for _, m := range r.matrices {
		st.MatrixEntries += m.Len()
	}
	return st
}

// Stations returns the records in registry order.
func (r *Registry) Stations() []StationRecord {
	out := make([]StationRecord, len(r.stations))
	copy(out, r.stations)
	return out
}

// Matrices returns the matrices in search order.
func (r *Registry) Matrices() []*Matrix {
	out := make([]*Matrix, len(r.matrices))
	copy(out, r.matrices)
	return out
}

// ByCode finds a station by its 6-digit code, or by the 5-digit form that
// omits the check digit.
func (r *Registry) ByCode(code string) (StationRecord, bool) {
	code = strings.TrimSpace(code)
	if idx, ok := r.byCode[code]; ok {
		return r.stations[idx], true
	}
	switch len(code) {
	case 6:
		if idx, ok := r.byCode[code[:5]]; ok {
			return r.stations[idx], true
		}
		if idx, ok := r.byCode5[code[:5]]; ok {
			return r.stations[idx], true
		}
	case 5:
		if idx, ok := r.byCode5[code]; ok {
			return r.stations[idx], true
		}
	}
	return StationRecord{}, false
}

// ByName returns records whose trimmed name equals name ignoring case.
func (r *Registry) ByName(name string) []StationRecord {
	return r.collect(r.byName[strings.ToLower(strings.TrimSpace(name))])
}

// ByNormalized returns records whose name normalizes like name.
func (r *Registry) ByNormalized(name string) []StationRecord {
	norm := stationname.Normalize(name)
	if norm == "" {
		return nil
	}
	return r.collect(r.byNorm[norm])
}

func (r *Registry) collect(idx []int) []StationRecord {
	if len(idx) == 0 {
		return nil
	}
	out := make([]StationRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.stations[i])
	}
	return out
}

// MatrixDistance looks a transit-point pair up in every matrix in load order,
// trying both orientations; the first hit wins. Two names that normalize the
// same are 0 km apart.
func (r *Registry) MatrixDistance(a, b string) (km int, matrix string, ok bool) {
	if stationname.Equal(a, b) {
		return 0, "", true
	}
	for _, m := range r.matrices {
		if km, ok := m.Distance(a, b); ok {
			return km, m.Name, true
		}
	}
	return 0, "", false
}
