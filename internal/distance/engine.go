// Package distance computes tariff distances between stations and runs the
// fallback chain (tariff, adjacency graph, geographic estimate) behind the
// public distance queries.
package distance

import (
	"rail_distance/internal/stationname"
	"rail_distance/internal/tariff"
)

// MatrixLookup finds the distance between two transit points.
type MatrixLookup interface {
	MatrixDistance(a, b string) (km int, matrix string, ok bool)
}

// TariffResult is a tariff distance with the transit-point decomposition it
// was priced through: TotalKM = FromLocalKM + TransitKM + ToLocalKM.
type TariffResult struct {
	FromLocalKM int    `json:"from_local_km"`
	FromPoint   string `json:"from_point"`
	TransitKM   int    `json:"transit_km"`
	ToPoint     string `json:"to_point"`
	ToLocalKM   int    `json:"to_local_km"`
	Matrix      string `json:"matrix,omitempty"`
	TotalKM     int    `json:"total_km"`
	SameStation bool   `json:"same_station,omitempty"`
}

// Engine prices station pairs through their transit points.
type Engine struct {
	matrices MatrixLookup
}

// NewEngine returns an engine over the given matrices.
func NewEngine(matrices MatrixLookup) *Engine {
	return &Engine{matrices: matrices}
}

// EffectiveTransitPoints is the set of transit points a station is priced
// through. A station listing itself at 0 km is a pricing point and uses only
// that entry; otherwise every listed point is used; a station with none acts
// as its own transit point at 0 km.
//
// The self-reference rule comes from observed tariff data, not from the
// tariff book text, and should be checked against it.
func EffectiveTransitPoints(s tariff.StationRecord) []tariff.TransitPoint {
	for _, tp := range s.TransitPoints {
		if tp.LocalKM == 0 && (stationname.Equal(tp.Name, s.Name) || (tp.Code != "" && tp.Code == s.Code)) {
			return []tariff.TransitPoint{tp}
		}
	}
	if len(s.TransitPoints) > 0 {
		out := make([]tariff.TransitPoint, len(s.TransitPoints))
		copy(out, s.TransitPoints)
		return out
	}
	return []tariff.TransitPoint{{Code: s.Code, Name: s.Name, LocalKM: 0}}
}

// Compute returns the shortest tariff distance between a and b over every
// combination of their effective transit points. ok is false when no
// combination is found in any matrix.
func (e *Engine) Compute(a, b tariff.StationRecord) (TariffResult, bool) {
	if stationname.Equal(a.Name, b.Name) {
		return TariffResult{FromPoint: a.Name, ToPoint: b.Name, SameStation: true}, true
	}

	var (
		best  TariffResult
		found bool
	)
	for _, tpA := range EffectiveTransitPoints(a) {
		for _, tpB := range EffectiveTransitPoints(b) {
			km, matrix, ok := e.matrices.MatrixDistance(tpA.Name, tpB.Name)
			if !ok {
				continue
			}
			total := tpA.LocalKM + km + tpB.LocalKM
			if found && total >= best.TotalKM {
				continue
			}
			best = TariffResult{
				FromLocalKM: tpA.LocalKM,
				FromPoint:   tpA.Name,
				TransitKM:   km,
				ToPoint:     tpB.Name,
				ToLocalKM:   tpB.LocalKM,
				Matrix:      matrix,
				TotalKM:     total,
			}
			found = true
		}
	}
	return best, found
}
