package distance

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"rail_distance/internal/geo"
	"rail_distance/internal/graph"
	"rail_distance/internal/stationname"
	"rail_distance/internal/tariff"
)

// Method names the strategy that produced a distance.
type Method string

const (
	MethodTariff Method = "tariff"
	MethodGraph  Method = "graph"
	MethodGeo    Method = "geo"
)

// Outcome tags a strategy result.
type Outcome string

const (
	OutcomeResolved             Outcome = "resolved"
	OutcomeStationNotFound      Outcome = "station_not_found"
	OutcomeNoTariffRoute        Outcome = "no_tariff_route"
	OutcomeNoGraphPath          Outcome = "no_graph_path"
	OutcomePathUnpriced         Outcome = "path_unpriced"
	OutcomeEstimatorUnavailable Outcome = "estimator_unavailable"
)

// Query is one distance question with the stations already resolved against
// a single registry snapshot. FromStation/ToStation are nil when the input did
// not resolve.
type Query struct {
	From        string
	To          string
	FromStation *tariff.StationRecord
	ToStation   *tariff.StationRecord
	Registry    *tariff.Registry
	Graph       *graph.Graph
}

func (q Query) resolved() bool {
	return q.FromStation != nil && q.ToStation != nil
}

// Result is what a strategy returns: a distance when Outcome is
// OutcomeResolved, otherwise the reason it could not produce one. Path may be
// set without a distance.
type Result struct {
	Outcome  Outcome       `json:"outcome"`
	Method   Method        `json:"method,omitempty"`
	KM       int           `json:"km"`
	Tariff   *TariffResult `json:"tariff,omitempty"`
	Estimate *geo.Estimate `json:"estimate,omitempty"`
	Path     []graph.Node  `json:"path,omitempty"`
}

// Resolved reports whether the result carries a distance.
func (r Result) Resolved() bool { return r.Outcome == OutcomeResolved }

func unavailable(o Outcome) Result { return Result{Outcome: o} }

// Strategy is one link of the fallback chain.
type Strategy interface {
	Method() Method
	Resolve(ctx context.Context, q Query) Result
}

// TariffStrategy prices the pair through the transit-point matrices.
type TariffStrategy struct{}

func (TariffStrategy) Method() Method { return MethodTariff }

func (TariffStrategy) Resolve(_ context.Context, q Query) Result {
	if !q.resolved() {
		return unavailable(OutcomeStationNotFound)
	}
	if q.Registry == nil {
		return unavailable(OutcomeNoTariffRoute)
	}
	res, ok := NewEngine(q.Registry).Compute(*q.FromStation, *q.ToStation)
	if !ok {
		logrus.WithFields(logrus.Fields{"from": q.FromStation.Name, "to": q.ToStation.Name}).
			Info("distance: no transit-point pair in tariff matrices")
		return unavailable(OutcomeNoTariffRoute)
	}
	return Result{Outcome: OutcomeResolved, Method: MethodTariff, KM: res.TotalKM, Tariff: &res}
}

// GraphStrategy finds a station chain in the adjacency graph. The chain has a
// distance only when every hop can be priced by the tariff engine; otherwise
// it is returned for information.
type GraphStrategy struct{}

func (GraphStrategy) Method() Method { return MethodGraph }

func (GraphStrategy) Resolve(_ context.Context, q Query) Result {
	from, to := endpointCode(q.From, q.FromStation), endpointCode(q.To, q.ToStation)
	if from == "" || to == "" {
		return unavailable(OutcomeStationNotFound)
	}
	if q.Graph == nil {
		return unavailable(OutcomeNoGraphPath)
	}
	path := q.Graph.ShortestPath(from, to)
	if len(path) == 0 {
		logrus.WithFields(logrus.Fields{"from": from, "to": to}).
			Info("distance: no path in adjacency graph")
		return unavailable(OutcomeNoGraphPath)
	}
	if km, ok := priceHops(q.Registry, path); ok {
		return Result{Outcome: OutcomeResolved, Method: MethodGraph, KM: km, Path: path}
	}
	return Result{Outcome: OutcomePathUnpriced, Method: MethodGraph, Path: path}
}

// endpointCode is the registry code of a resolved station, otherwise the code
// given with the input as "NAME (code)" or as a bare code.
func endpointCode(input string, rec *tariff.StationRecord) string {
	if rec != nil {
		return rec.Code
	}
	name, code := stationname.StripCode(input)
	if code != "" {
		return code
	}
	if stationname.IsCode(name) {
		return name
	}
	return ""
}

func priceHops(reg *tariff.Registry, path []graph.Node) (int, bool) {
	if reg == nil || len(path) < 2 {
		return 0, false
	}
	engine := NewEngine(reg)
	total := 0
	for i := 1; i < len(path); i++ {
		a, okA := reg.ByCode(path[i-1].Code)
		b, okB := reg.ByCode(path[i].Code)
		if !okA || !okB {
			return 0, false
		}
		hop, ok := engine.Compute(a, b)
		if !ok {
			return 0, false
		}
		total += hop.TotalKM
	}
	return total, true
}

// GeoStrategy estimates the distance from station coordinates.
type GeoStrategy struct {
	Estimator *geo.Estimator
}

func (GeoStrategy) Method() Method { return MethodGeo }

func (s GeoStrategy) Resolve(ctx context.Context, q Query) Result {
	if s.Estimator == nil {
		return unavailable(OutcomeEstimatorUnavailable)
	}
	est, ok := s.Estimator.Estimate(ctx, locatorKey(q.From, q.FromStation), locatorKey(q.To, q.ToStation))
	if !ok {
		return unavailable(OutcomeEstimatorUnavailable)
	}
	return Result{Outcome: OutcomeResolved, Method: MethodGeo, KM: est.KM, Estimate: &est}
}

// locatorKey prefers the registry spelling with its code so the coordinate
// cache can be hit by code.
func locatorKey(input string, rec *tariff.StationRecord) string {
	if rec == nil {
		return input
	}
	return fmt.Sprintf("%s (%s)", rec.Name, rec.Code)
}
