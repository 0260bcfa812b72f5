package distance

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rail_distance/internal/geo"
	"rail_distance/internal/metrics"
	"rail_distance/internal/stationname"
	"rail_distance/internal/stations"
	"rail_distance/internal/tariff"
)

// DefaultSuggestions is how many fuzzy names are offered for an unknown station.
const DefaultSuggestions = 5

// kmPerDay is the planning speed of a container train.
const kmPerDay = 600

// Attempt records one step of the fallback chain.
type Attempt struct {
	Method  Method  `json:"method"`
	Outcome Outcome `json:"outcome"`
}

// Resolution is the answer to a distance query. When nothing resolved,
// Outcome is the reason to show the user; an unknown station takes
// precedence over the last strategy's failure.
type Resolution struct {
	Result
	From            string                `json:"from"`
	To              string                `json:"to"`
	FromStation     *tariff.StationRecord `json:"from_station,omitempty"`
	ToStation       *tariff.StationRecord `json:"to_station,omitempty"`
	FromSuggestions []string              `json:"from_suggestions,omitempty"`
	ToSuggestions   []string              `json:"to_suggestions,omitempty"`
	Attempts        []Attempt             `json:"attempts"`
}

// Remaining is the distance left on a trip.
type Remaining struct {
	KM           int     `json:"km"`
	Method       Method  `json:"method,omitempty"`
	Outcome      Outcome `json:"outcome"`
	ForecastDays float64 `json:"forecast_days"`
}

// Service answers distance queries against the current catalog.
type Service struct {
	catalog    *Catalog
	estimator  *geo.Estimator
	strategies []Strategy
}

// NewService returns a service running tariff, graph and geographic
// strategies in that order. A nil estimator disables the last one.
func NewService(catalog *Catalog, estimator *geo.Estimator) *Service {
	return NewServiceWithStrategies(catalog, estimator,
		TariffStrategy{}, GraphStrategy{}, GeoStrategy{Estimator: estimator})
}

// NewServiceWithStrategies returns a service with a custom chain.
func NewServiceWithStrategies(catalog *Catalog, estimator *geo.Estimator, chain ...Strategy) *Service {
	return &Service{catalog: catalog, estimator: estimator, strategies: chain}
}

// Catalog returns the catalog the service reads.
func (s *Service) Catalog() *Catalog { return s.catalog }

func (s *Service) resolver() (*stations.Resolver, *tariff.Registry) {
	reg := s.catalog.Registry()
	if reg == nil {
		reg = tariff.NewRegistry(nil, nil)
	}
	return stations.NewResolver(reg), reg
}

// Station resolves free-text input to a registry record.
func (s *Service) Station(input string) (tariff.StationRecord, bool) {
	r, _ := s.resolver()
	return r.Resolve(input)
}

// Search returns registry names containing query.
func (s *Service) Search(query string, limit int) []string {
	r, _ := s.resolver()
	return r.Search(query, limit)
}

// Resolve runs the fallback chain for from and to and returns the first
// resolved result. Failures are values, never errors.
func (s *Service) Resolve(ctx context.Context, from, to string) Resolution {
	start := time.Now()
	resolver, reg := s.resolver()

	q := Query{
		From:     strings.TrimSpace(from),
		To:       strings.TrimSpace(to),
		Registry: reg,
		Graph:    s.catalog.Graph(),
	}
	res := Resolution{From: q.From, To: q.To}
	if rec, ok := resolver.Resolve(q.From); ok {
		q.FromStation = &rec
	} else {
		res.FromSuggestions = resolver.Search(q.From, DefaultSuggestions)
	}
	if rec, ok := resolver.Resolve(q.To); ok {
		q.ToStation = &rec
	} else {
		res.ToSuggestions = resolver.Search(q.To, DefaultSuggestions)
	}
	res.FromStation, res.ToStation = q.FromStation, q.ToStation

	log := logrus.WithFields(logrus.Fields{"from": q.From, "to": q.To})
	var last Result
	for _, st := range s.strategies {
		if err := ctx.Err(); err != nil {
			break
		}
		r := st.Resolve(ctx, q)
		res.Attempts = append(res.Attempts, Attempt{Method: st.Method(), Outcome: r.Outcome})
		if len(r.Path) > 0 && len(res.Path) == 0 {
			res.Path = r.Path
		}
		if r.Resolved() {
			path := res.Path
			res.Result = r
			if len(res.Result.Path) == 0 {
				res.Result.Path = path
			}
			log.WithFields(logrus.Fields{"method": r.Method, "km": r.KM}).Info("distance: resolved")
			metrics.ObserveResolution(string(r.Method), string(r.Outcome), time.Since(start))
			return res
		}
		log.WithFields(logrus.Fields{"method": st.Method(), "outcome": r.Outcome}).Info("distance: strategy unavailable, falling back")
		last = r
	}

	res.Result = Result{Outcome: last.Outcome, Path: res.Path}
	switch {
	case endpointCode(q.From, q.FromStation) == "" || endpointCode(q.To, q.ToStation) == "":
		res.Outcome = OutcomeStationNotFound
	case res.Outcome == "":
		res.Outcome = OutcomeEstimatorUnavailable
	}
	log.WithField("outcome", res.Outcome).Info("distance: no distance resolvable")
	metrics.ObserveResolution("", string(res.Outcome), time.Since(start))
	return res
}

// Remaining estimates the distance still to go for a shipment from origin to
// destination currently at current: the tariff distance from current when
// both stations are priced, otherwise the geographic estimate with hub
// corridors.
func (s *Service) Remaining(ctx context.Context, origin, current, destination string) Remaining {
	start := time.Now()
	log := logrus.WithFields(logrus.Fields{"origin": origin, "current": current, "destination": destination})

	if strings.TrimSpace(current) == "" || strings.TrimSpace(destination) == "" {
		return Remaining{Outcome: OutcomeStationNotFound}
	}
	if stationname.CleanName(current) == stationname.CleanName(destination) {
		return Remaining{Outcome: OutcomeResolved, Method: MethodTariff}
	}

	resolver, reg := s.resolver()
	a, okA := resolver.Resolve(current)
	b, okB := resolver.Resolve(destination)
	if okA && okB {
		if res, ok := NewEngine(reg).Compute(a, b); ok {
			log.WithField("km", res.TotalKM).Info("distance: remaining by tariff")
			metrics.ObserveResolution(string(MethodTariff), string(OutcomeResolved), time.Since(start))
			return remaining(res.TotalKM, MethodTariff)
		}
	}
	log.Info("distance: remaining not in tariff, estimating from coordinates")

	if s.estimator == nil {
		return Remaining{Outcome: OutcomeEstimatorUnavailable}
	}
	km, ok := s.estimator.Remaining(ctx, origin, current, destination)
	if !ok {
		metrics.ObserveResolution("", string(OutcomeEstimatorUnavailable), time.Since(start))
		return Remaining{Outcome: OutcomeEstimatorUnavailable}
	}
	metrics.ObserveResolution(string(MethodGeo), string(OutcomeResolved), time.Since(start))
	return remaining(km, MethodGeo)
}

func remaining(km int, m Method) Remaining {
	r := Remaining{KM: km, Method: m, Outcome: OutcomeResolved}
	if km > 0 {
		r.ForecastDays = math.Round((float64(km)/kmPerDay+1)*10) / 10
	}
	return r
}
