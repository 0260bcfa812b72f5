package distance

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rail_distance/internal/geo"
	"rail_distance/internal/graph"
	"rail_distance/internal/stationname"
	"rail_distance/internal/tariff"
)

type namedPoints map[string]geo.Point

func (n namedPoints) Locate(_ context.Context, raw string) (geo.Coordinate, bool) {
	name, _ := stationname.StripCode(raw)
	p, ok := n[name]
	return geo.Coordinate{MatchedName: name, Point: p}, ok
}

func chainStations() []tariff.StationRecord {
	return []tariff.StationRecord{
		{Name: "A", Code: "100000"},
		{Name: "B", Code: "200000"},
		{Name: "C", Code: "300000"},
		{Name: "ЛЕСНАЯ", Code: "400000"},
		{Name: "ЛЕСНАЯ-2", Code: "400100"},
		{Name: "ЛЕСНОЙ ПАРК", Code: "400200"},
	}
}

func chainGraph() *graph.Graph {
	return graph.Build([][]graph.Node{
		{{Code: "100000", Name: "A"}, {Code: "200000", Name: "B"}},
		{{Code: "200000", Name: "B"}, {Code: "300000", Name: "C"}},
	})
}

func pathNames(path []graph.Node) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Name
	}
	return out
}

func TestResolveByTariff(t *testing.T) {
	reg := tariff.NewRegistry(chainStations(), []*tariff.Matrix{
		tariff.NewMatrix("m", []tariff.MatrixEntry{{From: "A", To: "C", KM: 70}}),
	})
	svc := NewService(NewCatalog(reg, chainGraph()), nil)

	res := svc.Resolve(context.Background(), "A (100000)", "300000")
	require.True(t, res.Resolved())
	assert.Equal(t, MethodTariff, res.Method)
	assert.Equal(t, 70, res.KM)
	require.NotNil(t, res.Tariff)
	assert.Equal(t, "m", res.Tariff.Matrix)
	assert.Equal(t, []Attempt{{MethodTariff, OutcomeResolved}}, res.Attempts)
}

func TestResolveGraphPathWithoutPrice(t *testing.T) {
	reg := tariff.NewRegistry(chainStations(), nil)
	svc := NewService(NewCatalog(reg, chainGraph()), nil)

	res := svc.Resolve(context.Background(), "A", "C")
	assert.False(t, res.Resolved())
	assert.Equal(t, []string{"A", "B", "C"}, pathNames(res.Path))
	assert.Zero(t, res.KM)
	assert.Equal(t, OutcomeEstimatorUnavailable, res.Outcome)
	assert.Equal(t, []Attempt{
		{MethodTariff, OutcomeNoTariffRoute},
		{MethodGraph, OutcomePathUnpriced},
		{MethodGeo, OutcomeEstimatorUnavailable},
	}, res.Attempts)
}

func TestResolveGraphPathPricedByHops(t *testing.T) {
	reg := tariff.NewRegistry(chainStations(), []*tariff.Matrix{
		tariff.NewMatrix("m", []tariff.MatrixEntry{{From: "A", To: "B", KM: 10}, {From: "C", To: "B", KM: 20}}),
	})
	svc := NewService(NewCatalog(reg, chainGraph()), nil)

	res := svc.Resolve(context.Background(), "A", "C")
	require.True(t, res.Resolved())
	assert.Equal(t, MethodGraph, res.Method)
	assert.Equal(t, 30, res.KM)
	assert.Equal(t, []string{"A", "B", "C"}, pathNames(res.Path))
}

func TestResolveGraphByGivenCodes(t *testing.T) {
	reg := tariff.NewRegistry(chainStations(), nil)
	g := graph.Build([][]graph.Node{
		{{Code: "555550", Name: "X"}, {Code: "666660", Name: "Y"}, {Code: "777770", Name: "Z"}},
	})
	svc := NewService(NewCatalog(reg, g), nil)

	res := svc.Resolve(context.Background(), "X (555550)", "777770")
	assert.False(t, res.Resolved())
	assert.Equal(t, []string{"X", "Y", "Z"}, pathNames(res.Path))
	assert.Equal(t, []Attempt{
		{MethodTariff, OutcomeStationNotFound},
		{MethodGraph, OutcomePathUnpriced},
		{MethodGeo, OutcomeEstimatorUnavailable},
	}, res.Attempts)
	assert.Equal(t, OutcomeEstimatorUnavailable, res.Outcome)

	res = svc.Resolve(context.Background(), "X", "777770")
	assert.Equal(t, OutcomeStationNotFound, res.Outcome)
	assert.Equal(t, Attempt{MethodGraph, OutcomeStationNotFound}, res.Attempts[1])
}

func TestResolveGeographicEstimate(t *testing.T) {
	reg := tariff.NewRegistry(chainStations(), nil)
	north := 500.001 / 6371 * 180 / math.Pi
	loc := namedPoints{"A": {Lat: 50, Lon: 40}, "ЛЕСНАЯ": {Lat: 50 + north, Lon: 40}}
	svc := NewService(NewCatalog(reg, nil), geo.NewEstimator(loc, 1.25, nil))

	res := svc.Resolve(context.Background(), "A", "ЛЕСНАЯ")
	require.True(t, res.Resolved())
	assert.Equal(t, MethodGeo, res.Method)
	assert.Equal(t, 625, res.KM)
	require.NotNil(t, res.Estimate)
	assert.InDelta(t, 500, res.Estimate.RawKM, 0.01)
	assert.Len(t, res.Attempts, 3)
}

func TestResolveUnknownStationSuggests(t *testing.T) {
	reg := tariff.NewRegistry(chainStations(), nil)
	svc := NewService(NewCatalog(reg, chainGraph()), geo.NewEstimator(namedPoints{}, 1.25, nil))

	res := svc.Resolve(context.Background(), "лесн", "A")
	assert.False(t, res.Resolved())
	assert.Equal(t, OutcomeStationNotFound, res.Outcome)
	assert.Nil(t, res.FromStation)
	require.NotNil(t, res.ToStation)
	assert.Equal(t, []string{"ЛЕСНАЯ", "ЛЕСНАЯ-2", "ЛЕСНОЙ ПАРК"}, res.FromSuggestions)
	assert.Empty(t, res.ToSuggestions)
}

func TestResolveWithoutRegistry(t *testing.T) {
	svc := NewService(NewCatalog(nil, nil), nil)
	res := svc.Resolve(context.Background(), "A", "B")
	assert.Equal(t, OutcomeStationNotFound, res.Outcome)
	assert.Empty(t, svc.Search("A", 5))
}

func TestRemaining(t *testing.T) {
	reg := tariff.NewRegistry([]tariff.StationRecord{
		{Name: "УГЛОВАЯ", Code: "984700", TransitPoints: []tariff.TransitPoint{{Name: "ХАБАРОВСК", LocalKM: 0}}},
		{Name: "МОСКВА", Code: "181102", TransitPoints: []tariff.TransitPoint{{Name: "МОСКВА-СОРТИРОВОЧНАЯ", LocalKM: 5}}},
	}, []*tariff.Matrix{
		tariff.NewMatrix("1", []tariff.MatrixEntry{{From: "ХАБАРОВСК", To: "МОСКВА-СОРТИРОВОЧНАЯ", KM: 9000}}),
	})
	loc := namedPoints{"ОМСК": {Lat: 55, Lon: 73.4}, "МОСКВА": {Lat: 55.75, Lon: 37.6}}
	est := geo.NewEstimator(loc, 1.25, nil)
	svc := NewService(NewCatalog(reg, nil), est)
	ctx := context.Background()

	r := svc.Remaining(ctx, "НАХОДКА", "МОСКВА (181102)", "МОСКВА")
	assert.Equal(t, Remaining{Outcome: OutcomeResolved, Method: MethodTariff}, r)

	r = svc.Remaining(ctx, "НАХОДКА", "Угловая", "Москва")
	assert.Equal(t, OutcomeResolved, r.Outcome)
	assert.Equal(t, MethodTariff, r.Method)
	assert.Equal(t, 9005, r.KM)
	assert.Equal(t, 16.0, r.ForecastDays)

	r = svc.Remaining(ctx, "НАХОДКА", "ОМСК", "МОСКВА")
	assert.Equal(t, MethodGeo, r.Method)
	assert.Equal(t, est.Leg(loc["ОМСК"], loc["МОСКВА"]), r.KM)
	assert.Greater(t, r.ForecastDays, 1.0)

	r = svc.Remaining(ctx, "НАХОДКА", "НЕИЗВЕСТНАЯ", "МОСКВА")
	assert.Equal(t, OutcomeEstimatorUnavailable, r.Outcome)

	r = svc.Remaining(ctx, "НАХОДКА", "", "МОСКВА")
	assert.Equal(t, OutcomeStationNotFound, r.Outcome)
}
