package geo

import (
	"context"

	"github.com/sirupsen/logrus"

	"rail_distance/internal/stationname"
)

// PointLocator resolves a station name to coordinates.
type PointLocator interface {
	Locate(ctx context.Context, name string) (Coordinate, bool)
}

// Estimate is a geographic distance between two located stations.
type Estimate struct {
	KM            int        `json:"km"`
	RawKM         float64    `json:"raw_km"`
	WindingFactor float64    `json:"winding_factor"`
	From          Coordinate `json:"from"`
	To            Coordinate `json:"to"`
}

// Estimator turns great-circle distances into rail distance estimates.
type Estimator struct {
	locator   PointLocator
	winding   float64
	corridors *Corridors
}

// NewEstimator returns an estimator. A winding factor not above 1 is replaced
// by DefaultWindingFactor so estimates never undercut the straight line.
func NewEstimator(locator PointLocator, winding float64, corridors *Corridors) *Estimator {
	if winding <= 1 {
		winding = DefaultWindingFactor
	}
	return &Estimator{locator: locator, winding: winding, corridors: corridors}
}

// WindingFactor is the multiplier applied to great-circle distances.
func (e *Estimator) WindingFactor() float64 { return e.winding }

// Leg is the corrected distance between two points, truncated to whole km.
func (e *Estimator) Leg(a, b Point) int {
	return int(Haversine(a, b) * e.winding)
}

// Estimate locates both stations and returns the corrected distance.
func (e *Estimator) Estimate(ctx context.Context, from, to string) (Estimate, bool) {
	a, ok := e.locator.Locate(ctx, from)
	if !ok {
		logrus.WithField("station", from).Info("geo: no coordinates for origin")
		return Estimate{}, false
	}
	b, ok := e.locator.Locate(ctx, to)
	if !ok {
		logrus.WithField("station", to).Info("geo: no coordinates for destination")
		return Estimate{}, false
	}
	raw := Haversine(a.Point, b.Point)
	return Estimate{
		KM:            int(raw * e.winding),
		RawKM:         raw,
		WindingFactor: e.winding,
		From:          a,
		To:            b,
	}, true
}

// Remaining estimates the distance still to cover from current to
// destination on a trip that started at origin. For hub destinations with a
// configured corridor the legs between the corridor stations are summed from
// the current station onward; otherwise a single corrected leg is used.
func (e *Estimator) Remaining(ctx context.Context, origin, current, destination string) (int, bool) {
	if stationname.CleanName(current) == stationname.CleanName(destination) {
		return 0, true
	}

	if waypoints, ok := e.corridors.Waypoints(origin, destination); ok {
		cur := stationname.CleanName(current)
		for i, w := range waypoints {
			if w != cur {
				continue
			}
			if km, ok := e.alongCorridor(ctx, waypoints[i:]); ok {
				return km, true
			}
			break
		}
	}

	est, ok := e.Estimate(ctx, current, destination)
	if !ok {
		return 0, false
	}
	return est.KM, true
}

func (e *Estimator) alongCorridor(ctx context.Context, waypoints []string) (int, bool) {
	points := make([]Point, 0, len(waypoints))
	for _, w := range waypoints {
		c, ok := e.locator.Locate(ctx, w)
		if !ok {
			logrus.WithField("waypoint", w).Info("geo: corridor waypoint not located, using direct leg")
			return 0, false
		}
		points = append(points, c.Point)
	}
	total := 0
	for i := 1; i < len(points); i++ {
		total += e.Leg(points[i-1], points[i])
	}
	return total, true
}
