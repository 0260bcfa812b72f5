package geo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"rail_distance/internal/metrics"
	"rail_distance/internal/stationname"
)

// Store is the coordinate cache.
type Store interface {
	Find(ctx context.Context, key string) (Coordinate, bool, error)
	FindByCode(ctx context.Context, code string) (Coordinate, bool, error)
	Save(ctx context.Context, c Coordinate, keys ...string) error
}

// Geocoder looks a station name up in an external service.
type Geocoder interface {
	Lookup(ctx context.Context, name string) (Coordinate, error)
}

// Locator finds station coordinates in the cache and falls back to the
// geocoder, writing what it finds back to the cache.
type Locator struct {
	store    Store
	geocoder Geocoder
	limiter  *rate.Limiter
}

// NewLocator returns a locator. Consecutive geocoder calls are spaced at least
// pause apart; the first one goes out immediately. A nil geocoder makes the
// locator cache-only.
func NewLocator(store Store, geocoder Geocoder, pause time.Duration) *Locator {
	limit := rate.Inf
	if pause > 0 {
		limit = rate.Every(pause)
	}
	return &Locator{
		store:    store,
		geocoder: geocoder,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Locate resolves raw, which may carry a "(code)" suffix, to coordinates.
// Cache lookups go by code, then by the raw name, then by every name variant;
// only then is the geocoder asked, variant by variant. Geocoder failures are
// logged and reported as not located.
func (l *Locator) Locate(ctx context.Context, raw string) (Coordinate, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Coordinate{}, false
	}
	log := logrus.WithField("station", raw)

	_, code := stationname.StripCode(raw)
	if code != "" {
		if c, ok := l.cached(log, func() (Coordinate, bool, error) { return l.store.FindByCode(ctx, code) }); ok {
			return c, true
		}
	}
	if c, ok := l.cached(log, func() (Coordinate, bool, error) { return l.store.Find(ctx, raw) }); ok {
		return c, true
	}
	variants := stationname.Variants(stationname.CleanName(raw))
	for _, v := range variants {
		if c, ok := l.cached(log, func() (Coordinate, bool, error) { return l.store.Find(ctx, v) }); ok {
			return c, true
		}
	}
	metrics.IncCoordinateLookup("miss")

	if l.geocoder == nil {
		return Coordinate{}, false
	}
	for _, v := range variants {
		if err := l.limiter.Wait(ctx); err != nil {
			log.WithError(err).Warn("geo: geocoder wait cancelled")
			return Coordinate{}, false
		}
		c, err := l.geocoder.Lookup(ctx, v)
		if errors.Is(err, ErrNotFound) {
			metrics.IncGeocoderRequest("not_found")
			continue
		}
		if err != nil {
			metrics.IncGeocoderRequest("error")
			log.WithError(err).WithField("variant", v).Warn("geo: geocoder failed")
			return Coordinate{}, false
		}
		metrics.IncGeocoderRequest("found")

		if c.MatchedName == "" {
			c.MatchedName = v
		}
		if c.Code == "" {
			c.Code = code
		}
		if l.store != nil {
			if err := l.store.Save(ctx, c, raw, v); err != nil {
				log.WithError(err).Error("geo: failed to cache coordinates")
			}
		}
		log.WithFields(logrus.Fields{"variant": v, "lat": c.Lat, "lon": c.Lon}).Info("geo: station geocoded")
		return c, true
	}
	log.Info("geo: station not found by geocoder")
	return Coordinate{}, false
}

func (l *Locator) cached(log *logrus.Entry, find func() (Coordinate, bool, error)) (Coordinate, bool) {
	if l.store == nil {
		return Coordinate{}, false
	}
	c, ok, err := find()
	if err != nil {
		log.WithError(err).Error("geo: coordinate cache lookup failed")
		return Coordinate{}, false
	}
	if ok {
		metrics.IncCoordinateLookup("hit")
	}
	return c, ok
}
