package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rail_distance/internal/distance"
	"rail_distance/internal/geo"
	"rail_distance/internal/models"
)

const maxSearchLimit = 50

// CoordinateLocator finds a station position in the cache or via the geocoder.
type CoordinateLocator interface {
	Locate(ctx context.Context, raw string) (geo.Coordinate, bool)
}

// CoordinateRecords reads stored cache rows, including the WKB location.
type CoordinateRecords interface {
	Record(ctx context.Context, key string) (models.StationCoordinate, bool, error)
}

// StationController serves station lookups.
type StationController struct {
	svc     *distance.Service
	locator CoordinateLocator
	records CoordinateRecords
}

// NewStationController wires the lookups; records may be nil, in which case
// geometry is built from the located point.
func NewStationController(svc *distance.Service, locator CoordinateLocator, records CoordinateRecords) *StationController {
	return &StationController{svc: svc, locator: locator, records: records}
}

// Search handles GET /stations/search?q=&limit=.
func (sc *StationController) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit := distance.DefaultSuggestions
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSearchLimit)
	}

	names := sc.svc.Search(q, limit)
	if names == nil {
		names = []string{}
	}
	resp := gin.H{"query": q, "data": names}
	if rec, ok := sc.svc.Station(q); ok {
		resp["station"] = rec
	}
	c.JSON(http.StatusOK, resp)
}

// Coordinates handles GET /stations/coordinates?name=. The name may carry
// a "(code)" suffix.
func (sc *StationController) Coordinates(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if sc.locator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "coordinate lookup is not configured"})
		return
	}

	coord, ok := sc.locator.Locate(c.Request.Context(), name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "station coordinates not found"})
		return
	}

	row := sc.storedRow(c.Request.Context(), name, coord)
	geometry, err := row.GeoJSON()
	if err != nil {
		logrus.WithError(err).WithField("station", name).Error("controllers: could not encode coordinates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not encode coordinates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":         name,
		"code":         row.Code,
		"matched_name": row.MatchedName,
		"latitude":     row.Latitude,
		"longitude":    row.Longitude,
		"geometry":     json.RawMessage(geometry),
	})
}

// storedRow returns the cached row for the station as asked or as matched,
// falling back to a row built from the located point.
func (sc *StationController) storedRow(ctx context.Context, name string, coord geo.Coordinate) models.StationCoordinate {
	if sc.records != nil {
		for _, key := range []string{name, coord.MatchedName} {
			if key == "" {
				continue
			}
			row, ok, err := sc.records.Record(ctx, key)
			if err != nil {
				logrus.WithError(err).WithField("station", key).Warn("controllers: coordinate record lookup failed")
				break
			}
			if ok {
				return row
			}
		}
	}
	return models.StationCoordinate{Code: coord.Code, MatchedName: coord.MatchedName, Latitude: coord.Lat, Longitude: coord.Lon}
}
