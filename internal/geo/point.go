// Package geo estimates rail distances from station coordinates when the
// tariff tables and the adjacency graph have no answer.
package geo

import (
	"errors"
	"math"
)

const earthRadiusKM = 6371.0

// DefaultWindingFactor accounts for track being longer than the great circle.
const DefaultWindingFactor = 1.25

var (
	// ErrNotFound means the geocoder answered but knows no such station.
	ErrNotFound = errors.New("station not found by geocoder")
	// ErrUnavailable means the geocoder could not be asked or gave a bad answer.
	ErrUnavailable = errors.New("geocoder unavailable")
)

// Point is a WGS84 position in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate is a located station.
type Coordinate struct {
	Code        string `json:"code,omitempty"`
	MatchedName string `json:"matched_name"`
	Point
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
