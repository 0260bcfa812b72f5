package models

import (
	"encoding/binary"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"gorm.io/gorm"
)

// StationCoordinate is a cached station position. One station may be stored
// under several keys (the name as asked and the variant the geocoder
// matched); Code is set when the position came with an ESR code.
type StationCoordinate struct {
	gorm.Model
	Key         string  `json:"key" gorm:"uniqueIndex;not null"`
	Code        string  `json:"code" gorm:"size:6;index"`
	MatchedName string  `json:"matched_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	// WKB point, SRID 4326
	Location []byte `json:"-" gorm:"type:bytea"`
}

// PointWKB encodes a position as a little-endian WKB point.
func PointWKB(lat, lon float64) ([]byte, error) {
	p := geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
	return wkb.Marshal(p, binary.LittleEndian)
}

// GeoJSON renders the stored location as a GeoJSON geometry.
func (c StationCoordinate) GeoJSON() ([]byte, error) {
	var g geom.T
	if len(c.Location) > 0 {
		decoded, err := wkb.Unmarshal(c.Location)
		if err != nil {
			return nil, err
		}
		g = decoded
	} else {
		g = geom.NewPointFlat(geom.XY, []float64{c.Longitude, c.Latitude})
	}
	return gjson.Marshal(g)
}
