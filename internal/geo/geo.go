// Package geo builds route geometry from stop coordinates.
package geo

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"campus_shuttle/internal/models"
)

var ErrTooFewPoints = errors.New("geo: a line needs at least two stops")

// LineThroughStops returns the WKB LineString visiting stops in order.
func LineThroughStops(stops []models.Stop) ([]byte, error) {
	if len(stops) < 2 {
		return nil, ErrTooFewPoints
	}
	coords := make([]geom.Coord, len(stops))
	for i, s := range stops {
		coords[i] = geom.Coord{s.Lng, s.Lat}
	}
	line, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, err
	}
	return wkb.Marshal(line, binary.LittleEndian)
}

// GeoJSON converts WKB bytes into a GeoJSON geometry. Empty input gives nil.
func GeoJSON(wkbBytes []byte) (json.RawMessage, error) {
	if len(wkbBytes) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return nil, err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
