package pipeline

import (
	"github.com/twpayne/go-geom"

	"github.com/storelake/remodel-cli/internal/model"
)

// asNumber accepts only values that were stored with a numeric BSON type.
// A string holding "12.3" is rejected on purpose: silently geocoding
// corrupt text would put bad points on the map.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// buildGeoPoint materializes the geo substructure for a geolocation row, or
// returns nil when either coordinate fails the strict numeric check. The
// caller omits the field entirely on nil; the parent's has_geo flag follows
// the same predicate.
func buildGeoPoint(row *model.GeolocationRow) *model.GeoPoint {
	if row == nil {
		return nil
	}
	lat, okLat := asNumber(row.Lat)
	lng, okLng := asNumber(row.Lng)
	if !okLat || !okLng {
		return nil
	}

	// GeoJSON order: longitude first.
	pt := geom.NewPointFlat(geom.XY, []float64{lng, lat})
	return &model.GeoPoint{
		Location: model.GeoJSON{
			Type:        "Point",
			Coordinates: pt.FlatCoords(),
		},
		ZipPrefix: row.ZipPrefix,
		City:      row.City,
		State:     row.State,
	}
}
