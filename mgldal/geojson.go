package mgldal

import (
	"encoding/json"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/geojson"
)

type geoJSONTypeHeader struct {
	Type string `json:"type"`
}

// ParseGeoJSON parses a GeoJSON Geometry, Feature or FeatureCollection into a FeatureCollection
func ParseGeoJSON(data []byte) (*geojson.FeatureCollection, errorsx.Error) {
	var header geoJSONTypeHeader
	err := json.Unmarshal(data, &header)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	switch header.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		return fc, nil
	case "Feature":
		feature, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(feature)
		return fc, nil
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		geometry, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(geometry.Geometry()))
		return fc, nil
	case "":
		return nil, errorsx.Errorf("GeoJSON must have a type")
	default:
		return nil, errorsx.Errorf("unknown GeoJSON type %q", header.Type)
	}
}

// ParseGeoJSONValue parses GeoJSON that has already been decoded into a generic value, e.g. the "data" member of a style source
func ParseGeoJSONValue(value interface{}) (*geojson.FeatureCollection, errorsx.Error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return ParseGeoJSON(data)
}
