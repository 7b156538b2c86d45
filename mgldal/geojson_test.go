package mgldal

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeoJSON(t *testing.T) {
	tests := []struct {
		Name             string
		GeoJSON          string
		ExpectedGeometry orb.Geometry
		ExpectedErr      string
	}{
		{
			Name:             "geometry",
			GeoJSON:          `{"type": "Point", "coordinates": [10, 60]}`,
			ExpectedGeometry: orb.Point{10, 60},
		}, {
			Name:             "feature",
			GeoJSON:          `{"type": "Feature", "properties": {"name": "a"}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}`,
			ExpectedGeometry: orb.LineString{{0, 0}, {1, 1}},
		}, {
			Name:             "feature collection",
			GeoJSON:          `{"type": "FeatureCollection", "features": [{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}}]}`,
			ExpectedGeometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		}, {
			Name:        "no type",
			GeoJSON:     `{"coordinates": [10, 60]}`,
			ExpectedErr: "GeoJSON must have a type",
		}, {
			Name:        "unknown type",
			GeoJSON:     `{"type": "Circle"}`,
			ExpectedErr: `unknown GeoJSON type "Circle"`,
		}, {
			Name:        "not json",
			GeoJSON:     `abc`,
			ExpectedErr: "invalid character",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			fc, err := ParseGeoJSON([]byte(test.GeoJSON))
			if test.ExpectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.ExpectedErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, fc.Features, 1)
			assert.Equal(t, test.ExpectedGeometry, fc.Features[0].Geometry)
		})
	}
}

func TestParseGeoJSONValue(t *testing.T) {
	fc, err := ParseGeoJSONValue(map[string]interface{}{
		"type":     "FeatureCollection",
		"features": []interface{}{},
	})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 0)
}
