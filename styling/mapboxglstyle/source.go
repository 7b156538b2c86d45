package mapboxglstyle

import (
	"encoding/json"

	"github.com/jamesrr39/goutil/errorsx"
)

type SourceType string

const (
	SourceTypeVector    SourceType = "vector"
	SourceTypeRaster    SourceType = "raster"
	SourceTypeRasterDEM SourceType = "raster-dem"
	SourceTypeGeoJSON   SourceType = "geojson"
	SourceTypeImage     SourceType = "image"
	SourceTypeVideo     SourceType = "video"
)

// Source is a style source. The decoded options are kept as they are, so that unknown keys survive a round trip.
type Source struct {
	ID      string
	Options map[string]interface{}
}

func ParseSource(id string, data []byte) (*Source, errorsx.Error) {
	var options map[string]interface{}
	err := json.Unmarshal(data, &options)
	if err != nil {
		return nil, errorsx.Wrap(err, "source", id)
	}

	if options == nil {
		return nil, errorsx.Errorf("source %q must be an object", id)
	}

	return NewSource(id, options)
}

func NewSource(id string, options map[string]interface{}) (*Source, errorsx.Error) {
	source := &Source{
		ID:      id,
		Options: options,
	}

	err := source.Validate()
	if err != nil {
		return nil, err
	}

	return source, nil
}

func (s *Source) Type() SourceType {
	t, _ := s.Options["type"].(string)
	return SourceType(t)
}

func (s *Source) URL() string {
	url, _ := s.Options["url"].(string)
	return url
}

func (s *Source) Tiles() []string {
	return stringArray(s.Options["tiles"])
}

// Data is the "data" member of a GeoJSON source: either a URL or inline GeoJSON
func (s *Source) Data() interface{} {
	return s.Options["data"]
}

func (s *Source) SetData(data interface{}) {
	s.Options["data"] = data
}

func (s *Source) Validate() errorsx.Error {
	sourceType, ok := s.Options["type"].(string)
	if !ok || sourceType == "" {
		return errorsx.Errorf("source %q must have a type", s.ID)
	}

	switch SourceType(sourceType) {
	case SourceTypeGeoJSON:
		if _, ok := s.Options["data"]; !ok {
			return errorsx.Errorf("GeoJSON source %q must have a data value", s.ID)
		}
	case SourceTypeVector, SourceTypeRaster, SourceTypeRasterDEM:
		if s.URL() == "" && len(s.Tiles()) == 0 {
			return errorsx.Errorf("source %q must have a url or tiles", s.ID)
		}
	case SourceTypeImage:
		if s.URL() == "" {
			return errorsx.Errorf("image source %q must have a url", s.ID)
		}
		err := validateCoordinates(s.ID, s.Options["coordinates"])
		if err != nil {
			return err
		}
	case SourceTypeVideo:
		if len(stringArray(s.Options["urls"])) == 0 {
			return errorsx.Errorf("video source %q must have urls", s.ID)
		}
		err := validateCoordinates(s.ID, s.Options["coordinates"])
		if err != nil {
			return err
		}
	default:
		return errorsx.Errorf("source %q has an invalid type: %q", s.ID, sourceType)
	}

	return nil
}

func (s *Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Options)
}

func validateCoordinates(sourceID string, value interface{}) errorsx.Error {
	coords, ok := value.([]interface{})
	if !ok || len(coords) != 4 {
		return errorsx.Errorf("source %q must have 4 coordinates", sourceID)
	}

	for _, coord := range coords {
		pair, ok := coord.([]interface{})
		if !ok || len(pair) != 2 {
			return errorsx.Errorf("source %q coordinates must be [longitude, latitude] pairs", sourceID)
		}
		for _, item := range pair {
			if _, ok := item.(float64); !ok {
				return errorsx.Errorf("source %q coordinates must be numbers", sourceID)
			}
		}
	}

	return nil
}

func stringArray(value interface{}) []string {
	arr, ok := value.([]interface{})
	if !ok {
		return nil
	}

	var out []string
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}
