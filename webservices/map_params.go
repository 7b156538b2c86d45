package webservices

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/jamesrr39/gomgl/mgl"
	"github.com/jamesrr39/goutil/errorsx"
)

type paramError struct {
	Message string
}

func (e *paramError) Error() string {
	return e.Message
}

func newParamError(format string, args ...interface{}) errorsx.Error {
	return errorsx.Wrap(&paramError{fmt.Sprintf(format, args...)})
}

// mapParams are the camera settings of a render request
type mapParams struct {
	options []mgl.Option
	bearing *float64
	pitch   *float64
	// xmin, ymin, xmax, ymax
	bounds  []float64
	padding float64
}

func (p *mapParams) apply(m *mgl.Map) errorsx.Error {
	if p.bearing != nil {
		err := m.SetBearing(*p.bearing)
		if err != nil {
			return err
		}
	}

	if p.pitch != nil {
		err := m.SetPitch(*p.pitch)
		if err != nil {
			return err
		}
	}

	if p.bounds != nil {
		err := m.SetBounds(p.bounds[0], p.bounds[1], p.bounds[2], p.bounds[3], p.padding)
		if err != nil {
			return err
		}
	}

	return nil
}

// parseMapQuery reads width, height, ratio, lon, lat, zoom, bearing, pitch, bounds and padding.
// Parameters that are not given keep the map defaults.
func parseMapQuery(query url.Values) (*mapParams, errorsx.Error) {
	params := new(mapParams)

	floatParam := func(name string) (*float64, errorsx.Error) {
		str := query.Get(name)
		if str == "" {
			return nil, nil
		}
		f, err := parseFiniteFloat(str)
		if err != nil {
			return nil, newParamError("%s must be a number, but got %q", name, str)
		}
		return &f, nil
	}

	for _, name := range []string{"width", "height"} {
		str := query.Get(name)
		if str == "" {
			continue
		}
		dimension, err := strconv.ParseUint(str, 10, 32)
		if err != nil {
			return nil, newParamError("%s must be a positive integer, but got %q", name, str)
		}
		if name == "width" {
			params.options = append(params.options, mgl.WithWidth(uint32(dimension)))
		} else {
			params.options = append(params.options, mgl.WithHeight(uint32(dimension)))
		}
	}

	ratio, err := floatParam("ratio")
	if err != nil {
		return nil, err
	}
	if ratio != nil {
		params.options = append(params.options, mgl.WithRatio(*ratio))
	}

	lon, err := floatParam("lon")
	if err != nil {
		return nil, err
	}
	if lon != nil {
		params.options = append(params.options, mgl.WithLongitude(*lon))
	}

	lat, err := floatParam("lat")
	if err != nil {
		return nil, err
	}
	if lat != nil {
		params.options = append(params.options, mgl.WithLatitude(*lat))
	}

	zoom, err := floatParam("zoom")
	if err != nil {
		return nil, err
	}
	if zoom != nil {
		params.options = append(params.options, mgl.WithZoom(*zoom))
	}

	params.bearing, err = floatParam("bearing")
	if err != nil {
		return nil, err
	}

	params.pitch, err = floatParam("pitch")
	if err != nil {
		return nil, err
	}

	if boundsStr := query.Get("bounds"); boundsStr != "" {
		params.bounds, err = parseFloatList("bounds", boundsStr, 4, 4)
		if err != nil {
			return nil, err
		}
	}

	padding, err := floatParam("padding")
	if err != nil {
		return nil, err
	}
	if padding != nil {
		params.padding = *padding
	}

	return params, nil
}

func parseFloatList(name, str string, minLen, maxLen int) ([]float64, errorsx.Error) {
	fragments := strings.Split(str, ",")
	if len(fragments) < minLen || len(fragments) > maxLen {
		if minLen == maxLen {
			return nil, newParamError("%s must be %d comma separated numbers, but got %q", name, minLen, str)
		}
		return nil, newParamError("%s must be %d to %d comma separated numbers, but got %q", name, minLen, maxLen, str)
	}

	var out []float64
	for _, fragment := range fragments {
		f, err := parseFiniteFloat(strings.TrimSpace(fragment))
		if err != nil {
			return nil, newParamError("%s must be comma separated numbers, but got %q", name, str)
		}
		out = append(out, f)
	}

	return out, nil
}

// parseCenterSegment parses "lon,lat,zoom[,bearing[,pitch]]"
func parseCenterSegment(segment string) (*mapParams, errorsx.Error) {
	values, err := parseFloatList("center", segment, 3, 5)
	if err != nil {
		return nil, err
	}

	params := &mapParams{
		options: []mgl.Option{
			mgl.WithCenter(values[0], values[1]),
			mgl.WithZoom(values[2]),
		},
	}

	if len(values) > 3 {
		params.bearing = &values[3]
	}
	if len(values) > 4 {
		params.pitch = &values[4]
	}

	return params, nil
}

// parseSizeSegment parses "{width}x{height}[@{ratio}x][.png]", e.g. "300x200@2x.png"
func parseSizeSegment(segment string) (width, height uint32, ratio float64, err errorsx.Error) {
	ratio = 1
	segment = strings.TrimSuffix(segment, ".png")

	if idx := strings.Index(segment, "@"); idx >= 0 {
		ratioStr := strings.TrimSuffix(segment[idx+1:], "x")
		var parseErr error
		ratio, parseErr = parseFiniteFloat(ratioStr)
		if parseErr != nil {
			return 0, 0, 0, newParamError("invalid pixel ratio %q", segment[idx:])
		}
		segment = segment[:idx]
	}

	fragments := strings.Split(segment, "x")
	if len(fragments) != 2 {
		return 0, 0, 0, newParamError("size must be {width}x{height}, but got %q", segment)
	}

	dimensions := make([]uint32, 2)
	for i, fragment := range fragments {
		dimension, parseErr := strconv.ParseUint(fragment, 10, 32)
		if parseErr != nil {
			return 0, 0, 0, newParamError("size must be {width}x{height}, but got %q", segment)
		}
		dimensions[i] = uint32(dimension)
	}

	return dimensions[0], dimensions[1], ratio, nil
}

// parseTileCoords parses z, x and y path params. y may carry a "[@2x][.png]" suffix, which sets the ratio.
func parseTileCoords(zStr, xStr, yStr string) (z, x, y uint32, ratio float64, err errorsx.Error) {
	ratio = 1
	yStr = strings.TrimSuffix(yStr, ".png")
	if idx := strings.Index(yStr, "@"); idx >= 0 {
		ratioStr := strings.TrimSuffix(yStr[idx+1:], "x")
		var parseErr error
		ratio, parseErr = parseFiniteFloat(ratioStr)
		if parseErr != nil {
			return 0, 0, 0, 0, newParamError("invalid pixel ratio %q", yStr[idx:])
		}
		yStr = yStr[:idx]
	}

	ints, parseErr := stringsToUints(zStr, xStr, yStr)
	if parseErr != nil {
		return 0, 0, 0, 0, newParamError("invalid tile coordinates %s/%s/%s", zStr, xStr, yStr)
	}

	return ints[0], ints[1], ints[2], ratio, nil
}

// parseFiniteFloat rejects NaN and infinities, which strconv accepts
func parseFiniteFloat(str string) (float64, error) {
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", str)
	}

	return f, nil
}

func stringsToUints(s ...string) ([]uint32, error) {
	var ints []uint32
	for _, str := range s {
		i, err := strconv.ParseUint(str, 10, 32)
		if err != nil {
			return nil, err
		}
		ints = append(ints, uint32(i))
	}

	return ints, nil
}
