package mapboxglstyle

import (
	"encoding/json"
	"math"

	"github.com/jamesrr39/goutil/errorsx"
)

const (
	FunctionTypeExponential = "exponential"
	FunctionTypeInterval    = "interval"
	FunctionTypeIdentity    = "identity"
	FunctionTypeCategorical = "categorical"
)

type FunctionStop struct {
	Input    float64
	RawInput interface{}
	Value    interface{}
}

// Function is a legacy zoom function, e.g. {"base": 1.4, "stops": [[10, 8], [20, 14]]}
type Function struct {
	Base     float64
	Type     string
	Property string
	Stops    []FunctionStop
	Default  interface{}
}

func parseFunctionObject(obj map[string]interface{}) (*Function, errorsx.Error) {
	fn := &Function{
		Base:    1,
		Default: obj["default"],
	}

	if base, ok := obj["base"]; ok {
		baseFloat, ok := base.(float64)
		if !ok {
			return nil, errorsx.Errorf("function base must be a number")
		}
		fn.Base = baseFloat
	}

	if fnType, ok := obj["type"]; ok {
		fnTypeStr, ok := fnType.(string)
		if !ok {
			return nil, errorsx.Errorf("function type must be a string")
		}
		switch fnTypeStr {
		case FunctionTypeExponential, FunctionTypeInterval, FunctionTypeIdentity, FunctionTypeCategorical:
		default:
			return nil, errorsx.Errorf("unknown function type %q", fnTypeStr)
		}
		fn.Type = fnTypeStr
	}

	if property, ok := obj["property"]; ok {
		propertyStr, ok := property.(string)
		if !ok {
			return nil, errorsx.Errorf("function property must be a string")
		}
		fn.Property = propertyStr
	}

	stops, hasStops := obj["stops"]
	if !hasStops {
		if fn.Type == FunctionTypeIdentity {
			return fn, nil
		}
		return nil, errorsx.Errorf("function must have stops")
	}

	stopsArr, ok := stops.([]interface{})
	if !ok || len(stopsArr) == 0 {
		return nil, errorsx.Errorf("function stops must be a non-empty array")
	}

	for _, stop := range stopsArr {
		pair, ok := stop.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, errorsx.Errorf("function stop must be an array of 2 items")
		}

		var input float64
		switch in := pair[0].(type) {
		case float64:
			input = in
		case map[string]interface{}:
			// zoom-and-property function, only the zoom part is used
			zoom, ok := in["zoom"].(float64)
			if !ok {
				return nil, errorsx.Errorf("function stop input object must have a numeric zoom")
			}
			input = zoom
		case string, bool:
			if fn.Type != FunctionTypeCategorical {
				return nil, errorsx.Errorf("non-numeric function stop inputs require a categorical function")
			}
		default:
			return nil, errorsx.Errorf("invalid function stop input of type %T", pair[0])
		}

		fn.Stops = append(fn.Stops, FunctionStop{Input: input, RawInput: pair[0], Value: pair[1]})
	}

	return fn, nil
}

// IsZoomFunction returns true when the function output depends only on the zoom level
func (fn *Function) IsZoomFunction() bool {
	return fn.Property == ""
}

// interpolationFactor is the exponential interpolation between lower and upper for input, as used by mapbox gl
func interpolationFactor(input, base, lower, upper float64) float64 {
	difference := upper - lower
	if difference == 0 {
		return 0
	}
	progress := input - lower
	if base == 1 {
		return progress / difference
	}
	return (math.Pow(base, progress) - 1) / (math.Pow(base, difference) - 1)
}

// bracket returns the index of the stop at or below the zoom level, and the interpolation factor to the next stop.
// isEdge is true when the zoom level is outside the range of the stops.
func (fn *Function) bracket(zoomLevel float64) (idx int, t float64, isEdge bool) {
	stops := fn.Stops
	if zoomLevel <= stops[0].Input {
		return 0, 0, true
	}

	last := len(stops) - 1
	if zoomLevel >= stops[last].Input {
		return last, 0, true
	}

	for i := 0; i < last; i++ {
		if zoomLevel >= stops[i].Input && zoomLevel < stops[i+1].Input {
			if fn.Type == FunctionTypeInterval {
				return i, 0, true
			}
			return i, interpolationFactor(zoomLevel, fn.Base, stops[i].Input, stops[i+1].Input), false
		}
	}

	return last, 0, true
}

type NumberOrFunction struct {
	value        float64
	function     *Function
	isExpression bool
}

func NewNumberOrFunction(value interface{}) (*NumberOrFunction, errorsx.Error) {
	switch v := value.(type) {
	case float64:
		return &NumberOrFunction{value: v}, nil
	case map[string]interface{}:
		fn, err := parseFunctionObject(v)
		if err != nil {
			return nil, err
		}
		for _, stop := range fn.Stops {
			if _, ok := stop.Value.(float64); !ok {
				return nil, errorsx.Errorf("function stop values must be numbers")
			}
		}
		return &NumberOrFunction{function: fn}, nil
	case []interface{}:
		if isExpression(v) {
			return &NumberOrFunction{isExpression: true}, nil
		}
	}

	return nil, errorsx.Errorf("expected a number or a function, but got %T", value)
}

func (n *NumberOrFunction) UnmarshalJSON(data []byte) error {
	var v interface{}
	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}

	parsed, parseErr := NewNumberOrFunction(v)
	if parseErr != nil {
		return parseErr
	}

	*n = *parsed
	return nil
}

// GetValueAtZoomLevel evaluates the number. Expressions and property functions are not evaluated, fallback is returned for them.
func (n *NumberOrFunction) GetValueAtZoomLevel(zoomLevel, fallback float64) float64 {
	if n == nil || n.isExpression {
		return fallback
	}

	if n.function == nil {
		return n.value
	}

	fn := n.function
	if !fn.IsZoomFunction() || len(fn.Stops) == 0 {
		if d, ok := fn.Default.(float64); ok {
			return d
		}
		return fallback
	}

	idx, t, isEdge := fn.bracket(zoomLevel)
	lower := fn.Stops[idx].Value.(float64)
	if isEdge {
		return lower
	}

	upper := fn.Stops[idx+1].Value.(float64)
	return lower + (upper-lower)*t
}

type ColorOrFunction struct {
	color        *Color
	function     *Function
	stopColors   []Color
	isExpression bool
}

func NewColorOrFunction(value interface{}) (*ColorOrFunction, errorsx.Error) {
	switch v := value.(type) {
	case string:
		c, err := ParseColor(v)
		if err != nil {
			return nil, err
		}
		return &ColorOrFunction{color: &c}, nil
	case []interface{}:
		if isColorArray(v) {
			c, err := ParseColor(v)
			if err != nil {
				return nil, err
			}
			return &ColorOrFunction{color: &c}, nil
		}
		if isExpression(v) {
			return &ColorOrFunction{isExpression: true}, nil
		}
	case map[string]interface{}:
		fn, err := parseFunctionObject(v)
		if err != nil {
			return nil, err
		}
		var stopColors []Color
		for _, stop := range fn.Stops {
			c, err := ParseColor(stop.Value)
			if err != nil {
				return nil, err
			}
			stopColors = append(stopColors, c)
		}
		return &ColorOrFunction{function: fn, stopColors: stopColors}, nil
	}

	return nil, errorsx.Errorf("expected a color or a function, but got %T", value)
}

func (c *ColorOrFunction) UnmarshalJSON(data []byte) error {
	var v interface{}
	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}

	parsed, parseErr := NewColorOrFunction(v)
	if parseErr != nil {
		return parseErr
	}

	*c = *parsed
	return nil
}

// GetColorAtZoomLevel evaluates the color. It returns nil when the color cannot be evaluated without an expression engine.
func (c *ColorOrFunction) GetColorAtZoomLevel(zoomLevel float64) *Color {
	if c == nil || c.isExpression {
		return nil
	}

	if c.color != nil {
		return c.color
	}

	fn := c.function
	if !fn.IsZoomFunction() || len(c.stopColors) == 0 {
		if fn.Default != nil {
			d, err := ParseColor(fn.Default)
			if err == nil {
				return &d
			}
		}
		return nil
	}

	idx, t, isEdge := fn.bracket(zoomLevel)
	lower := c.stopColors[idx]
	if isEdge {
		return &lower
	}

	upper := c.stopColors[idx+1]
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}

	return &Color{
		R: lerp(lower.R, upper.R),
		G: lerp(lower.G, upper.G),
		B: lerp(lower.B, upper.B),
		A: lower.A + (upper.A-lower.A)*t,
	}
}

func isExpression(arr []interface{}) bool {
	if len(arr) == 0 {
		return false
	}
	_, ok := arr[0].(string)
	return ok
}
