package mapboxglstyle

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

// Color is a style color. Channels are unassociated (not premultiplied), A is between 0 and 1.
type Color struct {
	R, G, B uint8
	A       float64
}

func (c Color) NRGBA(opacity float64) color.NRGBA {
	a := math.Max(0, math.Min(1, c.A*opacity))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}

// RGBAArray returns the color in the ["rgba", r, g, b, a] form used when serializing values
func (c Color) RGBAArray() []interface{} {
	return []interface{}{"rgba", float64(c.R), float64(c.G), float64(c.B), c.A}
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// ParseColor parses a CSS color string or an ["rgba", r, g, b, a] array
func ParseColor(value interface{}) (Color, errorsx.Error) {
	switch v := value.(type) {
	case string:
		return parseColorString(v)
	case []interface{}:
		return parseColorArray(v)
	case Color:
		return v, nil
	default:
		return Color{}, errorsx.Errorf("color must be a string or an array, but got %T", value)
	}
}

func parseColorArray(arr []interface{}) (Color, errorsx.Error) {
	if len(arr) == 0 {
		return Color{}, errorsx.Errorf("empty color array")
	}

	op, ok := arr[0].(string)
	if !ok {
		return Color{}, errorsx.Errorf("color array must start with a string")
	}

	var channels []float64
	for _, item := range arr[1:] {
		f, ok := item.(float64)
		if !ok {
			return Color{}, errorsx.Errorf("color channel must be a number, but got %T", item)
		}
		channels = append(channels, f)
	}

	switch op {
	case "rgb":
		if len(channels) != 3 {
			return Color{}, errorsx.Errorf("rgb color needs 3 channels, but got %d", len(channels))
		}
		channels = append(channels, 1)
	case "rgba":
		if len(channels) != 4 {
			return Color{}, errorsx.Errorf("rgba color needs 4 channels, but got %d", len(channels))
		}
	default:
		return Color{}, errorsx.Errorf("unknown color operator %q", op)
	}

	return newColorFromChannels(channels[0], channels[1], channels[2], channels[3])
}

func parseColorString(s string) (Color, errorsx.Error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if named, ok := namedColors[s]; ok {
		return named, nil
	}

	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}

	openIdx := strings.Index(s, "(")
	if openIdx < 0 || !strings.HasSuffix(s, ")") {
		return Color{}, errorsx.Errorf("invalid color %q", s)
	}

	fn := s[:openIdx]
	var args []string
	for _, arg := range strings.Split(s[openIdx+1:len(s)-1], ",") {
		args = append(args, strings.TrimSpace(arg))
	}

	switch fn {
	case "rgb", "rgba":
		if !(len(args) == 3 && fn == "rgb") && !(len(args) == 4 && fn == "rgba") {
			return Color{}, errorsx.Errorf("invalid color %q: wrong number of arguments", s)
		}
		var channels []float64
		for i, arg := range args {
			f, err := parseColorComponent(arg, i == 3)
			if err != nil {
				return Color{}, errorsx.Wrap(err, "color", s)
			}
			channels = append(channels, f)
		}
		if len(channels) == 3 {
			channels = append(channels, 1)
		}
		return newColorFromChannels(channels[0], channels[1], channels[2], channels[3])
	case "hsl", "hsla":
		if !(len(args) == 3 && fn == "hsl") && !(len(args) == 4 && fn == "hsla") {
			return Color{}, errorsx.Errorf("invalid color %q: wrong number of arguments", s)
		}
		h, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Color{}, errorsx.Wrap(err, "color", s)
		}
		sat, err := parsePercentage(args[1])
		if err != nil {
			return Color{}, errorsx.Wrap(err, "color", s)
		}
		l, err := parsePercentage(args[2])
		if err != nil {
			return Color{}, errorsx.Wrap(err, "color", s)
		}
		a := 1.0
		if len(args) == 4 {
			a, err = strconv.ParseFloat(args[3], 64)
			if err != nil {
				return Color{}, errorsx.Wrap(err, "color", s)
			}
		}
		r, g, b := hslToRGB(h, sat, l)
		return newColorFromChannels(r, g, b, a)
	default:
		return Color{}, errorsx.Errorf("invalid color %q", s)
	}
}

func parseHexColor(hex string) (Color, errorsx.Error) {
	switch len(hex) {
	case 3, 4:
		var expanded string
		for _, ch := range hex {
			expanded += string(ch) + string(ch)
		}
		hex = expanded
	case 6, 8:
	default:
		return Color{}, errorsx.Errorf("invalid hex color %q", "#"+hex)
	}

	val, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return Color{}, errorsx.Wrap(err, "color", "#"+hex)
	}

	if len(hex) == 6 {
		return Color{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 1}, nil
	}

	return Color{
		R: uint8(val >> 24),
		G: uint8(val >> 16),
		B: uint8(val >> 8),
		A: roundAlpha(float64(uint8(val)) / 255),
	}, nil
}

func parseColorComponent(s string, isAlpha bool) (float64, error) {
	if isAlpha {
		return strconv.ParseFloat(s, 64)
	}
	if strings.HasSuffix(s, "%") {
		f, err := parsePercentage(s)
		if err != nil {
			return 0, err
		}
		return f * 255, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parsePercentage(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	return f / 100, nil
}

func newColorFromChannels(r, g, b, a float64) (Color, errorsx.Error) {
	for _, c := range []float64{r, g, b} {
		if c < 0 || c > 255 {
			return Color{}, errorsx.Errorf("color channel %v out of range (0-255)", c)
		}
	}
	if a < 0 || a > 1 {
		return Color{}, errorsx.Errorf("color alpha %v out of range (0-1)", a)
	}

	return Color{
		R: uint8(math.Round(r)),
		G: uint8(math.Round(g)),
		B: uint8(math.Round(b)),
		A: a,
	}, nil
}

func roundAlpha(a float64) float64 {
	return math.Round(a*1000) / 1000
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360

	if s == 0 {
		return l * 255, l * 255, l * 255
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	hueToRGB := func(t float64) float64 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		switch {
		case t < 1.0/6:
			return p + (q-p)*6*t
		case t < 0.5:
			return q
		case t < 2.0/3:
			return p + (q-p)*(2.0/3-t)*6
		default:
			return p
		}
	}

	return hueToRGB(h+1.0/3) * 255, hueToRGB(h) * 255, hueToRGB(h-1.0/3) * 255
}

// NormalizeColorValue converts constant colors, and colors inside zoom function stops, into the ["rgba", r, g, b, a] form.
// Expressions are returned unchanged.
func NormalizeColorValue(value interface{}) (interface{}, errorsx.Error) {
	switch v := value.(type) {
	case string:
		c, err := parseColorString(v)
		if err != nil {
			return nil, err
		}
		return c.RGBAArray(), nil
	case []interface{}:
		if isColorArray(v) {
			c, err := parseColorArray(v)
			if err != nil {
				return nil, err
			}
			return c.RGBAArray(), nil
		}
		if isExpression(v) {
			return v, nil
		}
		return nil, errorsx.Errorf("invalid color value")
	case map[string]interface{}:
		fn, err := parseFunctionObject(v)
		if err != nil {
			return nil, err
		}
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = val
		}
		var stops []interface{}
		for _, stop := range fn.Stops {
			normalized, err := NormalizeColorValue(stop.Value)
			if err != nil {
				return nil, err
			}
			stops = append(stops, []interface{}{stop.RawInput, normalized})
		}
		if stops != nil {
			out["stops"] = stops
		}
		return out, nil
	default:
		return nil, errorsx.Errorf("invalid color value of type %T", value)
	}
}

func isColorArray(arr []interface{}) bool {
	if len(arr) == 0 {
		return false
	}
	op, ok := arr[0].(string)
	if !ok || (op != "rgb" && op != "rgba") {
		return false
	}
	for _, item := range arr[1:] {
		if _, ok := item.(float64); !ok {
			return false
		}
	}
	return true
}

var namedColors = map[string]Color{
	"transparent":   {0, 0, 0, 0},
	"black":         {0, 0, 0, 1},
	"white":         {255, 255, 255, 1},
	"red":           {255, 0, 0, 1},
	"lime":          {0, 255, 0, 1},
	"green":         {0, 128, 0, 1},
	"blue":          {0, 0, 255, 1},
	"yellow":        {255, 255, 0, 1},
	"cyan":          {0, 255, 255, 1},
	"aqua":          {0, 255, 255, 1},
	"magenta":       {255, 0, 255, 1},
	"fuchsia":       {255, 0, 255, 1},
	"silver":        {192, 192, 192, 1},
	"gray":          {128, 128, 128, 1},
	"grey":          {128, 128, 128, 1},
	"darkgray":      {169, 169, 169, 1},
	"darkgrey":      {169, 169, 169, 1},
	"lightgray":     {211, 211, 211, 1},
	"lightgrey":     {211, 211, 211, 1},
	"dimgray":       {105, 105, 105, 1},
	"gainsboro":     {220, 220, 220, 1},
	"whitesmoke":    {245, 245, 245, 1},
	"maroon":        {128, 0, 0, 1},
	"olive":         {128, 128, 0, 1},
	"purple":        {128, 0, 128, 1},
	"teal":          {0, 128, 128, 1},
	"navy":          {0, 0, 128, 1},
	"orange":        {255, 165, 0, 1},
	"darkorange":    {255, 140, 0, 1},
	"gold":          {255, 215, 0, 1},
	"pink":          {255, 192, 203, 1},
	"hotpink":       {255, 105, 180, 1},
	"brown":         {165, 42, 42, 1},
	"tan":           {210, 180, 140, 1},
	"beige":         {245, 245, 220, 1},
	"ivory":         {255, 255, 240, 1},
	"khaki":         {240, 230, 140, 1},
	"salmon":        {250, 128, 114, 1},
	"coral":         {255, 127, 80, 1},
	"tomato":        {255, 99, 71, 1},
	"crimson":       {220, 20, 60, 1},
	"firebrick":     {178, 34, 34, 1},
	"darkred":       {139, 0, 0, 1},
	"indigo":        {75, 0, 130, 1},
	"violet":        {238, 130, 238, 1},
	"orchid":        {218, 112, 214, 1},
	"plum":          {221, 160, 221, 1},
	"lavender":      {230, 230, 250, 1},
	"skyblue":       {135, 206, 235, 1},
	"lightblue":     {173, 216, 230, 1},
	"steelblue":     {70, 130, 180, 1},
	"royalblue":     {65, 105, 225, 1},
	"dodgerblue":    {30, 144, 255, 1},
	"darkblue":      {0, 0, 139, 1},
	"midnightblue":  {25, 25, 112, 1},
	"turquoise":     {64, 224, 208, 1},
	"aquamarine":    {127, 255, 212, 1},
	"darkgreen":     {0, 100, 0, 1},
	"forestgreen":   {34, 139, 34, 1},
	"seagreen":      {46, 139, 87, 1},
	"lightgreen":    {144, 238, 144, 1},
	"olivedrab":     {107, 142, 35, 1},
	"yellowgreen":   {154, 205, 50, 1},
	"chartreuse":    {127, 255, 0, 1},
	"sienna":        {160, 82, 45, 1},
	"chocolate":     {210, 105, 30, 1},
	"wheat":         {245, 222, 179, 1},
	"linen":         {250, 240, 230, 1},
	"snow":          {255, 250, 250, 1},
	"honeydew":      {240, 255, 240, 1},
	"azure":         {240, 255, 255, 1},
	"aliceblue":     {240, 248, 255, 1},
	"mintcream":     {245, 255, 250, 1},
	"slategray":     {112, 128, 144, 1},
	"slategrey":     {112, 128, 144, 1},
	"darkslategray": {47, 79, 79, 1},
}
