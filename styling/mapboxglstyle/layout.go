package mapboxglstyle

const (
	VisibilityVisible = "visible"
	VisibilityNone    = "none"
)

// PropertyValues holds the decoded JSON values of a layer's "paint" or "layout" object
type PropertyValues map[string]interface{}

func (p PropertyValues) Visibility() string {
	visibility, ok := p["visibility"].(string)
	if !ok {
		return VisibilityVisible
	}
	return visibility
}

func (p PropertyValues) NumberAtZoomLevel(name string, zoomLevel, fallback float64) float64 {
	val, ok := p[name]
	if !ok {
		return fallback
	}

	n, err := NewNumberOrFunction(val)
	if err != nil {
		return fallback
	}

	return n.GetValueAtZoomLevel(zoomLevel, fallback)
}

// ColorAtZoomLevel returns nil when the property is not set or cannot be evaluated
func (p PropertyValues) ColorAtZoomLevel(name string, zoomLevel float64) *Color {
	val, ok := p[name]
	if !ok {
		return nil
	}

	c, err := NewColorOrFunction(val)
	if err != nil {
		return nil
	}

	return c.GetColorAtZoomLevel(zoomLevel)
}

func (p PropertyValues) StringValue(name string) string {
	s, _ := p[name].(string)
	return s
}

func (p PropertyValues) NumberArray(name string) []float64 {
	arr, ok := p[name].([]interface{})
	if !ok {
		return nil
	}

	var out []float64
	for _, item := range arr {
		f, ok := item.(float64)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}

func (p PropertyValues) clone() PropertyValues {
	if p == nil {
		return nil
	}
	out := make(PropertyValues, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
