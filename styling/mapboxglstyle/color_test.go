package mapboxglstyle

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		Input    interface{}
		Expected Color
	}{
		{"#FF0000", Color{255, 0, 0, 1}},
		{"#f00", Color{255, 0, 0, 1}},
		{"#ff000080", Color{255, 0, 0, 0.502}},
		{"#f008", Color{255, 0, 0, 0.533}},
		{"rgb(0, 255, 0)", Color{0, 255, 0, 1}},
		{"rgba(0,255,0,0.5)", Color{0, 255, 0, 0.5}},
		{"rgb(100%, 0%, 0%)", Color{255, 0, 0, 1}},
		{"hsl(120, 100%, 50%)", Color{0, 255, 0, 1}},
		{"hsla(240, 100%, 50%, 0.25)", Color{0, 0, 255, 0.25}},
		{"Blue", Color{0, 0, 255, 1}},
		{"transparent", Color{0, 0, 0, 0}},
		{[]interface{}{"rgba", 1.0, 2.0, 3.0, 0.4}, Color{1, 2, 3, 0.4}},
		{[]interface{}{"rgb", 1.0, 2.0, 3.0}, Color{1, 2, 3, 1}},
	}

	for _, test := range tests {
		c, err := ParseColor(test.Input)
		require.NoError(t, err, "input: %v", test.Input)
		assert.Equal(t, test.Expected, c, "input: %v", test.Input)
	}
}

func TestParseColor_invalid(t *testing.T) {
	inputs := []interface{}{
		"not-a-color",
		"#12",
		"#gggggg",
		"rgb(1, 2)",
		"rgba(1, 2, 3)",
		"rgb(300, 0, 0)",
		"rgba(0, 0, 0, 2)",
		[]interface{}{"rgba", 1.0, 2.0},
		[]interface{}{"hsl", 1.0, 2.0, 3.0},
		12.0,
	}

	for _, input := range inputs {
		_, err := ParseColor(input)
		assert.Error(t, err, "input: %v", input)
	}
}

func TestNormalizeColorValue(t *testing.T) {
	normalized, err := NormalizeColorValue("rgba(0,255,0,0.5)")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"rgba", 0.0, 255.0, 0.0, 0.5}, normalized)

	normalized, err = NormalizeColorValue(map[string]interface{}{
		"base":  1.0,
		"stops": []interface{}{[]interface{}{0.0, "#000"}, []interface{}{10.0, "white"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"base": 1.0,
		"stops": []interface{}{
			[]interface{}{0.0, []interface{}{"rgba", 0.0, 0.0, 0.0, 1.0}},
			[]interface{}{10.0, []interface{}{"rgba", 255.0, 255.0, 255.0, 1.0}},
		},
	}, normalized)

	// expressions are left alone
	expression := []interface{}{"get", "color"}
	normalized, err = NormalizeColorValue(expression)
	require.NoError(t, err)
	assert.Equal(t, expression, normalized)

	_, err = NormalizeColorValue(true)
	assert.Error(t, err)
}

func TestColor_NRGBA(t *testing.T) {
	c := Color{R: 10, G: 20, B: 30, A: 0.5}
	assert.Equal(t, color.NRGBA{10, 20, 30, 64}, c.NRGBA(0.5))
	assert.Equal(t, color.NRGBA{10, 20, 30, 128}, c.NRGBA(1))
	assert.Equal(t, "rgba(10,20,30,0.5)", c.String())
}
