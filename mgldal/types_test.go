package mgldal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResourceURL(t *testing.T) {
	tests := []struct {
		Input       string
		Expected    ResourceURL
		ExpectedErr string
	}{
		{"file:///tmp/style.json", ResourceURL{SchemeFile, "/tmp/style.json"}, ""},
		{"https://example.com/style.json", ResourceURL{SchemeHTTPS, "example.com/style.json"}, ""},
		{"MBTILES://~/data/a.mbtiles", ResourceURL{SchemeMBTiles, "~/data/a.mbtiles"}, ""},
		{"maptiler://maps/streets", ResourceURL{SchemeMapTiler, "maps/streets"}, ""},
		{"/tmp/style.json", ResourceURL{}, "couldn't find connection path separator"},
		{"ftp://example.com/a", ResourceURL{}, `unsupported URL scheme "ftp"`},
	}

	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			u, err := ParseResourceURL(test.Input)
			if test.ExpectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.ExpectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.Expected, u)
		})
	}

	assert.Equal(t, "https://example.com/a.json", ResourceURL{SchemeHTTPS, "example.com/a.json"}.String())
}
