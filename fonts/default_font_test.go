package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFont(t *testing.T) {
	font, err := DefaultFont()
	require.NoError(t, err)
	require.NotNil(t, font)

	again, err := DefaultFont()
	require.NoError(t, err)
	assert.True(t, font == again)
}
