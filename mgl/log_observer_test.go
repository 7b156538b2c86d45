package mgl

import (
	"bytes"
	"testing"

	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingLogObserver(t *testing.T) {
	observer := NewRecordingLogObserver()
	assert.True(t, observer.Empty())

	warning := Message{Severity: maprenderer.SeverityWarning, Event: maprenderer.EventImage, Code: -1, Message: `Image "a" could not be loaded`}
	debug := Message{Severity: maprenderer.SeverityDebug, Event: maprenderer.EventRender, Code: -1, Message: "layer skipped"}

	observer.OnRecord(warning)
	observer.OnRecord(warning)
	observer.OnRecord(debug)

	assert.False(t, observer.Empty())
	assert.Equal(t, 3, observer.UncheckedCount())

	// a different severity doesn't match
	assert.Equal(t, 0, observer.Count(Message{Severity: maprenderer.SeverityError, Event: maprenderer.EventImage, Code: -1, Message: `Image "a" could not be loaded`}, false))
	assert.Equal(t, 0, observer.Count(Message{Severity: maprenderer.SeverityWarning, Event: maprenderer.EventImage, Code: -1, Message: `Image "a"`}, false))

	assert.Equal(t, 2, observer.Count(Message{Severity: maprenderer.SeverityWarning, Event: maprenderer.EventImage, Code: -1, Message: `Image "a"`}, true))
	assert.Equal(t, 1, observer.UncheckedCount())

	// checked messages aren't counted again
	assert.Equal(t, 0, observer.Count(warning, false))

	assert.Equal(t, []Message{debug}, observer.Unchecked())
	assert.Equal(t, 0, observer.UncheckedCount())
	assert.Empty(t, observer.Unchecked())
	assert.False(t, observer.Empty())
}

func TestLoggerObserver(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	observer := NewLoggerObserver(logpkg.NewLogger(buf, logpkg.LogLevelInfo))

	observer.OnRecord(Message{Severity: maprenderer.SeverityDebug, Event: maprenderer.EventRender, Code: -1, Message: "not logged"})
	observer.OnRecord(Message{Severity: maprenderer.SeverityWarning, Event: maprenderer.EventImage, Code: -1, Message: "image missing"})
	observer.OnRecord(Message{Severity: maprenderer.SeverityError, Event: maprenderer.EventHTTPRequest, Code: -1, Message: "failed to load style"})

	output := buf.String()
	assert.NotContains(t, output, "not logged")
	assert.Contains(t, output, "WARN: [Image] image missing")
	assert.Contains(t, output, "ERROR: [HttpRequest] failed to load style")
}

func TestMessage_String(t *testing.T) {
	message := Message{Severity: maprenderer.SeverityWarning, Event: maprenderer.EventImage, Code: -1, Message: "image missing"}
	assert.Equal(t, `["Warning", "Image", -1, "image missing"]`, message.String())
}

func TestNewMap_styleWarnings(t *testing.T) {
	observer := NewRecordingLogObserver()

	m, err := NewMap(`{
		"version": 8,
		"layers": [
			{"id": "sky", "type": "sky"},
			{"id": "bg", "type": "background", "paint": {"background-color": "#FF0000", "background-made-up": 1}}
		]
	}`, WithLogObserver(observer))
	require.NoError(t, err)
	defer m.Release()

	layers, err := m.ListLayers()
	require.NoError(t, err)
	assert.Equal(t, []string{"bg"}, layers)

	assert.Equal(t, 1, observer.Count(Message{
		Severity: maprenderer.SeverityWarning,
		Event:    maprenderer.EventStyle,
		Code:     -1,
		Message:  `layer "sky" has an unknown type "sky" and was skipped`,
	}, false))
	assert.Equal(t, 1, observer.Count(Message{
		Severity: maprenderer.SeverityWarning,
		Event:    maprenderer.EventStyle,
		Code:     -1,
		Message:  `paint property "background-made-up" was ignored`,
	}, true))
}
