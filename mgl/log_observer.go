package mgl

import (
	"strings"
	"sync"

	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/goutil/logpkg"
)

type Message = maprenderer.LogMessage

// LogObserver receives the events the engine emits while loading and rendering.
// Returning true marks the event as handled.
type LogObserver interface {
	OnRecord(message Message) bool
}

type recordedMessage struct {
	message Message
	checked bool
}

// RecordingLogObserver keeps every event, so that tests can check which events were emitted
type RecordingLogObserver struct {
	mu       sync.Mutex
	messages []*recordedMessage
}

func NewRecordingLogObserver() *RecordingLogObserver {
	return &RecordingLogObserver{}
}

func (o *RecordingLogObserver) OnRecord(message Message) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.messages = append(o.messages, &recordedMessage{message: message})
	return true
}

func (o *RecordingLogObserver) Empty() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.messages) == 0
}

// UncheckedCount counts the messages not yet matched by Count or returned by Unchecked
func (o *RecordingLogObserver) UncheckedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	count := 0
	for _, recorded := range o.messages {
		if !recorded.checked {
			count++
		}
	}
	return count
}

// Count counts the unchecked messages with the same severity, event and code as msg.
// If substring is true the message text only needs to contain msg.Message, otherwise it must be equal.
// Matched messages are marked as checked.
func (o *RecordingLogObserver) Count(msg Message, substring bool) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	count := 0
	for _, recorded := range o.messages {
		if recorded.checked || !matches(recorded.message, msg, substring) {
			continue
		}
		recorded.checked = true
		count++
	}
	return count
}

// Unchecked returns the unchecked messages and marks them as checked
func (o *RecordingLogObserver) Unchecked() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []Message
	for _, recorded := range o.messages {
		if recorded.checked {
			continue
		}
		recorded.checked = true
		out = append(out, recorded.message)
	}
	return out
}

func matches(recorded, msg Message, substring bool) bool {
	if recorded.Severity != msg.Severity || recorded.Event != msg.Event || recorded.Code != msg.Code {
		return false
	}

	if substring {
		return strings.Contains(recorded.Message, msg.Message)
	}
	return recorded.Message == msg.Message
}

// LoggerObserver writes engine events to a logger
type LoggerObserver struct {
	logger *logpkg.Logger
}

func NewLoggerObserver(logger *logpkg.Logger) *LoggerObserver {
	return &LoggerObserver{logger}
}

func (o *LoggerObserver) OnRecord(message Message) bool {
	switch message.Severity {
	case maprenderer.SeverityDebug:
		o.logger.Debug("[%s] %s", message.Event, message.Message)
	case maprenderer.SeverityInfo:
		o.logger.Info("[%s] %s", message.Event, message.Message)
	case maprenderer.SeverityWarning:
		o.logger.Warn("[%s] %s", message.Event, message.Message)
	default:
		o.logger.Error("[%s] %s", message.Event, message.Message)
	}
	return true
}
