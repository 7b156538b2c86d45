package maprenderer

import "fmt"

type EventSeverity int

const (
	SeverityDebug EventSeverity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s EventSeverity) String() string {
	switch s {
	case SeverityDebug:
		return "Debug"
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return fmt.Sprintf("EventSeverity(%d)", int(s))
	}
}

type Event string

const (
	EventGeneral     Event = "General"
	EventSetup       Event = "Setup"
	EventParseStyle  Event = "ParseStyle"
	EventRender      Event = "Render"
	EventStyle       Event = "Style"
	EventHTTPRequest Event = "HttpRequest"
	EventImage       Event = "Image"
	EventGlyph       Event = "Glyph"
)

// LogMessage is an event emitted by the engine while loading or rendering
type LogMessage struct {
	Severity EventSeverity
	Event    Event
	Code     int64
	Message  string
}

func (m LogMessage) String() string {
	return fmt.Sprintf("[%q, %q, %d, %q]", m.Severity, m.Event, m.Code, m.Message)
}

type LogFunc func(LogMessage)
