package notifier

import "time"

// Event is a best-effort announcement of an engine state change. Events
// are published only after the owning transaction commits; a lost event
// never rolls the engine back.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
	TS   int64  `json:"ts"`
}

func NewEvent(eventType string, data any) Event {
	return Event{Type: eventType, Data: data, TS: time.Now().UnixMilli()}
}

type Notifier interface {
	Publish(evt Event)
}
