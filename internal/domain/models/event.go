package models

import (
	"strings"
	"time"
)

// EventTag is the closed set of instrumentation event kinds the ingestor
// understands. Hook scripts emit free-form tag strings; ParseEventTag maps
// them into this type at the ingestion boundary so consumers never dispatch
// on raw prefixes.
type EventTag string

const (
	EventTagPermission EventTag = "PERMISSION"
	EventTagNetwork    EventTag = "NETWORK"
	EventTagFileWrite  EventTag = "FILE_WRITE"
	EventTagUnknown    EventTag = "UNKNOWN"
)

// ParseEventTag maps a raw hook tag string to an EventTag. Unrecognized
// tags fold into EventTagUnknown rather than failing.
func ParseEventTag(raw string) EventTag {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PERMISSION":
		return EventTagPermission
	case "NETWORK":
		return EventTagNetwork
	case "FILE_WRITE":
		return EventTagFileWrite
	default:
		return EventTagUnknown
	}
}

// InstrumentationEvent is one tagged observation from a runtime hook.
// Events are consumed exactly once by the ingestor and are not retained
// after aggregation.
type InstrumentationEvent struct {
	Tag       string    `json:"tag"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// ParseInstrumentationEvent decodes the "TAG:payload" wire format the hook
// scripts write, e.g. "NETWORK:http://example.com". A line without a colon
// becomes an event whose tag is the whole line and whose payload is empty.
func ParseInstrumentationEvent(line string, ts time.Time) InstrumentationEvent {
	tag, payload, _ := strings.Cut(line, ":")
	return InstrumentationEvent{
		Tag:       tag,
		Payload:   payload,
		Timestamp: ts,
	}
}
