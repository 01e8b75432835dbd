// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package bsontree

import "fmt"

// A Handler handles events from decoding a BSON document. If a method reports
// an error, decoding stops and that error is returned to the caller.
//
// The decoder delivers events in depth-first document order. Each container
// opened by BeginRoot, BeginDocument, or BeginArray is closed by exactly one
// call to End. Keys for the elements of an array are the decimal offsets of
// the elements, "0", "1", "2", and so on.
type Handler interface {
	// Begin the top-level document. This must be the first event.
	BeginRoot() error

	// Begin an embedded document stored under key in the current container.
	BeginDocument(key string) error

	// Begin an array stored under key in the current container.
	BeginArray(key string) error

	// End the most-recently-begun document or array.
	End() error

	// Report a scalar value stored under key in the current container.
	Value(key string, v Scalar) error

	// Report an explicit null stored under key in the current container.
	Null(key string) error

	// Report an undefined value for key in the current container.
	Undefined(key string) error
}

// EventType identifies the type of an Event.
type EventType int

const (
	EventInvalid EventType = iota
	EventBeginRoot
	EventBeginDocument
	EventBeginArray
	EventEnd
	EventValue
	EventNull
	EventUndefined
)

var eventStr = [...]string{
	EventInvalid:       "Invalid",
	EventBeginRoot:     "BeginRoot",
	EventBeginDocument: "BeginDocument",
	EventBeginArray:    "BeginArray",
	EventEnd:           "End",
	EventValue:         "Value",
	EventNull:          "Null",
	EventUndefined:     "Undefined",
}

func (t EventType) String() string {
	if t >= 0 && int(t) < len(eventStr) {
		return eventStr[t]
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(data []byte) error {
	for i, s := range eventStr {
		if i != int(EventInvalid) && s == string(data) {
			*t = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", data)
}

// An Event records a single call to a Handler method.
type Event struct {
	Type  EventType
	Key   string // for all types except BeginRoot and End
	Value Scalar // for EventValue only
}

func (e Event) String() string {
	switch e.Type {
	case EventBeginRoot, EventEnd:
		return e.Type.String()
	case EventValue:
		return fmt.Sprintf("%v %q %v", e.Type, e.Key, e.Value.Kind)
	default:
		return fmt.Sprintf("%v %q", e.Type, e.Key)
	}
}

// Deliver invokes the method of h corresponding to e.
func (e Event) Deliver(h Handler) error {
	switch e.Type {
	case EventBeginRoot:
		return h.BeginRoot()
	case EventBeginDocument:
		return h.BeginDocument(e.Key)
	case EventBeginArray:
		return h.BeginArray(e.Key)
	case EventEnd:
		return h.End()
	case EventValue:
		return h.Value(e.Key, e.Value)
	case EventNull:
		return h.Null(e.Key)
	case EventUndefined:
		return h.Undefined(e.Key)
	default:
		return fmt.Errorf("invalid event type %v", e.Type)
	}
}

// Replay delivers events to h in order. If h reports an error for an event,
// replay stops and Replay returns an error of concrete type *EventError
// describing the event that failed.
//
// Replay does not check the nesting of the events; that is the concern of
// the handler.
func Replay(events []Event, h Handler) error {
	for i, e := range events {
		if err := e.Deliver(h); err != nil {
			return &EventError{Index: i, Event: e, err: err}
		}
	}
	return nil
}

// A Recorder is a Handler that records the events it receives.
// The zero value is ready for use.
type Recorder struct {
	Events []Event
}

func (r *Recorder) add(e Event) error { r.Events = append(r.Events, e); return nil }

// BeginRoot implements part of the Handler interface.
func (r *Recorder) BeginRoot() error { return r.add(Event{Type: EventBeginRoot}) }

// BeginDocument implements part of the Handler interface.
func (r *Recorder) BeginDocument(key string) error {
	return r.add(Event{Type: EventBeginDocument, Key: key})
}

// BeginArray implements part of the Handler interface.
func (r *Recorder) BeginArray(key string) error {
	return r.add(Event{Type: EventBeginArray, Key: key})
}

// End implements part of the Handler interface.
func (r *Recorder) End() error { return r.add(Event{Type: EventEnd}) }

// Value implements part of the Handler interface.
func (r *Recorder) Value(key string, v Scalar) error {
	return r.add(Event{Type: EventValue, Key: key, Value: v})
}

// Null implements part of the Handler interface.
func (r *Recorder) Null(key string) error { return r.add(Event{Type: EventNull, Key: key}) }

// Undefined implements part of the Handler interface.
func (r *Recorder) Undefined(key string) error {
	return r.add(Event{Type: EventUndefined, Key: key})
}

// Reset discards the recorded events.
func (r *Recorder) Reset() { r.Events = r.Events[:0] }
