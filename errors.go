// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package bsontree

import (
	"errors"
	"fmt"
)

// ErrNotStarted is reported by a builder whose root was requested before any
// root document was begun.
var ErrNotStarted = errors.New("document not started")

// ProtocolError is the concrete type of errors reported when the sequence of
// events delivered to a handler violates the nesting discipline, for example
// a second root begun while another is open, or an End with no open
// container.
type ProtocolError struct {
	Op      string // the event that failed, e.g., "BeginRoot"
	Depth   int    // the number of open containers when the event arrived
	Message string
}

// Error satisfies the error interface.
func (p *ProtocolError) Error() string {
	return fmt.Sprintf("%s at depth %d: %s", p.Op, p.Depth, p.Message)
}

// KeyFormatError is the concrete type of errors reported when a key that
// addresses an array element is not a non-negative base-10 integer.
type KeyFormatError struct {
	Key string

	err error
}

// NewKeyFormatError constructs a *KeyFormatError for key, wrapping err if it
// is not nil.
func NewKeyFormatError(key string, err error) *KeyFormatError {
	return &KeyFormatError{Key: key, err: err}
}

// Error satisfies the error interface.
func (k *KeyFormatError) Error() string {
	return fmt.Sprintf("invalid array index %q", k.Key)
}

// Unwrap supports error wrapping.
func (k *KeyFormatError) Unwrap() error { return k.err }

// EventError is the concrete type of errors reported by Replay when a handler
// rejects an event.
type EventError struct {
	Index int   // offset of the event in the replayed sequence
	Event Event // the event that was rejected

	err error
}

// Error satisfies the error interface.
func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (%v): %v", e.Index, e.Event.Type, e.err)
}

// Unwrap supports error wrapping.
func (e *EventError) Unwrap() error { return e.err }
