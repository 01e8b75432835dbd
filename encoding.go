// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package bsontree

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

// ReadEvents decodes a YAML event script from r. A script is a sequence of
// mappings, one per event, for example:
//
//	- op: root
//	- {op: double, key: x, value: 1.5}
//	- {op: array, key: xs}
//	- {op: int32, key: "0", value: 1}
//	- op: end
//	- {op: timestamp, key: ts, time: 100, inc: 7}
//	- op: end
//
// The op is one of "root", "document", "array", "end", "null", "undefined",
// or the name of a scalar Kind. An empty input yields no events.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	if err := yaml.NewDecoder(r).Decode(&events); errors.Is(err, io.EOF) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// WriteEvents encodes events to w as a YAML event script in the format
// accepted by ReadEvents.
func WriteEvents(w io.Writer, events []Event) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return enc.Close()
}

var opToType = map[string]EventType{
	"root":      EventBeginRoot,
	"document":  EventBeginDocument,
	"array":     EventBeginArray,
	"end":       EventEnd,
	"null":      EventNull,
	"undefined": EventUndefined,
}

type wireEvent struct {
	Op      string `yaml:"op"`
	Key     string `yaml:"key,omitempty"`
	Value   any    `yaml:"value,omitempty"`
	Flags   string `yaml:"flags,omitempty"`
	NS      string `yaml:"ns,omitempty"`
	Subtype int8   `yaml:"subtype,omitempty"`
	Time    uint32 `yaml:"time,omitempty"`
	Inc     uint32 `yaml:"inc,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (e Event) MarshalYAML() (any, error) {
	w := wireEvent{Key: e.Key}
	switch e.Type {
	case EventBeginRoot, EventEnd:
		w.Key = ""
		fallthrough
	case EventBeginDocument, EventBeginArray, EventNull, EventUndefined:
		for op, t := range opToType {
			if t == e.Type {
				w.Op = op
				break
			}
		}
		return w, nil
	case EventValue:
		// handled below
	default:
		return nil, fmt.Errorf("invalid event type %v", e.Type)
	}

	s := e.Value
	w.Op = s.Kind.String()
	switch s.Kind {
	case KindNull, KindUndefined:
		// The kind names are also the null and undefined ops, so these read
		// back as Null and Undefined events.
	case KindBool:
		w.Value = s.Bool
	case KindDouble:
		w.Value = s.Float
	case KindInt32, KindInt64, KindDateTime:
		w.Value = s.Int
	case KindString, KindSymbol, KindCode:
		w.Value = s.Text
	case KindRegex:
		w.Value, w.Flags = s.Text, s.Options
	case KindTimestamp:
		w.Time, w.Inc = s.Time, s.Inc
	case KindObjectID:
		w.Value = s.ID.Hex()
	case KindDBRef:
		w.Value, w.NS = s.ID.Hex(), s.Text
	case KindBinary:
		w.Value, w.Subtype = hex.EncodeToString(s.Data), s.Subtype
	case KindBinaryArray:
		w.Value = hex.EncodeToString(s.Data)
	case KindMinKey, KindMaxKey:
		// no payload
	default:
		return nil, fmt.Errorf("unsupported scalar kind %v", s.Kind)
	}
	return w, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Event) UnmarshalYAML(node *yaml.Node) error {
	// Op and key are decoded as nodes so that plain scalars such as null and
	// true keep their literal text.
	var w struct {
		Op      yaml.Node `yaml:"op"`
		Key     yaml.Node `yaml:"key"`
		Value   yaml.Node `yaml:"value"`
		Flags   string    `yaml:"flags"`
		NS      string    `yaml:"ns"`
		Subtype int8      `yaml:"subtype"`
		Time    uint32    `yaml:"time"`
		Inc     uint32    `yaml:"inc"`
	}
	if err := node.Decode(&w); err != nil {
		return err
	}
	op, key := w.Op.Value, w.Key.Value
	if t, ok := opToType[op]; ok {
		*e = Event{Type: t, Key: key}
		return nil
	}
	kind, err := ParseKind(op)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	s := Scalar{Kind: kind}
	val := func(v any) error {
		if w.Value.Kind == 0 {
			return fmt.Errorf("line %d: missing value for %v", node.Line, kind)
		}
		return w.Value.Decode(v)
	}
	switch kind {
	case KindBool:
		err = val(&s.Bool)
	case KindDouble:
		err = val(&s.Float)
	case KindInt32, KindInt64, KindDateTime:
		err = val(&s.Int)
	case KindString, KindSymbol, KindCode:
		err = val(&s.Text)
	case KindRegex:
		err = val(&s.Text)
		s.Options = w.Flags
	case KindTimestamp:
		s.Time, s.Inc = w.Time, w.Inc
	case KindObjectID, KindDBRef:
		var text string
		if err = val(&text); err == nil {
			s.ID, err = primitive.ObjectIDFromHex(text)
		}
		s.Text = w.NS
	case KindBinary, KindBinaryArray:
		var text string
		if err = val(&text); err == nil {
			s.Data, err = hex.DecodeString(text)
		}
		if kind == KindBinary {
			s.Subtype = w.Subtype
		}
	case KindMinKey, KindMaxKey:
		// no payload
	default:
		return fmt.Errorf("line %d: unsupported scalar kind %v", node.Line, kind)
	}
	if err != nil {
		return fmt.Errorf("line %d: %v: %w", node.Line, kind, err)
	}
	*e = Event{Type: EventValue, Key: key, Value: s}
	return nil
}
