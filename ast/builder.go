// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/creachadair/bsontree"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
)

// Build replays events into a new Builder using the DefaultFactory, and
// returns the resulting root document. It reports an error if the events do
// not describe a complete document.
func Build(events []bsontree.Event) (*Document, error) {
	b := NewBuilder(nil)
	if err := bsontree.Replay(events, b); err != nil {
		return nil, err
	}
	root, err := b.Root()
	if err != nil {
		return nil, err
	} else if b.Depth() != 0 {
		return nil, errors.New("incomplete document")
	}
	return root.(*Document), nil
}

// A Builder implements the bsontree.Handler interface to construct syntax
// trees for BSON documents.
//
// Each container is attached to its parent as soon as it is begun, and is
// filled in place as later events arrive, so the tree reported by Root is
// valid (though possibly incomplete) at any point during a build.
//
// A Builder is not safe for concurrent use by multiple goroutines.
type Builder struct {
	fac    Factory
	log    *logrus.Entry
	strict bool
	maxGap int

	root Map
	stk  []container // open containers, innermost last
	keys []string    // keys of the open containers, excluding the root
}

// A container is an open document or array. Exactly one field is non-nil.
type container struct {
	m Map
	s Sequence
}

var quiet = func() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}()

// NewBuilder constructs a new Builder that uses f to construct values.
// If f == nil, DefaultFactory is used.
func NewBuilder(f Factory) *Builder {
	if f == nil {
		f = DefaultFactory
	}
	return &Builder{fac: f, log: quiet, maxGap: DefaultMaxIndexGap}
}

// DefaultMaxIndexGap is the largest number of Null values a new Builder will
// insert to pad an array for an element whose index is past the end.
const DefaultMaxIndexGap = 1 << 16

// StrictIndices configures b to require (true) or not require (false) that
// the keys of array elements be consecutive offsets starting from 0. When
// strict checking is off, which is the default, an element may replace an
// earlier element, and an element past the end of the array pads the gap
// with Null values, up to the limit set by MaxIndexGap.
func (b *Builder) StrictIndices(ok bool) { b.strict = ok }

// MaxIndexGap sets the largest number of Null values b will insert to pad an
// array when an element's index is past the end. An element that would need
// a larger gap is rejected with a *bsontree.ProtocolError. If n < 0, the gap
// is unlimited. It has no effect when StrictIndices is enabled.
func (b *Builder) MaxIndexGap(n int) { b.maxGap = n }

// SetLogger configures b to log events to log. Each event is logged at trace
// level, and rejected events at debug level. If log == nil, logging is
// disabled.
func (b *Builder) SetLogger(log *logrus.Entry) {
	if log == nil {
		log = quiet
	}
	b.log = log
}

// Root returns the root document most recently begun by b. The document is
// incomplete until its matching End has been delivered. If no root has been
// begun, Root reports bsontree.ErrNotStarted.
func (b *Builder) Root() (Value, error) {
	if b.root == nil {
		return nil, bsontree.ErrNotStarted
	}
	return b.root, nil
}

// Depth reports the number of containers currently open.
func (b *Builder) Depth() int { return len(b.stk) }

// Reset discards the state of b, so that it may be used to build another
// document.
func (b *Builder) Reset() {
	b.root = nil
	b.stk = b.stk[:0]
	b.keys = b.keys[:0]
}

func (b *Builder) push(c container) { b.stk = append(b.stk, c) }

func (b *Builder) top() container { return b.stk[len(b.stk)-1] }

// BeginRoot implements part of the bsontree.Handler interface.
func (b *Builder) BeginRoot() error {
	b.trace("BeginRoot", "", nil)
	if len(b.stk) != 0 {
		return b.protocolError("BeginRoot", "root document already started")
	}
	b.root = b.fac.NewDocument()
	b.push(container{m: b.root})
	return nil
}

// BeginDocument implements part of the bsontree.Handler interface.
func (b *Builder) BeginDocument(key string) error {
	b.trace("BeginDocument", key, nil)
	m := b.fac.NewDocument()
	if err := b.put("BeginDocument", key, m); err != nil {
		return err
	}
	b.keys = append(b.keys, key)
	b.push(container{m: m})
	return nil
}

// BeginArray implements part of the bsontree.Handler interface.
func (b *Builder) BeginArray(key string) error {
	b.trace("BeginArray", key, nil)
	s := b.fac.NewArray()
	if err := b.put("BeginArray", key, s); err != nil {
		return err
	}
	b.keys = append(b.keys, key)
	b.push(container{s: s})
	return nil
}

// End implements part of the bsontree.Handler interface.
func (b *Builder) End() error {
	b.trace("End", "", nil)
	if len(b.stk) == 0 {
		return b.protocolError("End", "no open container")
	}
	b.stk = b.stk[:len(b.stk)-1]
	if n := len(b.keys); n > 0 {
		b.keys = b.keys[:n-1]
	} else if len(b.stk) > 0 {
		return b.protocolError("End", "container stack and key stack disagree")
	}
	return nil
}

// Value implements part of the bsontree.Handler interface.
func (b *Builder) Value(key string, v bsontree.Scalar) error {
	b.trace("Value", key, v)
	if len(b.stk) == 0 {
		return b.protocolError("Value", "no open container")
	}
	val, err := b.convert(v)
	if err != nil {
		b.log.WithField("key", key).Debugf("Value rejected: %v", err)
		return err
	} else if val == nil {
		b.log.WithFields(logrus.Fields{"key": key, "kind": v.Kind}).Debug("Value dropped")
		return nil
	}
	return b.put("Value", key, val)
}

// Null implements part of the bsontree.Handler interface.
func (b *Builder) Null(key string) error {
	b.trace("Null", key, nil)
	return b.put("Null", key, Null)
}

// Undefined implements part of the bsontree.Handler interface.
// An undefined value is not stored, so key does not appear in the result.
func (b *Builder) Undefined(key string) error {
	b.trace("Undefined", key, nil)
	if len(b.stk) == 0 {
		return b.protocolError("Undefined", "no open container")
	}
	return nil
}

// convert returns the value corresponding to v. It returns nil without error
// for a value that is not stored.
func (b *Builder) convert(v bsontree.Scalar) (Value, error) {
	switch v.Kind {
	case bsontree.KindBool:
		return Bool(v.Bool), nil
	case bsontree.KindDouble:
		return Double(v.Float), nil
	case bsontree.KindInt32:
		return Int32(v.Int), nil
	case bsontree.KindInt64:
		return Int64(v.Int), nil
	case bsontree.KindDateTime:
		return DateTime(v.Int), nil
	case bsontree.KindString:
		return String(v.Text), nil
	case bsontree.KindSymbol:
		return NewSymbol(v.Text), nil
	case bsontree.KindCode:
		return Code(v.Text), nil
	case bsontree.KindRegex:
		return b.fac.Regex(v.Text, ParseRegexFlags(v.Options)), nil
	case bsontree.KindTimestamp:
		return NewTimestamp(v.Time, v.Inc), nil
	case bsontree.KindObjectID:
		return b.fac.ObjectID(v.ID.Hex())
	case bsontree.KindBinary:
		return b.fac.Binary(absSubtype(v.Subtype), v.Data), nil
	case bsontree.KindBinaryArray:
		return b.fac.LegacyBinary(v.Data), nil
	case bsontree.KindMinKey:
		return b.fac.MinKey(), nil
	case bsontree.KindMaxKey:
		return b.fac.MaxKey(), nil
	case bsontree.KindNull:
		return Null, nil
	case bsontree.KindDBRef, bsontree.KindUndefined:
		return nil, nil // not stored
	default:
		return nil, fmt.Errorf("unsupported scalar kind %v", v.Kind)
	}
}

// absSubtype returns the magnitude of a binary subtype as reported by the
// decoder, which treats the subtype byte as signed.
func absSubtype(t int8) byte {
	if t < 0 {
		return byte(-int16(t))
	}
	return byte(t)
}

// put stores v under key in the innermost open container.
func (b *Builder) put(op, key string, v Value) error {
	if len(b.stk) == 0 {
		return b.protocolError(op, "no open container")
	}
	top := b.top()
	if top.m != nil {
		top.m.Put(key, v)
		return nil
	}
	i, err := strconv.ParseUint(key, 10, 31)
	if err != nil {
		b.log.WithFields(logrus.Fields{"op": op, "key": key}).Debug("invalid array index")
		return bsontree.NewKeyFormatError(key, err)
	}
	n := top.s.Len()
	if b.strict && int(i) != n {
		return b.protocolError(op, fmt.Sprintf("array index %d out of order, want %d", i, n))
	} else if b.maxGap >= 0 && int(i)-n > b.maxGap {
		return b.protocolError(op, fmt.Sprintf("array index %d too far past end %d", i, n))
	}
	top.s.PutIndex(int(i), v)
	return nil
}

func (b *Builder) protocolError(op, msg string) error {
	err := &bsontree.ProtocolError{Op: op, Depth: len(b.stk), Message: msg}
	b.log.WithField("op", op).Debug(err)
	return err
}

func (b *Builder) trace(op, key string, v any) {
	if !b.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	e := b.log.WithFields(logrus.Fields{"op": op, "key": key, "depth": len(b.stk)})
	if v == nil {
		e.Trace(op)
	} else {
		e.Tracef("%s %# v", op, pretty.Formatter(v))
	}
}
