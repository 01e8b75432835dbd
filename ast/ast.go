// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a syntax tree for BSON documents, and a builder that
// constructs syntax trees from decoder events.
package ast

import (
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/creachadair/bsontree"
)

// A Value is an arbitrary BSON value.
type Value interface {
	// Kind reports the BSON element type of the value.
	Kind() bsontree.Kind

	// JSON renders the value as relaxed MongoDB Extended JSON.
	JSON() string
}

// A Map is a Value that stores values under string keys.
type Map interface {
	Value

	// Put stores v under key, replacing any existing value for key in its
	// original position, or appending a new entry.
	Put(key string, v Value)
}

// A Sequence is a Value that stores values at integer offsets.
type Sequence interface {
	Value

	// Len reports the number of elements in the sequence.
	Len() int

	// PutIndex stores v at offset i ≥ 0. If i ≥ Len(), the sequence is
	// extended, and any elements between the old end and i are Null.
	PutIndex(i int, v Value)
}

// A Document is an ordered collection of key-value members with unique keys.
// The zero value is an empty document ready for use.
type Document struct {
	keys []string
	vals []Value
	pos  map[string]int
}

// A Member is a single key-value pair, used to construct a Document.
type Member struct {
	Key   string
	Value Value
}

// Field constructs a member with the given key and value.
func Field(key string, value Value) Member { return Member{Key: key, Value: value} }

// NewDocument constructs a document from the given members. If a key occurs
// more than once, the last value wins.
func NewDocument(ms ...Member) *Document {
	d := new(Document)
	for _, m := range ms {
		d.Put(m.Key, m.Value)
	}
	return d
}

// Kind satisfies the Value interface.
func (*Document) Kind() bsontree.Kind { return bsontree.KindDocument }

// Len reports the number of members in d.
func (d *Document) Len() int { return len(d.keys) }

// Keys returns a copy of the keys of d in order.
func (d *Document) Keys() []string { return slices.Clone(d.keys) }

// At returns the key and value of the ith member of d.
// It panics if i is out of range.
func (d *Document) At(i int) (string, Value) { return d.keys[i], d.vals[i] }

// Get returns the value stored under key, and reports whether it was found.
func (d *Document) Get(key string) (Value, bool) {
	if i, ok := d.pos[key]; ok {
		return d.vals[i], true
	}
	return nil, false
}

// Has reports whether d has a member with the given key.
func (d *Document) Has(key string) bool { _, ok := d.pos[key]; return ok }

// Put satisfies the Map interface.
func (d *Document) Put(key string, v Value) {
	if i, ok := d.pos[key]; ok {
		d.vals[i] = v
		return
	}
	if d.pos == nil {
		d.pos = make(map[string]int)
	}
	d.pos[key] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, v)
}

// Delete removes the member with the given key, and reports whether it was
// present. The order of the remaining members is preserved.
func (d *Document) Delete(key string) bool {
	i, ok := d.pos[key]
	if !ok {
		return false
	}
	d.keys = slices.Delete(d.keys, i, i+1)
	d.vals = slices.Delete(d.vals, i, i+1)
	delete(d.pos, key)
	for j := i; j < len(d.keys); j++ {
		d.pos[d.keys[j]] = j
	}
	return true
}

// All returns an iterator over the members of d in order.
func (d *Document) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i, key := range d.keys {
			if !yield(key, d.vals[i]) {
				return
			}
		}
	}
}

// Equal reports whether d and o have the same members in the same order.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	return slices.Equal(d.keys, o.keys) && slices.EqualFunc(d.vals, o.vals, Equal)
}

// JSON satisfies the Value interface.
func (d *Document) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(quote(key))
		sb.WriteByte(':')
		sb.WriteString(d.vals[i].JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (d *Document) String() string { return d.JSON() }

// An Array is a sequence of values. The zero value is an empty array ready
// for use.
type Array struct {
	vals []Value
}

// NewArray constructs an array containing the given values.
func NewArray(vs ...Value) *Array { return &Array{vals: slices.Clone(vs)} }

// Kind satisfies the Value interface.
func (*Array) Kind() bsontree.Kind { return bsontree.KindArray }

// Len satisfies the Sequence interface.
func (a *Array) Len() int { return len(a.vals) }

// At returns the ith element of a. It panics if i is out of range.
func (a *Array) At(i int) Value { return a.vals[i] }

// Values returns a copy of the elements of a.
func (a *Array) Values() []Value { return slices.Clone(a.vals) }

// Append adds vs to the end of a.
func (a *Array) Append(vs ...Value) { a.vals = append(a.vals, vs...) }

// PutIndex satisfies the Sequence interface.
func (a *Array) PutIndex(i int, v Value) {
	if i < 0 {
		panic(fmt.Sprintf("negative array index %d", i))
	}
	for len(a.vals) < i {
		a.vals = append(a.vals, Null)
	}
	if i == len(a.vals) {
		a.vals = append(a.vals, v)
	} else {
		a.vals[i] = v
	}
}

// All returns an iterator over the elements of a in order.
func (a *Array) All() iter.Seq2[int, Value] { return slices.All(a.vals) }

// Equal reports whether a and o have equal elements in the same order.
func (a *Array) Equal(o *Array) bool {
	if a == nil || o == nil {
		return a == o
	}
	return slices.EqualFunc(a.vals, o.vals, Equal)
}

// JSON satisfies the Value interface.
func (a *Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.vals {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a *Array) String() string { return a.JSON() }

// Equal reports whether a and b are equal values of the same kind.
// Documents and arrays are compared element-wise, in order. Values of other
// types are compared with ==, or with reflect.DeepEqual if their type is not
// comparable.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch t := a.(type) {
	case *Document:
		u, ok := b.(*Document)
		return ok && t.Equal(u)
	case *Array:
		u, ok := b.(*Array)
		return ok && t.Equal(u)
	case Binary:
		u, ok := b.(Binary)
		return ok && t.Subtype == u.Subtype && slices.Equal(t.Data, u.Data)
	case LegacyBinary:
		u, ok := b.(LegacyBinary)
		return ok && slices.Equal(t, u)
	case Double:
		u, ok := b.(Double)
		return ok && (t == u || (t != t && u != u)) // NaN equals NaN here
	}
	if !reflect.TypeOf(a).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// ToValue converts a Go value into an equivalent BSON Value.
//
// Booleans, numbers, strings, byte slices, time.Time, and nil are converted
// to the corresponding scalar types. Slices of values become arrays, and
// string-keyed maps and slices of members become documents; map keys are
// sorted lexicographically. A Value is returned without conversion. ToValue
// panics for values of any other type.
func ToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case Value:
		return t
	case bool:
		return Bool(t)
	case float32:
		return Double(t)
	case float64:
		return Double(t)
	case int32:
		return Int32(t)
	case int64:
		return Int64(t)
	case int:
		if int(int32(t)) == t {
			return Int32(t)
		}
		return Int64(t)
	case string:
		return String(t)
	case []byte:
		return Binary{Subtype: SubtypeGeneric, Data: t}
	case time.Time:
		return NewDateTime(t)
	case []Value:
		return NewArray(t...)
	case []any:
		a := &Array{vals: make([]Value, len(t))}
		for i, elt := range t {
			a.vals[i] = ToValue(elt)
		}
		return a
	case []Member:
		return NewDocument(t...)
	case map[string]any:
		d := new(Document)
		for _, key := range slices.Sorted(maps.Keys(t)) {
			d.Put(key, ToValue(t[key]))
		}
		return d
	default:
		panic(fmt.Sprintf("unsupported value type %T", v))
	}
}

