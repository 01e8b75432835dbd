// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

// A Factory constructs the values a Builder stores in the tree. The builder
// does not depend on the representation of the values it returns, except
// that containers must implement the Map and Sequence interfaces.
type Factory interface {
	// NewDocument returns a new empty document.
	NewDocument() Map

	// NewArray returns a new empty array.
	NewArray() Sequence

	// Regex returns a regular expression value.
	Regex(pattern string, flags RegexFlags) Value

	// ObjectID returns an object ID value given its 24-digit hexadecimal
	// representation.
	ObjectID(hex string) (Value, error)

	// MinKey returns the MinKey sentinel.
	MinKey() Value

	// MaxKey returns the MaxKey sentinel.
	MaxKey() Value

	// Binary returns a binary value with the given subtype. The factory may
	// retain data.
	Binary(subtype byte, data []byte) Value

	// LegacyBinary returns a binary value in the old binary encoding. The
	// factory may retain data.
	LegacyBinary(data []byte) Value
}

// DefaultFactory is a Factory that constructs the value types defined by
// this package.
var DefaultFactory Factory = defaultFactory{}

type defaultFactory struct{}

func (defaultFactory) NewDocument() Map               { return new(Document) }
func (defaultFactory) NewArray() Sequence             { return new(Array) }
func (defaultFactory) MinKey() Value                  { return MinKey{} }
func (defaultFactory) MaxKey() Value                  { return MaxKey{} }
func (defaultFactory) LegacyBinary(data []byte) Value { return LegacyBinary(data) }

func (defaultFactory) Regex(pattern string, flags RegexFlags) Value {
	return Regex{Pattern: pattern, Flags: flags}
}

func (defaultFactory) ObjectID(hex string) (Value, error) {
	id, err := ParseObjectID(hex)
	if err != nil {
		return nil, err
	}
	return id, nil
}

func (defaultFactory) Binary(subtype byte, data []byte) Value {
	return Binary{Subtype: subtype, Data: data}
}
