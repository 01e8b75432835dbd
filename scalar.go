// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package bsontree

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A Kind identifies the type of a scalar value. The values of the constants
// are the BSON element type codes.
type Kind byte

const (
	KindInvalid       Kind = 0x00
	KindDouble        Kind = 0x01
	KindString        Kind = 0x02
	KindDocument      Kind = 0x03
	KindArray         Kind = 0x04
	KindBinary        Kind = 0x05
	KindUndefined     Kind = 0x06
	KindObjectID      Kind = 0x07
	KindBool          Kind = 0x08
	KindDateTime      Kind = 0x09
	KindNull          Kind = 0x0A
	KindRegex         Kind = 0x0B
	KindDBRef         Kind = 0x0C
	KindCode          Kind = 0x0D
	KindSymbol        Kind = 0x0E
	KindCodeWithScope Kind = 0x0F
	KindInt32         Kind = 0x10
	KindTimestamp     Kind = 0x11
	KindInt64         Kind = 0x12
	KindMaxKey        Kind = 0x7F
	KindMinKey        Kind = 0xFF

	// KindBinaryArray is not a BSON element type. It marks the old-style
	// binary encoding, whose payload is reported without a subtype.
	KindBinaryArray Kind = 0x85
)

var kindStr = map[Kind]string{
	KindInvalid:       "invalid",
	KindDouble:        "double",
	KindString:        "string",
	KindDocument:      "document",
	KindArray:         "array",
	KindBinary:        "binary",
	KindUndefined:     "undefined",
	KindObjectID:      "oid",
	KindBool:          "bool",
	KindDateTime:      "date",
	KindNull:          "null",
	KindRegex:         "regex",
	KindDBRef:         "dbref",
	KindCode:          "code",
	KindSymbol:        "symbol",
	KindCodeWithScope: "codewscope",
	KindInt32:         "int32",
	KindTimestamp:     "timestamp",
	KindInt64:         "int64",
	KindMaxKey:        "maxkey",
	KindMinKey:        "minkey",
	KindBinaryArray:   "binarray",
}

func (k Kind) String() string {
	if s, ok := kindStr[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(0x%02x)", byte(k))
}

// ParseKind returns the Kind whose name is s, as reported by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindStr {
		if name == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown kind %q", s)
}

// A Scalar is the payload of a scalar value event. Only the fields relevant
// to the Kind are meaningful:
//
//	Kind           | Fields
//	-------------- | ---------------------------------------------
//	bool           | Bool
//	double         | Float
//	int32, int64   | Int
//	date           | Int (milliseconds since the Unix epoch, UTC)
//	string, symbol | Text
//	code           | Text
//	regex          | Text (pattern), Options (flag characters)
//	timestamp      | Time (seconds since the epoch), Inc (increment)
//	oid            | ID
//	dbref          | Text (namespace), ID
//	binary         | Subtype, Data
//	binarray       | Data
//	minkey, maxkey | --
type Scalar struct {
	Kind Kind

	Bool    bool
	Float   float64
	Int     int64
	Text    string
	Options string
	Time    uint32
	Inc     uint32
	ID      primitive.ObjectID
	Subtype int8
	Data    []byte
}

// Bool returns a boolean scalar.
func Bool(v bool) Scalar { return Scalar{Kind: KindBool, Bool: v} }

// Double returns a floating-point scalar.
func Double(v float64) Scalar { return Scalar{Kind: KindDouble, Float: v} }

// Int32 returns a 32-bit integer scalar.
func Int32(v int32) Scalar { return Scalar{Kind: KindInt32, Int: int64(v)} }

// Int64 returns a 64-bit integer scalar.
func Int64(v int64) Scalar { return Scalar{Kind: KindInt64, Int: v} }

// DateTime returns a date scalar for the given milliseconds since the Unix
// epoch.
func DateTime(millis int64) Scalar { return Scalar{Kind: KindDateTime, Int: millis} }

// String returns a string scalar.
func String(s string) Scalar { return Scalar{Kind: KindString, Text: s} }

// Symbol returns a symbol scalar.
func Symbol(s string) Scalar { return Scalar{Kind: KindSymbol, Text: s} }

// Code returns a JavaScript code scalar.
func Code(s string) Scalar { return Scalar{Kind: KindCode, Text: s} }

// Regex returns a regular expression scalar with the given flag characters.
func Regex(pattern, flags string) Scalar {
	return Scalar{Kind: KindRegex, Text: pattern, Options: flags}
}

// Timestamp returns a timestamp scalar. Note that the arguments are in the
// order the decoder reports them, seconds first.
func Timestamp(time, inc uint32) Scalar {
	return Scalar{Kind: KindTimestamp, Time: time, Inc: inc}
}

// OID returns an object ID scalar.
func OID(id primitive.ObjectID) Scalar { return Scalar{Kind: KindObjectID, ID: id} }

// DBRef returns a database reference scalar.
func DBRef(ns string, id primitive.ObjectID) Scalar {
	return Scalar{Kind: KindDBRef, Text: ns, ID: id}
}

// Binary returns a binary scalar with the given subtype.
func Binary(subtype int8, data []byte) Scalar {
	return Scalar{Kind: KindBinary, Subtype: subtype, Data: data}
}

// BinaryArray returns an old-style binary scalar.
func BinaryArray(data []byte) Scalar { return Scalar{Kind: KindBinaryArray, Data: data} }

// MinKey returns a MinKey scalar.
func MinKey() Scalar { return Scalar{Kind: KindMinKey} }

// MaxKey returns a MaxKey scalar.
func MaxKey() Scalar { return Scalar{Kind: KindMaxKey} }
