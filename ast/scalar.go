// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unique"

	"github.com/creachadair/bsontree"
	"github.com/creachadair/bsontree/internal/escape"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func quote(s string) string { return escape.Quote(s) }

// A Bool is a Boolean constant, true or false.
type Bool bool

// Kind satisfies the Value interface.
func (Bool) Kind() bsontree.Kind { return bsontree.KindBool }

// JSON satisfies the Value interface.
func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

// A Double is a 64-bit floating-point value.
type Double float64

// Kind satisfies the Value interface.
func (Double) Kind() bsontree.Kind { return bsontree.KindDouble }

// JSON satisfies the Value interface. Non-finite values are rendered in the
// canonical {"$numberDouble": ...} form.
func (d Double) JSON() string {
	f := float64(d)
	switch {
	case math.IsNaN(f):
		return `{"$numberDouble":"NaN"}`
	case math.IsInf(f, 1):
		return `{"$numberDouble":"Infinity"}`
	case math.IsInf(f, -1):
		return `{"$numberDouble":"-Infinity"}`
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// An Int32 is a 32-bit signed integer value.
type Int32 int32

// Kind satisfies the Value interface.
func (Int32) Kind() bsontree.Kind { return bsontree.KindInt32 }

// JSON satisfies the Value interface.
func (z Int32) JSON() string { return strconv.FormatInt(int64(z), 10) }

// An Int64 is a 64-bit signed integer value.
type Int64 int64

// Kind satisfies the Value interface.
func (Int64) Kind() bsontree.Kind { return bsontree.KindInt64 }

// JSON satisfies the Value interface.
func (z Int64) JSON() string { return strconv.FormatInt(int64(z), 10) }

// A DateTime is an instant in UTC, at millisecond precision, represented as
// milliseconds since the Unix epoch.
type DateTime int64

// NewDateTime returns the DateTime for t, truncated to milliseconds.
func NewDateTime(t time.Time) DateTime { return DateTime(t.UnixMilli()) }

// Kind satisfies the Value interface.
func (DateTime) Kind() bsontree.Kind { return bsontree.KindDateTime }

// Time returns the instant represented by d, in UTC.
func (d DateTime) Time() time.Time { return time.UnixMilli(int64(d)).UTC() }

// JSON satisfies the Value interface. Dates between 1970 and 9999 are
// rendered as ISO 8601 strings, other dates as millisecond counts.
func (d DateTime) JSON() string {
	t := d.Time()
	if d >= 0 && t.Year() <= 9999 {
		return `{"$date":"` + t.Format("2006-01-02T15:04:05.000Z") + `"}`
	}
	return `{"$date":{"$numberLong":"` + strconv.FormatInt(int64(d), 10) + `"}}`
}

// A String is a UTF-8 string value.
type String string

// Kind satisfies the Value interface.
func (String) Kind() bsontree.Kind { return bsontree.KindString }

// JSON satisfies the Value interface.
func (s String) JSON() string { return quote(string(s)) }

// A Symbol is an interned string value. Symbols with the same text share a
// single copy of the text, and compare equal with ==.
type Symbol struct{ h unique.Handle[string] }

// NewSymbol returns the symbol for s.
func NewSymbol(s string) Symbol { return Symbol{h: unique.Make(s)} }

// Kind satisfies the Value interface.
func (Symbol) Kind() bsontree.Kind { return bsontree.KindSymbol }

// Text returns the text of the symbol.
func (s Symbol) Text() string {
	if s.h == (unique.Handle[string]{}) {
		return ""
	}
	return s.h.Value()
}

// Equal reports whether s and o are the same symbol.
func (s Symbol) Equal(o Symbol) bool { return s.h == o.h }

// JSON satisfies the Value interface.
func (s Symbol) JSON() string { return `{"$symbol":` + quote(s.Text()) + `}` }

// A Code is a JavaScript code value.
type Code string

// Kind satisfies the Value interface.
func (Code) Kind() bsontree.Kind { return bsontree.KindCode }

// JSON satisfies the Value interface.
func (c Code) JSON() string { return `{"$code":` + quote(string(c)) + `}` }

// RegexFlags is a set of regular expression options.
type RegexFlags uint8

const (
	IgnoreCase RegexFlags = 1 << iota // "i": case-insensitive matching
	Multiline                         // "m": multi-line matching
	Extended                          // "x": ignore whitespace in the pattern
)

// ParseRegexFlags parses a string of flag characters. The characters "i",
// "m", and "x" select IgnoreCase, Multiline, and Extended respectively;
// other characters are ignored.
func ParseRegexFlags(s string) RegexFlags {
	var f RegexFlags
	for _, c := range s {
		switch c {
		case 'i':
			f |= IgnoreCase
		case 'm':
			f |= Multiline
		case 'x':
			f |= Extended
		}
	}
	return f
}

// String renders the flags as option characters in alphabetical order.
func (f RegexFlags) String() string {
	var buf [3]byte
	s := buf[:0]
	if f&IgnoreCase != 0 {
		s = append(s, 'i')
	}
	if f&Multiline != 0 {
		s = append(s, 'm')
	}
	if f&Extended != 0 {
		s = append(s, 'x')
	}
	return string(s)
}

// A Regex is a regular expression pattern with options.
type Regex struct {
	Pattern string
	Flags   RegexFlags
}

// Kind satisfies the Value interface.
func (Regex) Kind() bsontree.Kind { return bsontree.KindRegex }

// JSON satisfies the Value interface.
func (r Regex) JSON() string {
	return fmt.Sprintf(`{"$regularExpression":{"pattern":%s,"options":"%s"}}`,
		quote(r.Pattern), r.Flags)
}

// Binary subtypes.
const (
	SubtypeGeneric   byte = 0x00
	SubtypeFunction  byte = 0x01
	SubtypeBinaryOld byte = 0x02
	SubtypeUUIDOld   byte = 0x03
	SubtypeUUID      byte = 0x04
	SubtypeMD5       byte = 0x05
	SubtypeUser      byte = 0x80
)

// A Binary is a blob of binary data with a subtype.
type Binary struct {
	Subtype byte
	Data    []byte
}

// Kind satisfies the Value interface.
func (Binary) Kind() bsontree.Kind { return bsontree.KindBinary }

// JSON satisfies the Value interface.
func (b Binary) JSON() string { return binaryJSON(b.Subtype, b.Data) }

func binaryJSON(subtype byte, data []byte) string {
	return fmt.Sprintf(`{"$binary":{"base64":"%s","subType":"%02x"}}`,
		base64.StdEncoding.EncodeToString(data), subtype)
}

// A LegacyBinary is a blob of binary data in the old binary encoding, whose
// subtype is always SubtypeBinaryOld.
type LegacyBinary []byte

// Kind satisfies the Value interface.
func (LegacyBinary) Kind() bsontree.Kind { return bsontree.KindBinary }

// Subtype returns SubtypeBinaryOld.
func (LegacyBinary) Subtype() byte { return SubtypeBinaryOld }

// JSON satisfies the Value interface.
func (b LegacyBinary) JSON() string { return binaryJSON(SubtypeBinaryOld, b) }

// An ObjectID is a 12-byte BSON object identifier.
type ObjectID [12]byte

// ParseObjectID parses the 24-digit hexadecimal representation of an object
// ID.
func ParseObjectID(s string) (ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return ObjectID{}, fmt.Errorf("parse object ID: %w", err)
	}
	return ObjectID(id), nil
}

// Kind satisfies the Value interface.
func (ObjectID) Kind() bsontree.Kind { return bsontree.KindObjectID }

// Hex returns the 24-digit hexadecimal representation of id.
func (id ObjectID) Hex() string { return primitive.ObjectID(id).Hex() }

// JSON satisfies the Value interface.
func (id ObjectID) JSON() string { return `{"$oid":"` + id.Hex() + `"}` }

// A Timestamp is an ordered pair of an increment and a time in seconds since
// the Unix epoch. The increment is the first element of the pair.
type Timestamp [2]uint32

// NewTimestamp returns the timestamp with the given time and increment.
func NewTimestamp(secs, inc uint32) Timestamp { return Timestamp{inc, secs} }

// Kind satisfies the Value interface.
func (Timestamp) Kind() bsontree.Kind { return bsontree.KindTimestamp }

// Inc returns the increment of t.
func (t Timestamp) Inc() uint32 { return t[0] }

// Time returns the seconds component of t.
func (t Timestamp) Time() uint32 { return t[1] }

// JSON satisfies the Value interface.
func (t Timestamp) JSON() string {
	return fmt.Sprintf(`{"$timestamp":{"t":%d,"i":%d}}`, t.Time(), t.Inc())
}

// MinKey is the sentinel value that orders before all other values.
type MinKey struct{}

// Kind satisfies the Value interface.
func (MinKey) Kind() bsontree.Kind { return bsontree.KindMinKey }

// JSON satisfies the Value interface.
func (MinKey) JSON() string { return `{"$minKey":1}` }

// MaxKey is the sentinel value that orders after all other values.
type MaxKey struct{}

// Kind satisfies the Value interface.
func (MaxKey) Kind() bsontree.Kind { return bsontree.KindMaxKey }

// JSON satisfies the Value interface.
func (MaxKey) JSON() string { return `{"$maxKey":1}` }

// NullType is the type of the Null value.
type NullType struct{}

// Null represents the null constant.
var Null NullType

// Kind satisfies the Value interface.
func (NullType) Kind() bsontree.Kind { return bsontree.KindNull }

// JSON satisfies the Value interface.
func (NullType) JSON() string { return "null" }
