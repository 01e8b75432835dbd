// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package bsonconv converts between syntax trees and the document types of
// the MongoDB Go driver.
//
// ToPrimitive converts a tree built by an ast.Builder into driver values:
//
//	root, err := ast.Build(events)
//	...
//	d, err := bsonconv.ToPrimitive(root) // d has type bson.D
//
// Walk reports the structure of a driver document to a bsontree.Handler, in
// the same order a decoder would for the encoded document.
package bsonconv

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/creachadair/bsontree"
	"github.com/creachadair/bsontree/ast"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToPrimitive converts v into the corresponding MongoDB driver value.
// Documents become bson.D and arrays become bson.A, preserving order. Null
// becomes nil. It reports an error if v contains a value not defined by the
// ast package.
func ToPrimitive(v ast.Value) (any, error) {
	switch t := v.(type) {
	case *ast.Document:
		d := make(bson.D, 0, t.Len())
		for key, elt := range t.All() {
			pv, err := ToPrimitive(elt)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			d = append(d, bson.E{Key: key, Value: pv})
		}
		return d, nil
	case *ast.Array:
		a := make(bson.A, 0, t.Len())
		for i, elt := range t.All() {
			pv, err := ToPrimitive(elt)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			a = append(a, pv)
		}
		return a, nil
	case ast.Bool:
		return bool(t), nil
	case ast.Double:
		return float64(t), nil
	case ast.Int32:
		return int32(t), nil
	case ast.Int64:
		return int64(t), nil
	case ast.DateTime:
		return primitive.DateTime(t), nil
	case ast.String:
		return string(t), nil
	case ast.Symbol:
		return primitive.Symbol(t.Text()), nil
	case ast.Code:
		return primitive.JavaScript(t), nil
	case ast.Regex:
		return primitive.Regex{Pattern: t.Pattern, Options: t.Flags.String()}, nil
	case ast.Binary:
		return primitive.Binary{Subtype: t.Subtype, Data: t.Data}, nil
	case ast.LegacyBinary:
		return primitive.Binary{Subtype: t.Subtype(), Data: []byte(t)}, nil
	case ast.ObjectID:
		return primitive.ObjectID(t), nil
	case ast.Timestamp:
		return primitive.Timestamp{T: t.Time(), I: t.Inc()}, nil
	case ast.MinKey:
		return primitive.MinKey{}, nil
	case ast.MaxKey:
		return primitive.MaxKey{}, nil
	case ast.NullType:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// Walk delivers events to h describing the structure of d, beginning with
// BeginRoot and ending with the matching End. Array elements are reported
// with their decimal offsets as keys. The members of a bson.M are reported
// in lexicographic key order.
//
// Binary subtypes are reported as signed bytes, as a decoder reports them.
func Walk(d bson.D, h bsontree.Handler) error {
	if err := h.BeginRoot(); err != nil {
		return err
	}
	if err := walkDoc(d, h); err != nil {
		return err
	}
	return h.End()
}

func walkDoc(d bson.D, h bsontree.Handler) error {
	for _, e := range d {
		if err := walkValue(e.Key, e.Value, h); err != nil {
			return err
		}
	}
	return nil
}

func walkValue(key string, v any, h bsontree.Handler) error {
	switch t := v.(type) {
	case nil, primitive.Null:
		return h.Null(key)
	case primitive.Undefined:
		return h.Undefined(key)
	case bson.D:
		if err := h.BeginDocument(key); err != nil {
			return err
		}
		if err := walkDoc(t, h); err != nil {
			return err
		}
		return h.End()
	case bson.M:
		if err := h.BeginDocument(key); err != nil {
			return err
		}
		for _, k := range slices.Sorted(maps.Keys(t)) {
			if err := walkValue(k, t[k], h); err != nil {
				return err
			}
		}
		return h.End()
	case bson.A:
		if err := h.BeginArray(key); err != nil {
			return err
		}
		for i, elt := range t {
			if err := walkValue(strconv.Itoa(i), elt, h); err != nil {
				return err
			}
		}
		return h.End()
	}

	s, err := scalarOf(v)
	if err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return h.Value(key, s)
}

func scalarOf(v any) (bsontree.Scalar, error) {
	switch t := v.(type) {
	case bool:
		return bsontree.Bool(t), nil
	case float64:
		return bsontree.Double(t), nil
	case float32:
		return bsontree.Double(float64(t)), nil
	case int32:
		return bsontree.Int32(t), nil
	case int64:
		return bsontree.Int64(t), nil
	case int:
		if int(int32(t)) == t {
			return bsontree.Int32(int32(t)), nil
		}
		return bsontree.Int64(int64(t)), nil
	case string:
		return bsontree.String(t), nil
	case primitive.Symbol:
		return bsontree.Symbol(string(t)), nil
	case primitive.JavaScript:
		return bsontree.Code(string(t)), nil
	case primitive.DateTime:
		return bsontree.DateTime(int64(t)), nil
	case time.Time:
		return bsontree.DateTime(t.UnixMilli()), nil
	case primitive.Regex:
		return bsontree.Regex(t.Pattern, t.Options), nil
	case primitive.Binary:
		return bsontree.Binary(int8(t.Subtype), t.Data), nil
	case []byte:
		return bsontree.Binary(0, t), nil
	case primitive.ObjectID:
		return bsontree.OID(t), nil
	case primitive.DBPointer:
		return bsontree.DBRef(t.DB, t.Pointer), nil
	case primitive.Timestamp:
		return bsontree.Timestamp(t.T, t.I), nil
	case primitive.MinKey:
		return bsontree.MinKey(), nil
	case primitive.MaxKey:
		return bsontree.MaxKey(), nil
	default:
		return bsontree.Scalar{}, fmt.Errorf("unsupported value type %T", v)
	}
}
