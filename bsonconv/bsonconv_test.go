// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package bsonconv_test

import (
	"errors"
	"testing"

	"github.com/creachadair/bsontree"
	"github.com/creachadair/bsontree/ast"
	"github.com/creachadair/bsontree/bsonconv"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func e(key string, v any) bson.E { return bson.E{Key: key, Value: v} }

var testID = primitive.ObjectID{0x65, 0xa1, 0xb2, 0xc3, 0xd4, 0xe5, 0xf6, 0x07, 0x18, 0x29, 0x3a, 0x4b}

var testDoc = bson.D{
	e("name", "x"),
	e("n", int32(3)),
	e("big", int64(1<<40)),
	e("pi", 2.5),
	e("ok", true),
	e("when", primitive.DateTime(1700000000123)),
	e("sym", primitive.Symbol("s")),
	e("js", primitive.JavaScript("f()")),
	e("re", primitive.Regex{Pattern: "a+", Options: "im"}),
	e("bin", primitive.Binary{Subtype: 4, Data: []byte("0123456789abcdef")}),
	e("id", testID),
	e("ts", primitive.Timestamp{T: 100, I: 7}),
	e("lo", primitive.MinKey{}),
	e("hi", primitive.MaxKey{}),
	e("nil", nil),
	e("sub", bson.D{
		e("xs", bson.A{int32(1), "two", bson.D{e("three", int32(3))}}),
		e("empty", bson.A{}),
	}),
}

func build(t *testing.T, d bson.D) *ast.Document {
	t.Helper()
	b := ast.NewBuilder(nil)
	if err := bsonconv.Walk(d, b); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	root, err := b.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if b.Depth() != 0 {
		t.Fatalf("Depth after Walk: got %d, want 0", b.Depth())
	}
	return root.(*ast.Document)
}

func TestRoundTrip(t *testing.T) {
	doc := build(t, testDoc)
	t.Logf("Built: %s", doc.JSON())

	got, err := bsonconv.ToPrimitive(doc)
	if err != nil {
		t.Fatalf("ToPrimitive: %v", err)
	}
	if diff := cmp.Diff(testDoc, got); diff != "" {
		t.Errorf("Round trip (-want, +got):\n%s", diff)
	}
}

func TestEncoded(t *testing.T) {
	raw, err := bson.Marshal(testDoc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var in bson.D
	if err := bson.Unmarshal(raw, &in); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	got, err := bsonconv.ToPrimitive(build(t, in))
	if err != nil {
		t.Fatalf("ToPrimitive: %v", err)
	}
	out, err := bson.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal result: %v", err)
	}
	if diff := cmp.Diff(raw, out); diff != "" {
		t.Errorf("Encoded round trip (-want, +got):\n%s", diff)
	}
}

func TestWalkEvents(t *testing.T) {
	var rec bsontree.Recorder
	d := bson.D{
		e("m", bson.M{"b": int32(2), "a": int32(1)}),
		e("xs", bson.A{nil, primitive.Undefined{}}),
		e("raw", []byte{1}),
		e("neg", primitive.Binary{Subtype: 0x83, Data: []byte{2}}),
		e("t", int(1<<40)),
	}
	if err := bsonconv.Walk(d, &rec); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []bsontree.Event{
		{Type: bsontree.EventBeginRoot},
		{Type: bsontree.EventBeginDocument, Key: "m"},
		{Type: bsontree.EventValue, Key: "a", Value: bsontree.Int32(1)},
		{Type: bsontree.EventValue, Key: "b", Value: bsontree.Int32(2)},
		{Type: bsontree.EventEnd},
		{Type: bsontree.EventBeginArray, Key: "xs"},
		{Type: bsontree.EventNull, Key: "0"},
		{Type: bsontree.EventUndefined, Key: "1"},
		{Type: bsontree.EventEnd},
		{Type: bsontree.EventValue, Key: "raw", Value: bsontree.Binary(0, []byte{1})},
		{Type: bsontree.EventValue, Key: "neg", Value: bsontree.Binary(-125, []byte{2})},
		{Type: bsontree.EventValue, Key: "t", Value: bsontree.Int64(1 << 40)},
		{Type: bsontree.EventEnd},
	}
	if diff := cmp.Diff(want, rec.Events); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
}

func TestDropped(t *testing.T) {
	doc := build(t, bson.D{
		e("keep", int32(1)),
		e("u", primitive.Undefined{}),
		e("ref", primitive.DBPointer{DB: "db.coll", Pointer: testID}),
	})
	if got, want := doc.JSON(), `{"keep":1}`; got != want {
		t.Errorf("JSON: got %s, want %s", got, want)
	}
}

func TestLegacyBinary(t *testing.T) {
	got, err := bsonconv.ToPrimitive(ast.NewArray(ast.LegacyBinary("xy")))
	if err != nil {
		t.Fatalf("ToPrimitive: %v", err)
	}
	want := bson.A{primitive.Binary{Subtype: 2, Data: []byte("xy")}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Result (-want, +got):\n%s", diff)
	}
}

type bogus struct{}

func (bogus) Kind() bsontree.Kind { return bsontree.KindUndefined }
func (bogus) JSON() string        { return `"bogus"` }

func TestErrors(t *testing.T) {
	t.Run("ToPrimitive", func(t *testing.T) {
		doc := ast.NewDocument(ast.Field("a", ast.NewArray(ast.Null, bogus{})))
		if got, err := bsonconv.ToPrimitive(doc); err == nil {
			t.Errorf("ToPrimitive: got %v, want error", got)
		} else {
			t.Logf("Got expected error: %v", err)
		}
	})

	t.Run("Walk", func(t *testing.T) {
		var rec bsontree.Recorder
		err := bsonconv.Walk(bson.D{e("c", make(chan int))}, &rec)
		if err == nil {
			t.Fatal("Walk: got nil, want error")
		}
		t.Logf("Got expected error: %v", err)
	})

	t.Run("Handler", func(t *testing.T) {
		b := ast.NewBuilder(nil)
		if err := b.BeginRoot(); err != nil {
			t.Fatalf("BeginRoot: %v", err)
		}
		err := bsonconv.Walk(testDoc, b)
		var perr *bsontree.ProtocolError
		if !errors.As(err, &perr) {
			t.Errorf("Walk: got %v, want *ProtocolError", err)
		}
	})
}
