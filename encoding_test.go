// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package bsontree_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/creachadair/bsontree"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReadEvents(t *testing.T) {
	f, err := os.Open("testdata/sample.yaml")
	if err != nil {
		t.Fatalf("Open test input: %v", err)
	}
	defer f.Close()

	events, err := bsontree.ReadEvents(f)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	t.Logf("Read %d events", len(events))

	var depth int
	for i, e := range events {
		switch e.Type {
		case bsontree.EventBeginRoot, bsontree.EventBeginDocument, bsontree.EventBeginArray:
			depth++
		case bsontree.EventEnd:
			depth--
		case bsontree.EventInvalid:
			t.Errorf("Event %d is invalid", i)
		}
		if depth < 0 {
			t.Fatalf("Event %d: unbalanced End", i)
		}
	}
	if depth != 0 {
		t.Errorf("Final depth is %d, want 0", depth)
	}

	id, _ := primitive.ObjectIDFromHex("5f1e2d3c4b5a69788796a5b4")
	var nulls int
	for _, e := range events {
		if e.Type == bsontree.EventNull && e.Key == "nil" {
			nulls++
		}
	}
	if nulls != 1 {
		t.Errorf("Found %d null events for key nil, want 1", nulls)
	}

	check := map[string]bsontree.Scalar{
		"name": bsontree.String("sample"),
		"big":  bsontree.Int64(9000000000),
		"pi":   bsontree.Double(3.25),
		"re":   bsontree.Regex("^a.*z$", "imq"),
		"ts":   bsontree.Timestamp(100, 7),
		"id":   bsontree.OID(id),
		"ref":  bsontree.DBRef("db.things", id),
		"bin":  bsontree.Binary(-3, []byte{0xca, 0xfe}),
		"old":  bsontree.BinaryArray([]byte{1, 2}),
		"lo":   bsontree.MinKey(),
	}
	for _, e := range events {
		want, ok := check[e.Key]
		if !ok {
			continue
		}
		delete(check, e.Key)
		if diff := cmp.Diff(want, e.Value); diff != "" {
			t.Errorf("Key %q (-want, +got):\n%s", e.Key, diff)
		}
	}
	for key := range check {
		t.Errorf("Key %q not found", key)
	}
}

func TestReadEventsEmpty(t *testing.T) {
	events, err := bsontree.ReadEvents(strings.NewReader(""))
	if err != nil {
		t.Errorf("ReadEvents: unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("ReadEvents: got %d events, want 0", len(events))
	}
}

func TestReadEventsErrors(t *testing.T) {
	tests := []string{
		`- op: nonesuch`,
		`- {op: int32, key: x}`,
		`- {op: int32, key: x, value: seven}`,
		`- {op: oid, key: x, value: 1234}`,
		`- {op: binary, key: x, value: xyz}`,
		`- {op: codewscope, key: x, value: "return 1"}`,
		`{op: root}`,
	}
	for _, input := range tests {
		events, err := bsontree.ReadEvents(strings.NewReader(input))
		if err == nil {
			t.Errorf("ReadEvents(%#q): got %v, want error", input, events)
		} else {
			t.Logf("ReadEvents(%#q): got expected error: %v", input, err)
		}
	}
}

func TestWriteEvents(t *testing.T) {
	id, _ := primitive.ObjectIDFromHex("000102030405060708090a0b")
	events := []bsontree.Event{
		{Type: bsontree.EventBeginRoot},
		{Type: bsontree.EventValue, Key: "f", Value: bsontree.Bool(false)},
		{Type: bsontree.EventValue, Key: "z", Value: bsontree.Int32(0)},
		{Type: bsontree.EventValue, Key: "s", Value: bsontree.String("")},
		{Type: bsontree.EventValue, Key: "d", Value: bsontree.DateTime(-5)},
		{Type: bsontree.EventValue, Key: "r", Value: bsontree.Regex("a+", "x")},
		{Type: bsontree.EventValue, Key: "t", Value: bsontree.Timestamp(100, 7)},
		{Type: bsontree.EventValue, Key: "b", Value: bsontree.Binary(5, []byte("hi"))},
		{Type: bsontree.EventValue, Key: "o", Value: bsontree.OID(id)},
		{Type: bsontree.EventValue, Key: "y", Value: bsontree.Symbol("sym")},
		{Type: bsontree.EventValue, Key: "hi", Value: bsontree.MaxKey()},
		{Type: bsontree.EventBeginArray, Key: "xs"},
		{Type: bsontree.EventNull, Key: "0"},
		{Type: bsontree.EventUndefined, Key: "1"},
		{Type: bsontree.EventEnd},
		{Type: bsontree.EventEnd},
	}

	var buf bytes.Buffer
	if err := bsontree.WriteEvents(&buf, events); err != nil {
		t.Fatalf("WriteEvents failed: %v", err)
	}
	t.Logf("Event script:\n%s", buf.String())

	got, err := bsontree.ReadEvents(&buf)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if diff := cmp.Diff(events, got); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
}

func TestReadEventsPlainScalars(t *testing.T) {
	const input = `
- op: root
- {op: null, key: x}
- {op: undefined, key: null}
- {op: bool, key: true, value: false}
- {op: int32, key: 1, value: 5}
- op: end
`
	got, err := bsontree.ReadEvents(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	want := []bsontree.Event{
		{Type: bsontree.EventBeginRoot},
		{Type: bsontree.EventNull, Key: "x"},
		{Type: bsontree.EventUndefined, Key: "null"},
		{Type: bsontree.EventValue, Key: "true", Value: bsontree.Bool(false)},
		{Type: bsontree.EventValue, Key: "1", Value: bsontree.Int32(5)},
		{Type: bsontree.EventEnd},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
}

func TestWriteEventsNullKinds(t *testing.T) {
	var rec bsontree.Recorder
	rec.BeginRoot()
	rec.Value("n", bsontree.Scalar{Kind: bsontree.KindNull})
	rec.Value("u", bsontree.Scalar{Kind: bsontree.KindUndefined})
	rec.End()

	var buf bytes.Buffer
	if err := bsontree.WriteEvents(&buf, rec.Events); err != nil {
		t.Fatalf("WriteEvents failed: %v", err)
	}
	t.Logf("Event script:\n%s", buf.String())

	got, err := bsontree.ReadEvents(&buf)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	want := []bsontree.Event{
		{Type: bsontree.EventBeginRoot},
		{Type: bsontree.EventNull, Key: "n"},
		{Type: bsontree.EventUndefined, Key: "u"},
		{Type: bsontree.EventEnd},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
}
