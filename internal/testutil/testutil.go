// Package testutil defines support code for unit tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/creachadair/bsontree"
	"github.com/creachadair/bsontree/ast"
)

// MustReadEvents parses src as a YAML event script, or fails t.
func MustReadEvents(t testing.TB, src string) []bsontree.Event {
	t.Helper()
	es, err := bsontree.ReadEvents(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Reading events: %v", err)
	}
	return es
}

// MustBuild parses src as a YAML event script and builds the document it
// describes, or fails t.
func MustBuild(t testing.TB, src string) *ast.Document {
	t.Helper()
	doc, err := ast.Build(MustReadEvents(t, src))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}
