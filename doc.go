// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package bsontree defines the event protocol between a BSON decoder and a
// handler that consumes the structure of the decoded document.
//
// # Handlers
//
// A decoder reports the structure of a document by calling methods on a
// Handler value in depth-first document order. Every event except BeginRoot
// and End carries the key under which the value is stored in its enclosing
// container. Array elements use their decimal offsets as keys.
//
//	BSON type      | Methods                  | Description
//	-------------- | ------------------------ | ------------------------------
//	document       | BeginRoot, End           | the top-level document
//	document       | BeginDocument, End       | an embedded document
//	array          | BeginArray, End          | an embedded array
//	scalar         | Value                    | double, string, int32, ...
//	null           | Null                     | an explicit null
//	undefined      | Undefined                | a deprecated undefined value
//
// The payload of a scalar event is a Scalar, whose Kind is the BSON element
// type code of the value. Use the constructor functions (Double, String,
// Timestamp, and so on) to construct scalars.
//
// The ast package provides a Handler that builds a syntax tree from events.
//
// # Events
//
// An Event records a single handler call. Use a Recorder to capture the
// events delivered by a decoder, and Replay to deliver a recorded sequence to
// another handler:
//
//	var rec bsontree.Recorder
//	if err := decode(input, &rec); err != nil {
//	   log.Fatalf("Decode failed: %v", err)
//	}
//	if err := bsontree.Replay(rec.Events, handler); err != nil {
//	   log.Fatalf("Replay failed: %v", err)
//	}
//
// ReadEvents and WriteEvents encode event sequences as YAML scripts, which
// are convenient for test fixtures.
package bsontree
