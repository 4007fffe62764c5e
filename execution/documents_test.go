//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"bytes"
	"testing"

	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/datastore/mock"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/plan"
	"github.com/docflow/pipeline/value"
)

func testDocs() []interface{} {
	return []interface{}{
		map[string]interface{}{"_key": "k0", "a": 1, "g": 0, "i": 10},
		map[string]interface{}{"_key": "k1", "a": 2, "g": 1, "i": 11, "x": "here"},
		map[string]interface{}{"_key": "k2", "a": 3, "g": 0, "i": 12},
	}
}

func testSnapshot(t *testing.T, synchronous bool) datastore.Snapshot {
	ks := mock.NewKeyspace("ks", testDocs(), map[string][]string{"ix_g_i": {"g", "i"}, "ix_i": {"i"}}, synchronous)
	s, err := ks.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return s
}

// scanWith runs producer over every document of s, one register per row.
func scanWith(t *testing.T, producer *DocumentProducer, s datastore.Snapshot) []value.Value {
	pool := block.NewPool()
	b := pool.Allocate(16, 1)
	out := block.NewOutputRow(b, []block.RegisterId{0}, 0, nil)
	it, err := s.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for more := true; more; {
		more, err = it.Next(func(id datastore.LocalDocumentId, raw []byte) {
			producer.Document(out, block.InputRow{}, id, raw)
			out.AdvanceRow()
		}, out.NumRowsLeft())
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
	}
	b = out.StealBlock()
	rv := make([]value.Value, b.Rows())
	for r := range rv {
		rv[r] = b.Get(r, 0)
	}
	return rv
}

func expectPanicCode(t *testing.T, code errors.ErrorCode, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		e, ok := r.(errors.Error)
		if !ok || e.Code() != code {
			t.Fatalf("expected panic with code %d, got %v", code, r)
		}
	}()
	f()
}

func TestChooseStrategy(t *testing.T) {
	cases := []struct {
		options  DocumentProducerOptions
		expected Strategy
	}{
		{DocumentProducerOptions{ProduceResult: false, Projections: plan.Projections{"a"}}, NO_RESULT},
		{DocumentProducerOptions{ProduceResult: true, Projections: plan.Projections{"a"},
			CoveringPositions: []int{0}}, PROJECTIONS_COVERED_BY_INDEX},
		{DocumentProducerOptions{ProduceResult: true, Projections: plan.Projections{"a"}},
			PROJECTIONS_NOT_COVERED_BY_INDEX},
		{DocumentProducerOptions{ProduceResult: true, UseRawPointers: true}, DOCUMENT_WITH_RAW_POINTER},
		{DocumentProducerOptions{ProduceResult: true}, DOCUMENT_COPY},
	}
	for i, c := range cases {
		if s := ChooseStrategy(&c.options); s != c.expected {
			t.Errorf("case %d: expected %v, got %v", i, c.expected, s)
		}
	}
}

func TestNoResult(t *testing.T) {
	s := testSnapshot(t, true)
	defer s.Release()

	producer := NewDocumentProducer(&DocumentProducerOptions{ProduceResult: false}, 0, s)
	vals := scanWith(t, producer, s)
	if len(vals) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(vals))
	}
	for i, v := range vals {
		if v.Tag() != value.NULL {
			t.Errorf("row %d: expected null, got %v", i, v)
		}
	}
	if n := producer.GetAndResetNumScanned(); n != 3 {
		t.Fatalf("expected 3 scanned, got %d", n)
	}
	if n := producer.GetAndResetNumScanned(); n != 0 {
		t.Fatalf("expected scanned counter reset, got %d", n)
	}
}

func TestProjectionsCoveredByIndex(t *testing.T) {
	ks := mock.NewKeyspace("ks", testDocs(), map[string][]string{"ix_g_i": {"g", "i"}}, true)
	s, err := ks.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	defer s.Release()
	index, err := ks.IndexByName("ix_g_i")
	if err != nil {
		t.Fatalf("index: %v", err)
	}

	projections := plan.Projections{"i", "g"}
	positions := projections.CoveringPositions(index.Fields())
	producer := NewDocumentProducer(&DocumentProducerOptions{
		ProduceResult:     true,
		Projections:       projections,
		CoveringPositions: positions,
		AllowCovering:     true,
	}, 0, s)
	if !producer.Covers() {
		t.Fatalf("expected a covering producer")
	}

	pool := block.NewPool()
	out := block.NewOutputRow(pool.Allocate(8, 1), []block.RegisterId{0}, 0, nil)
	var entries []value.Value
	it, err := index.Scan(s)
	if err != nil {
		t.Fatalf("index scan: %v", err)
	}
	_, err = it.NextCovering(func(id datastore.LocalDocumentId, entry value.Value) {
		entries = append(entries, entry)
		producer.Covering(out, block.InputRow{}, id, entry)
		out.AdvanceRow()
	}, 8)
	if err != nil {
		t.Fatalf("index scan: %v", err)
	}
	b := out.StealBlock()
	if b.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", b.Rows())
	}

	// entries come in (g, i) order
	expected := []string{`{"i":10,"g":0}`, `{"i":12,"g":0}`, `{"i":11,"g":1}`}
	for r := 0; r < b.Rows(); r++ {
		v := b.Get(r, 0)
		if string(v.Bytes()) != expected[r] {
			t.Errorf("row %d: expected %s, got %s", r, expected[r], v.Bytes())
		}
		for i, p := range projections {
			want, _ := entries[r].Index(positions[i])
			got, _ := v.Field(p)
			if !got.Equals(want) {
				t.Errorf("row %d: %s is %v, expected %v", r, p, got, want)
			}
		}
	}
	if n := producer.GetAndResetNumScanned(); n != 3 {
		t.Fatalf("expected 3 scanned, got %d", n)
	}
}

func TestCoveringSingleFieldIndex(t *testing.T) {
	s := testSnapshot(t, true)
	defer s.Release()

	producer := NewDocumentProducer(&DocumentProducerOptions{
		ProduceResult:     true,
		Projections:       plan.Projections{"i"},
		CoveringPositions: []int{0},
		AllowCovering:     true,
	}, 0, s)
	out := block.NewOutputRow(block.NewPool().Allocate(1, 1), []block.RegisterId{0}, 0, nil)
	producer.Covering(out, block.InputRow{}, 0, value.NewValue(42))
	out.AdvanceRow()
	b := out.StealBlock()
	if got := string(b.Get(0, 0).Bytes()); got != `{"i":42}` {
		t.Fatalf("expected the scalar entry itself, got %s", got)
	}
}

func TestCoveringDisabledFallsBack(t *testing.T) {
	s := testSnapshot(t, false)
	defer s.Release()

	producer := NewDocumentProducer(&DocumentProducerOptions{
		ProduceResult:     true,
		Projections:       plan.Projections{"a"},
		CoveringPositions: []int{0},
		AllowCovering:     false,
	}, 0, s)
	if producer.Strategy() != PROJECTIONS_COVERED_BY_INDEX || producer.Covers() {
		t.Fatalf("expected a covering strategy that does not cover, got %v", producer.Strategy())
	}
	vals := scanWith(t, producer, s)
	for i, v := range vals {
		if got, want := string(v.Bytes()), []string{`{"a":1}`, `{"a":2}`, `{"a":3}`}[i]; got != want {
			t.Errorf("row %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestProjectionsNotCovered(t *testing.T) {
	s := testSnapshot(t, false)
	defer s.Release()

	producer := NewDocumentProducer(&DocumentProducerOptions{
		ProduceResult: true,
		Projections:   plan.Projections{"a", "x", "_id", "_key"},
	}, 0, s)
	vals := scanWith(t, producer, s)
	expected := []string{
		`{"a":1,"x":null,"_id":"ks/k0","_key":"k0"}`,
		`{"a":2,"x":"here","_id":"ks/k1","_key":"k1"}`,
		`{"a":3,"x":null,"_id":"ks/k2","_key":"k2"}`,
	}
	for i, v := range vals {
		if string(v.Bytes()) != expected[i] {
			t.Errorf("row %d: expected %s, got %s", i, expected[i], v.Bytes())
		}
		if v.Tag() != value.OWNED {
			t.Errorf("row %d: expected an owned value, got %v", i, v.Tag())
		}
	}
}

func TestRawPointerAndCopyAgree(t *testing.T) {
	s := testSnapshot(t, true)

	raw := NewDocumentProducer(&DocumentProducerOptions{ProduceResult: true, UseRawPointers: true}, 0, s)
	cp := NewDocumentProducer(&DocumentProducerOptions{ProduceResult: true}, 0, s)
	if raw.Strategy() != DOCUMENT_WITH_RAW_POINTER || cp.Strategy() != DOCUMENT_COPY {
		t.Fatalf("unexpected strategies %v, %v", raw.Strategy(), cp.Strategy())
	}

	borrowed := scanWith(t, raw, s)
	owned := scanWith(t, cp, s)
	for i := range borrowed {
		if borrowed[i].Tag() != value.BORROWED || owned[i].Tag() != value.OWNED {
			t.Fatalf("row %d: unexpected tags %v, %v", i, borrowed[i].Tag(), owned[i].Tag())
		}
		if !bytes.Equal(borrowed[i].Bytes(), owned[i].Bytes()) || !borrowed[i].Equals(owned[i]) {
			t.Fatalf("row %d: %s differs from %s", i, borrowed[i], owned[i])
		}
	}

	s.Release()
	if value.IsValid(borrowed[0]) {
		t.Fatalf("borrowed document still valid after release")
	}
	expectPanicCode(t, errors.E_STALE_DOCUMENT, func() {
		borrowed[0].Bytes()
	})
	if _, ok := owned[0].Field("a"); !ok {
		t.Fatalf("copied document lost after release")
	}
}

func TestCopyOfScratchBuffer(t *testing.T) {
	s := testSnapshot(t, false)
	defer s.Release()

	// documents of this snapshot share one buffer: only copies survive
	producer := NewDocumentProducer(&DocumentProducerOptions{ProduceResult: true, UseRawPointers: false}, 0, s)
	vals := scanWith(t, producer, s)
	for i, v := range vals {
		k, _ := v.Field("_key")
		if k.Actual() != []string{"k0", "k1", "k2"}[i] {
			t.Errorf("row %d: unexpected key %v", i, k)
		}
	}
}

func TestMalformedProjections(t *testing.T) {
	s := testSnapshot(t, true)
	defer s.Release()

	bad := []DocumentProducerOptions{
		{ProduceResult: true, Projections: plan.Projections{"a", ""}},
		{ProduceResult: true, Projections: plan.Projections{"a.", "b"}},
		{ProduceResult: true, Projections: plan.Projections{"a", "b"}, CoveringPositions: []int{0}},
		{ProduceResult: true, Projections: plan.Projections{"a"}, CoveringPositions: []int{-1}},
	}
	for i := range bad {
		expectPanicCode(t, errors.E_EXECUTION_CONTRACT, func() {
			NewDocumentProducer(&bad[i], 0, s)
		})
	}

	nonSync := testSnapshot(t, false)
	defer nonSync.Release()
	expectPanicCode(t, errors.E_EXECUTION_CONTRACT, func() {
		NewDocumentProducer(&DocumentProducerOptions{ProduceResult: true, UseRawPointers: true}, 0, nonSync)
	})
}
