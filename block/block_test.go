//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package block

import (
	"testing"

	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/value"
)

func expectContractViolation(t *testing.T, what string, f func()) {
	defer func() {
		r := recover()
		e, ok := r.(errors.Error)
		if !ok || e.Code() != errors.E_EXECUTION_CONTRACT {
			t.Fatalf("%s: expected contract violation, got %v", what, r)
		}
	}()
	f()
}

func inputBlock(pool *Pool, vals ...interface{}) *Block {
	b := pool.Allocate(len(vals), 1)
	for i, v := range vals {
		b.set(i, 0, value.NewValue(v))
	}
	return b
}

func TestOutputRow(t *testing.T) {
	pool := NewPool()
	in := inputBlock(pool, "a", "b")
	out := pool.Allocate(4, 3)
	row := NewOutputRow(out, []RegisterId{1, 2}, 1, []RegisterId{2})

	for i := 0; i < in.Rows(); i++ {
		input := NewInputRow(in, i)
		row.CloneValueInto(1, input, value.NewValue(i))
		if row.Produced() {
			t.Fatalf("row produced with register 2 missing")
		}
		row.MoveValueInto(2, input, NewValueGuard(value.NewValue("cleared")))
		if !row.Produced() {
			t.Fatalf("row not produced")
		}
		row.AdvanceRow()
	}

	if row.NumRowsWritten() != 2 || row.NumRowsLeft() != 2 || row.IsFull() {
		t.Fatalf("unexpected cursor: written %v left %v", row.NumRowsWritten(), row.NumRowsLeft())
	}
	res := row.StealBlock()
	if res.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %v", res.Rows())
	}
	if res.Get(1, 0).Actual() != "b" || res.Get(1, 1).Actual() != float64(1) {
		t.Fatalf("unexpected row 1: %v %v", res.Get(1, 0), res.Get(1, 1))
	}
	if res.Get(0, 2).Tag() != value.NULL {
		t.Fatalf("register to clear kept %v", res.Get(0, 2))
	}

	in.Release()
	res.Release()
	if pool.Outstanding() != 0 {
		t.Fatalf("expected no outstanding blocks, got %v", pool.Outstanding())
	}
}

func TestContractViolations(t *testing.T) {
	pool := NewPool()
	in := inputBlock(pool, "a")
	input := NewInputRow(in, 0)

	out := pool.Allocate(1, 2)
	row := NewOutputRow(out, []RegisterId{1}, 1, nil)
	expectContractViolation(t, "advance incomplete", func() { row.AdvanceRow() })

	row.CloneValueInto(1, input, value.NewValue(1))
	expectContractViolation(t, "double produce", func() { row.CloneValueInto(1, input, value.NewValue(2)) })
	expectContractViolation(t, "not an output", func() { row.CloneValueInto(0, input, value.NewValue(2)) })

	row.AdvanceRow()
	if !row.IsFull() {
		t.Fatalf("single row block not full")
	}
	expectContractViolation(t, "full block", func() { row.CloneValueInto(1, input, value.NewValue(3)) })

	guard := NewValueGuard(value.NewValue(1))
	guard.Steal()
	expectContractViolation(t, "stolen guard", func() { guard.Steal() })
	expectContractViolation(t, "bad input row", func() { NewInputRow(in, 1) })
}

func TestCloneDetachesBorrowed(t *testing.T) {
	pool := NewPool()
	in := inputBlock(pool, "a")
	out := pool.Allocate(1, 2)
	row := NewOutputRow(out, []RegisterId{1}, 1, nil)

	lease := value.NewLease()
	row.CloneValueInto(1, NewInputRow(in, 0), value.NewBorrowedValue([]byte(`{"x":1}`), lease))
	row.AdvanceRow()
	lease.Invalidate()

	res := row.StealBlock()
	if res.Get(0, 1).Tag() != value.OWNED || string(res.Get(0, 1).Bytes()) != `{"x":1}` {
		t.Fatalf("clone did not detach from storage: %v", res.Get(0, 1).Tag())
	}
}

func TestStealEmptyBlock(t *testing.T) {
	pool := NewPool()
	row := NewOutputRow(pool.Allocate(2, 1), nil, 0, nil)
	if row.StealBlock() != nil {
		t.Fatalf("empty block handed downstream")
	}
	if pool.Outstanding() != 0 {
		t.Fatalf("empty block not released")
	}
	if !row.IsFull() {
		t.Fatalf("stolen output row still writable")
	}
}
