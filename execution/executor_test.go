//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/plan"
	"github.com/docflow/pipeline/value"
)

func counting(n int) func(block.InputRow) []value.Value {
	return func(block.InputRow) []value.Value {
		rv := make([]value.Value, n)
		for i := range rv {
			rv[i] = value.NewValue(i + 1)
		}
		return rv
	}
}

func newReturnBlock(context *Context, upstream ExecutionBlock) *executionBlock {
	fetcher := newBlockFetcher(upstream)
	info := &plan.RegisterInfo{Input: 1, Registers: 1, Outputs: []block.RegisterId{0},
		References: []block.RegisterId{0}}
	return newExecutionBlock(plan.NewReturn("v"), NewReturnExecutor(fetcher, 0), upstream, fetcher, info, context)
}

func drain(t *testing.T, b ExecutionBlock, atMost int) ([]interface{}, int) {
	var rv []interface{}
	waits := 0
	for i := 0; i < 1000; i++ {
		state, out, err := b.GetSome(atMost)
		if err != nil {
			t.Fatalf("GetSome failed: %v", err)
		}
		if out != nil {
			if out.Rows() > atMost {
				t.Fatalf("%d rows for at most %d", out.Rows(), atMost)
			}
			for r := 0; r < out.Rows(); r++ {
				rv = append(rv, out.Get(r, 0).Actual())
			}
			out.Release()
		}
		switch state {
		case DONE:
			return rv, waits
		case WAITING:
			waits++
		}
	}
	t.Fatalf("pipeline did not complete")
	return nil, 0
}

func TestExecutionBlockBatches(t *testing.T) {
	context := NewContext(nil, nil, nil)
	upstream := &scriptedPipeline{pool: context.Pool(), produce: counting(5), batch: 2, getSomeWaits: 1}
	b := newReturnBlock(context, upstream)

	if state, err := b.InitializeCursor(block.InputRow{}); state != DONE || err != nil {
		t.Fatalf("expected DONE, got %v, %v", state, err)
	}
	if upstream.initCalls != 1 {
		t.Fatalf("upstream not initialized")
	}

	vals, waits := drain(t, b, 3)
	if diff := pretty.Compare(vals, []interface{}{1.0, 2.0, 3.0, 4.0, 5.0}); diff != "" {
		t.Fatalf("unexpected rows (-got +want):\n%s", diff)
	}
	if waits != 1 {
		t.Fatalf("expected one WAITING, got %d", waits)
	}

	// DONE is repeatable
	if state, out, err := b.GetSome(3); state != DONE || out != nil || err != nil {
		t.Fatalf("expected DONE again, got %v, %v, %v", state, out, err)
	}

	// a new cursor runs the pipeline again
	b.InitializeCursor(block.InputRow{})
	vals, _ = drain(t, b, 64)
	if len(vals) != 5 {
		t.Fatalf("expected 5 rows after rewind, got %d", len(vals))
	}
	if n := context.Pool().Outstanding(); n != 0 {
		t.Fatalf("%d blocks outstanding", n)
	}
}

func TestExecutionBlockError(t *testing.T) {
	context := NewContext(nil, nil, nil)
	failure := errors.NewExecutionInternalError("upstream failure")
	upstream := &scriptedPipeline{pool: context.Pool(), produce: counting(5), getSomeErr: failure}
	b := newReturnBlock(context, upstream)
	b.InitializeCursor(block.InputRow{})

	state, out, err := b.GetSome(8)
	if state != DONE || out != nil || err != failure {
		t.Fatalf("expected the upstream failure, got %v, %v, %v", state, out, err)
	}
	if n := context.Pool().Outstanding(); n != 0 {
		t.Fatalf("%d blocks outstanding", n)
	}
}

func TestExecutionBlockShutdown(t *testing.T) {
	context := NewContext(nil, nil, nil)
	failure := errors.NewExecutionInternalError("shutdown failure")
	upstream := &scriptedPipeline{pool: context.Pool(), produce: counting(5), shutdownWaits: 1,
		shutdownErr: failure}
	b := newReturnBlock(context, upstream)
	b.InitializeCursor(block.InputRow{})

	// stop halfway
	if state, out, err := b.GetSome(2); state != HASMORE || err != nil {
		t.Fatalf("expected HASMORE, got %v, %v", state, err)
	} else {
		out.Release()
	}

	if state, err := b.Shutdown(0); state != WAITING || err != nil {
		t.Fatalf("expected WAITING, got %v, %v", state, err)
	}
	for i := 0; i < 2; i++ {
		if state, err := b.Shutdown(0); state != DONE || err != failure {
			t.Fatalf("expected DONE with the upstream error, got %v, %v", state, err)
		}
	}
	if upstream.shutdownCalls != 2 {
		t.Fatalf("expected 2 upstream shutdown calls, got %d", upstream.shutdownCalls)
	}
	if state, out, err := b.GetSome(2); state != DONE || out != nil || err != nil {
		t.Fatalf("expected DONE after shutdown, got %v, %v, %v", state, out, err)
	}
	if n := context.Pool().Outstanding(); n != 0 {
		t.Fatalf("%d blocks outstanding", n)
	}
}

func TestBlockFetcher(t *testing.T) {
	pool := block.NewPool()
	upstream := &scriptedPipeline{pool: pool, produce: counting(3), batch: 2, getSomeWaits: 1}
	upstream.InitializeCursor(block.InputRow{})
	fetcher := newBlockFetcher(upstream)

	var got []interface{}
	var states []ExecutionState
	for {
		state, row, err := fetcher.FetchRow()
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		states = append(states, state)
		if row.IsInitialized() {
			got = append(got, row.GetValue(0).Actual())
		} else if state == DONE {
			break
		}
	}
	if diff := pretty.Compare(got, []interface{}{1.0, 2.0, 3.0}); diff != "" {
		t.Fatalf("unexpected rows (-got +want):\n%s", diff)
	}
	expected := []ExecutionState{WAITING, HASMORE, HASMORE, HASMORE, DONE}
	if diff := pretty.Compare(states, expected); diff != "" {
		t.Fatalf("unexpected states (-got +want):\n%s", diff)
	}
	if state, _, _ := fetcher.FetchRow(); state != DONE {
		t.Fatalf("expected DONE to repeat, got %v", state)
	}
	if n := pool.Outstanding(); n != 0 {
		t.Fatalf("%d blocks outstanding", n)
	}
}
