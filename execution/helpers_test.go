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

	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/value"
)

// makeRows writes one row per entry of rows into a new block.
func makeRows(pool *block.Pool, registers int, rows ...[]interface{}) []block.InputRow {
	outputs := make([]block.RegisterId, registers)
	for i := range outputs {
		outputs[i] = block.RegisterId(i)
	}
	out := block.NewOutputRow(pool.Allocate(len(rows), registers), outputs, 0, nil)
	for _, r := range rows {
		for i, v := range r {
			out.CloneValueInto(block.RegisterId(i), block.InputRow{}, value.NewValue(v))
		}
		out.AdvanceRow()
	}
	b := out.StealBlock()
	rv := make([]block.InputRow, b.Rows())
	for i := range rv {
		rv[i] = block.NewInputRow(b, i)
	}
	return rv
}

type fetchStep struct {
	state ExecutionState
	row   block.InputRow
	err   errors.Error
}

// scriptedFetcher replays steps, then reports DONE.
type scriptedFetcher struct {
	steps []fetchStep
	calls int
}

func (this *scriptedFetcher) FetchRow() (ExecutionState, block.InputRow, errors.Error) {
	this.calls++
	if len(this.steps) == 0 {
		return DONE, block.InputRow{}, nil
	}
	s := this.steps[0]
	this.steps = this.steps[1:]
	return s.state, s.row, s.err
}

// fetchRows scripts rows, with a WAITING response before each row index
// listed in waitBefore.
func fetchRows(rows []block.InputRow, waitBefore ...int) *scriptedFetcher {
	waits := map[int]bool{}
	for _, w := range waitBefore {
		waits[w] = true
	}
	rv := &scriptedFetcher{}
	for i, r := range rows {
		if waits[i] {
			rv.steps = append(rv.steps, fetchStep{state: WAITING})
		}
		rv.steps = append(rv.steps, fetchStep{state: HASMORE, row: r})
	}
	if waits[len(rows)] {
		rv.steps = append(rv.steps, fetchStep{state: WAITING})
	}
	rv.steps = append(rv.steps, fetchStep{state: DONE})
	return rv
}

/*
scriptedPipeline is a nested pipeline whose output for a context row is
computed by produce, one value per row. It can be made to wait or fail
at each of its three entry points.
*/
type scriptedPipeline struct {
	pool    *block.Pool
	produce func(row block.InputRow) []value.Value
	batch   int

	initWaits     int
	getSomeWaits  int
	shutdownWaits int
	initErr       errors.Error
	getSomeErr    errors.Error
	shutdownErr   errors.Error

	initCalls     int
	getSomeCalls  int
	shutdownCalls int

	pending     []value.Value
	waitsLeft   int
	initialized bool
}

func (this *scriptedPipeline) InitializeCursor(row block.InputRow) (ExecutionState, errors.Error) {
	this.initCalls++
	if this.initErr != nil {
		return DONE, this.initErr
	}
	if this.initWaits > 0 {
		this.initWaits--
		return WAITING, nil
	}
	this.pending = this.produce(row)
	this.waitsLeft = this.getSomeWaits
	this.initialized = true
	return DONE, nil
}

func (this *scriptedPipeline) GetSome(atMost int) (ExecutionState, *block.Block, errors.Error) {
	this.getSomeCalls++
	if !this.initialized {
		panic("GetSome on an uninitialized pipeline")
	}
	if this.getSomeErr != nil {
		return DONE, nil, this.getSomeErr
	}
	if this.waitsLeft > 0 {
		this.waitsLeft--
		return WAITING, nil, nil
	}
	if len(this.pending) == 0 {
		return DONE, nil, nil
	}
	n := len(this.pending)
	if this.batch > 0 && n > this.batch {
		n = this.batch
	}
	if n > atMost {
		n = atMost
	}
	out := block.NewOutputRow(this.pool.Allocate(n, 1), []block.RegisterId{0}, 0, nil)
	for _, v := range this.pending[:n] {
		out.CloneValueInto(0, block.InputRow{}, v)
		out.AdvanceRow()
	}
	this.pending = this.pending[n:]
	if len(this.pending) == 0 {
		return DONE, out.StealBlock(), nil
	}
	return HASMORE, out.StealBlock(), nil
}

func (this *scriptedPipeline) Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error) {
	this.shutdownCalls++
	if this.shutdownWaits > 0 {
		this.shutdownWaits--
		return WAITING, nil
	}
	return DONE, this.shutdownErr
}

/*
runExecutor drives exec to DONE through output blocks of the given
shape, re-invoking it on WAITING, and returns the native values of
every row written.
*/
func runExecutor(t *testing.T, exec Executor, pool *block.Pool, registers int, outputs []block.RegisterId,
	keep int, capacity int) ([][]interface{}, int, errors.Error) {
	var rows [][]interface{}
	waits := 0
	for calls := 0; calls < 10000; {
		out := block.NewOutputRow(pool.Allocate(capacity, registers), outputs, keep, nil)
		state := HASMORE
		var err errors.Error
		for !out.IsFull() && state != DONE && err == nil {
			calls++
			state, _, err = exec.ProduceRow(out)
			if state == WAITING {
				waits++
			}
		}
		if b := out.StealBlock(); b != nil {
			for r := 0; r < b.Rows(); r++ {
				row := make([]interface{}, registers)
				for c := range row {
					row[c] = b.Get(r, block.RegisterId(c)).Actual()
				}
				rows = append(rows, row)
			}
			b.Release()
		}
		if err != nil {
			return rows, waits, err
		}
		if state == DONE {
			return rows, waits, nil
		}
	}
	t.Fatalf("executor did not complete")
	return nil, 0, nil
}
