//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"fmt"

	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/logging"
	"github.com/docflow/pipeline/util"
	"github.com/docflow/pipeline/value"
)

const (
	FAIL_SUBQUERY_EXECUTE      = "subquery.execute"
	FAIL_SUBQUERY_WRITE_OUTPUT = "subquery.write_output"
)

/*
SubqueryExecutor runs a nested pipeline once per outer row, with the
outer row as the nested pipeline's context. When the nested pipeline
returns data, its rows are folded into one array value written to the
output register; otherwise the outer row passes through unchanged once
the nested run completes.

A constant subquery does not depend on its outer row: it runs once,
and its result is reused for every later row.
*/
type SubqueryExecutor struct {
	fetcher     SingleRowFetcher
	subquery    ExecutionBlock
	output      block.RegisterId
	returnsData bool
	isConst     bool

	input       block.InputRow
	initialized bool
	results     []*block.Block
	done        bool

	constComputed bool
	constValue    value.Value

	shutdownDone   bool
	shutdownState  ExecutionState
	shutdownResult errors.Error
}

// output is only used when returnsData is set.
func NewSubqueryExecutor(fetcher SingleRowFetcher, subquery ExecutionBlock, output block.RegisterId,
	returnsData, isConst bool) *SubqueryExecutor {
	return &SubqueryExecutor{
		fetcher:     fetcher,
		subquery:    subquery,
		output:      output,
		returnsData: returnsData,
		isConst:     isConst,
	}
}

func (this *SubqueryExecutor) ProduceRow(output *block.OutputRow) (ExecutionState, Stats, errors.Error) {
	if this.done {
		return DONE, Stats{}, nil
	}

	for !output.IsFull() {
		if !this.input.IsInitialized() {
			state, row, err := this.fetcher.FetchRow()
			if err != nil {
				return DONE, Stats{}, err
			}
			if !row.IsInitialized() {
				if state == DONE {
					this.done = true
				}
				return state, Stats{}, nil
			}
			this.input = row
		}

		if this.isConst && this.constComputed {
			logging.Tracea(func() string {
				return fmt.Sprintf("subquery: constant result reused for row %d", this.input.Index())
			})
		} else {
			if !this.initialized {
				state, err := this.subquery.InitializeCursor(this.input)
				if err != nil {
					return DONE, Stats{}, errors.NewSubqueryInitError(err)
				}
				if state == WAITING {
					return WAITING, Stats{}, nil
				}
				this.initialized = true
			}

			for {
				state, b, err := this.subquery.GetSome(PipelineBatchSize())
				if err != nil {
					this.releaseResults()
					return DONE, Stats{}, errors.NewNestedPipelineError(err)
				}
				if b != nil {
					if util.ShouldFail(FAIL_SUBQUERY_EXECUTE) {
						b.Release()
						this.releaseResults()
						return DONE, Stats{}, errors.NewDebugFailure(FAIL_SUBQUERY_EXECUTE)
					}
					if this.returnsData {
						this.results = append(this.results, b)
					} else {
						b.Release()
					}
				}
				if state == WAITING {
					return WAITING, Stats{}, nil
				}
				if state == DONE {
					break
				}
			}
		}

		if util.ShouldFail(FAIL_SUBQUERY_WRITE_OUTPUT) {
			this.releaseResults()
			return DONE, Stats{}, errors.NewDebugFailure(FAIL_SUBQUERY_WRITE_OUTPUT)
		}
		this.writeOutput(output)
		output.AdvanceRow()

		if this.isConst {
			this.constComputed = true
		}
		this.initialized = false
		this.input = block.InputRow{}
	}
	return HASMORE, Stats{}, nil
}

func (this *SubqueryExecutor) writeOutput(output *block.OutputRow) {
	switch {
	case !this.returnsData:
		output.CopyRow(this.input)
	case this.isConst:
		if !this.constComputed {
			this.constValue = this.aggregate()
		}
		output.CloneValueInto(this.output, this.input, this.constValue)
	default:
		output.MoveValueInto(this.output, this.input, block.NewValueGuard(this.aggregate()))
	}
}

// aggregate folds the accumulated nested rows into an array, and frees
// their blocks.
func (this *SubqueryExecutor) aggregate() value.Value {
	n := 0
	for _, b := range this.results {
		n += b.Rows()
	}
	vals := make([]value.Value, 0, n)
	for _, b := range this.results {
		for r := 0; r < b.Rows(); r++ {
			vals = append(vals, b.Get(r, 0))
		}
	}
	rv := value.NewArrayValue(vals)
	this.releaseResults()
	return rv
}

func (this *SubqueryExecutor) releaseResults() {
	for _, b := range this.results {
		b.Release()
	}
	this.results = nil
}

/*
InitializeCursor rewinds the outer side only. The constant result is
kept: it does not depend on any outer row.
*/
func (this *SubqueryExecutor) InitializeCursor(row block.InputRow) {
	this.releaseResults()
	this.input = block.InputRow{}
	this.initialized = false
	this.done = false
}

/*
Shutdown shuts the nested pipeline down first. The first complete
outcome is cached, and later calls return it without reaching the
nested pipeline again.
*/
func (this *SubqueryExecutor) Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error) {
	if this.shutdownDone {
		return this.shutdownState, this.shutdownResult
	}
	state, err := this.subquery.Shutdown(code)
	if state == WAITING {
		return WAITING, nil
	}
	this.releaseResults()
	this.input = block.InputRow{}
	this.initialized = false
	this.done = true
	this.shutdownDone = true
	this.shutdownState = state
	this.shutdownResult = err
	return state, err
}
