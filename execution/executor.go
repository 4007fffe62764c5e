//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/logging"
	"github.com/docflow/pipeline/plan"
)

/*
executionBlock runs one executor: it owns the executor's output block,
the fetcher reading the upstream pipeline, and the shutdown state of
the stage.
*/
type executionBlock struct {
	op         plan.Operator
	executor   Executor
	dependency ExecutionBlock
	fetcher    *blockFetcher
	registers  *plan.RegisterInfo
	context    *Context

	output *block.OutputRow
	done   bool

	executorShutdown bool
	shutdownDone     bool
	shutdownState    ExecutionState
	shutdownResult   errors.Error
}

func newExecutionBlock(op plan.Operator, executor Executor, dependency ExecutionBlock,
	fetcher *blockFetcher, registers *plan.RegisterInfo, context *Context) *executionBlock {
	return &executionBlock{
		op:         op,
		executor:   executor,
		dependency: dependency,
		fetcher:    fetcher,
		registers:  registers,
		context:    context,
	}
}

func (this *executionBlock) PlanOp() plan.Operator {
	return this.op
}

/*
InitializeCursor rewinds the upstream first, then this stage. A
WAITING upstream is reported as is; the call is then repeated.
*/
func (this *executionBlock) InitializeCursor(row block.InputRow) (ExecutionState, errors.Error) {
	if this.dependency != nil {
		state, err := this.dependency.InitializeCursor(row)
		if err != nil || state == WAITING {
			return state, err
		}
	}
	this.discardOutput()
	if this.fetcher != nil {
		this.fetcher.reset()
	}
	this.executor.InitializeCursor(row)
	this.done = false
	return DONE, nil
}

func (this *executionBlock) GetSome(atMost int) (ExecutionState, *block.Block, errors.Error) {
	if this.done {
		return DONE, nil, nil
	}
	if atMost < 1 {
		atMost = PipelineBatchSize()
	}
	if this.output == nil {
		b := this.context.Pool().Allocate(atMost, this.registers.Registers)
		this.output = block.NewOutputRow(b, this.registers.Outputs, this.registers.Keep, this.registers.Clear)
	}

	var stats Stats
	defer func() {
		this.context.AddStats(stats)
	}()

	for !this.output.IsFull() {
		state, s, err := this.executor.ProduceRow(this.output)
		stats.Add(s)
		if err != nil {
			this.discardOutput()
			this.done = true
			return DONE, nil, err
		}
		switch state {
		case WAITING:
			return WAITING, nil, nil
		case DONE:
			this.done = true
			return DONE, this.stealOutput(), nil
		}
	}
	return HASMORE, this.stealOutput(), nil
}

/*
Shutdown is idempotent. The executor, which may own a nested pipeline,
is shut down before the upstream; the outcome of the first complete
shutdown is replayed on every later call.
*/
func (this *executionBlock) Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error) {
	if this.shutdownDone {
		return this.shutdownState, this.shutdownResult
	}

	if !this.executorShutdown {
		state, err := this.executor.Shutdown(code)
		if state == WAITING {
			return WAITING, nil
		}
		this.executorShutdown = true
		this.shutdownResult = err
	}
	if this.dependency != nil {
		state, err := this.dependency.Shutdown(code)
		if state == WAITING {
			return WAITING, nil
		}
		if this.shutdownResult == nil {
			this.shutdownResult = err
		}
	}

	this.discardOutput()
	if this.fetcher != nil {
		this.fetcher.reset()
	}
	if this.shutdownResult != nil {
		logging.Debugf("%T shut down with error: %v", this.executor, this.shutdownResult)
	}
	this.done = true
	this.shutdownDone = true
	this.shutdownState = DONE
	return this.shutdownState, this.shutdownResult
}

func (this *executionBlock) stealOutput() *block.Block {
	if this.output == nil {
		return nil
	}
	rv := this.output.StealBlock()
	this.output = nil
	return rv
}

func (this *executionBlock) discardOutput() {
	if b := this.stealOutput(); b != nil {
		b.Release()
	}
}
