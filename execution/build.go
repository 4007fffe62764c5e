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
	"github.com/docflow/pipeline/plan"
)

/*
Build a query execution pipeline from a query plan. The returned block
is the last operator of the sequence; pulling it runs the pipeline.
Registers are assigned first if the plan has not been laid out yet.
*/
func Build(seq *plan.Sequence, context *Context) (rv ExecutionBlock, err errors.Error) {
	if seq.Registers(0) == nil {
		if err := seq.AssignRegisters(); err != nil {
			return nil, err
		}
	}

	defer func() {
		if e := context.Error(); e != nil && err == nil {
			rv, err = nil, e
		}
	}()
	defer context.Recover()

	b, err := buildSequence(seq, context)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func buildSequence(seq *plan.Sequence, context *Context) (*executionBlock, errors.Error) {
	var previous *executionBlock
	for i, child := range seq.Children() {
		builder := &builder{
			context:   context,
			registers: seq.Registers(i),
		}
		var dependency ExecutionBlock
		if previous != nil {
			dependency = previous
			builder.fetcher = newBlockFetcher(previous)
		}

		x, err := child.Accept(builder)
		if err != nil {
			return nil, errors.NewError(err, "")
		}
		previous = newExecutionBlock(child, x.(Executor), dependency, builder.fetcher, builder.registers, context)
	}
	return previous, nil
}

type builder struct {
	context   *Context
	registers *plan.RegisterInfo
	fetcher   *blockFetcher
}

func (this *builder) input() (SingleRowFetcher, error) {
	if this.fetcher == nil {
		return nil, errors.NewPlanInternalError("operator has no input")
	}
	return this.fetcher, nil
}

func (this *builder) output() block.RegisterId {
	if len(this.registers.Outputs) == 0 {
		panic(errors.NewContractViolation("operator has no output register"))
	}
	return this.registers.Outputs[0]
}

func (this *builder) VisitSingleton(op *plan.Singleton) (interface{}, error) {
	return NewSingletonExecutor(), nil
}

func (this *builder) VisitEnumerateCollection(op *plan.EnumerateCollection) (interface{}, error) {
	fetcher, err := this.input()
	if err != nil {
		return nil, err
	}
	snapshot, err1 := this.context.Snapshot(op.Keyspace())
	if err1 != nil {
		return nil, err1
	}
	options := &DocumentProducerOptions{
		ProduceResult:  op.ProduceResult(),
		Projections:    op.Projections(),
		UseRawPointers: op.RawPointers() && this.context.UseRawPointers() && snapshot.Synchronous(),
	}
	producer := NewDocumentProducer(options, this.output(), snapshot)
	return NewEnumerateCollectionExecutor(fetcher, snapshot, producer), nil
}

func (this *builder) VisitIndexScan(op *plan.IndexScan) (interface{}, error) {
	fetcher, err := this.input()
	if err != nil {
		return nil, err
	}
	keyspace, err1 := this.context.Keyspace(op.Keyspace())
	if err1 != nil {
		return nil, err1
	}
	index, err1 := keyspace.IndexByName(op.Index())
	if err1 != nil {
		return nil, err1
	}
	snapshot, err1 := this.context.Snapshot(op.Keyspace())
	if err1 != nil {
		return nil, err1
	}
	options := &DocumentProducerOptions{
		ProduceResult:     op.ProduceResult(),
		Projections:       op.Projections(),
		CoveringPositions: op.CoveringPositions(),
		AllowCovering:     op.AllowCovering(),
		UseRawPointers:    op.RawPointers() && this.context.UseRawPointers() && snapshot.Synchronous(),
	}
	producer := NewDocumentProducer(options, this.output(), snapshot)
	return NewIndexExecutor(fetcher, index, snapshot, producer), nil
}

func (this *builder) VisitFilter(op *plan.Filter) (interface{}, error) {
	fetcher, err := this.input()
	if err != nil {
		return nil, err
	}
	refs := this.registers.References
	return NewFilterExecutor(fetcher, refs[0], op.Attribute(), refs[1]), nil
}

func (this *builder) VisitSubquery(op *plan.Subquery) (interface{}, error) {
	fetcher, err := this.input()
	if err != nil {
		return nil, err
	}
	nested, err1 := buildSequence(op.Subquery(), this.context)
	if err1 != nil {
		return nil, err1
	}
	var output block.RegisterId
	if op.ReturnsData() {
		output = this.output()
	}
	return NewSubqueryExecutor(fetcher, nested, output, op.ReturnsData(), op.IsConst()), nil
}

func (this *builder) VisitReturn(op *plan.Return) (interface{}, error) {
	fetcher, err := this.input()
	if err != nil {
		return nil, err
	}
	return NewReturnExecutor(fetcher, this.registers.References[0]), nil
}

func (this *builder) VisitSequence(op *plan.Sequence) (interface{}, error) {
	return nil, errors.NewInvalidSequenceError("a sequence may only be nested through a Subquery")
}
