//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"runtime"
	"time"

	atomic "github.com/couchbase/go-couchbase/platform"

	"github.com/docflow/pipeline/accounting"
	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/logging"
	"github.com/docflow/pipeline/plan"
	"github.com/docflow/pipeline/value"
)

/*
Query drives one pipeline to completion from a single goroutine. A
WAITING pipeline is re-invoked after yielding the processor, so WAITING
never escapes Execute.
*/
type Query struct {
	plan    *plan.Sequence
	context *Context
	root    ExecutionBlock

	results  []value.Value
	rowCount int64
	stopped  atomic.AlignedInt64
	executed bool
}

func NewQuery(seq *plan.Sequence, context *Context) *Query {
	return &Query{
		plan:    seq,
		context: context,
	}
}

func (this *Query) Context() *Context {
	return this.context
}

// Stop aborts a running query at its next batch. It may be called from
// any goroutine.
func (this *Query) Stop() {
	atomic.StoreInt64(&this.stopped, 1)
}

func (this *Query) isStopped() bool {
	return atomic.LoadInt64(&this.stopped) == 1
}

func (this *Query) Stats() Stats {
	return this.context.Stats()
}

// RowCount is the number of rows the pipeline produced, with or without
// a Return.
func (this *Query) RowCount() int64 {
	return this.rowCount
}

/*
Execute runs the query, and returns the values produced by the closing
Return of the plan, if any. Whatever the outcome, the pipeline is shut
down and the query's snapshots are released before returning. A query
executes once.
*/
func (this *Query) Execute() (rv []value.Value, err errors.Error) {
	if this.executed {
		return nil, errors.NewExecutionInternalError("query executed twice")
	}
	this.executed = true

	start := time.Now()
	logging.Debugf("query %s: start", this.context.QueryId())

	defer func() {
		err = this.finish(err)
		accounting.RecordQuery(time.Since(start), this.rowCount, err)
		if err != nil {
			rv = nil
			logging.Debugf("query %s: failed after %v: %v", this.context.QueryId(), time.Since(start), err)
		} else {
			rv = this.results
			logging.Debugf("query %s: %d rows in %v, %v", this.context.QueryId(), this.rowCount,
				time.Since(start), this.context.Stats())
		}
	}()
	defer this.context.Recover()

	root, err := Build(this.plan, this.context)
	if err != nil {
		return nil, err
	}
	this.root = root

	// the top level pipeline has no outer row: give it an empty one
	initial := this.context.Pool().Allocate(1, 0)
	defer initial.Release()
	row := block.NewInputRow(initial, 0)

	for {
		state, err := root.InitializeCursor(row)
		if err != nil {
			return nil, err
		}
		if state != WAITING {
			break
		}
		runtime.Gosched()
	}

	returnsData := this.plan.ReturnsData()
	for {
		if this.isStopped() {
			return nil, errors.NewCancelledError(this.context.QueryId())
		}
		state, b, err := root.GetSome(PipelineBatchSize())
		if err != nil {
			return nil, err
		}
		if b != nil {
			this.rowCount += int64(b.Rows())
			if returnsData {
				for r := 0; r < b.Rows(); r++ {
					this.results = append(this.results, b.Get(r, 0))
				}
			}
			b.Release()
		}
		switch state {
		case DONE:
			return this.results, nil
		case WAITING:
			runtime.Gosched()
		}
	}
}

// finish shuts the pipeline down, then releases the snapshots.
func (this *Query) finish(err errors.Error) errors.Error {
	if err == nil {
		err = this.context.Error()
	}
	if this.root != nil {
		var code errors.ErrorCode
		if err != nil {
			code = err.Code()
		}
		err = this.shutdown(code, err)
	}
	this.context.Release()
	return err
}

func (this *Query) shutdown(code errors.ErrorCode, err errors.Error) (rv errors.Error) {
	rv = err
	defer func() {
		if r := recover(); r != nil {
			logging.Severef("query %s: panic during shutdown: %v", this.context.QueryId(), r)
			if rv == nil {
				rv = errors.NewExecutionPanicError(nil, "Panic during shutdown")
			}
		}
	}()
	for {
		state, e := this.root.Shutdown(code)
		if state == WAITING {
			runtime.Gosched()
			continue
		}
		if rv == nil && e != nil {
			rv = e
		}
		return rv
	}
}
