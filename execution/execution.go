//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package execution provides query execution. Operators are pulled by
their consumer one block of rows at a time; an operator that cannot
make progress without an external event reports WAITING and is simply
called again later.
*/
package execution

import (
	atomic "github.com/couchbase/go-couchbase/platform"

	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/errors"
)

type ExecutionState int

const (
	// Suspended on an external event; call again with no new input.
	WAITING ExecutionState = iota
	HASMORE
	DONE
)

func (this ExecutionState) String() string {
	switch this {
	case WAITING:
		return "WAITING"
	case HASMORE:
		return "HASMORE"
	case DONE:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

/*
Executor is the per operator unit of row production. ProduceRow writes
as many rows as output has room for. It must never block: when the
upstream or a nested pipeline is not ready it returns WAITING, keeping
whatever it needs to resume where it stopped. DONE is terminal and may
be returned any number of times.
*/
type Executor interface {
	ProduceRow(output *block.OutputRow) (ExecutionState, Stats, errors.Error)

	// InitializeCursor rewinds the executor for a new run of its
	// pipeline. row is the context row of a nested pipeline.
	InitializeCursor(row block.InputRow)

	// Shutdown releases what the executor owns. It may return WAITING.
	Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error)
}

/*
ExecutionBlock is a runnable pipeline as seen by its consumer. All
three calls may return WAITING, and are then repeated as is.
*/
type ExecutionBlock interface {
	InitializeCursor(row block.InputRow) (ExecutionState, errors.Error)
	GetSome(atMost int) (ExecutionState, *block.Block, errors.Error)
	Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error)
}

var _BATCH_SIZE = 64

var pipelineBatch atomic.AlignedInt64
var useRawPointers atomic.AlignedInt64

func init() {
	SetPipelineBatch(0)
	SetUseRawDocumentPointers(true)
}

func SetPipelineBatch(size int) {
	if size < 1 {
		size = _BATCH_SIZE
	}
	atomic.StoreInt64(&pipelineBatch, int64(size))
}

func PipelineBatchSize() int {
	return int(atomic.LoadInt64(&pipelineBatch))
}

/*
SetUseRawDocumentPointers allows scans to hand out documents that point
into storage memory. Only synchronous snapshots ever do so.
*/
func SetUseRawDocumentPointers(on bool) {
	var v int64
	if on {
		v = 1
	}
	atomic.StoreInt64(&useRawPointers, v)
}

func UseRawDocumentPointers() bool {
	return atomic.LoadInt64(&useRawPointers) == 1
}
