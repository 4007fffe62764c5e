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
)

/*
ReturnExecutor writes one register of each input row into register 0
of a single register block. Values are cloned, so that results never
point into storage memory.
*/
type ReturnExecutor struct {
	fetcher  SingleRowFetcher
	variable block.RegisterId
	done     bool
}

func NewReturnExecutor(fetcher SingleRowFetcher, variable block.RegisterId) *ReturnExecutor {
	return &ReturnExecutor{
		fetcher:  fetcher,
		variable: variable,
	}
}

func (this *ReturnExecutor) ProduceRow(output *block.OutputRow) (ExecutionState, Stats, errors.Error) {
	if this.done {
		return DONE, Stats{}, nil
	}
	for !output.IsFull() {
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
		output.CloneValueInto(0, row, row.GetValue(this.variable))
		output.AdvanceRow()
	}
	return HASMORE, Stats{}, nil
}

func (this *ReturnExecutor) InitializeCursor(row block.InputRow) {
	this.done = false
}

func (this *ReturnExecutor) Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error) {
	return DONE, nil
}
