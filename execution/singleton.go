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

// SingletonExecutor emits the row its cursor was initialized with, once.
type SingletonExecutor struct {
	row  block.InputRow
	done bool
}

func NewSingletonExecutor() *SingletonExecutor {
	return &SingletonExecutor{done: true}
}

func (this *SingletonExecutor) ProduceRow(output *block.OutputRow) (ExecutionState, Stats, errors.Error) {
	if this.done {
		return DONE, Stats{}, nil
	}
	if !this.row.IsInitialized() {
		panic(errors.NewContractViolation("singleton executed without a cursor row"))
	}
	output.CopyRow(this.row)
	output.AdvanceRow()
	this.done = true
	return DONE, Stats{}, nil
}

func (this *SingletonExecutor) InitializeCursor(row block.InputRow) {
	this.row = row
	this.done = false
}

func (this *SingletonExecutor) Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error) {
	this.row = block.InputRow{}
	this.done = true
	return DONE, nil
}
