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
	"github.com/docflow/pipeline/value"
)

// FilterExecutor passes on the rows where variable.path equals other.
type FilterExecutor struct {
	fetcher  SingleRowFetcher
	variable block.RegisterId
	path     *value.Path
	other    block.RegisterId
	done     bool
}

func NewFilterExecutor(fetcher SingleRowFetcher, variable block.RegisterId, attribute string,
	other block.RegisterId) *FilterExecutor {
	rv := &FilterExecutor{
		fetcher:  fetcher,
		variable: variable,
		other:    other,
	}
	if attribute != "" {
		var ok bool
		rv.path, ok = value.NewPath(attribute)
		if !ok {
			panic(errors.NewContractViolation("malformed filter attribute " + attribute))
		}
	}
	return rv
}

func (this *FilterExecutor) ProduceRow(output *block.OutputRow) (ExecutionState, Stats, errors.Error) {
	var stats Stats
	if this.done {
		return DONE, stats, nil
	}
	for !output.IsFull() {
		state, row, err := this.fetcher.FetchRow()
		if err != nil {
			return DONE, stats, err
		}
		if !row.IsInitialized() {
			if state == DONE {
				this.done = true
			}
			return state, stats, nil
		}
		if this.matches(row) {
			output.CopyRow(row)
			output.AdvanceRow()
		} else {
			stats.Filtered++
		}
	}
	return HASMORE, stats, nil
}

func (this *FilterExecutor) matches(row block.InputRow) bool {
	v := row.GetValue(this.variable)
	if this.path != nil {
		var ok bool
		v, ok = v.Find(this.path)
		if !ok {
			return false
		}
	}
	return v.Equals(row.GetValue(this.other))
}

func (this *FilterExecutor) InitializeCursor(row block.InputRow) {
	this.done = false
}

func (this *FilterExecutor) Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error) {
	return DONE, nil
}
