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
SingleRowFetcher hands an executor its input one row at a time. A row
is returned with HASMORE; an uninitialized row comes with WAITING, when
the upstream is not ready, or with DONE, when it is exhausted. A row
stays valid until the next call.
*/
type SingleRowFetcher interface {
	FetchRow() (ExecutionState, block.InputRow, errors.Error)
}

// blockFetcher reads the blocks of an upstream pipeline.
type blockFetcher struct {
	upstream ExecutionBlock
	current  *block.Block
	row      int
	state    ExecutionState
}

func newBlockFetcher(upstream ExecutionBlock) *blockFetcher {
	return &blockFetcher{
		upstream: upstream,
		state:    HASMORE,
	}
}

func (this *blockFetcher) FetchRow() (ExecutionState, block.InputRow, errors.Error) {
	for {
		if this.current != nil {
			if this.row < this.current.Rows() {
				rv := block.NewInputRow(this.current, this.row)
				this.row++
				return HASMORE, rv, nil
			}
			this.current.Release()
			this.current = nil
		}
		if this.state == DONE {
			return DONE, block.InputRow{}, nil
		}

		state, b, err := this.upstream.GetSome(PipelineBatchSize())
		if err != nil {
			this.state = DONE
			return DONE, block.InputRow{}, err
		}
		if state != WAITING {
			this.state = state
		}
		if b != nil {
			this.current = b
			this.row = 0
			continue
		}
		if state == WAITING {
			return WAITING, block.InputRow{}, nil
		}
	}
}

// reset drops the block being read. The upstream is rewound separately.
func (this *blockFetcher) reset() {
	if this.current != nil {
		this.current.Release()
		this.current = nil
	}
	this.row = 0
	this.state = HASMORE
}
