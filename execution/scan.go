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
	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/errors"
)

/*
EnumerateCollectionExecutor scans a whole keyspace snapshot for every
input row. A scan interrupted by a full output block resumes at the
next document on the following call.
*/
type EnumerateCollectionExecutor struct {
	fetcher  SingleRowFetcher
	snapshot datastore.Snapshot
	producer *DocumentProducer

	input    block.InputRow
	iterator datastore.DocumentIterator
	output   *block.OutputRow
	done     bool
}

func NewEnumerateCollectionExecutor(fetcher SingleRowFetcher, snapshot datastore.Snapshot,
	producer *DocumentProducer) *EnumerateCollectionExecutor {
	return &EnumerateCollectionExecutor{
		fetcher:  fetcher,
		snapshot: snapshot,
		producer: producer,
	}
}

func (this *EnumerateCollectionExecutor) ProduceRow(output *block.OutputRow) (ExecutionState, Stats, errors.Error) {
	if this.done {
		return DONE, Stats{}, nil
	}
	this.output = output
	defer func() {
		this.output = nil
	}()

	for !output.IsFull() {
		if this.iterator == nil {
			state, row, err := this.fetcher.FetchRow()
			if err != nil {
				return DONE, this.stats(), err
			}
			if !row.IsInitialized() {
				if state == DONE {
					this.done = true
				}
				return state, this.stats(), nil
			}
			it, err := this.snapshot.Scan()
			if err != nil {
				return DONE, this.stats(), err
			}
			this.input = row
			this.iterator = it
		}

		more, err := this.iterator.Next(this.produce, output.NumRowsLeft())
		if err != nil {
			return DONE, this.stats(), err
		}
		if !more {
			this.iterator = nil
			this.input = block.InputRow{}
		}
	}
	return HASMORE, this.stats(), nil
}

func (this *EnumerateCollectionExecutor) produce(id datastore.LocalDocumentId, raw []byte) {
	this.producer.Document(this.output, this.input, id, raw)
	this.output.AdvanceRow()
}

func (this *EnumerateCollectionExecutor) stats() Stats {
	return Stats{Scanned: this.producer.GetAndResetNumScanned()}
}

func (this *EnumerateCollectionExecutor) InitializeCursor(row block.InputRow) {
	this.input = block.InputRow{}
	this.iterator = nil
	this.done = false
}

func (this *EnumerateCollectionExecutor) Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error) {
	this.input = block.InputRow{}
	this.iterator = nil
	return DONE, nil
}
