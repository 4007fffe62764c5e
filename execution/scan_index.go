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
	"github.com/docflow/pipeline/value"
)

/*
IndexExecutor scans an index for every input row. Covered scans read
the index entries only; otherwise each entry's document is looked up in
the snapshot.
*/
type IndexExecutor struct {
	fetcher  SingleRowFetcher
	index    datastore.Index
	snapshot datastore.Snapshot
	producer *DocumentProducer
	covers   bool

	input    block.InputRow
	iterator datastore.IndexIterator
	output   *block.OutputRow
	err      errors.Error
	done     bool
}

func NewIndexExecutor(fetcher SingleRowFetcher, index datastore.Index, snapshot datastore.Snapshot,
	producer *DocumentProducer) *IndexExecutor {
	return &IndexExecutor{
		fetcher:  fetcher,
		index:    index,
		snapshot: snapshot,
		producer: producer,
		covers:   producer.Covers(),
	}
}

func (this *IndexExecutor) ProduceRow(output *block.OutputRow) (ExecutionState, Stats, errors.Error) {
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
			it, err := this.index.Scan(this.snapshot)
			if err != nil {
				return DONE, this.stats(), err
			}
			this.input = row
			this.iterator = it
		}

		var more bool
		var err errors.Error
		if this.covers {
			more, err = this.iterator.NextCovering(this.produceCovering, output.NumRowsLeft())
		} else {
			more, err = this.iterator.Next(this.fetch, output.NumRowsLeft())
		}
		if err == nil {
			err = this.err
		}
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

func (this *IndexExecutor) produceCovering(id datastore.LocalDocumentId, entry value.Value) {
	this.producer.Covering(this.output, this.input, id, entry)
	this.output.AdvanceRow()
}

func (this *IndexExecutor) produceDocument(id datastore.LocalDocumentId, raw []byte) {
	this.producer.Document(this.output, this.input, id, raw)
	this.output.AdvanceRow()
}

// Entries whose document is gone from the snapshot are skipped.
func (this *IndexExecutor) fetch(id datastore.LocalDocumentId) {
	if this.err != nil {
		return
	}
	_, err := this.snapshot.Lookup(id, this.produceDocument)
	if err != nil {
		this.err = err
	}
}

func (this *IndexExecutor) stats() Stats {
	return Stats{Scanned: this.producer.GetAndResetNumScanned()}
}

func (this *IndexExecutor) InitializeCursor(row block.InputRow) {
	this.input = block.InputRow{}
	this.iterator = nil
	this.err = nil
	this.done = false
}

func (this *IndexExecutor) Shutdown(code errors.ErrorCode) (ExecutionState, errors.Error) {
	this.input = block.InputRow{}
	this.iterator = nil
	return DONE, nil
}
