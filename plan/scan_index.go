//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License
//  included in the file licenses/BSL-Couchbase.txt.  As of the Change Date
//  specified in that file, in accordance with the Business Source License,
//  use of this software will be governed by the Apache License, Version 2.0,
//  included in the file licenses/APL2.txt.

package plan

import (
	"fmt"

	json "github.com/couchbase/go_json"

	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/errors"
)

/*
IndexScan walks an index in order, once per input row. When every
projection is an indexed field the scan is covering and reads no
documents.
*/
type IndexScan struct {
	keyspace      string
	index         string
	fields        []string
	output        string
	projections   Projections
	covering      []int
	produceResult bool
	allowCovering bool
	rawPointers   bool
}

func NewIndexScan(index datastore.Index, output string, projections Projections, produceResult bool) *IndexScan {
	return &IndexScan{
		keyspace:      index.Keyspace(),
		index:         index.Name(),
		fields:        index.Fields(),
		output:        output,
		projections:   projections,
		covering:      projections.CoveringPositions(index.Fields()),
		produceResult: produceResult,
		allowCovering: true,
		rawPointers:   true,
	}
}

func (this *IndexScan) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitIndexScan(this)
}

func (this *IndexScan) New() Operator {
	return &IndexScan{}
}

func (this *IndexScan) Keyspace() string {
	return this.keyspace
}

func (this *IndexScan) Index() string {
	return this.index
}

func (this *IndexScan) Fields() []string {
	return this.fields
}

func (this *IndexScan) Projections() Projections {
	return this.projections
}

// CoveringPositions is nil when the scan is not covering.
func (this *IndexScan) CoveringPositions() []int {
	return this.covering
}

func (this *IndexScan) Covering() bool {
	return this.covering != nil
}

func (this *IndexScan) ProduceResult() bool {
	return this.produceResult
}

/*
AllowCovering may be switched off to force documents to be read even
for a covering scan.
*/
func (this *IndexScan) AllowCovering() bool {
	return this.allowCovering
}

func (this *IndexScan) SetAllowCovering(on bool) {
	this.allowCovering = on
}

func (this *IndexScan) RawPointers() bool {
	return this.rawPointers
}

func (this *IndexScan) SetRawPointers(on bool) {
	this.rawPointers = on
}

func (this *IndexScan) References() []string {
	return nil
}

func (this *IndexScan) Output() string {
	return this.output
}

func (this *IndexScan) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.MarshalBase(nil))
}

func (this *IndexScan) MarshalBase(f func(map[string]interface{})) map[string]interface{} {
	r := map[string]interface{}{"#operator": "IndexScan"}
	r["keyspace"] = this.keyspace
	r["index"] = this.index
	r["fields"] = this.fields
	r["output"] = this.output
	if len(this.projections) > 0 {
		r["projections"] = this.projections
	}
	if this.covering != nil {
		r["covering"] = this.covering
	}
	r["produce_result"] = this.produceResult
	r["allow_covering"] = this.allowCovering
	r["raw_pointers"] = this.rawPointers
	if f != nil {
		f(r)
	}
	return r
}

func (this *IndexScan) UnmarshalJSON(body []byte) error {
	var _unmarshalled struct {
		_             string      `json:"#operator"`
		Keyspace      string      `json:"keyspace"`
		Index         string      `json:"index"`
		Fields        []string    `json:"fields"`
		Output        string      `json:"output"`
		Projections   Projections `json:"projections"`
		Covering      []int       `json:"covering"`
		ProduceResult bool        `json:"produce_result"`
		AllowCovering bool        `json:"allow_covering"`
		RawPointers   bool        `json:"raw_pointers"`
	}
	err := json.Unmarshal(body, &_unmarshalled)
	if err != nil {
		return err
	}
	if err := _unmarshalled.Projections.Validate(); err != nil {
		return err
	}
	if c := _unmarshalled.Covering; c != nil {
		if len(c) != len(_unmarshalled.Projections) {
			return errors.NewInvalidProjectionsError(fmt.Sprintf("%d covering positions for %d projections",
				len(c), len(_unmarshalled.Projections)))
		}
		for _, p := range c {
			if p < 0 || p >= len(_unmarshalled.Fields) {
				return errors.NewInvalidProjectionsError(fmt.Sprintf("covering position %d out of range", p))
			}
		}
	}

	this.keyspace = _unmarshalled.Keyspace
	this.index = _unmarshalled.Index
	this.fields = _unmarshalled.Fields
	this.output = _unmarshalled.Output
	this.projections = _unmarshalled.Projections
	this.covering = _unmarshalled.Covering
	this.produceResult = _unmarshalled.ProduceResult
	this.allowCovering = _unmarshalled.AllowCovering
	this.rawPointers = _unmarshalled.RawPointers
	return nil
}
