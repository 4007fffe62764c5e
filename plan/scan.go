//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License
//  included in the file licenses/BSL-Couchbase.txt.  As of the Change Date
//  specified in that file, in accordance with the Business Source License,
//  use of this software will be governed by the Apache License, Version 2.0,
//  included in the file licenses/APL2.txt.

package plan

import (
	json "github.com/couchbase/go_json"
)

/*
EnumerateCollection scans every document of a keyspace, once per input
row, writing each into its output variable.
*/
type EnumerateCollection struct {
	keyspace      string
	output        string
	projections   Projections
	produceResult bool
	rawPointers   bool
}

func NewEnumerateCollection(keyspace, output string, projections Projections, produceResult bool) *EnumerateCollection {
	return &EnumerateCollection{
		keyspace:      keyspace,
		output:        output,
		projections:   projections,
		produceResult: produceResult,
		rawPointers:   true,
	}
}

func (this *EnumerateCollection) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitEnumerateCollection(this)
}

func (this *EnumerateCollection) New() Operator {
	return &EnumerateCollection{}
}

func (this *EnumerateCollection) Keyspace() string {
	return this.keyspace
}

func (this *EnumerateCollection) Projections() Projections {
	return this.projections
}

// ProduceResult is false when only the number of documents matters.
func (this *EnumerateCollection) ProduceResult() bool {
	return this.produceResult
}

// RawPointers allows documents to be borrowed from storage memory when
// the snapshot permits it.
func (this *EnumerateCollection) RawPointers() bool {
	return this.rawPointers
}

func (this *EnumerateCollection) SetRawPointers(on bool) {
	this.rawPointers = on
}

func (this *EnumerateCollection) References() []string {
	return nil
}

func (this *EnumerateCollection) Output() string {
	return this.output
}

func (this *EnumerateCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.MarshalBase(nil))
}

func (this *EnumerateCollection) MarshalBase(f func(map[string]interface{})) map[string]interface{} {
	r := map[string]interface{}{"#operator": "EnumerateCollection"}
	r["keyspace"] = this.keyspace
	r["output"] = this.output
	if len(this.projections) > 0 {
		r["projections"] = this.projections
	}
	r["produce_result"] = this.produceResult
	r["raw_pointers"] = this.rawPointers
	if f != nil {
		f(r)
	}
	return r
}

func (this *EnumerateCollection) UnmarshalJSON(body []byte) error {
	var _unmarshalled struct {
		_             string      `json:"#operator"`
		Keyspace      string      `json:"keyspace"`
		Output        string      `json:"output"`
		Projections   Projections `json:"projections"`
		ProduceResult bool        `json:"produce_result"`
		RawPointers   bool        `json:"raw_pointers"`
	}
	err := json.Unmarshal(body, &_unmarshalled)
	if err != nil {
		return err
	}
	if err := _unmarshalled.Projections.Validate(); err != nil {
		return err
	}

	this.keyspace = _unmarshalled.Keyspace
	this.output = _unmarshalled.Output
	this.projections = _unmarshalled.Projections
	this.produceResult = _unmarshalled.ProduceResult
	this.rawPointers = _unmarshalled.RawPointers
	return nil
}
