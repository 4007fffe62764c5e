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

	"github.com/docflow/pipeline/errors"
)

/*
Subquery runs a nested sequence for each input row. When the nested
sequence ends in a Return, its rows are folded into an array written
to output; otherwise the subquery only runs for its effects and the
input row passes through unchanged.

A constant subquery does not depend on its outer row, and runs once.
*/
type Subquery struct {
	subquery *Sequence
	output   string
	isConst  bool
}

func NewSubquery(subquery *Sequence, output string, isConst bool) *Subquery {
	return &Subquery{
		subquery: subquery,
		output:   output,
		isConst:  isConst,
	}
}

func (this *Subquery) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitSubquery(this)
}

func (this *Subquery) New() Operator {
	return &Subquery{}
}

func (this *Subquery) Subquery() *Sequence {
	return this.subquery
}

func (this *Subquery) IsConst() bool {
	return this.isConst
}

// ReturnsData is true when the nested sequence ends in a Return.
func (this *Subquery) ReturnsData() bool {
	return this.subquery != nil && this.subquery.ReturnsData()
}

func (this *Subquery) References() []string {
	if this.subquery == nil {
		return nil
	}
	return this.subquery.freeVariables()
}

func (this *Subquery) Output() string {
	if !this.ReturnsData() {
		return ""
	}
	return this.output
}

func (this *Subquery) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.MarshalBase(nil))
}

func (this *Subquery) MarshalBase(f func(map[string]interface{})) map[string]interface{} {
	r := map[string]interface{}{"#operator": "Subquery"}
	r["output"] = this.output
	r["const"] = this.isConst
	if f != nil {
		f(r)
	} else {
		r["~subquery"] = this.subquery
	}
	return r
}

func (this *Subquery) UnmarshalJSON(body []byte) error {
	var _unmarshalled struct {
		_        string          `json:"#operator"`
		Output   string          `json:"output"`
		Const    bool            `json:"const"`
		Subquery json.RawMessage `json:"~subquery"`
	}
	err := json.Unmarshal(body, &_unmarshalled)
	if err != nil {
		return err
	}
	if len(_unmarshalled.Subquery) == 0 {
		return errors.NewPlanInternalError("subquery without a nested sequence")
	}

	op, err := MakeOperatorFromJSON(_unmarshalled.Subquery)
	if err != nil {
		return err
	}
	seq, ok := op.(*Sequence)
	if !ok {
		return errors.NewInvalidSequenceError("nested plan of a subquery must be a Sequence")
	}

	this.subquery = seq
	this.output = _unmarshalled.Output
	this.isConst = _unmarshalled.Const
	return nil
}
