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

// Return ends a sequence, emitting one variable per row as the single
// register of its output.
type Return struct {
	variable string
}

func NewReturn(variable string) *Return {
	return &Return{
		variable: variable,
	}
}

func (this *Return) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitReturn(this)
}

func (this *Return) New() Operator {
	return &Return{}
}

func (this *Return) Variable() string {
	return this.variable
}

func (this *Return) References() []string {
	return []string{this.variable}
}

func (this *Return) Output() string {
	return ""
}

func (this *Return) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.MarshalBase(nil))
}

func (this *Return) MarshalBase(f func(map[string]interface{})) map[string]interface{} {
	r := map[string]interface{}{"#operator": "Return"}
	r["variable"] = this.variable
	if f != nil {
		f(r)
	}
	return r
}

func (this *Return) UnmarshalJSON(body []byte) error {
	var _unmarshalled struct {
		_        string `json:"#operator"`
		Variable string `json:"variable"`
	}
	err := json.Unmarshal(body, &_unmarshalled)
	if err != nil {
		return err
	}

	this.variable = _unmarshalled.Variable
	return nil
}
