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
Filter keeps the rows where attribute of variable equals other. Inside a
subquery, other is typically an outer variable, which correlates the
subquery with its outer row.
*/
type Filter struct {
	variable  string
	attribute string
	other     string
}

func NewFilter(variable, attribute, other string) *Filter {
	return &Filter{
		variable:  variable,
		attribute: attribute,
		other:     other,
	}
}

func (this *Filter) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitFilter(this)
}

func (this *Filter) New() Operator {
	return &Filter{}
}

func (this *Filter) Variable() string {
	return this.variable
}

// Attribute is a dotted path; empty compares the variable itself.
func (this *Filter) Attribute() string {
	return this.attribute
}

func (this *Filter) Other() string {
	return this.other
}

func (this *Filter) References() []string {
	return []string{this.variable, this.other}
}

func (this *Filter) Output() string {
	return ""
}

func (this *Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.MarshalBase(nil))
}

func (this *Filter) MarshalBase(f func(map[string]interface{})) map[string]interface{} {
	r := map[string]interface{}{"#operator": "Filter"}
	r["variable"] = this.variable
	if this.attribute != "" {
		r["attribute"] = this.attribute
	}
	r["other"] = this.other
	if f != nil {
		f(r)
	}
	return r
}

func (this *Filter) UnmarshalJSON(body []byte) error {
	var _unmarshalled struct {
		_         string `json:"#operator"`
		Variable  string `json:"variable"`
		Attribute string `json:"attribute"`
		Other     string `json:"other"`
	}
	err := json.Unmarshal(body, &_unmarshalled)
	if err != nil {
		return err
	}

	this.variable = _unmarshalled.Variable
	this.attribute = _unmarshalled.Attribute
	this.other = _unmarshalled.Other
	return nil
}
