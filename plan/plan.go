//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License
//  included in the file licenses/BSL-Couchbase.txt.  As of the Change Date
//  specified in that file, in accordance with the Business Source License,
//  use of this software will be governed by the Apache License, Version 2.0,
//  included in the file licenses/APL2.txt.

/*
Package plan provides execution plans: static, immutable operator
configurations, built once and shared by every execution of the plan.
Variables are named in the plan; Sequence.AssignRegisters maps them to
block registers.
*/
package plan

import (
	json "github.com/couchbase/go_json"
)

type Operators []Operator

type Operator interface {
	json.Marshaler   // JSON encoding; used to ship and explain plans
	json.Unmarshaler // JSON decoding

	MarshalBase(f func(map[string]interface{})) map[string]interface{} // JSON encoding helper

	Accept(visitor Visitor) (interface{}, error) // Visitor pattern
	New() Operator                               // Dynamic constructor; used for unmarshaling

	// Variables read by the operator; for a subquery, the outer
	// variables its nested plan reads.
	References() []string

	// Variable written by the operator, or "" for none.
	Output() string
}

/*
MakeOperatorFromJSON decodes an operator whose type is named by its
"#operator" key.
*/
func MakeOperatorFromJSON(body []byte) (Operator, error) {
	var op_type struct {
		Op_name string `json:"#operator"`
	}
	err := json.Unmarshal(body, &op_type)
	if err != nil {
		return nil, err
	}
	return MakeOperator(op_type.Op_name, body)
}
