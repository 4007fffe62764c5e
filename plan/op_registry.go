//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License
//  included in the file licenses/BSL-Couchbase.txt.  As of the Change Date
//  specified in that file, in accordance with the Business Source License,
//  use of this software will be governed by the Apache License, Version 2.0,
//  included in the file licenses/APL2.txt.

package plan

import (
	"github.com/docflow/pipeline/errors"
)

// Helper function to create a specific operator given its name
// (used as a key by GetOperator) and body in raw bytes
func MakeOperator(name string, body []byte) (Operator, error) {
	which_op, has_op := GetOperator(name)

	if !has_op {
		return nil, errors.NewUnknownOperatorError(name)
	}

	new_op := which_op.New()
	err := new_op.UnmarshalJSON(body)
	if err != nil {
		return nil, err
	}
	return new_op, nil
}

// GetOperator exposes the operators map to other packages
func GetOperator(name string) (Operator, bool) {
	rv, ok := _OPERATORS[name]
	return rv, ok
}

// _OPERATORS is a global map of all plan.Operator implementations
// It is used by implementations of json.Unmarshal to access the
// correct implementation given the name of an implementation via
// the "#operator" key in a marshalled object.
var _OPERATORS = map[string]Operator{
	// Sources
	"Singleton":           &Singleton{},
	"EnumerateCollection": &EnumerateCollection{},
	"IndexScan":           &IndexScan{},

	// Filter
	"Filter": &Filter{},

	// Subquery
	"Subquery": &Subquery{},

	// Return
	"Return": &Return{},

	// Framework
	"Sequence": &Sequence{},
}
