//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package errors

import (
	"fmt"
)

// Plan errors - errors that are created in the plan package

func NewPlanInternalError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_PLAN_INTERNAL, IKey: "plan.internal_error",
		InternalMsg: fmt.Sprintf("Plan error: %v", what), InternalCaller: CallerN(1)}
}

func NewUnknownOperatorError(name string) Error {
	return &err{level: EXCEPTION, ICode: E_PLAN_UNKNOWN_OPERATOR, IKey: "plan.unknown_operator",
		InternalMsg: fmt.Sprintf("No operator for name %s", name), InternalCaller: CallerN(1)}
}

func NewInvalidProjectionsError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_PLAN_INVALID_PROJECTIONS, IKey: "plan.invalid_projections",
		InternalMsg: fmt.Sprintf("Invalid projections: %v", what), InternalCaller: CallerN(1)}
}

func NewInvalidSequenceError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_PLAN_INVALID_SEQUENCE, IKey: "plan.invalid_sequence",
		InternalMsg: fmt.Sprintf("Invalid operator sequence: %v", what), InternalCaller: CallerN(1)}
}
