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

// Execution errors - errors that are created in the execution package

func NewExecutionPanicError(e error, msg string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_PANIC, IKey: "execution.panic", ICause: e,
		InternalMsg: msg, InternalCaller: CallerN(1)}
}

func NewExecutionInternalError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_INTERNAL, IKey: "execution.internal_error",
		InternalMsg: fmt.Sprintf("Execution internal error: %v", what), InternalCaller: CallerN(1)}
}

func NewExecutionParameterError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_PARAMETER, IKey: "execution.parameter_error",
		InternalMsg: fmt.Sprintf("Execution parameter error: %v", what), InternalCaller: CallerN(1)}
}

func NewSubqueryInitError(e error) Error {
	c := &err{level: EXCEPTION, ICode: E_SUBQUERY_INIT, IKey: "execution.subquery.init_error", ICause: e,
		InternalMsg: "Error initializing subquery cursor", InternalCaller: CallerN(1)}
	if ee, ok := e.(Error); ok {
		c.cause = ee
	}
	return c
}

func NewNestedPipelineError(e error) Error {
	c := &err{level: EXCEPTION, ICode: E_NESTED_PIPELINE, IKey: "execution.subquery.nested_error", ICause: e,
		InternalMsg: "Error executing subquery", InternalCaller: CallerN(1)}
	if ee, ok := e.(Error); ok {
		c.cause = ee
	}
	return c
}

func NewStaleDocumentError(generation, current uint64) Error {
	return &err{level: EXCEPTION, ICode: E_STALE_DOCUMENT, IKey: "execution.stale_document",
		InternalMsg: fmt.Sprintf("Borrowed document read after snapshot release (generation %d, snapshot at %d)",
			generation, current), InternalCaller: CallerN(1)}
}

// Contract violations are raised with panic() and only recovered by the
// query driver.
func NewContractViolation(what string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_CONTRACT, IKey: "execution.contract_violation",
		InternalMsg: fmt.Sprintf("Execution contract violation: %v", what), InternalCaller: CallerN(2)}
}

func NewDebugFailure(point string) Error {
	return &err{level: EXCEPTION, ICode: E_DEBUG_FAILURE, IKey: "execution.debug_failure",
		InternalMsg: fmt.Sprintf("Failure point %s reached", point), InternalCaller: CallerN(1)}
}

func NewShutdownError(code ErrorCode) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_SHUTDOWN, IKey: "execution.shutdown_error",
		InternalMsg: fmt.Sprintf("Pipeline shut down with error code %d", code), InternalCaller: CallerN(1)}
}

func NewSchedulerError(e error) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_QUERY_SCHEDULER, IKey: "execution.scheduler_error", ICause: e,
		InternalMsg: "Error scheduling queries", InternalCaller: CallerN(1)}
}

func NewCancelledError(queryId string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_CANCELLED, IKey: "execution.cancelled",
		InternalMsg: fmt.Sprintf("Query %s cancelled", queryId), InternalCaller: CallerN(1)}
}
