//  Copyright 2021-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package errors

type ErrData struct {
	Code        ErrorCode
	ErrorCode   string
	Description string
	Causes      []string
	Actions     []string
	IsUser      bool
}

// DescribeError returns the documentation entry for a code, if any.
func DescribeError(code ErrorCode) (ErrData, bool) {
	d, ok := errmap[code]
	return d, ok
}

var errmap = map[ErrorCode]ErrData{
	E_SUBQUERY_INIT: {
		Code:        E_SUBQUERY_INIT,
		ErrorCode:   "E_SUBQUERY_INIT",
		Description: "Error initializing the cursor of a subquery for an outer row.",
		Causes: []string{
			"The nested pipeline of a subquery could not be positioned on the current outer row.",
		},
		Actions: []string{
			"Review the cause of the error; the query is aborted and not retried.",
		},
	},
	E_NESTED_PIPELINE: {
		Code:        E_NESTED_PIPELINE,
		ErrorCode:   "E_NESTED_PIPELINE",
		Description: "The nested pipeline of a subquery failed.",
		Causes: []string{
			"An operator inside the subquery reported a fatal error while producing rows.",
		},
		Actions: []string{
			"Review the cause of the error. Partial subquery results are discarded.",
		},
	},
	E_STALE_DOCUMENT: {
		Code:        E_STALE_DOCUMENT,
		ErrorCode:   "E_STALE_DOCUMENT",
		Description: "A borrowed document was read after its storage snapshot was released.",
		Causes: []string{
			"An operator retained a zero-copy document past the lifetime of the snapshot that produced it.",
		},
		Actions: []string{
			"Disable use_raw_document_pointers and report the plan to support.",
		},
	},
	E_EXECUTION_CONTRACT: {
		Code:        E_EXECUTION_CONTRACT,
		ErrorCode:   "E_EXECUTION_CONTRACT",
		Description: "An operator violated the row production contract.",
		Causes: []string{
			"A register was produced twice for the same row, or a row was written into a full block.",
		},
		Actions: []string{
			"Contact support",
		},
	},
	E_DEBUG_FAILURE: {
		Code:        E_DEBUG_FAILURE,
		ErrorCode:   "E_DEBUG_FAILURE",
		Description: "An armed failure point was reached.",
		Causes: []string{
			"A test armed the failure point named in the message.",
		},
		Actions: []string{
			"Clear the failure point.",
		},
	},
	E_EXECUTION_CANCELLED: {
		Code:        E_EXECUTION_CANCELLED,
		ErrorCode:   "E_EXECUTION_CANCELLED",
		Description: "The query was stopped before it completed.",
		Causes: []string{
			"The query was stopped, or the scheduler running it was cancelled.",
		},
		Actions: []string{
			"Run the query again if its results are still needed.",
		},
		IsUser: true,
	},
}
