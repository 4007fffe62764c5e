//  Copyright 2021-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package errors

const (
	E_SETTINGS_INVALID_VALUE ErrorCode = 2000
	E_SETTINGS_INVALID_TYPE  ErrorCode = 2001
	E_SETTINGS_LOAD          ErrorCode = 2002

	E_ACCOUNTING_METRIC ErrorCode = 2100

	E_PLAN_INTERNAL            ErrorCode = 4000
	E_PLAN_UNKNOWN_OPERATOR    ErrorCode = 4001
	E_PLAN_INVALID_PROJECTIONS ErrorCode = 4002
	E_PLAN_INVALID_SEQUENCE    ErrorCode = 4003

	E_INTERNAL                  ErrorCode = 5000
	E_EXECUTION_PANIC           ErrorCode = 5001
	E_EXECUTION_INTERNAL        ErrorCode = 5002
	E_EXECUTION_PARAMETER       ErrorCode = 5003
	E_SUBQUERY_INIT             ErrorCode = 5200
	E_NESTED_PIPELINE           ErrorCode = 5201
	E_STALE_DOCUMENT            ErrorCode = 5210
	E_EXECUTION_CONTRACT        ErrorCode = 5298
	E_DEBUG_FAILURE             ErrorCode = 5299
	E_EXECUTION_SHUTDOWN        ErrorCode = 5300
	E_EXECUTION_QUERY_SCHEDULER ErrorCode = 5310
	E_EXECUTION_CANCELLED       ErrorCode = 5320

	E_DATASTORE_INVALID_URL        ErrorCode = 12000
	E_DATASTORE_KEYSPACE_NOT_FOUND ErrorCode = 12001
	E_DATASTORE_INDEX_NOT_FOUND    ErrorCode = 12002
	E_DATASTORE_SNAPSHOT           ErrorCode = 12003
	E_DATASTORE_DOCUMENT_NOT_FOUND ErrorCode = 12004
	E_DATASTORE_CODEC              ErrorCode = 12005
	E_DATASTORE_BOLT               ErrorCode = 12006
	E_DATASTORE_INVALID_DOCUMENT   ErrorCode = 12007
)
