//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License
//  included in the file licenses/BSL-Couchbase.txt.  As of the Change Date
//  specified in that file, in accordance with the Business Source License,
//  use of this software will be governed by the Apache License, Version 2.0,
//  included in the file licenses/APL2.txt.

package plan

type Visitor interface {

	// Sources
	VisitSingleton(op *Singleton) (interface{}, error)
	VisitEnumerateCollection(op *EnumerateCollection) (interface{}, error)
	VisitIndexScan(op *IndexScan) (interface{}, error)

	// Filter
	VisitFilter(op *Filter) (interface{}, error)

	// Subquery
	VisitSubquery(op *Subquery) (interface{}, error)

	// Return
	VisitReturn(op *Return) (interface{}, error)

	// Framework
	VisitSequence(op *Sequence) (interface{}, error)
}
