//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"fmt"
)

// Stats are the counters reported with each batch.
type Stats struct {
	Scanned  int64 `json:"scanned"`
	Filtered int64 `json:"filtered"`
}

func (this *Stats) Add(other Stats) {
	this.Scanned += other.Scanned
	this.Filtered += other.Filtered
}

func (this Stats) IsZero() bool {
	return this.Scanned == 0 && this.Filtered == 0
}

func (this Stats) String() string {
	return fmt.Sprintf("scanned: %d filtered: %d", this.Scanned, this.Filtered)
}

/*
StatisticsSink receives the statistics of every batch produced by a
pipeline. It is shared by concurrent queries.
*/
type StatisticsSink interface {
	RecordBatch(scanned, filtered int64)
}
