//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package accounting_test

import (
	"testing"
	"time"

	"github.com/docflow/pipeline/accounting"
	accounting_local "github.com/docflow/pipeline/accounting/local"
	"github.com/docflow/pipeline/datastore/mock"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/execution"
	"github.com/docflow/pipeline/plan"
)

func counts(store accounting.AccountingStore) map[string]int64 {
	rv := map[string]int64{}
	for name, c := range store.MetricRegistry().Counters() {
		rv[name] = c.Count()
	}
	return rv
}

func TestRecordQuery(t *testing.T) {
	store := accounting_local.NewAccountingStore()
	if err := accounting.RegisterMetrics(store); err != nil {
		t.Fatalf("register: %v", err)
	}

	accounting.RecordQuery(10*time.Millisecond, 5, nil)
	accounting.RecordQuery(600*time.Millisecond, 0, errors.NewCancelledError("q"))
	accounting.RecordQuery(6*time.Second, 0, errors.NewExecutionInternalError("failed"))

	c := counts(store)
	expected := map[string]int64{
		"queries":        3,
		"cancelled":      1,
		"errors":         1,
		"result_count":   5,
		"queries_250ms":  2,
		"queries_500ms":  2,
		"queries_1000ms": 1,
		"queries_5000ms": 1,
	}
	for name, n := range expected {
		if c[name] != n {
			t.Errorf("counter %s: expected %d, got %d", name, n, c[name])
		}
	}

	timer := store.MetricRegistry().Histograms()[accounting.QUERY_TIMER]
	if timer.Count() != 3 || timer.Max() != int64(6*time.Second) {
		t.Fatalf("unexpected timer count %d max %d", timer.Count(), timer.Max())
	}
}

func TestBatchSink(t *testing.T) {
	store := accounting_local.NewAccountingStore()
	if err := accounting.RegisterMetrics(store); err != nil {
		t.Fatalf("register: %v", err)
	}

	ds, err := mock.NewDatastore("mock:items=100,groups=4")
	if err != nil {
		t.Fatalf("datastore: %v", err)
	}
	seq := plan.NewSequence(
		plan.NewSingleton(),
		plan.NewEnumerateCollection("b0", "doc", nil, false),
		plan.NewFilter("doc", "", "doc"),
	)
	q := execution.NewQuery(seq, execution.NewContext(ds, nil, accounting.BatchSink{}))
	if _, err := q.Execute(); err != nil {
		t.Fatalf("query failed: %v", err)
	}

	c := counts(store)
	if c["documents_scanned"] != 100 {
		t.Fatalf("expected 100 documents scanned, got %d", c["documents_scanned"])
	}
	if c["queries"] != 1 || c["result_count"] != 100 {
		t.Fatalf("query not recorded: %v", c)
	}
	if c["rows_filtered"] != 0 || c["batches"] == 0 {
		t.Fatalf("unexpected counters %v", c)
	}
}

func TestCounterIdNames(t *testing.T) {
	if accounting.DOCUMENTS_SCANNED.String() != "documents_scanned" {
		t.Fatalf("unexpected name %s", accounting.DOCUMENTS_SCANNED)
	}
	if accounting.UNKNOWN.String() != "unknown" {
		t.Fatalf("unexpected name %s", accounting.UNKNOWN)
	}
}
