//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package accounting_prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/docflow/pipeline/accounting"
	"github.com/docflow/pipeline/errors"
)

func TestPrometheusCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := NewAccountingStore(reg, "")
	if err := accounting.RegisterMetrics(store); err != nil {
		t.Fatalf("register: %v", err)
	}

	accounting.RecordQuery(300*time.Millisecond, 7, nil)
	accounting.BatchSink{}.RecordBatch(40, 3)
	accounting.BatchSink{}.RecordBatch(2, 0)

	registry := store.MetricRegistry().(*promMetricRegistry)
	for name, expected := range map[string]float64{
		"queries":           1,
		"result_count":      7,
		"documents_scanned": 42,
		"rows_filtered":     3,
		"batches":           2,
		"queries_250ms":     1,
		"queries_500ms":     0,
	} {
		c := registry.counters[name]
		if got := testutil.ToFloat64(c.metric); got != expected {
			t.Errorf("%s: expected %v, got %v", name, expected, got)
		}
		if c.Count() != int64(expected) {
			t.Errorf("%s: mirrored count %d, expected %v", name, c.Count(), expected)
		}
	}

	n, err := testutil.GatherAndCount(reg, "docflow_pipeline_query_timer_seconds")
	if err != nil || n != 1 {
		t.Fatalf("expected the query timer to be exported, got %d, %v", n, err)
	}
}

func TestPrometheusDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewAccountingStore(reg, "dup")
	if _, err := first.MetricRegistry().Counter("queries"); err != nil {
		t.Fatalf("counter: %v", err)
	}

	// the same store hands out the registered counter
	if _, err := first.MetricRegistry().Counter("queries"); err != nil {
		t.Fatalf("counter lookup: %v", err)
	}

	second := NewAccountingStore(reg, "dup")
	_, err := second.MetricRegistry().Counter("queries")
	if err == nil || err.Code() != errors.E_ACCOUNTING_METRIC {
		t.Fatalf("expected a registration error, got %v", err)
	}
}
