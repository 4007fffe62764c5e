//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included in
//  the file licenses/Couchbase-BSL.txt.  As of the Change Date specified in that
//  file, in accordance with the Business Source License, use of this software will
//  be governed by the Apache License, Version 2.0, included in the file
//  licenses/APL.txt.

// Package accounting provides a common API for pipeline workload data - counters and timings.

package accounting

import (
	"time"

	"github.com/docflow/pipeline/errors"
)

// AccountingStore represents a store for maintaining all accounting data
type AccountingStore interface {
	Id() string                     // Id of this AccountingStore
	URL() string                    // URL to this AccountingStore
	MetricRegistry() MetricRegistry // The MetricRegistry that this AccountingStore is managing
}

// Metric types

// A Metric is a property that can be measured repeatedly and/or periodically
type Metric interface {
}

// Counter is an incrementing count (#queries, #documents scanned)
type Counter interface {
	Metric
	Inc(amount int64) // Increment the counter by the given amount
	Count() int64     // Current Count value
}

// Histogram summarizes a sampled metric (query duration in nanoseconds)
type Histogram interface {
	Metric
	Count() int64   // The number of values in the histogram
	Sum() int64     // The sum of all values in the histogram
	Max() int64     // The maximum value in the histogram
	Update(n int64) // Sample a new value
}

// MetricRegistry is the container for creating and maintaining Metrics
type MetricRegistry interface {

	// The following methods create or fetch a specific
	// type of metric with the given name
	Counter(name string) (Counter, errors.Error)
	Histogram(name string) (Histogram, errors.Error)

	Counters() map[string]Counter     // all registered counters
	Histograms() map[string]Histogram // all registered histograms
}

// define metrics mnemonics
type CounterId int

const (
	QUERIES CounterId = iota
	CANCELLED
	ERRORS

	RESULT_COUNT
	BATCHES
	DOCUMENTS_SCANNED
	ROWS_FILTERED

	QUERY_TIME

	QUERIES_250MS
	QUERIES_500MS
	QUERIES_1000MS
	QUERIES_5000MS

	// unknown is always the last and does not have a corresponding name or metric
	UNKNOWN
)

// Define names for all the metrics we are interested in:
const (
	_QUERIES   = "queries"
	_CANCELLED = "cancelled"
	_ERRORS    = "errors"

	_RESULT_COUNT      = "result_count"
	_BATCHES           = "batches"
	_DOCUMENTS_SCANNED = "documents_scanned"
	_ROWS_FILTERED     = "rows_filtered"

	_QUERY_TIME = "query_time"

	_QUERIES_250MS  = "queries_250ms"
	_QUERIES_500MS  = "queries_500ms"
	_QUERIES_1000MS = "queries_1000ms"
	_QUERIES_5000MS = "queries_5000ms"

	QUERY_TIMER = "query_timer"
)

// please keep in sync with the mnemonics
var metricNames = []string{
	_QUERIES,
	_CANCELLED,
	_ERRORS,

	_RESULT_COUNT,
	_BATCHES,
	_DOCUMENTS_SCANNED,
	_ROWS_FILTERED,

	_QUERY_TIME,

	_QUERIES_250MS,
	_QUERIES_500MS,
	_QUERIES_1000MS,
	_QUERIES_5000MS,
}

func (this CounterId) String() string {
	if this < 0 || int(this) >= len(metricNames) {
		return "unknown"
	}
	return metricNames[this]
}

const (
	_DURATION_0MS    = 0 * time.Millisecond
	_DURATION_250MS  = 250 * time.Millisecond
	_DURATION_500MS  = 500 * time.Millisecond
	_DURATION_1000MS = 1000 * time.Millisecond
	_DURATION_5000MS = 5000 * time.Millisecond
)

// Map each duration to its metrics
var slowMetricsMap = map[time.Duration][]CounterId{
	_DURATION_5000MS: {QUERIES_5000MS, QUERIES_1000MS, QUERIES_500MS, QUERIES_250MS},
	_DURATION_1000MS: {QUERIES_1000MS, QUERIES_500MS, QUERIES_250MS},
	_DURATION_500MS:  {QUERIES_500MS, QUERIES_250MS},
	_DURATION_250MS:  {QUERIES_250MS},
	_DURATION_0MS:    {},
}

type registration struct {
	store    AccountingStore
	counters []Counter
	timer    Histogram
}

var current *registration

// Use the given AccountingStore to create counters for all the metrics we are interested in.
// Must be called before any query runs. A nil store stops recording.
func RegisterMetrics(acctStore AccountingStore) errors.Error {
	if acctStore == nil {
		current = nil
		return nil
	}
	ms := acctStore.MetricRegistry()
	rv := &registration{store: acctStore, counters: make([]Counter, len(metricNames))}
	for id, name := range metricNames {
		c, err := ms.Counter(name)
		if err != nil {
			return err
		}
		rv.counters[id] = c
	}
	timer, err := ms.Histogram(QUERY_TIMER)
	if err != nil {
		return err
	}
	rv.timer = timer
	current = rv
	return nil
}

// Store is the registered AccountingStore, or nil.
func Store() AccountingStore {
	if current == nil {
		return nil
	}
	return current.store
}

// Record the outcome of one query
func RecordQuery(queryTime time.Duration, resultCount int64, err errors.Error) {
	r := current
	if r == nil {
		return
	}

	r.counters[QUERIES].Inc(1)
	if err != nil {
		if err.Code() == errors.E_EXECUTION_CANCELLED {
			r.counters[CANCELLED].Inc(1)
		} else {
			r.counters[ERRORS].Inc(1)
		}
	}
	r.counters[RESULT_COUNT].Inc(resultCount)
	r.counters[QUERY_TIME].Inc(int64(queryTime))
	r.timer.Update(int64(queryTime))

	// Determine slow metrics based on query duration
	slowMetrics := slowMetricsMap[_DURATION_0MS]

	switch {
	case queryTime >= _DURATION_5000MS:
		slowMetrics = slowMetricsMap[_DURATION_5000MS]
	case queryTime >= _DURATION_1000MS:
		slowMetrics = slowMetricsMap[_DURATION_1000MS]
	case queryTime >= _DURATION_500MS:
		slowMetrics = slowMetricsMap[_DURATION_500MS]
	case queryTime >= _DURATION_250MS:
		slowMetrics = slowMetricsMap[_DURATION_250MS]
	default:
	}

	for _, durationMetric := range slowMetrics {
		r.counters[durationMetric].Inc(1)
	}
}

func UpdateCounter(id CounterId) {
	r := current
	if r == nil || id >= UNKNOWN {
		return
	}
	r.counters[id].Inc(1)
}

/*
BatchSink forwards the statistics of every pipeline batch to the
registered store. The zero value is ready to use.
*/
type BatchSink struct {
}

func (this BatchSink) RecordBatch(scanned, filtered int64) {
	r := current
	if r == nil {
		return
	}
	r.counters[BATCHES].Inc(1)
	if scanned > 0 {
		r.counters[DOCUMENTS_SCANNED].Inc(scanned)
	}
	if filtered > 0 {
		r.counters[ROWS_FILTERED].Inc(filtered)
	}
}
