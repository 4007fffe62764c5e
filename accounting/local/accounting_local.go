//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

// In-process implementation of the accounting API, for tools and tests

package accounting_local

import (
	"sync"

	atomic "github.com/couchbase/go-couchbase/platform"

	"github.com/docflow/pipeline/accounting"
	"github.com/docflow/pipeline/errors"
)

type localAccountingStore struct {
	registry *localMetricRegistry
}

func NewAccountingStore() accounting.AccountingStore {
	return &localAccountingStore{
		registry: &localMetricRegistry{
			counters:   map[string]*counter{},
			histograms: map[string]*histogram{},
		},
	}
}

func (this *localAccountingStore) Id() string {
	return "local"
}

func (this *localAccountingStore) URL() string {
	return "local"
}

func (this *localAccountingStore) MetricRegistry() accounting.MetricRegistry {
	return this.registry
}

type counter struct {
	count atomic.AlignedInt64
}

func (this *counter) Inc(amount int64) {
	atomic.AddInt64(&this.count, amount)
}

func (this *counter) Count() int64 {
	return atomic.LoadInt64(&this.count)
}

type histogram struct {
	sync.Mutex
	count int64
	sum   int64
	max   int64
}

func (this *histogram) Update(n int64) {
	this.Lock()
	this.count++
	this.sum += n
	if n > this.max {
		this.max = n
	}
	this.Unlock()
}

func (this *histogram) Count() int64 {
	this.Lock()
	defer this.Unlock()
	return this.count
}

func (this *histogram) Sum() int64 {
	this.Lock()
	defer this.Unlock()
	return this.sum
}

func (this *histogram) Max() int64 {
	this.Lock()
	defer this.Unlock()
	return this.max
}

type localMetricRegistry struct {
	sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

func (this *localMetricRegistry) Counter(name string) (accounting.Counter, errors.Error) {
	this.Lock()
	defer this.Unlock()
	c, ok := this.counters[name]
	if !ok {
		c = &counter{}
		this.counters[name] = c
	}
	return c, nil
}

func (this *localMetricRegistry) Histogram(name string) (accounting.Histogram, errors.Error) {
	this.Lock()
	defer this.Unlock()
	h, ok := this.histograms[name]
	if !ok {
		h = &histogram{}
		this.histograms[name] = h
	}
	return h, nil
}

func (this *localMetricRegistry) Counters() map[string]accounting.Counter {
	this.Lock()
	defer this.Unlock()
	rv := make(map[string]accounting.Counter, len(this.counters))
	for name, c := range this.counters {
		rv[name] = c
	}
	return rv
}

func (this *localMetricRegistry) Histograms() map[string]accounting.Histogram {
	this.Lock()
	defer this.Unlock()
	rv := make(map[string]accounting.Histogram, len(this.histograms))
	for name, h := range this.histograms {
		rv[name] = h
	}
	return rv
}
