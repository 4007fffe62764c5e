//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package accounting_prometheus exposes the accounting API as Prometheus
metrics. Counters become <namespace>_<name>_total counters and
histograms become <namespace>_<name>_seconds histograms of durations.
*/
package accounting_prometheus

import (
	"sync"
	"time"

	atomic "github.com/couchbase/go-couchbase/platform"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/docflow/pipeline/accounting"
	"github.com/docflow/pipeline/errors"
)

const DEFAULT_NAMESPACE = "docflow_pipeline"

type promAccountingStore struct {
	registry *promMetricRegistry
}

func NewAccountingStore(reg prometheus.Registerer, namespace string) accounting.AccountingStore {
	if namespace == "" {
		namespace = DEFAULT_NAMESPACE
	}
	return &promAccountingStore{
		registry: &promMetricRegistry{
			reg:        reg,
			namespace:  namespace,
			counters:   map[string]*counter{},
			histograms: map[string]*histogram{},
		},
	}
}

func (this *promAccountingStore) Id() string {
	return "prometheus"
}

func (this *promAccountingStore) URL() string {
	return "prometheus:" + this.registry.namespace
}

func (this *promAccountingStore) MetricRegistry() accounting.MetricRegistry {
	return this.registry
}

// Prometheus counters cannot be read back, so the count is mirrored.
type counter struct {
	metric prometheus.Counter
	count  atomic.AlignedInt64
}

func (this *counter) Inc(amount int64) {
	if amount <= 0 {
		return
	}
	atomic.AddInt64(&this.count, amount)
	this.metric.Add(float64(amount))
}

func (this *counter) Count() int64 {
	return atomic.LoadInt64(&this.count)
}

type histogram struct {
	sync.Mutex
	metric prometheus.Histogram
	count  int64
	sum    int64
	max    int64
}

func (this *histogram) Update(n int64) {
	this.metric.Observe(time.Duration(n).Seconds())
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

type promMetricRegistry struct {
	sync.Mutex
	reg        prometheus.Registerer
	namespace  string
	counters   map[string]*counter
	histograms map[string]*histogram
}

func (this *promMetricRegistry) Counter(name string) (accounting.Counter, errors.Error) {
	this.Lock()
	defer this.Unlock()
	if c, ok := this.counters[name]; ok {
		return c, nil
	}
	metric := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: this.namespace,
		Name:      name + "_total",
		Help:      "Total " + name,
	})
	if err := this.reg.Register(metric); err != nil {
		return nil, errors.NewAccountingMetricError(err, name)
	}
	c := &counter{metric: metric}
	this.counters[name] = c
	return c, nil
}

func (this *promMetricRegistry) Histogram(name string) (accounting.Histogram, errors.Error) {
	this.Lock()
	defer this.Unlock()
	if h, ok := this.histograms[name]; ok {
		return h, nil
	}
	metric := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: this.namespace,
		Name:      name + "_seconds",
		Help:      "Distribution of " + name,
		Buckets:   []float64{.001, .005, .025, .1, .25, .5, 1, 5},
	})
	if err := this.reg.Register(metric); err != nil {
		return nil, errors.NewAccountingMetricError(err, name)
	}
	h := &histogram{metric: metric}
	this.histograms[name] = h
	return h, nil
}

func (this *promMetricRegistry) Counters() map[string]accounting.Counter {
	this.Lock()
	defer this.Unlock()
	rv := make(map[string]accounting.Counter, len(this.counters))
	for name, c := range this.counters {
		rv[name] = c
	}
	return rv
}

func (this *promMetricRegistry) Histograms() map[string]accounting.Histogram {
	this.Lock()
	defer this.Unlock()
	rv := make(map[string]accounting.Histogram, len(this.histograms))
	for name, h := range this.histograms {
		rv[name] = h
	}
	return rv
}
