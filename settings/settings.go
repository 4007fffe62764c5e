//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package settings holds the process-wide pipeline settings. Settings come
from a YAML file or from a map of updates, are validated, and are applied
to the knobs of the packages they control as they change.
*/
package settings

import (
	"bytes"
	"io"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/docflow/pipeline/accounting"
	accounting_local "github.com/docflow/pipeline/accounting/local"
	accounting_prometheus "github.com/docflow/pipeline/accounting/prometheus"
	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/datastore/resolver"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/execution"
	"github.com/docflow/pipeline/logging"
	logger_zap "github.com/docflow/pipeline/logging/logger_zap"
	"github.com/docflow/pipeline/util"
	"github.com/docflow/pipeline/value"
)

const (
	PIPELINE_BATCH  = "pipeline_batch"
	RAW_POINTERS    = "use_raw_document_pointers"
	LOG_LEVEL       = "log_level"
	LOG_FORMAT      = "log_format"
	DATASTORE       = "datastore"
	MAX_PARALLELISM = "max_parallelism"
	METRICS         = "metrics"
)

type setter func(name string, v interface{}) (interface{}, errors.Error)

var _accepted_settings map[string]setter = map[string]setter{
	PIPELINE_BATCH:  setPipelineBatch,
	RAW_POINTERS:    setRawPointers,
	LOG_LEVEL:       setLogLevel,
	LOG_FORMAT:      setLogFormat,
	DATASTORE:       setDatastore,
	MAX_PARALLELISM: setMaxParallelism,
	METRICS:         setMetrics,
}

func defaultSettings() map[string]interface{} {
	return map[string]interface{}{
		PIPELINE_BATCH:  int64(64),
		RAW_POINTERS:    true,
		LOG_LEVEL:       "info",
		LOG_FORMAT:      "console",
		DATASTORE:       "mock:",
		MAX_PARALLELISM: int64(0),
		METRICS:         "local",
	}
}

var globalSettings *querySettings

// Where the process log goes.
var logOutput io.Writer = os.Stderr

func init() {
	InitSettings()
}

/*
InitSettings resets every setting to its default, installs a logger on
the log output and registers the default metrics store.
*/
func InitSettings() {
	globalSettings = &querySettings{settings: make(map[string]interface{}, len(_accepted_settings))}
	logging.SetLogger(logger_zap.NewLogger(logOutput, logging.INFO, false))
	_, errs := UpdateSettings(defaultSettings())
	for _, err := range errs {
		logging.Errorf("SETTINGS: Error applying default settings: %v", err)
	}
}

// file is the YAML layout of a settings file. Absent keys keep their
// current value.
type file struct {
	PipelineBatch          *int64  `yaml:"pipeline_batch"`
	UseRawDocumentPointers *bool   `yaml:"use_raw_document_pointers"`
	LogLevel               *string `yaml:"log_level"`
	LogFormat              *string `yaml:"log_format"`
	Datastore              *string `yaml:"datastore"`
	MaxParallelism         *int64  `yaml:"max_parallelism"`
	Metrics                *string `yaml:"metrics"`
}

func (this *file) settings() map[string]interface{} {
	rv := map[string]interface{}{}
	if this.PipelineBatch != nil {
		rv[PIPELINE_BATCH] = *this.PipelineBatch
	}
	if this.UseRawDocumentPointers != nil {
		rv[RAW_POINTERS] = *this.UseRawDocumentPointers
	}
	if this.LogLevel != nil {
		rv[LOG_LEVEL] = *this.LogLevel
	}
	if this.LogFormat != nil {
		rv[LOG_FORMAT] = *this.LogFormat
	}
	if this.Datastore != nil {
		rv[DATASTORE] = *this.Datastore
	}
	if this.MaxParallelism != nil {
		rv[MAX_PARALLELISM] = *this.MaxParallelism
	}
	if this.Metrics != nil {
		rv[METRICS] = *this.Metrics
	}
	return rv
}

// Load applies the settings found in a YAML file. Unknown keys are an error.
func Load(path string) errors.Error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewSettingsLoadError(err, path)
	}
	return Parse(data, path)
}

func Parse(data []byte, source string) errors.Error {
	var f file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return errors.NewSettingsLoadError(err, source)
	}
	logging.Infof("SETTINGS: Loading settings from %s", source)
	err, _ := UpdateSettings(f.settings())
	return err
}

/*
UpdateSettings validates and applies a map of settings. The first invalid
setting stops the update and is returned; unknown settings are skipped,
and returned as warnings.
*/
func UpdateSettings(settings interface{}) (errors.Error, errors.Errors) {
	if actual, ok := settings.(value.Value); ok {
		settings = actual.Actual()
	}
	settingsMap, ok := settings.(map[string]interface{})
	if !ok {
		return errors.NewSettingsInvalidType("settings", settings), nil
	}

	keys := make([]string, 0, len(settingsMap))
	for k := range settingsMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var warnings errors.Errors
	for _, k := range keys {
		v := settingsMap[k]
		if actual, ok := v.(value.Value); ok {
			v = actual.Actual()
		}

		set, ok := _accepted_settings[k]
		if !ok {
			logging.Infof("SETTINGS: invalid setting: %v = %v", k, v)
			warnings = append(warnings, errors.NewWarning("Unknown setting "+k))
			continue
		}
		newValue, err := set(k, v)
		if err != nil {
			return err, warnings
		}
		old := globalSettings.getSetting(k)
		globalSettings.setSetting(k, newValue)
		if old != newValue {
			logging.Infof("SETTINGS: %v changed from %v to %v", k, old, newValue)
		}
	}
	return nil, warnings
}

// YAML numbers decode as int, JSON numbers as float64.
func toInt(name string, v interface{}) (int64, errors.Error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v), nil
		}
		return 0, errors.NewSettingsInvalidValue(name, "an integer", v)
	}
	return 0, errors.NewSettingsInvalidType(name, v)
}

func setPipelineBatch(name string, v interface{}) (interface{}, errors.Error) {
	n, err := toInt(name, v)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > 1<<20 {
		return nil, errors.NewSettingsInvalidValue(name, "a batch size between 1 and 1048576", v)
	}
	execution.SetPipelineBatch(int(n))
	return n, nil
}

func setRawPointers(name string, v interface{}) (interface{}, errors.Error) {
	on, ok := v.(bool)
	if !ok {
		return nil, errors.NewSettingsInvalidType(name, v)
	}
	execution.SetUseRawDocumentPointers(on)
	return on, nil
}

func setLogLevel(name string, v interface{}) (interface{}, errors.Error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.NewSettingsInvalidType(name, v)
	}
	level, ok, _ := logging.ParseLevel(s)
	if !ok {
		return nil, errors.NewSettingsInvalidValue(name, "a logging level", v)
	}
	logging.SetLevel(level)
	return s, nil
}

// The logger is replaced, keeping the configured level.
func setLogFormat(name string, v interface{}) (interface{}, errors.Error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.NewSettingsInvalidType(name, v)
	}
	if s != "console" && s != "json" {
		return nil, errors.NewSettingsInvalidValue(name, "console or json", v)
	}
	level := logging.INFO
	if current, ok := GetSetting(LOG_LEVEL).(string); ok {
		if l, ok, _ := logging.ParseLevel(current); ok {
			level = l
		}
	}
	logging.SetLogger(logger_zap.NewLogger(logOutput, level, s == "json"))
	return s, nil
}

// Collectors can only be registered once with the default registerer,
// so every registration shares one store.
var promOnce util.Once
var promStore accounting.AccountingStore

func prometheusStore() accounting.AccountingStore {
	promOnce.Do(func() {
		promStore = accounting_prometheus.NewAccountingStore(prometheus.DefaultRegisterer,
			accounting_prometheus.DEFAULT_NAMESPACE)
	})
	return promStore
}

func setMetrics(name string, v interface{}) (interface{}, errors.Error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.NewSettingsInvalidType(name, v)
	}
	var store accounting.AccountingStore
	switch s {
	case "none":
	case "local":
		// Keep the counters of a store already in place.
		if current := accounting.Store(); current != nil && current.Id() == s {
			return s, nil
		}
		store = accounting_local.NewAccountingStore()
	case "prometheus":
		store = prometheusStore()
	default:
		return nil, errors.NewSettingsInvalidValue(name, "none, local or prometheus", v)
	}
	if err := accounting.RegisterMetrics(store); err != nil {
		return nil, err
	}
	return s, nil
}

func setDatastore(name string, v interface{}) (interface{}, errors.Error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.NewSettingsInvalidType(name, v)
	}
	if s == "" {
		return nil, errors.NewSettingsInvalidValue(name, "a datastore URL", v)
	}
	return s, nil
}

func setMaxParallelism(name string, v interface{}) (interface{}, errors.Error) {
	n, err := toInt(name, v)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.NewSettingsInvalidValue(name, "zero (one per CPU) or a positive number", v)
	}
	return n, nil
}

// OpenDatastore opens the configured datastore.
func OpenDatastore() (datastore.Datastore, errors.Error) {
	url, _ := GetSetting(DATASTORE).(string)
	return resolver.NewDatastore(url)
}

// NewScheduler builds a scheduler as wide as the configured parallelism.
func NewScheduler() *execution.Scheduler {
	n, _ := GetSetting(MAX_PARALLELISM).(int64)
	return execution.NewScheduler(int(n))
}

type querySettings struct {
	sync.RWMutex
	settings map[string]interface{}
}

func (this *querySettings) getAllSettings() map[string]interface{} {
	this.RLock()
	allSettings := make(map[string]interface{}, len(this.settings))
	for k, v := range this.settings {
		allSettings[k] = v
	}
	this.RUnlock()
	return allSettings
}

func (this *querySettings) setSetting(name string, value interface{}) {
	this.Lock()
	this.settings[name] = value
	this.Unlock()
}

func (this *querySettings) getSetting(name string) interface{} {
	this.RLock()
	rv := this.settings[name]
	this.RUnlock()
	return rv
}

func GetSetting(name string) interface{} {
	return globalSettings.getSetting(name)
}

func AllSettings() map[string]interface{} {
	return globalSettings.getAllSettings()
}
