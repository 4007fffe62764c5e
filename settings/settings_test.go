//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/docflow/pipeline/accounting"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/execution"
	"github.com/docflow/pipeline/logging"
	"github.com/docflow/pipeline/value"
)

func withLogger(t *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	logOutput = buf
	InitSettings()
	t.Cleanup(func() {
		logOutput = os.Stderr
		InitSettings()
	})
	return buf
}

func TestDefaults(t *testing.T) {
	InitSettings()
	if diff := pretty.Compare(AllSettings(), defaultSettings()); diff != "" {
		t.Fatalf("unexpected defaults (-got +want):\n%s", diff)
	}
	if execution.PipelineBatchSize() != 64 || !execution.UseRawDocumentPointers() {
		t.Fatalf("defaults not applied")
	}
}

func TestUpdateSettings(t *testing.T) {
	buf := withLogger(t)

	err, warnings := UpdateSettings(map[string]interface{}{
		PIPELINE_BATCH:  float64(16),
		RAW_POINTERS:    false,
		MAX_PARALLELISM: 3,
		"bogus":         1,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if execution.PipelineBatchSize() != 16 || execution.UseRawDocumentPointers() {
		t.Fatalf("settings not applied")
	}
	if NewScheduler().Parallelism() != 3 {
		t.Fatalf("expected a scheduler of width 3")
	}
	if !strings.Contains(buf.String(), "SETTINGS: pipeline_batch changed from 64 to 16") {
		t.Fatalf("setting change not logged: %s", buf.String())
	}
}

func TestUpdateFromValue(t *testing.T) {
	withLogger(t)
	v := value.NewValue(map[string]interface{}{PIPELINE_BATCH: 8})
	if err, _ := UpdateSettings(v); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if execution.PipelineBatchSize() != 8 {
		t.Fatalf("expected batch 8, got %d", execution.PipelineBatchSize())
	}
}

func TestInvalidSettings(t *testing.T) {
	withLogger(t)
	for _, test := range []struct {
		settings interface{}
		code     errors.ErrorCode
	}{
		{"not a map", errors.E_SETTINGS_INVALID_TYPE},
		{map[string]interface{}{PIPELINE_BATCH: 0}, errors.E_SETTINGS_INVALID_VALUE},
		{map[string]interface{}{PIPELINE_BATCH: 1.5}, errors.E_SETTINGS_INVALID_VALUE},
		{map[string]interface{}{PIPELINE_BATCH: "big"}, errors.E_SETTINGS_INVALID_TYPE},
		{map[string]interface{}{RAW_POINTERS: "yes"}, errors.E_SETTINGS_INVALID_TYPE},
		{map[string]interface{}{LOG_LEVEL: "loud"}, errors.E_SETTINGS_INVALID_VALUE},
		{map[string]interface{}{LOG_FORMAT: "xml"}, errors.E_SETTINGS_INVALID_VALUE},
		{map[string]interface{}{LOG_FORMAT: true}, errors.E_SETTINGS_INVALID_TYPE},
		{map[string]interface{}{METRICS: "statsd"}, errors.E_SETTINGS_INVALID_VALUE},
		{map[string]interface{}{DATASTORE: ""}, errors.E_SETTINGS_INVALID_VALUE},
		{map[string]interface{}{MAX_PARALLELISM: -1}, errors.E_SETTINGS_INVALID_VALUE},
	} {
		err, _ := UpdateSettings(test.settings)
		if err == nil || err.Code() != test.code {
			t.Errorf("%v: expected %v, got %v", test.settings, test.code, err)
		}
	}
	if execution.PipelineBatchSize() != 64 {
		t.Fatalf("an invalid batch size was applied")
	}
}

func TestLoad(t *testing.T) {
	withLogger(t)
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	data := "pipeline_batch: 32\nuse_raw_document_pointers: false\nlog_level: debug\n" +
		"datastore: \"mock:items=10\"\nmetrics: none\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if execution.PipelineBatchSize() != 32 || execution.UseRawDocumentPointers() {
		t.Fatalf("file settings not applied")
	}
	if logging.LogLevel() != logging.DEBUG {
		t.Fatalf("expected DEBUG logging, got %v", logging.LogLevel())
	}
	if accounting.Store() != nil {
		t.Fatalf("expected metrics to be off, got %v", accounting.Store().Id())
	}

	ds, err := OpenDatastore()
	if err != nil {
		t.Fatalf("open datastore: %v", err)
	}
	ks, err := ds.KeyspaceByName("b0")
	if err != nil {
		t.Fatalf("keyspace: %v", err)
	}
	if n, _ := ks.Count(); n != 10 {
		t.Fatalf("expected 10 documents, got %d", n)
	}
}

func TestLoadErrors(t *testing.T) {
	withLogger(t)
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || err.Code() != errors.E_SETTINGS_LOAD {
		t.Fatalf("expected a load error, got %v", err)
	}
	if err := Parse([]byte("pipeline_bach: 32\n"), "inline"); err == nil || err.Code() != errors.E_SETTINGS_LOAD {
		t.Fatalf("expected unknown keys to be rejected, got %v", err)
	}
	if err := Parse([]byte("pipeline_batch: -4\n"), "inline"); err == nil ||
		err.Code() != errors.E_SETTINGS_INVALID_VALUE {
		t.Fatalf("expected an invalid value, got %v", err)
	}
}

func TestInitInstallsLogger(t *testing.T) {
	logging.SetLogger(nil)
	buf := withLogger(t)

	if err, _ := UpdateSettings(map[string]interface{}{LOG_LEVEL: "debug"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if logging.LogLevel() != logging.DEBUG {
		t.Fatalf("expected DEBUG logging, got %v", logging.LogLevel())
	}
	logging.Infof("pipeline started")
	if !strings.Contains(buf.String(), "pipeline started") {
		t.Fatalf("message not logged: %s", buf.String())
	}
}

func TestLogFormat(t *testing.T) {
	buf := withLogger(t)

	err, _ := UpdateSettings(map[string]interface{}{LOG_LEVEL: "warn", LOG_FORMAT: "json"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if logging.LogLevel() != logging.WARN {
		t.Fatalf("format change lost the level: %v", logging.LogLevel())
	}

	buf.Reset()
	logging.Infof("hidden")
	logging.Warnf("shown")
	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.HasPrefix(out, "{") {
		t.Fatalf("expected a JSON line, got %s", out)
	}
}

func TestMetrics(t *testing.T) {
	withLogger(t)
	if store := accounting.Store(); store == nil || store.Id() != "local" {
		t.Fatalf("expected local metrics by default, got %v", store)
	}
	local := accounting.Store()
	if err, _ := UpdateSettings(map[string]interface{}{METRICS: "local"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if accounting.Store() != local {
		t.Fatalf("re-applying local metrics replaced the store")
	}

	// Registering twice must reuse the collectors already registered.
	for i := 0; i < 2; i++ {
		if err, _ := UpdateSettings(map[string]interface{}{METRICS: "prometheus"}); err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}
	store := accounting.Store()
	if store == nil || store.Id() != "prometheus" {
		t.Fatalf("expected prometheus metrics, got %v", store)
	}
	queries := store.MetricRegistry().Counters()["queries"]
	before := queries.Count()
	accounting.UpdateCounter(accounting.QUERIES)
	if queries.Count() != before+1 {
		t.Fatalf("expected %d queries, got %d", before+1, queries.Count())
	}
	if n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "docflow_pipeline_queries_total"); err != nil || n != 1 {
		t.Fatalf("expected one queries series, got %d (%v)", n, err)
	}

	if err, _ := UpdateSettings(map[string]interface{}{METRICS: "none"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if accounting.Store() != nil {
		t.Fatalf("expected metrics to be off")
	}
	accounting.UpdateCounter(accounting.QUERIES)
}
