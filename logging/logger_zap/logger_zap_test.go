//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package logger_zap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/docflow/pipeline/logging"
)

func TestLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, logging.WARN, true)

	logger.Logf(logging.INFO, "skipped %s", "info")
	logger.Logf(logging.WARN, "kept %s", "warn")
	logger.Logp(logging.SEVERE, "kept severe", logging.Pair{Name: "operator", Value: "subquery"})

	out := buf.String()
	if strings.Contains(out, "skipped info") {
		t.Fatalf("INFO entry written at WARN level: %s", out)
	}
	if !strings.Contains(out, "kept warn") {
		t.Fatalf("missing WARN entry: %s", out)
	}
	if !strings.Contains(out, `"operator":"subquery"`) || !strings.Contains(out, `"_level":"SEVERE"`) {
		t.Fatalf("structured entry not written: %s", out)
	}

	buf.Reset()
	logger.SetLevel(logging.DEBUG)
	if logger.Level() != logging.DEBUG {
		t.Fatalf("expected DEBUG, got %v", logger.Level())
	}
	logger.Loga(logging.DEBUG, func() string { return "lazy" })
	if !strings.Contains(buf.String(), "lazy") {
		t.Fatalf("lazy entry not written: %s", buf.String())
	}
}

func TestFacade(t *testing.T) {
	buf := &bytes.Buffer{}
	logging.SetLogger(NewLogger(buf, logging.INFO, false))
	defer logging.SetLogger(nil)

	logging.Debugf("hidden")
	logging.Infof("SETTINGS: %s = %v", "pipeline_batch", 64)
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("DEBUG entry written at INFO level")
	}
	if !strings.Contains(buf.String(), "SETTINGS: pipeline_batch = 64") {
		t.Fatalf("missing INFO entry: %s", buf.String())
	}
	if logging.LogLevel() != logging.INFO {
		t.Fatalf("expected INFO, got %v", logging.LogLevel())
	}

	l, ok, filter := logging.ParseLevel("debug:execution")
	if !ok || l != logging.DEBUG || filter != "execution" {
		t.Fatalf("unexpected parse result %v %v %v", l, ok, filter)
	}
}
