// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/elastic/execlog/internal/es/executions"
)

type fakeExporter struct {
	calls    []string
	flushed  []string
	flushErr error
}

func (f *fakeExporter) Export(ctx context.Context, ruleID string, events []executions.RuleExecutionResult) string {
	f.calls = append(f.calls, fmt.Sprintf("%s:%d", ruleID, len(events)))
	return "batch-" + ruleID
}

func (f *fakeExporter) Flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("flush without deadline")
	}
	if f.flushErr != nil {
		return f.flushErr
	}
	f.flushed = append(f.flushed, f.calls[len(f.calls)-1])
	return nil
}

func (f *fakeExporter) Endpoint() string { return "collector:4318" }

func TestExportResults(t *testing.T) {
	t.Parallel()

	results := []ruleResults{
		{RuleID: "a", Results: executions.Results{Total: 5, Events: make([]executions.RuleExecutionResult, 2)}},
		{RuleID: "b", Results: executions.Results{Events: []executions.RuleExecutionResult{}}},
	}
	exp := &fakeExporter{}
	var out bytes.Buffer

	if err := exportResults(context.Background(), exp, results, time.Second, &out); err != nil {
		t.Fatalf("exportResults: %v", err)
	}

	if diff := cmp.Diff([]string{"a:2", "b:0"}, exp.calls); diff != "" {
		t.Errorf("export calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(exp.calls, exp.flushed); diff != "" {
		t.Errorf("every batch should be flushed (-want +got):\n%s", diff)
	}
	want := "Rule a: exported 2 of 5 executions (batch batch-a)\n" +
		"Rule b: exported 0 of 0 executions (batch batch-b)\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestExportResults_FlushError(t *testing.T) {
	t.Parallel()

	results := []ruleResults{
		{RuleID: "a", Results: executions.Results{Events: make([]executions.RuleExecutionResult, 1)}},
		{RuleID: "b", Results: executions.Results{Events: make([]executions.RuleExecutionResult, 1)}},
	}
	exp := &fakeExporter{flushErr: errors.New("connection refused")}
	var out bytes.Buffer

	err := exportResults(context.Background(), exp, results, time.Second, &out)
	if err == nil || !strings.Contains(err.Error(), "export rule a (batch batch-a)") {
		t.Fatalf("err = %v, want failure for rule a", err)
	}
	if len(exp.calls) != 1 {
		t.Errorf("export continued after flush failure: %v", exp.calls)
	}
	if out.Len() != 0 {
		t.Errorf("reported success for a failed batch: %q", out.String())
	}
}
