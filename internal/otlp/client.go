// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package otlp ships rule execution history to an OTLP logs endpoint.
package otlp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/elastic/execlog/internal/es/executions"
)

// DefaultServiceName is the resource service name of exported records.
const DefaultServiceName = "execlog"

// Attribute keys set on every exported record.
const (
	AttrRuleID             = "rule.id"
	AttrExecutionUUID      = "rule.execution.uuid"
	AttrExecutionStatus    = "rule.execution.status"
	AttrDurationMs         = "rule.execution.duration_ms"
	AttrScheduleDelayMs    = "rule.execution.schedule_delay_ms"
	AttrSearchDurationMs   = "rule.execution.search_duration_ms"
	AttrIndexingDurationMs = "rule.execution.indexing_duration_ms"
	AttrGapDurationS       = "rule.execution.gap_duration_s"
	AttrTriggeredActions   = "rule.execution.actions.triggered"
	AttrSucceededActions   = "rule.execution.actions.succeeded"
	AttrErroredActions     = "rule.execution.actions.errored"
	AttrTimedOut           = "rule.execution.timed_out"
	AttrBackfillFrom       = "rule.execution.backfill.from"
	AttrBackfillTo         = "rule.execution.backfill.to"
	AttrExportBatchID      = "execlog.batch.id"
)

// Client sends execution results to an OTLP endpoint
type Client struct {
	provider *sdklog.LoggerProvider
	logger   log.Logger
	endpoint string
}

// Config holds OTLP client configuration
type Config struct {
	Endpoint    string // OTLP HTTP endpoint (default: localhost:4318)
	ServiceName string // Resource service name (default: execlog)
	Insecure    bool   // Use HTTP instead of HTTPS
}

// New creates a new OTLP client backed by a batching HTTP exporter
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4318"
	}

	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}

	exporter, err := otlploghttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	return newClient(sdklog.NewBatchProcessor(exporter), cfg), nil
}

func newClient(processor sdklog.Processor, cfg Config) *Client {
	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(name))

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(processor),
		sdklog.WithResource(res),
	)

	return &Client{
		provider: provider,
		logger:   provider.Logger("execlog"),
		endpoint: cfg.Endpoint,
	}
}

// Endpoint returns the configured OTLP endpoint
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Export emits one log record per execution and returns the batch id
// attached to all of them.
func (c *Client) Export(ctx context.Context, ruleID string, events []executions.RuleExecutionResult) string {
	batchID := uuid.NewString()
	for i := range events {
		c.logger.Emit(ctx, buildRecord(ruleID, batchID, &events[i]))
	}
	return batchID
}

// Flush forces buffered records out to the endpoint
func (c *Client) Flush(ctx context.Context) error {
	return c.provider.ForceFlush(ctx)
}

// Close shuts down the OTLP client
func (c *Client) Close(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}

func buildRecord(ruleID, batchID string, ev *executions.RuleExecutionResult) log.Record {
	var record log.Record

	if ts, err := time.Parse(time.RFC3339Nano, ev.Timestamp); err == nil {
		record.SetTimestamp(ts)
	}
	record.SetObservedTimestamp(time.Now())

	status := effectiveStatus(ev)
	severity, text := statusToSeverity(status)
	record.SetSeverity(severity)
	record.SetSeverityText(text)
	record.SetBody(log.StringValue(recordBody(ev)))

	record.AddAttributes(
		log.String(AttrRuleID, ruleID),
		log.String(AttrExecutionUUID, ev.ExecutionUUID),
		log.String(AttrExecutionStatus, string(status)),
		log.Float64(AttrDurationMs, ev.DurationMs),
		log.Float64(AttrScheduleDelayMs, ev.ScheduleDelayMs),
		log.Float64(AttrSearchDurationMs, ev.SearchDurationMs),
		log.Float64(AttrIndexingDurationMs, ev.IndexingDurationMs),
		log.Float64(AttrGapDurationS, ev.GapDurationS),
		log.Int64(AttrTriggeredActions, ev.NumTriggeredActions),
		log.Int64(AttrSucceededActions, ev.NumSucceededActions),
		log.Int64(AttrErroredActions, ev.NumErroredActions),
		log.Bool(AttrTimedOut, ev.TimedOut),
		log.String(AttrExportBatchID, batchID),
	)
	if ev.Backfill != nil {
		record.AddAttributes(
			log.String(AttrBackfillFrom, ev.Backfill.From),
			log.String(AttrBackfillTo, ev.Backfill.To),
		)
	}

	return record
}

// effectiveStatus is the security status, or the platform outcome translated
// when no status-change event was recorded.
func effectiveStatus(ev *executions.RuleExecutionResult) executions.RuleExecutionStatus {
	if ev.SecurityStatus != "" {
		return ev.SecurityStatus
	}
	status, _ := executions.MapPlatformStatusToRuleExecutionStatus(ev.Status)
	return status
}

func recordBody(ev *executions.RuleExecutionResult) string {
	if ev.SecurityMessage != "" {
		return ev.SecurityMessage
	}
	return ev.Message
}

// statusToSeverity converts an execution status to OTel severity and its text
func statusToSeverity(status executions.RuleExecutionStatus) (log.Severity, string) {
	switch status {
	case executions.StatusFailed:
		return log.SeverityError, "ERROR"
	case executions.StatusPartialFailure:
		return log.SeverityWarn, "WARN"
	default:
		return log.SeverityInfo, "INFO"
	}
}
