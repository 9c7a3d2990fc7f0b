// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package executions

import "time"

// isoMillis matches the ISO-8601 form used for computed timestamps.
const isoMillis = "2006-01-02T15:04:05.000Z"

// FormatResponse converts a decoded aggregation response into Results.
//
// A response without aggregations yields an empty result. overrideTotal, when
// non-nil and non-zero, replaces the cardinality total; GetResults uses it
// when a status pre-query already counted the matching executions.
func FormatResponse(resp *AggregationResponse, overrideTotal *int64) Results {
	if resp == nil || resp.Aggregations == nil {
		return Results{Total: 0, Events: []RuleExecutionResult{}}
	}
	aggs := resp.Aggregations

	total := int64(aggs.TotalExecutions.ValueOr(0))
	if overrideTotal != nil && *overrideTotal != 0 {
		total = *overrideTotal
	}

	var buckets []ExecutionBucket
	if aggs.ExecutionUUID != nil {
		buckets = aggs.ExecutionUUID.Buckets
	}
	events := make([]RuleExecutionResult, 0, len(buckets))
	for i := range buckets {
		events = append(events, FormatBucket(&buckets[i]))
	}

	return Results{Total: total, Events: events}
}

// FormatBucket converts one execution uuid bucket into a RuleExecutionResult.
// Missing numeric values read as 0.
func FormatBucket(b *ExecutionBucket) RuleExecutionResult {
	var (
		ruleExec     = b.RuleExecution
		metrics      = b.SecurityMetrics
		outcomeEvent *EventSource
		r            RuleExecutionResult
	)
	if ruleExec == nil {
		ruleExec = &RuleExecutionAgg{}
	}
	if metrics == nil {
		metrics = &SecurityMetricsAgg{}
	}
	outcomeEvent = ruleExec.OutcomeAndMessage.First()

	r.ExecutionUUID = string(b.Key)
	r.Timestamp = ruleExec.ExecuteStartTime.StringOr("")
	// event.duration and schedule_delay are recorded in nanoseconds
	r.DurationMs = ruleExec.ExecutionDuration.ValueOr(0) / oneMillisecondAsNanoseconds
	r.ScheduleDelayMs = ruleExec.ScheduleDelay.ValueOr(0) / oneMillisecondAsNanoseconds
	r.Status, _ = outcomeEvent.Outcome()
	r.Message, _ = outcomeEvent.MessageText()

	if b.AlertCounts != nil && b.AlertCounts.Buckets != nil {
		r.NumActiveAlerts = b.AlertCounts.Buckets.ActiveAlerts.Count()
		r.NumNewAlerts = b.AlertCounts.Buckets.NewAlerts.Count()
		r.NumRecoveredAlerts = b.AlertCounts.Buckets.RecoveredAlerts.Count()
	}

	r.NumTriggeredActions = int64(ruleExec.NumTriggeredActions.ValueOr(0))
	if b.ActionExecution != nil {
		r.NumSucceededActions = b.ActionExecution.ActionOutcomes.DocCountFor(OutcomeSuccess)
		r.NumErroredActions = b.ActionExecution.ActionOutcomes.DocCountFor(OutcomeFailure)
	}
	r.TotalSearchDurationMs = ruleExec.TotalSearchDuration.ValueOr(0)
	r.ESSearchDurationMs = ruleExec.ESSearchDuration.ValueOr(0)
	r.TimedOut = b.TimeoutMessage.Count() > 0

	r.IndexingDurationMs = metrics.IndexDuration.ValueOr(0)
	r.SearchDurationMs = metrics.SearchDuration.ValueOr(0)
	r.GapDurationS = metrics.GapDuration.ValueOr(0)
	r.FrozenIndicesQueriedCount = int64(metrics.FrozenIndicesQueriedCount.ValueOr(0))

	r.SecurityStatus, r.SecurityMessage = securityStatusAndMessage(b.SecurityStatus, outcomeEvent)
	r.Backfill = backfillWindow(ruleExec.Backfill.First())

	return r
}

// securityStatusAndMessage prefers the latest status-change event. Without
// one, the status is translated from event.outcome and the message falls
// back to error.message, which is more descriptive than message for
// platform errors.
func securityStatusAndMessage(sec *SecurityStatusAgg, outcomeEvent *EventSource) (RuleExecutionStatus, string) {
	var statusEvent, messageEvent *EventSource
	if sec != nil {
		statusEvent = sec.Status.First()
		messageEvent = sec.Message.First()
	}

	var status RuleExecutionStatus
	if s, ok := statusEvent.ExecutionStatus(); ok {
		status = RuleExecutionStatus(s)
	} else if outcome, ok := outcomeEvent.Outcome(); ok {
		status, _ = MapPlatformStatusToRuleExecutionStatus(outcome)
	}

	message, ok := messageEvent.MessageText()
	if !ok {
		message, _ = outcomeEvent.ErrorMessage()
	}
	return status, message
}

// backfillWindow computes [start-interval, start]. A backfill whose start or
// interval cannot be parsed is reported without a window.
func backfillWindow(src *EventSource) *Backfill {
	bf := src.BackfillWindow()
	if bf == nil {
		return nil
	}
	start, err := time.Parse(time.RFC3339Nano, bf.Start)
	if err != nil {
		return nil
	}
	interval, err := ParseDuration(bf.Interval)
	if err != nil {
		return nil
	}
	return &Backfill{
		From: start.Add(-interval).UTC().Format(isoMillis),
		To:   bf.Start,
	}
}
