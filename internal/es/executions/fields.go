// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package executions

// Event log field names.
const (
	// Base ECS fields
	ActionField       = "event.action"
	DurationField     = "event.duration"
	ErrorMessageField = "error.message"
	MessageField      = "message"
	ProviderField     = "event.provider"
	OutcomeField      = "event.outcome"
	StartField        = "event.start"
	TimestampField    = "@timestamp"

	// Platform fields
	RuleExecutionUUIDField     = "kibana.alert.rule.execution.uuid"
	ScheduleDelayField         = "kibana.task.schedule_delay"
	ESSearchDurationField      = "kibana.alert.rule.execution.metrics.es_search_duration_ms"
	TotalActionsTriggeredField = "kibana.alert.rule.execution.metrics.number_of_triggered_actions"
	SavedObjectsPath           = "kibana.saved_objects"

	// Security fields
	GapDurationField        = "kibana.alert.rule.execution.metrics.execution_gap_duration_s"
	IndexingDurationField   = "kibana.alert.rule.execution.metrics.total_indexing_duration_ms"
	SearchDurationField     = "kibana.alert.rule.execution.metrics.total_search_duration_ms"
	FrozenIndicesCountField = "kibana.alert.rule.execution.metrics.frozen_indices_queried_count"
	StatusField             = "kibana.alert.rule.execution.status"
	BackfillField           = "kibana.alert.rule.execution.backfill"
)

// Event providers and actions.
const (
	ProviderActions       = "actions"
	ProviderAlerting      = "alerting"
	ProviderRuleExecution = "securitySolution.ruleExecution"

	ActionExecute          = "execute"
	ActionExecuteBackfill  = "execute-backfill"
	ActionExecuteTimeout   = "execute-timeout"
	ActionExecutionMetrics = "execution-metrics"
	ActionStatusChange     = "status-change"
)

// EventLogIndex is the default event log index pattern.
const EventLogIndex = ".kibana-event-log-*"

const oneMillisecondAsNanoseconds = 1_000_000

// sortableFields lists the sortable result fields in display order, paired
// with the aggregation path used to order execution buckets.
var sortableFields = []struct {
	field string
	path  string
}{
	{"timestamp", "ruleExecution>executeStartTime"},
	{"duration_ms", "ruleExecution>executionDuration"},
	{"indexing_duration_ms", "securityMetrics>indexDuration"},
	{"search_duration_ms", "securityMetrics>searchDuration"},
	{"gap_duration_s", "securityMetrics>gapDuration"},
	{"schedule_delay_ms", "ruleExecution>scheduleDelay"},
	{"num_triggered_actions", "ruleExecution>numTriggeredActions"},
}

// SortableFields returns the names accepted as sort fields.
func SortableFields() []string {
	names := make([]string, len(sortableFields))
	for i, f := range sortableFields {
		names[i] = f.field
	}
	return names
}

// AggregationPath returns the bucket path a sort field orders by.
func AggregationPath(field string) (string, bool) {
	for _, f := range sortableFields {
		if f.field == field {
			return f.path, true
		}
	}
	return "", false
}
