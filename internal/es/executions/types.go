// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package executions builds the event-log aggregation that reports rule
// execution history and formats its response into RuleExecutionResult rows.
package executions

// MaxExecutionEventsDisplayed is the upper bound for the number of execution
// buckets a single query may request.
const MaxExecutionEventsDisplayed = 1000

// RuleExecutionStatus is the security-solution view of an execution outcome.
type RuleExecutionStatus string

const (
	StatusGoingToRun     RuleExecutionStatus = "going to run"
	StatusRunning        RuleExecutionStatus = "running"
	StatusPartialFailure RuleExecutionStatus = "partial failure"
	StatusFailed         RuleExecutionStatus = "failed"
	StatusSucceeded      RuleExecutionStatus = "succeeded"
)

// FilterableStatuses are the statuses a caller may filter results by.
// Selecting none or all of them disables status filtering.
var FilterableStatuses = []RuleExecutionStatus{StatusSucceeded, StatusFailed, StatusPartialFailure}

// SortOrder is a terms/bucket_sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortField pairs a sortable result field with a direction.
type SortField struct {
	Field string
	Order SortOrder
}

// QueryRequest configures BuildAggregation.
type QueryRequest struct {
	MaxExecutions int         // Upper bound of execution buckets (<= MaxExecutionEventsDisplayed)
	Page          int         // 1-based page number
	PerPage       int         // Executions per page
	Sort          []SortField // Applied in order
}

// Backfill is the time window a backfill execution covered.
type Backfill struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// RuleExecutionResult is one formatted row of execution history.
type RuleExecutionResult struct {
	ExecutionUUID             string              `json:"execution_uuid" yaml:"execution_uuid"`
	Timestamp                 string              `json:"timestamp" yaml:"timestamp"`
	DurationMs                float64             `json:"duration_ms" yaml:"duration_ms"`
	Status                    string              `json:"status,omitempty" yaml:"status,omitempty"`
	Message                   string              `json:"message,omitempty" yaml:"message,omitempty"`
	NumActiveAlerts           int64               `json:"num_active_alerts" yaml:"num_active_alerts"`
	NumNewAlerts              int64               `json:"num_new_alerts" yaml:"num_new_alerts"`
	NumRecoveredAlerts        int64               `json:"num_recovered_alerts" yaml:"num_recovered_alerts"`
	NumTriggeredActions       int64               `json:"num_triggered_actions" yaml:"num_triggered_actions"`
	NumSucceededActions       int64               `json:"num_succeeded_actions" yaml:"num_succeeded_actions"`
	NumErroredActions         int64               `json:"num_errored_actions" yaml:"num_errored_actions"`
	TotalSearchDurationMs     float64             `json:"total_search_duration_ms" yaml:"total_search_duration_ms"`
	ESSearchDurationMs        float64             `json:"es_search_duration_ms" yaml:"es_search_duration_ms"`
	ScheduleDelayMs           float64             `json:"schedule_delay_ms" yaml:"schedule_delay_ms"`
	TimedOut                  bool                `json:"timed_out" yaml:"timed_out"`
	IndexingDurationMs        float64             `json:"indexing_duration_ms" yaml:"indexing_duration_ms"`
	SearchDurationMs          float64             `json:"search_duration_ms" yaml:"search_duration_ms"`
	GapDurationS              float64             `json:"gap_duration_s" yaml:"gap_duration_s"`
	FrozenIndicesQueriedCount int64               `json:"frozen_indices_queried_count" yaml:"frozen_indices_queried_count"`
	SecurityStatus            RuleExecutionStatus `json:"security_status,omitempty" yaml:"security_status,omitempty"`
	SecurityMessage           string              `json:"security_message,omitempty" yaml:"security_message,omitempty"`
	Backfill                  *Backfill           `json:"backfill,omitempty" yaml:"backfill,omitempty"`
}

// Results is the formatted response for one page of execution history.
type Results struct {
	Total  int64                 `json:"total" yaml:"total"`
	Events []RuleExecutionResult `json:"events" yaml:"events"`
}

// ResultsOptions configures GetResults.
type ResultsOptions struct {
	RuleIDs       []string
	Start         string // ES date math, e.g. "now-24h"
	End           string // ES date math, e.g. "now"
	StatusFilters []RuleExecutionStatus
	Page          int
	PerPage       int
	SortField     string
	SortOrder     SortOrder
	MaxExecutions int // 0 means MaxExecutionEventsDisplayed
}
