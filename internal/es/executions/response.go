// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package executions

import (
	"encoding/json"
	"fmt"
	"io"
)

// Response shapes for the execution history aggregation.
//
// Every optional part of the response is a pointer or a slice, so an absent
// key decodes to nil and reads through the accessors below with an explicit
// default. Older execution records simply lack newer metrics; that is not an
// error. A value of the wrong JSON type is, and surfaces from DecodeResponse.

// AggregationResponse is the subset of a search response this package reads.
type AggregationResponse struct {
	Aggregations *Aggregations `json:"aggregations"`
}

// Aggregations holds the named top-level aggregations.
type Aggregations struct {
	TotalExecutions        *ValueAgg `json:"totalExecutions"`
	ExecutionUUID          *TermsAgg `json:"executionUuid"`
	FilteredExecutionUUIDs *TermsAgg `json:"filteredExecutionUUIDs"`
}

// ValueAgg is a single-value metric aggregation (min, max, cardinality).
type ValueAgg struct {
	Value         *float64 `json:"value"`
	ValueAsString *string  `json:"value_as_string"`
}

// ValueOr returns the metric value, or def when it is absent or null.
func (v *ValueAgg) ValueOr(def float64) float64 {
	if v == nil || v.Value == nil {
		return def
	}
	return *v.Value
}

// StringOr returns value_as_string, or def when absent.
func (v *ValueAgg) StringOr(def string) string {
	if v == nil || v.ValueAsString == nil {
		return def
	}
	return *v.ValueAsString
}

// DocCountAgg is a filter aggregation read only for its document count.
type DocCountAgg struct {
	DocCount int64 `json:"doc_count"`
}

// Count returns the doc count, 0 when the aggregation is absent.
func (d *DocCountAgg) Count() int64 {
	if d == nil {
		return 0
	}
	return d.DocCount
}

// BucketKey is a terms bucket key. ES returns strings for keyword fields and
// numbers for numeric ones; both are kept in their string form.
type BucketKey string

// UnmarshalJSON accepts string and numeric keys.
func (k *BucketKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = BucketKey(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("bucket key must be a string or number, got %s", string(data))
	}
	*k = BucketKey(n.String())
	return nil
}

// TermsAgg is a terms aggregation over execution uuids or outcomes.
type TermsAgg struct {
	Buckets []ExecutionBucket `json:"buckets"`
}

// Keys returns the bucket keys in order.
func (t *TermsAgg) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.Buckets))
	for _, b := range t.Buckets {
		keys = append(keys, string(b.Key))
	}
	return keys
}

// DocCountFor returns the doc count of the bucket with the given key, 0 when
// there is none.
func (t *TermsAgg) DocCountFor(key string) int64 {
	if t == nil {
		return 0
	}
	for _, b := range t.Buckets {
		if string(b.Key) == key {
			return b.DocCount
		}
	}
	return 0
}

// ExecutionBucket is one execution uuid bucket. Outcome buckets reuse the
// type and only carry Key and DocCount.
type ExecutionBucket struct {
	Key             BucketKey           `json:"key"`
	DocCount        int64               `json:"doc_count"`
	ActionExecution *ActionExecutionAgg `json:"actionExecution"`
	RuleExecution   *RuleExecutionAgg   `json:"ruleExecution"`
	SecurityMetrics *SecurityMetricsAgg `json:"securityMetrics"`
	SecurityStatus  *SecurityStatusAgg  `json:"securityStatus"`
	TimeoutMessage  *DocCountAgg        `json:"timeoutMessage"`
	AlertCounts     *AlertCountsAgg     `json:"alertCounts"`
}

// ActionExecutionAgg holds action outcomes for an execution.
type ActionExecutionAgg struct {
	ActionOutcomes *TermsAgg `json:"actionOutcomes"`
}

// RuleExecutionAgg holds platform metrics for an execution.
type RuleExecutionAgg struct {
	ExecuteStartTime    *ValueAgg   `json:"executeStartTime"`
	ScheduleDelay       *ValueAgg   `json:"scheduleDelay"`
	ESSearchDuration    *ValueAgg   `json:"esSearchDuration"`
	TotalSearchDuration *ValueAgg   `json:"totalSearchDuration"`
	NumTriggeredActions *ValueAgg   `json:"numTriggeredActions"`
	ExecutionDuration   *ValueAgg   `json:"executionDuration"`
	Backfill            *TopHitsAgg `json:"backfill"`
	OutcomeAndMessage   *TopHitsAgg `json:"outcomeAndMessage"`
}

// SecurityMetricsAgg holds security solution metrics for an execution.
type SecurityMetricsAgg struct {
	GapDuration               *ValueAgg `json:"gapDuration"`
	IndexDuration             *ValueAgg `json:"indexDuration"`
	SearchDuration            *ValueAgg `json:"searchDuration"`
	FrozenIndicesQueriedCount *ValueAgg `json:"frozenIndicesQueriedCount"`
}

// SecurityStatusAgg holds the latest status-change document fields.
type SecurityStatusAgg struct {
	Status  *TopHitsAgg `json:"status"`
	Message *TopHitsAgg `json:"message"`
}

// AlertCountsAgg holds keyed filter buckets counting alerts by state.
type AlertCountsAgg struct {
	Buckets *struct {
		ActiveAlerts    *DocCountAgg `json:"activeAlerts"`
		NewAlerts       *DocCountAgg `json:"newAlerts"`
		RecoveredAlerts *DocCountAgg `json:"recoveredAlerts"`
	} `json:"buckets"`
}

// TopHitsAgg is a top_hits aggregation.
type TopHitsAgg struct {
	Hits *struct {
		Hits []struct {
			Source *EventSource `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// First returns the _source of the first hit, or nil.
func (t *TopHitsAgg) First() *EventSource {
	if t == nil || t.Hits == nil || len(t.Hits.Hits) == 0 {
		return nil
	}
	return t.Hits.Hits[0].Source
}

// EventSource is the part of an event log document the aggregation fetches
// through _source includes.
type EventSource struct {
	Message *string `json:"message"`
	Event   *struct {
		Outcome *string `json:"outcome"`
	} `json:"event"`
	Error *struct {
		Message *string `json:"message"`
	} `json:"error"`
	Kibana *struct {
		Alert *struct {
			Rule *struct {
				Execution *struct {
					Status   *string         `json:"status"`
					Backfill *BackfillSource `json:"backfill"`
				} `json:"execution"`
			} `json:"rule"`
		} `json:"alert"`
	} `json:"kibana"`
}

// BackfillSource is the backfill object of an execute-backfill event.
type BackfillSource struct {
	Start    string `json:"start"`
	Interval string `json:"interval"`
}

// MessageText returns message and whether it was present.
func (s *EventSource) MessageText() (string, bool) {
	if s == nil || s.Message == nil {
		return "", false
	}
	return *s.Message, true
}

// Outcome returns event.outcome and whether it was present.
func (s *EventSource) Outcome() (string, bool) {
	if s == nil || s.Event == nil || s.Event.Outcome == nil {
		return "", false
	}
	return *s.Event.Outcome, true
}

// ErrorMessage returns error.message and whether it was present.
func (s *EventSource) ErrorMessage() (string, bool) {
	if s == nil || s.Error == nil || s.Error.Message == nil {
		return "", false
	}
	return *s.Error.Message, true
}

// ExecutionStatus returns kibana.alert.rule.execution.status and whether it
// was present.
func (s *EventSource) ExecutionStatus() (string, bool) {
	if s == nil || s.Kibana == nil || s.Kibana.Alert == nil || s.Kibana.Alert.Rule == nil ||
		s.Kibana.Alert.Rule.Execution == nil || s.Kibana.Alert.Rule.Execution.Status == nil {
		return "", false
	}
	return *s.Kibana.Alert.Rule.Execution.Status, true
}

// BackfillWindow returns kibana.alert.rule.execution.backfill, or nil.
func (s *EventSource) BackfillWindow() *BackfillSource {
	if s == nil || s.Kibana == nil || s.Kibana.Alert == nil || s.Kibana.Alert.Rule == nil ||
		s.Kibana.Alert.Rule.Execution == nil {
		return nil
	}
	return s.Kibana.Alert.Rule.Execution.Backfill
}

// DecodeResponse decodes a search response body.
func DecodeResponse(r io.Reader) (*AggregationResponse, error) {
	var resp AggregationResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode execution aggregation response: %w", err)
	}
	return &resp, nil
}

