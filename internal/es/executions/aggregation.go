// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package executions

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned for out-of-range or unrecognized query input.
// Callers should map it to a client error.
var ErrInvalidRequest = errors.New("invalid request")

// Validate checks paging, the execution cap and sort fields.
func (r QueryRequest) Validate() error {
	if r.MaxExecutions > MaxExecutionEventsDisplayed {
		return fmt.Errorf("%w: maxExecutions exceeds limit: requested %d, must be at most %d",
			ErrInvalidRequest, r.MaxExecutions, MaxExecutionEventsDisplayed)
	}
	if r.MaxExecutions <= 0 {
		return fmt.Errorf("%w: maxExecutions must be positive, got %d", ErrInvalidRequest, r.MaxExecutions)
	}
	if r.Page <= 0 {
		return fmt.Errorf("%w: page must be positive, got %d", ErrInvalidRequest, r.Page)
	}
	if r.PerPage <= 0 {
		return fmt.Errorf("%w: perPage must be positive, got %d", ErrInvalidRequest, r.PerPage)
	}
	for _, s := range r.Sort {
		if _, ok := AggregationPath(s.Field); !ok {
			return fmt.Errorf("%w: unknown sort field %q, must be one of [%s]",
				ErrInvalidRequest, s.Field, strings.Join(SortableFields(), ","))
		}
		if s.Order != SortAsc && s.Order != SortDesc {
			return fmt.Errorf("%w: invalid sort order %q for field %q, must be asc or desc",
				ErrInvalidRequest, s.Order, s.Field)
		}
	}
	return nil
}

// BuildAggregation returns the "aggs" section of the execution history query.
//
// Executions are bucketed by execution uuid. The terms bucket is capped at
// MaxExecutions and a bucket_sort stage pages through it. Each bucket carries
// filtered sub-aggregations for the action, platform, security metric, status
// and timeout documents that belong to the execution.
func BuildAggregation(req QueryRequest) (map[string]interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		// Total unique executions for the root filters
		"totalExecutions": map[string]interface{}{
			"cardinality": map[string]interface{}{
				"field": RuleExecutionUUIDField,
			},
		},
		"executionUuid": map[string]interface{}{
			"terms": map[string]interface{}{
				"field": RuleExecutionUUIDField,
				"size":  req.MaxExecutions,
				"order": termsSort(req.Sort),
			},
			"aggs": map[string]interface{}{
				"executionUuidSorted": map[string]interface{}{
					"bucket_sort": map[string]interface{}{
						"sort": bucketSort(req.Sort),
						"from": (req.Page - 1) * req.PerPage,
						"size": req.PerPage,
						// Without insert_zeros, buckets missing a sort metric are dropped
						"gap_policy": "insert_zeros",
					},
				},
				"actionExecution": map[string]interface{}{
					"filter": ProviderAndActionFilter(ProviderActions, ActionExecute),
					"aggs": map[string]interface{}{
						"actionOutcomes": map[string]interface{}{
							"terms": map[string]interface{}{
								"field": OutcomeField,
								// success and failure
								"size": 2,
							},
						},
					},
				},
				"ruleExecution": map[string]interface{}{
					"filter": ProviderAndActionFilter(ProviderAlerting, ActionExecute, ActionExecuteBackfill),
					"aggs": map[string]interface{}{
						"executeStartTime":    metricAgg("min", StartField),
						"scheduleDelay":       metricAgg("max", ScheduleDelayField),
						"esSearchDuration":    metricAgg("max", ESSearchDurationField),
						"numTriggeredActions": metricAgg("max", TotalActionsTriggeredField),
						"executionDuration":   metricAgg("max", DurationField),
						"backfill": map[string]interface{}{
							"top_hits": map[string]interface{}{
								"size": 1,
								"_source": map[string]interface{}{
									"includes": []string{BackfillField},
								},
							},
						},
						"outcomeAndMessage": map[string]interface{}{
							"top_hits": map[string]interface{}{
								"size": 1,
								"_source": map[string]interface{}{
									"includes": []string{ErrorMessageField, OutcomeField, MessageField},
								},
							},
						},
					},
				},
				"securityMetrics": map[string]interface{}{
					"filter": ProviderAndActionFilter(ProviderRuleExecution, ActionExecutionMetrics),
					"aggs": map[string]interface{}{
						"gapDuration": map[string]interface{}{
							"min": map[string]interface{}{
								"field": GapDurationField,
								// Not written when there is no gap; needed for sorting
								"missing": 0,
							},
						},
						"indexDuration":             metricAgg("min", IndexingDurationField),
						"searchDuration":            metricAgg("min", SearchDurationField),
						"frozenIndicesQueriedCount": metricAgg("min", FrozenIndicesCountField),
					},
				},
				"securityStatus": map[string]interface{}{
					"filter": ProviderAndActionFilter(ProviderRuleExecution, ActionStatusChange),
					"aggs": map[string]interface{}{
						"status":  latestHit(StatusField),
						"message": latestHit(MessageField),
					},
				},
				// Non-zero doc_count when the execution timed out
				"timeoutMessage": map[string]interface{}{
					"filter": ProviderAndActionFilter(ProviderAlerting, ActionExecuteTimeout),
				},
			},
		},
	}, nil
}

// ProviderAndActionFilter matches documents from provider with any of the
// given actions.
func ProviderAndActionFilter(provider string, actions ...string) map[string]interface{} {
	should := make([]interface{}, 0, len(actions))
	for _, a := range actions {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{ActionField: a},
		})
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must": []interface{}{
				map[string]interface{}{
					"match": map[string]interface{}{ProviderField: provider},
				},
			},
			"should":               should,
			"minimum_should_match": 1,
		},
	}
}

func metricAgg(kind, field string) map[string]interface{} {
	return map[string]interface{}{
		kind: map[string]interface{}{
			"field": field,
		},
	}
}

func latestHit(field string) map[string]interface{} {
	return map[string]interface{}{
		"top_hits": map[string]interface{}{
			"size": 1,
			"sort": map[string]interface{}{
				TimestampField: map[string]interface{}{"order": "desc"},
			},
			"_source": map[string]interface{}{
				"includes": field,
			},
		},
	}
}

// termsSort formats sort fields for a terms aggregation "order".
func termsSort(sort []SortField) []interface{} {
	order := make([]interface{}, 0, len(sort))
	for _, s := range sort {
		path, _ := AggregationPath(s.Field)
		order = append(order, map[string]interface{}{path: string(s.Order)})
	}
	return order
}

// bucketSort formats sort fields for a bucket_sort aggregation.
func bucketSort(sort []SortField) []interface{} {
	out := make([]interface{}, 0, len(sort))
	for _, s := range sort {
		path, _ := AggregationPath(s.Field)
		out = append(out, map[string]interface{}{
			path: map[string]interface{}{"order": string(s.Order)},
		})
	}
	return out
}
