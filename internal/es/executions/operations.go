// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package executions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/execlog/internal/es/errfmt"
	"github.com/elastic/execlog/internal/es/shared"
)

// RuleSavedObjectType is the saved object type rule events reference.
const RuleSavedObjectType = "alert"

// GetResults returns one page of execution history for the given rules.
//
// When the caller filters by some, but not all, statuses, a first query
// collects the uuids of matching executions. The aggregation then runs over
// those executions only, so buckets keep every document of an execution
// instead of just the ones carrying the status field.
func GetResults(ctx context.Context, exec Executor, opts ResultsOptions) (*Results, error) {
	if len(opts.RuleIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one rule id is required", ErrInvalidRequest)
	}
	filters, err := normalizeStatusFilters(opts.StatusFilters)
	if err != nil {
		return nil, err
	}
	opts.StatusFilters = filters
	maxExecutions := opts.MaxExecutions
	if maxExecutions == 0 {
		maxExecutions = MaxExecutionEventsDisplayed
	}
	sortOrder := opts.SortOrder
	if sortOrder == "" {
		sortOrder = SortDesc
	}
	sortField := opts.SortField
	if sortField == "" {
		sortField = "timestamp"
	}

	aggs, err := BuildAggregation(QueryRequest{
		MaxExecutions: maxExecutions,
		Page:          opts.Page,
		PerPage:       opts.PerPage,
		Sort:          []SortField{{Field: sortField, Order: sortOrder}},
	})
	if err != nil {
		return nil, err
	}

	index := exec.GetIndex()
	var (
		executionIDs  []string
		overrideTotal *int64
	)
	if needsStatusPrefilter(opts.StatusFilters) {
		resp, err := search(ctx, exec, index, buildStatusQuery(opts))
		if err != nil {
			return nil, err
		}
		if resp.Aggregations != nil {
			executionIDs = resp.Aggregations.FilteredExecutionUUIDs.Keys()
			total := int64(resp.Aggregations.TotalExecutions.ValueOr(0))
			overrideTotal = &total
		}
		if len(executionIDs) == 0 {
			return &Results{Total: 0, Events: []RuleExecutionResult{}}, nil
		}
	}

	root := rootFilter(opts)
	root.AddTermsFilter(RuleExecutionUUIDField, executionIDs)
	query := map[string]interface{}{
		"size":  0,
		"query": root.Build(),
		"aggs":  aggs,
	}

	resp, err := search(ctx, exec, index, query)
	if err != nil {
		return nil, err
	}
	results := FormatResponse(resp, overrideTotal)
	return &results, nil
}

// normalizeStatusFilters drops duplicate statuses and rejects statuses that
// cannot be filtered on.
func normalizeStatusFilters(filters []RuleExecutionStatus) ([]RuleExecutionStatus, error) {
	seen := make(map[RuleExecutionStatus]bool, len(filters))
	out := make([]RuleExecutionStatus, 0, len(filters))
	for _, s := range filters {
		if !isFilterable(s) {
			return nil, fmt.Errorf("%w: cannot filter by status %q", ErrInvalidRequest, s)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// needsStatusPrefilter reports whether filters narrow the result. Selecting
// no statuses or every filterable one is the same as not filtering.
// filters must already be normalized.
func needsStatusPrefilter(filters []RuleExecutionStatus) bool {
	return len(filters) > 0 && len(filters) < len(FilterableStatuses)
}

func rootFilter(opts ResultsOptions) *shared.FilterBuilder {
	return shared.NewFilterBuilder().
		AddSavedObjectFilter(RuleSavedObjectType, opts.RuleIDs).
		AddTimeRangeFilter(opts.Start, opts.End)
}

// buildStatusQuery matches executions by security status, and also by
// event.outcome to catch executions that only wrote platform events.
func buildStatusQuery(opts ResultsOptions) map[string]interface{} {
	statuses := make([]string, 0, len(opts.StatusFilters))
	for _, s := range opts.StatusFilters {
		statuses = append(statuses, string(s))
	}
	root := rootFilter(opts).AddAnyOf(map[string][]string{
		StatusField:  statuses,
		OutcomeField: MapRuleExecutionStatusToPlatformStatus(opts.StatusFilters),
	}, []string{StatusField, OutcomeField})

	return map[string]interface{}{
		"size":  0,
		"query": root.Build(),
		"aggs": map[string]interface{}{
			"totalExecutions": map[string]interface{}{
				"cardinality": map[string]interface{}{
					"field": RuleExecutionUUIDField,
				},
			},
			"filteredExecutionUUIDs": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": RuleExecutionUUIDField,
					"size":  MaxExecutionEventsDisplayed,
				},
			},
		},
	}
}

func search(ctx context.Context, exec Executor, index string, query map[string]interface{}) (*AggregationResponse, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execution query: %w", err)
	}

	res, err := exec.SearchForExecutions(ctx, index, queryJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to execute aggregation: %w", err)
	}
	defer res.Body.Close()

	if res.IsError {
		body, _ := io.ReadAll(res.Body)
		return nil, errfmt.FormatQueryError(res.Status, body, queryJSON)
	}

	return DecodeResponse(res.Body)
}
