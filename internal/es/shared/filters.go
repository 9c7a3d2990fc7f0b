// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package shared

// FilterBuilder provides a fluent interface for constructing the root
// bool query of event log searches.
type FilterBuilder struct {
	filter []map[string]interface{}
}

// NewFilterBuilder creates a new FilterBuilder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filter: []map[string]interface{}{},
	}
}

// AddFilter adds a clause to the filter array.
func (fb *FilterBuilder) AddFilter(clause map[string]interface{}) *FilterBuilder {
	fb.filter = append(fb.filter, clause)
	return fb
}

// AddSavedObjectFilter restricts events to those whose primary saved object
// is one of ids. Event log documents reference saved objects through the
// nested kibana.saved_objects field.
func (fb *FilterBuilder) AddSavedObjectFilter(soType string, ids []string) *FilterBuilder {
	if len(ids) == 0 {
		return fb
	}
	return fb.AddFilter(map[string]interface{}{
		"nested": map[string]interface{}{
			"path": "kibana.saved_objects",
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"filter": []interface{}{
						map[string]interface{}{"term": map[string]interface{}{"kibana.saved_objects.rel": "primary"}},
						map[string]interface{}{"term": map[string]interface{}{"kibana.saved_objects.type": soType}},
						map[string]interface{}{"terms": map[string]interface{}{"kibana.saved_objects.id": ids}},
					},
				},
			},
		},
	})
}

// AddTimeRangeFilter adds a time range filter using ES time expressions.
// gte/lte can be ES time expressions like "now-1h" or RFC3339 timestamps.
func (fb *FilterBuilder) AddTimeRangeFilter(gte, lte string) *FilterBuilder {
	if gte == "" && lte == "" {
		return fb
	}
	timeRange := map[string]interface{}{}
	if gte != "" {
		timeRange["gte"] = gte
	}
	if lte != "" {
		timeRange["lte"] = lte
	}
	return fb.AddFilter(map[string]interface{}{
		"range": map[string]interface{}{
			"@timestamp": timeRange,
		},
	})
}

// AddTermsFilter matches documents whose field equals any of values.
func (fb *FilterBuilder) AddTermsFilter(field string, values []string) *FilterBuilder {
	if field == "" || len(values) == 0 {
		return fb
	}
	return fb.AddFilter(map[string]interface{}{
		"terms": map[string]interface{}{
			field: values,
		},
	})
}

// AddAnyOf matches documents satisfying at least one of the given field/values
// pairs. Pairs with no values are skipped.
func (fb *FilterBuilder) AddAnyOf(fieldValues map[string][]string, order []string) *FilterBuilder {
	should := []interface{}{}
	for _, field := range order {
		values := fieldValues[field]
		if len(values) == 0 {
			continue
		}
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{field: values},
		})
	}
	if len(should) == 0 {
		return fb
	}
	return fb.AddFilter(map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
		},
	})
}

// Build returns the completed bool query.
func (fb *FilterBuilder) Build() map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"filter": fb.filter,
		},
	}
}

// Filter returns the filter clauses (for inspection/testing).
func (fb *FilterBuilder) Filter() []map[string]interface{} {
	return fb.filter
}
