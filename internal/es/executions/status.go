// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package executions

import "fmt"

// Platform outcomes recorded in event.outcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MapRuleExecutionStatusToPlatformStatus maps rule statuses to the platform
// outcomes used to query event.outcome. Statuses with no platform
// equivalent are dropped.
func MapRuleExecutionStatusToPlatformStatus(statuses []RuleExecutionStatus) []string {
	outcomes := make([]string, 0, len(statuses))
	for _, s := range statuses {
		switch s {
		case StatusFailed:
			outcomes = append(outcomes, OutcomeFailure)
		case StatusSucceeded:
			outcomes = append(outcomes, OutcomeSuccess)
		}
	}
	return outcomes
}

// MapPlatformStatusToRuleExecutionStatus maps a platform outcome to a rule
// status. The second return is false for unknown outcomes.
func MapPlatformStatusToRuleExecutionStatus(outcome string) (RuleExecutionStatus, bool) {
	switch outcome {
	case OutcomeFailure:
		return StatusFailed, true
	case OutcomeSuccess:
		return StatusSucceeded, true
	default:
		return "", false
	}
}

// ParseStatus parses a user-supplied status name.
func ParseStatus(s string) (RuleExecutionStatus, error) {
	switch st := RuleExecutionStatus(s); st {
	case StatusGoingToRun, StatusRunning, StatusPartialFailure, StatusFailed, StatusSucceeded:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, s)
}

// ParseFilterStatus parses a status name a caller wants to filter results by.
func ParseFilterStatus(s string) (RuleExecutionStatus, error) {
	st, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	if !isFilterable(st) {
		return "", fmt.Errorf("%w: cannot filter by status %q, use one of succeeded, failed, partial failure", ErrInvalidRequest, s)
	}
	return st, nil
}

func isFilterable(s RuleExecutionStatus) bool {
	for _, f := range FilterableStatuses {
		if s == f {
			return true
		}
	}
	return false
}
