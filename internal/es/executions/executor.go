// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package executions

import (
	"context"

	"github.com/elastic/execlog/internal/es/shared"
)

// Executor defines the Elasticsearch operations needed for execution history
type Executor interface {
	// SearchForExecutions executes a size-0 aggregation search and returns the raw response
	SearchForExecutions(ctx context.Context, index string, body []byte) (*shared.SearchResponse, error)

	// GetIndex returns the event log index pattern
	GetIndex() string
}
