// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package shared contains types used across the es package and its subpackages.
// This package breaks import cycles by providing a common dependency.
package shared

import (
	"io"
	"time"
)

// SearchResponse represents a raw search response body from Elasticsearch.
type SearchResponse struct {
	Body       io.ReadCloser
	StatusCode int
	Status     string
	IsError    bool
	Took       time.Duration // Client-side round trip, for diagnostics
}
