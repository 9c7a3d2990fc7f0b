// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package es

import (
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// Client wraps the Elasticsearch client with execlog-specific functionality
type Client struct {
	es    *elasticsearch.Client
	index string
}

// Options configures a Client.
type Options struct {
	URL      string
	Index    string
	APIKey   string
	Username string
	Password string
	// Timeout bounds each HTTP round trip. Zero leaves the transport default.
	Timeout time.Duration
}
