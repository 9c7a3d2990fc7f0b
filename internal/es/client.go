// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package es

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"

	"github.com/elastic/execlog/internal/es/executions"
	"github.com/elastic/execlog/internal/es/shared"
)

// DefaultURL is used when no URL is configured.
const DefaultURL = "http://localhost:9200"

// New creates a new Elasticsearch client
func New(opts Options) (*Client, error) {
	url := opts.URL
	if url == "" {
		url = DefaultURL
	}
	index := opts.Index
	if index == "" {
		index = executions.EventLogIndex
	}

	cfg := elasticsearch.Config{
		Addresses: []string{url},
		APIKey:    opts.APIKey,
	}
	// An API key takes precedence over basic auth.
	if opts.APIKey == "" {
		cfg.Username = opts.Username
		cfg.Password = opts.Password
	}
	if opts.Timeout > 0 {
		cfg.Transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: opts.Timeout,
		}
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: index,
	}, nil
}

// GetIndex returns the current index pattern
func (c *Client) GetIndex() string {
	return c.index
}

// Ping checks if Elasticsearch is reachable
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping ES: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ES ping failed: %s", res.Status())
	}

	return nil
}

// SearchForExecutions implements executions.Executor interface
func (c *Client) SearchForExecutions(ctx context.Context, index string, body []byte) (*shared.SearchResponse, error) {
	start := time.Now()
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithSize(0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	took := time.Since(start)

	log.Debug().
		Str("index", index).
		Int("status", res.StatusCode).
		Dur("took", took).
		Msg("execution search")

	return &shared.SearchResponse{
		Body:       res.Body,
		StatusCode: res.StatusCode,
		Status:     res.Status(),
		IsError:    res.IsError(),
		Took:       took,
	}, nil
}

// GetExecutionResults returns one page of execution history for the rules in opts
func (c *Client) GetExecutionResults(ctx context.Context, opts executions.ResultsOptions) (*executions.Results, error) {
	return executions.GetResults(ctx, c, opts)
}
