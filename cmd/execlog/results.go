// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/elastic/execlog/internal/config"
	"github.com/elastic/execlog/internal/es/executions"
)

// maxConcurrentRules bounds in-flight searches when several rules are queried.
const maxConcurrentRules = 4

// Output formats for results.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// queryFlags are shared by the results and export commands.
type queryFlags struct {
	start     string
	end       string
	statuses  []string
	page      int
	sortField string
	sortOrder string
}

var (
	resultsQuery queryFlags
	outputFlag   string
	noColorFlag  bool
)

var resultsCmd = &cobra.Command{
	Use:   "results <rule-id>...",
	Short: "Show execution history for one or more rules",
	Long: `Show one page of execution history per rule, newest first by default.

Examples:
  # Last 24 hours of a rule
  execlog results 4a3e2f10-...

  # Failed or partially failed executions, slowest first
  execlog results 4a3e2f10-... --status failed --status "partial failure" \
    --sort-field duration_ms --sort-order desc

  # Second page as JSON
  execlog results 4a3e2f10-... --page 2 --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		if err := validateOutput(outputFlag); err != nil {
			return err
		}
		base, err := resultsQuery.options(cfg)
		if err != nil {
			return err
		}

		client, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		results, err := fetchResults(cmd.Context(), client, base, args, cfg.ES.Timeout)
		if err != nil {
			return err
		}
		return printResults(cmd.OutOrStdout(), outputFlag, results, newTableRenderer(detectTerminalWidth(), !noColorFlag))
	},
}

func registerQueryFlags(cmd *cobra.Command, q *queryFlags) {
	cmd.Flags().StringVar(&q.start, "start", "now-24h", "Start of the time range (ES date math or RFC3339)")
	cmd.Flags().StringVar(&q.end, "end", "now", "End of the time range (ES date math or RFC3339)")
	cmd.Flags().StringArrayVar(&q.statuses, "status", nil, "Only executions with this status: succeeded, failed, partial failure (repeatable)")
	cmd.Flags().IntVar(&q.page, "page", 1, "Page number, starting at 1")
	cmd.Flags().Int("per-page", config.DefaultPerPage, "Executions per page (env: EXECLOG_QUERY_PER_PAGE)")
	cmd.Flags().Int("max-executions", config.DefaultMaxExecutions, "Most recent executions considered for sorting and paging (env: EXECLOG_QUERY_MAX_EXECUTIONS)")
	cmd.Flags().StringVar(&q.sortField, "sort-field", "timestamp", "Sort field: "+strings.Join(executions.SortableFields(), ", "))
	cmd.Flags().StringVar(&q.sortOrder, "sort-order", string(executions.SortDesc), "Sort order: asc or desc")
}

// options converts flag values into ResultsOptions without rule ids.
// Page size and execution cap are read from cfg, where their flags are bound.
func (q queryFlags) options(cfg config.Config) (executions.ResultsOptions, error) {
	statuses := make([]executions.RuleExecutionStatus, 0, len(q.statuses))
	for _, raw := range q.statuses {
		s, err := executions.ParseFilterStatus(strings.ToLower(strings.TrimSpace(raw)))
		if err != nil {
			return executions.ResultsOptions{}, err
		}
		statuses = append(statuses, s)
	}

	order := executions.SortOrder(strings.ToLower(q.sortOrder))
	if order != executions.SortAsc && order != executions.SortDesc {
		return executions.ResultsOptions{}, fmt.Errorf("%w: --sort-order must be asc or desc, got %q", executions.ErrInvalidRequest, q.sortOrder)
	}

	return executions.ResultsOptions{
		Start:         q.start,
		End:           q.end,
		StatusFilters: statuses,
		Page:          q.page,
		PerPage:       cfg.Query.PerPage,
		SortField:     q.sortField,
		SortOrder:     order,
		MaxExecutions: cfg.Query.MaxExecutions,
	}, nil
}

// resultsFetcher is satisfied by *es.Client.
type resultsFetcher interface {
	GetExecutionResults(ctx context.Context, opts executions.ResultsOptions) (*executions.Results, error)
}

// ruleResults is one rule's page of execution history.
type ruleResults struct {
	RuleID             string `json:"rule_id" yaml:"rule_id"`
	executions.Results `yaml:",inline"`
}

// fetchResults queries every rule concurrently and returns results in the
// order of ruleIDs. The first failure cancels the remaining queries.
func fetchResults(ctx context.Context, f resultsFetcher, base executions.ResultsOptions, ruleIDs []string, timeout time.Duration) ([]ruleResults, error) {
	out := make([]ruleResults, len(ruleIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRules)
	for i, id := range ruleIDs {
		i, id := i, id
		g.Go(func() error {
			reqCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				reqCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			opts := base
			opts.RuleIDs = []string{id}
			res, err := f.GetExecutionResults(reqCtx, opts)
			if err != nil {
				return fmt.Errorf("rule %s: %w", id, err)
			}
			log.Debug().Str("rule_id", id).Int64("total", res.Total).Int("events", len(res.Events)).Msg("fetched execution results")
			out[i] = ruleResults{RuleID: id, Results: *res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q, must be one of table, json, yaml", format)
	}
}

func init() {
	registerQueryFlags(resultsCmd, &resultsQuery)
	resultsCmd.Flags().StringVarP(&outputFlag, "output", "o", outputTable, "Output format: table, json, yaml")
	resultsCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable status colours in table output")
	rootCmd.AddCommand(resultsCmd)
}
