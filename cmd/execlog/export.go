// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elastic/execlog/internal/es/executions"
	"github.com/elastic/execlog/internal/otlp"
)

var (
	exportQuery   queryFlags
	exportService string
)

var exportCmd = &cobra.Command{
	Use:   "export <rule-id>...",
	Short: "Send execution history to an OTLP logs endpoint",
	Long: `Query execution history like 'execlog results' and send every execution
as an OpenTelemetry log record. Failed executions are exported at ERROR
severity, partial failures at WARN and everything else at INFO.

Examples:
  execlog export 4a3e2f10-... --otlp localhost:4318
  execlog export 4a3e2f10-... --status failed --per-page 100`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		base, err := exportQuery.options(cfg)
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

		exporter, err := otlp.New(cmd.Context(), otlp.Config{
			Endpoint:    cfg.OTLP.Endpoint,
			ServiceName: exportService,
			Insecure:    cfg.OTLP.Insecure,
		})
		if err != nil {
			return err
		}

		exportErr := exportResults(cmd.Context(), exporter, results, cfg.ES.Timeout, cmd.OutOrStdout())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ES.Timeout)
		defer cancel()
		if err := exporter.Close(ctx); err != nil && exportErr == nil {
			return fmt.Errorf("close OTLP exporter: %w", err)
		}
		return exportErr
	},
}

// recordExporter is satisfied by *otlp.Client.
type recordExporter interface {
	Export(ctx context.Context, ruleID string, events []executions.RuleExecutionResult) string
	Flush(ctx context.Context) error
	Endpoint() string
}

// exportResults sends one batch per rule and flushes it before reporting.
// It stops at the first batch that fails to flush.
func exportResults(ctx context.Context, exp recordExporter, results []ruleResults, timeout time.Duration, w io.Writer) error {
	for _, rr := range results {
		batchID := exp.Export(ctx, rr.RuleID, rr.Events)
		flushCtx, cancel := context.WithTimeout(ctx, timeout)
		err := exp.Flush(flushCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("export rule %s (batch %s): %w", rr.RuleID, batchID, err)
		}
		log.Info().
			Str("rule_id", rr.RuleID).
			Str("batch_id", batchID).
			Int("records", len(rr.Events)).
			Str("endpoint", exp.Endpoint()).
			Msg("exported execution batch")
		fmt.Fprintf(w, "Rule %s: exported %d of %d executions (batch %s)\n", rr.RuleID, len(rr.Events), rr.Total, batchID)
	}
	return nil
}

func init() {
	registerQueryFlags(exportCmd, &exportQuery)
	exportCmd.Flags().String("otlp", "", "OTLP HTTP endpoint (env: EXECLOG_OTLP_ENDPOINT)")
	exportCmd.Flags().Bool("otlp-insecure", true, "Use plain HTTP for OTLP (env: EXECLOG_OTLP_INSECURE)")
	exportCmd.Flags().StringVar(&exportService, "service", otlp.DefaultServiceName, "Resource service.name of exported records")
	rootCmd.AddCommand(exportCmd)
}
