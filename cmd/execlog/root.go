// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elastic/execlog/internal/config"
	"github.com/elastic/execlog/internal/es"
)

var rootCmd = &cobra.Command{
	Use:   "execlog",
	Short: "Inspect rule execution history from the Kibana event log",
	Long: `execlog queries the Kibana event log in Elasticsearch and reports one row
per rule execution: when it ran, how long it took, its status and message,
action outcomes and security rule metrics.

Query a rule with 'execlog results <rule-id>', or ship its history to an
OTLP collector with 'execlog export <rule-id>'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg.Log.Level, os.Stderr); err != nil {
			return err
		}
		log.Debug().Str("profile", cfg.Profile).Str("es_url", cfg.ES.URL).Msg("configuration loaded")
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	// Global flags (Viper precedence: flags > env > profile > defaults)
	pf := rootCmd.PersistentFlags()
	pf.String("es-url", config.DefaultESURL, "Elasticsearch URL (env: EXECLOG_ES_URL)")
	pf.StringP("index", "i", config.DefaultIndex, "Event log index pattern (env: EXECLOG_ES_INDEX)")
	pf.Duration("timeout", config.DefaultTimeout, "Per-request timeout (env: EXECLOG_ES_TIMEOUT)")
	pf.Duration("ping-timeout", config.DefaultPingTimeout, "Elasticsearch ping timeout (env: EXECLOG_ES_PING_TIMEOUT)")
	pf.String("api-key", "", "Elasticsearch API key (env: EXECLOG_ES_API_KEY)")
	pf.String("username", "", "Elasticsearch username (env: EXECLOG_ES_USERNAME)")
	pf.String("password", "", "Elasticsearch password (env: EXECLOG_ES_PASSWORD)")
	pf.String("profile", "", "Configuration profile to use (env: EXECLOG_PROFILE)")
	pf.String("log-level", config.DefaultLogLevel, "Diagnostic log level: debug, info, warn, error (env: EXECLOG_LOG_LEVEL)")
}

// setupLogging points the global zerolog logger at w with a console writer.
func setupLogging(level string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	return nil
}

// configFrom returns the config loaded by PersistentPreRunE.
func configFrom(cmd *cobra.Command) (config.Config, error) {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

// connect builds an Elasticsearch client from cfg and checks it is reachable.
func connect(ctx context.Context, cfg config.Config) (*es.Client, error) {
	client, err := es.New(es.Options{
		URL:      cfg.ES.URL,
		Index:    cfg.ES.Index,
		APIKey:   cfg.ES.APIKey,
		Username: cfg.ES.Username,
		Password: cfg.ES.Password,
		Timeout:  cfg.ES.Timeout,
	})
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ES.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("elasticsearch at %s: %w", cfg.ES.URL, err)
	}
	return client, nil
}
