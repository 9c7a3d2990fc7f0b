// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newTestCmd() *cobra.Command {
	root := &cobra.Command{Use: "execlog"}
	root.PersistentFlags().String("es-url", DefaultESURL, "")
	root.PersistentFlags().String("index", DefaultIndex, "")
	root.PersistentFlags().Duration("timeout", DefaultTimeout, "")
	root.PersistentFlags().String("api-key", "", "")
	root.PersistentFlags().String("profile", "", "")
	root.PersistentFlags().String("log-level", DefaultLogLevel, "")

	cmd := &cobra.Command{
		Use: "results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	cmd.Flags().Int("per-page", DefaultPerPage, "")
	cmd.Flags().String("otlp", DefaultOTLPEndpoint, "")
	cmd.Flags().String("sort-field", "timestamp", "")
	root.AddCommand(cmd)
	return cmd
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"EXECLOG_ES_URL", "EXECLOG_ES_INDEX", "EXECLOG_ES_TIMEOUT", "EXECLOG_ES_API_KEY",
		"EXECLOG_OTLP_ENDPOINT", "EXECLOG_QUERY_PER_PAGE", "EXECLOG_QUERY_MAX_EXECUTIONS",
		"EXECLOG_LOG_LEVEL", "EXECLOG_PROFILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithProfiles(newTestCmd(), nil)
	if err != nil {
		t.Fatalf("LoadWithProfiles: %v", err)
	}
	if cfg.ES.URL != DefaultESURL {
		t.Errorf("ES.URL = %q, want %q", cfg.ES.URL, DefaultESURL)
	}
	if cfg.ES.Index != ".kibana-event-log-*" {
		t.Errorf("ES.Index = %q", cfg.ES.Index)
	}
	if cfg.ES.Timeout != DefaultTimeout || cfg.ES.PingTimeout != DefaultPingTimeout {
		t.Errorf("timeouts = %v/%v", cfg.ES.Timeout, cfg.ES.PingTimeout)
	}
	if cfg.Query.MaxExecutions != 1000 || cfg.Query.PerPage != DefaultPerPage {
		t.Errorf("Query = %+v", cfg.Query)
	}
	if !cfg.OTLP.Insecure || cfg.OTLP.Endpoint != DefaultOTLPEndpoint {
		t.Errorf("OTLP = %+v", cfg.OTLP)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Profile != "" {
		t.Errorf("Profile = %q, want none", cfg.Profile)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXECLOG_ES_URL", "http://custom:9200")
	t.Setenv("EXECLOG_ES_TIMEOUT", "7s")
	t.Setenv("EXECLOG_ES_API_KEY", "env-key")
	t.Setenv("EXECLOG_QUERY_PER_PAGE", "50")
	t.Setenv("EXECLOG_LOG_LEVEL", "debug")

	cfg, err := LoadWithProfiles(newTestCmd(), nil)
	if err != nil {
		t.Fatalf("LoadWithProfiles: %v", err)
	}
	if cfg.ES.URL != "http://custom:9200" {
		t.Errorf("ES.URL = %q", cfg.ES.URL)
	}
	if cfg.ES.Timeout != 7*time.Second {
		t.Errorf("ES.Timeout = %v", cfg.ES.Timeout)
	}
	if cfg.ES.APIKey != "env-key" {
		t.Errorf("ES.APIKey = %q", cfg.ES.APIKey)
	}
	if cfg.Query.PerPage != 50 {
		t.Errorf("Query.PerPage = %d", cfg.Query.PerPage)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXECLOG_ES_URL", "http://env:9200")

	cmd := newTestCmd()
	if err := cmd.Root().PersistentFlags().Set("es-url", "http://flag:9200"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("per-page", "5"); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithProfiles(cmd, nil)
	if err != nil {
		t.Fatalf("LoadWithProfiles: %v", err)
	}
	if cfg.ES.URL != "http://flag:9200" {
		t.Errorf("ES.URL = %q, want flag value", cfg.ES.URL)
	}
	if cfg.Query.PerPage != 5 {
		t.Errorf("Query.PerPage = %d, want 5", cfg.Query.PerPage)
	}
}

func TestLoad_Profile(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXECLOG_TEST_PROFILE_KEY", "from-env-ref")

	insecure := false
	profiles := &ProfileConfig{
		CurrentProfile: "staging",
		Profiles: map[string]Profile{
			"staging": {
				Elasticsearch: ESProfile{URL: "https://staging:9243", Index: "staging-events-*", APIKey: "${EXECLOG_TEST_PROFILE_KEY}"},
				OTLP:          OTLPProfile{Endpoint: "collector:4318", Insecure: &insecure},
			},
			"local": {Elasticsearch: ESProfile{URL: "http://127.0.0.1:9200"}},
		},
	}

	t.Run("current profile", func(t *testing.T) {
		cfg, err := LoadWithProfiles(newTestCmd(), profiles)
		if err != nil {
			t.Fatalf("LoadWithProfiles: %v", err)
		}
		if cfg.Profile != "staging" {
			t.Errorf("Profile = %q", cfg.Profile)
		}
		if cfg.ES.URL != "https://staging:9243" || cfg.ES.Index != "staging-events-*" {
			t.Errorf("ES = %+v", cfg.ES)
		}
		if cfg.ES.APIKey != "from-env-ref" {
			t.Errorf("ES.APIKey = %q, want resolved reference", cfg.ES.APIKey)
		}
		if cfg.OTLP.Insecure || cfg.OTLP.Endpoint != "collector:4318" {
			t.Errorf("OTLP = %+v", cfg.OTLP)
		}
	})

	t.Run("env beats profile", func(t *testing.T) {
		t.Setenv("EXECLOG_ES_URL", "http://env:9200")
		cfg, err := LoadWithProfiles(newTestCmd(), profiles)
		if err != nil {
			t.Fatalf("LoadWithProfiles: %v", err)
		}
		if cfg.ES.URL != "http://env:9200" {
			t.Errorf("ES.URL = %q, want env value", cfg.ES.URL)
		}
		if cfg.ES.Index != "staging-events-*" {
			t.Errorf("ES.Index = %q, want profile value", cfg.ES.Index)
		}
	})

	t.Run("profile flag", func(t *testing.T) {
		cmd := newTestCmd()
		_ = cmd.Root().PersistentFlags().Set("profile", "local")
		cfg, err := LoadWithProfiles(cmd, profiles)
		if err != nil {
			t.Fatalf("LoadWithProfiles: %v", err)
		}
		if cfg.Profile != "local" || cfg.ES.URL != "http://127.0.0.1:9200" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		cmd := newTestCmd()
		_ = cmd.Root().PersistentFlags().Set("profile", "nope")
		if _, err := LoadWithProfiles(cmd, profiles); err == nil {
			t.Error("expected error for unknown profile")
		}
	})
}

func TestLoad_InvalidValues_FailFast(t *testing.T) {
	tests := map[string]string{
		"EXECLOG_ES_TIMEOUT":           "abc",
		"EXECLOG_QUERY_MAX_EXECUTIONS": "1001",
		"EXECLOG_QUERY_PER_PAGE":       "0",
		"EXECLOG_LOG_LEVEL":            "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := LoadWithProfiles(newTestCmd(), nil); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestConfig_Masked(t *testing.T) {
	t.Parallel()

	cfg := Config{ES: ESConfig{URL: "u", APIKey: "secret", Password: "pw"}}
	masked := cfg.Masked()
	if masked.ES.APIKey != "****" || masked.ES.Password != "****" || masked.ES.Username != "" {
		t.Errorf("masked ES = %+v", masked.ES)
	}
	if cfg.ES.APIKey != "secret" {
		t.Error("Masked modified the receiver")
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context should not carry a config")
	}
	ctx := WithContext(context.Background(), Config{Profile: "p"})
	cfg, ok := FromContext(ctx)
	if !ok || cfg.Profile != "p" {
		t.Errorf("FromContext = %+v, %v", cfg, ok)
	}
}
