// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Not parallel: setupLogging mutates the global logger.
func TestSetupLogging(t *testing.T) {
	defer func(l zerolog.Level, logger zerolog.Logger) {
		zerolog.SetGlobalLevel(l)
		log.Logger = logger
	}(zerolog.GlobalLevel(), log.Logger)

	var buf bytes.Buffer
	if err := setupLogging("info", &buf); err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("rule_id", "r1").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message written at info level")
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "rule_id=") {
		t.Errorf("output = %q", out)
	}

	if err := setupLogging("chatty", &buf); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestCommandTree(t *testing.T) {
	t.Parallel()

	for _, path := range [][]string{
		{"results"},
		{"export"},
		{"version"},
		{"config", "show"},
		{"config", "profiles"},
		{"config", "set-profile"},
	} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd == rootCmd {
			t.Errorf("command %v not registered: %v", path, err)
		}
	}

	flags := resultsCmd.Flags()
	for _, name := range []string{"start", "end", "status", "page", "per-page", "sort-field", "sort-order", "output"} {
		if flags.Lookup(name) == nil {
			t.Errorf("results is missing --%s", name)
		}
	}
}
