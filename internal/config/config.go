// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package config provides centralized configuration management for execlog.
// It supports deterministic precedence (flags > env > profile > defaults)
// using Viper, and fail-fast validation to prevent silent misconfiguration.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/elastic/execlog/internal/es/executions"
)

// Config holds all application configuration.
type Config struct {
	ES    ESConfig    `mapstructure:"es" yaml:"es"`
	OTLP  OTLPConfig  `mapstructure:"otlp" yaml:"otlp"`
	Query QueryConfig `mapstructure:"query" yaml:"query"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`

	// Profile is the name of the profile merged into this config, if any.
	Profile string `mapstructure:"-" yaml:"profile,omitempty"`
}

// ESConfig holds Elasticsearch connection settings.
type ESConfig struct {
	URL         string        `mapstructure:"url" yaml:"url"`
	Index       string        `mapstructure:"index" yaml:"index"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`           // Per-request timeout
	PingTimeout time.Duration `mapstructure:"ping_timeout" yaml:"ping_timeout"` // Connectivity check timeout
	APIKey      string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Username    string        `mapstructure:"username" yaml:"username,omitempty"`
	Password    string        `mapstructure:"password" yaml:"password,omitempty"`
}

// OTLPConfig holds OpenTelemetry Protocol settings.
type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"` // OTLP HTTP endpoint
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"` // Use insecure connection
}

// QueryConfig holds execution history query settings.
type QueryConfig struct {
	MaxExecutions int `mapstructure:"max_executions" yaml:"max_executions"`
	PerPage       int `mapstructure:"per_page" yaml:"per_page"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default configuration values.
const (
	DefaultESURL         = "http://localhost:9200"
	DefaultIndex         = executions.EventLogIndex
	DefaultTimeout       = 30 * time.Second
	DefaultPingTimeout   = 5 * time.Second
	DefaultOTLPEndpoint  = "localhost:4318"
	DefaultMaxExecutions = executions.MaxExecutionEventsDisplayed
	DefaultPerPage       = 20
	DefaultLogLevel      = "warn"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "EXECLOG"

// ContextKey is used to store config in context.
type ContextKey struct{}

// FromContext retrieves Config from context.
func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(ContextKey{}).(Config)
	return cfg, ok
}

// WithContext stores Config in context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ContextKey{}, cfg)
}

// Load builds a Config from the profile file on disk, env and flags.
// It binds flags from the command (and its parents) and fails fast on invalid values.
func Load(cmd *cobra.Command) (Config, error) {
	profiles, err := LoadProfiles()
	if err != nil {
		return Config{}, fmt.Errorf("load profiles: %w", err)
	}
	return LoadWithProfiles(cmd, profiles)
}

// LoadWithProfiles is Load with an already loaded profile file. The active
// profile is chosen by the --profile flag, then EXECLOG_PROFILE, then the
// file's current-profile.
func LoadWithProfiles(cmd *cobra.Command, profiles *ProfileConfig) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindFlagsRecursive(v, cmd); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	var profileName string
	if profiles != nil {
		var active *Profile
		active, profileName = profiles.GetActiveProfile(v.GetString("profile"))
		if name := v.GetString("profile"); name != "" && active == nil {
			return Config{}, fmt.Errorf("profile %q not found", name)
		}
		if active != nil {
			resolved, err := active.Resolve()
			if err != nil {
				return Config{}, fmt.Errorf("profile %q: %w", profileName, err)
			}
			applyProfile(v, resolved)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Profile = profileName

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers default values with Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("es.url", DefaultESURL)
	v.SetDefault("es.index", DefaultIndex)
	v.SetDefault("es.timeout", DefaultTimeout)
	v.SetDefault("es.ping_timeout", DefaultPingTimeout)
	v.SetDefault("es.api_key", "")
	v.SetDefault("es.username", "")
	v.SetDefault("es.password", "")

	v.SetDefault("otlp.endpoint", DefaultOTLPEndpoint)
	v.SetDefault("otlp.insecure", true)

	v.SetDefault("query.max_executions", DefaultMaxExecutions)
	v.SetDefault("query.per_page", DefaultPerPage)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("profile", "")
}

// applyProfile layers profile values over the defaults. Profile values are
// registered as defaults so env and flags still win.
func applyProfile(v *viper.Viper, p Profile) {
	set := func(key, value string) {
		if value != "" {
			v.SetDefault(key, value)
		}
	}
	set("es.url", p.Elasticsearch.URL)
	set("es.index", p.Elasticsearch.Index)
	set("es.api_key", p.Elasticsearch.APIKey)
	set("es.username", p.Elasticsearch.Username)
	set("es.password", p.Elasticsearch.Password)
	set("otlp.endpoint", p.OTLP.Endpoint)
	if p.OTLP.Insecure != nil {
		v.SetDefault("otlp.insecure", *p.OTLP.Insecure)
	}
}

// bindFlagsRecursive binds flags from cmd and all parents so Viper sees them.
func bindFlagsRecursive(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	if err := bindFlagSet(v, cmd.Flags()); err != nil {
		return err
	}
	if err := bindFlagSet(v, cmd.PersistentFlags()); err != nil {
		return err
	}
	return bindFlagsRecursive(v, cmd.Parent())
}

// flagToKey maps flag names to nested Viper keys.
var flagToKey = map[string]string{
	"es-url":         "es.url",
	"index":          "es.index",
	"timeout":        "es.timeout",
	"ping-timeout":   "es.ping_timeout",
	"api-key":        "es.api_key",
	"username":       "es.username",
	"password":       "es.password",
	"otlp":           "otlp.endpoint",
	"otlp-insecure":  "otlp.insecure",
	"max-executions": "query.max_executions",
	"per-page":       "query.per_page",
	"log-level":      "log.level",
	"profile":        "profile",
}

// bindFlagSet binds flags to Viper keys using explicit mappings to nested keys.
// Flags without a mapping are query parameters and stay out of Viper.
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagToKey[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// Validate enforces correctness and fails fast on invalid configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ES.URL) == "" {
		return fmt.Errorf("es.url is required")
	}
	if strings.TrimSpace(c.ES.Index) == "" {
		return fmt.Errorf("es.index is required")
	}
	if c.ES.Timeout <= 0 {
		return fmt.Errorf("es.timeout must be > 0")
	}
	if c.ES.PingTimeout <= 0 {
		return fmt.Errorf("es.ping_timeout must be > 0")
	}
	if c.Query.MaxExecutions < 1 || c.Query.MaxExecutions > executions.MaxExecutionEventsDisplayed {
		return fmt.Errorf("query.max_executions must be between 1 and %d", executions.MaxExecutionEventsDisplayed)
	}
	if c.Query.PerPage < 1 {
		return fmt.Errorf("query.per_page must be > 0")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Masked returns a copy with credentials replaced for display.
func (c Config) Masked() Config {
	masked := c
	masked.ES.APIKey = maskValue(c.ES.APIKey)
	masked.ES.Username = maskValue(c.ES.Username)
	masked.ES.Password = maskValue(c.ES.Password)
	return masked
}
