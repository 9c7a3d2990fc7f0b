// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/elastic/execlog/internal/config"
)

// Flags for set-profile command
var (
	setProfileESURL      string
	setProfileIndex      string
	setProfileESAPIKey   string
	setProfileESUsername string
	setProfileESPassword string
	setProfileOTLP       string
	setProfileOTLPInsec  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage execlog configuration and profiles",
	Long: `Manage execlog configuration profiles.

Profiles hold Elasticsearch and OTLP connection settings under a name so
you can switch clusters with --profile or 'execlog config use-profile'.

Configuration is stored in ~/.config/execlog/config.yaml`,
	// Profile management must work even when the active profile is broken.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration (credentials masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), cfg.Masked())
	},
}

var getProfilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"get-profiles", "list-profiles"},
	Short:   "List all profiles",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		printProfiles(cmd.OutOrStdout(), cfg)
		return nil
	},
}

var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the profile file (credentials masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if len(cfg.Profiles) == 0 && cfg.CurrentProfile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No configuration found.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
		return nil
	},
}

var useProfileCmd = &cobra.Command{
	Use:   "use-profile <name>",
	Short: "Set the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if _, err := cfg.GetProfile(name); err != nil {
			return err
		}

		cfg.CurrentProfile = name
		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %q\n", name)
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:   "set-profile <name>",
	Short: "Create or update a profile",
	Long: `Create or update a named profile with connection settings.

Examples:
  # Local cluster
  execlog config set-profile local --es-url http://localhost:9200

  # Cloud deployment with an API key taken from the environment
  execlog config set-profile prod \
    --es-url https://prod.es.example.com:9243 \
    --es-api-key '${PROD_ES_API_KEY}'

Credentials can be stored as:
  - Environment variable references: ${MY_SECRET} (recommended)
  - Plain text values (warning will be shown)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		profile, _ := cfg.GetProfile(name)
		applyProfileFlags(cmd, &profile)
		cfg.SetProfile(name, profile)

		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		if profile.HasPlainTextCredentials() {
			fmt.Fprintln(cmd.ErrOrStderr(), config.PlainTextCredentialWarning())
			fmt.Fprintln(cmd.ErrOrStderr())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved: %s\n", name, formatProfileSummary(profile))
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete-profile <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if err := cfg.DeleteProfile(name); err != nil {
			return err
		}
		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q deleted\n", name)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	setProfileCmd.Flags().StringVar(&setProfileESURL, "es-url", "", "Elasticsearch URL")
	setProfileCmd.Flags().StringVar(&setProfileIndex, "index", "", "Event log index pattern")
	setProfileCmd.Flags().StringVar(&setProfileESAPIKey, "es-api-key", "", "Elasticsearch API key (supports ${ENV_VAR} syntax)")
	setProfileCmd.Flags().StringVar(&setProfileESUsername, "es-username", "", "Elasticsearch username")
	setProfileCmd.Flags().StringVar(&setProfileESPassword, "es-password", "", "Elasticsearch password (supports ${ENV_VAR} syntax)")
	setProfileCmd.Flags().StringVar(&setProfileOTLP, "otlp", "", "OTLP endpoint")
	setProfileCmd.Flags().BoolVar(&setProfileOTLPInsec, "otlp-insecure", true, "Use insecure OTLP connection")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(getProfilesCmd)
	configCmd.AddCommand(viewConfigCmd)
	configCmd.AddCommand(useProfileCmd)
	configCmd.AddCommand(setProfileCmd)
	configCmd.AddCommand(deleteProfileCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// applyProfileFlags copies the set-profile flags that were given onto p.
func applyProfileFlags(cmd *cobra.Command, p *config.Profile) {
	set := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	set(&p.Elasticsearch.URL, setProfileESURL)
	set(&p.Elasticsearch.Index, setProfileIndex)
	set(&p.Elasticsearch.APIKey, setProfileESAPIKey)
	set(&p.Elasticsearch.Username, setProfileESUsername)
	set(&p.Elasticsearch.Password, setProfileESPassword)
	set(&p.OTLP.Endpoint, setProfileOTLP)
	if cmd.Flags().Changed("otlp-insecure") {
		insecure := setProfileOTLPInsec
		p.OTLP.Insecure = &insecure
	}
}

func printProfiles(w io.Writer, cfg *config.ProfileConfig) {
	names := cfg.ListProfiles()
	if len(names) == 0 {
		fmt.Fprintln(w, "No profiles configured.")
		fmt.Fprintln(w, "Create one with: execlog config set-profile <name> --es-url <url>")
		return
	}

	fmt.Fprintln(w, "PROFILES:")
	for _, name := range names {
		marker := "  "
		if name == cfg.CurrentProfile {
			marker = "* "
		}
		profile, _ := cfg.GetProfile(name)
		fmt.Fprintf(w, "%s%-20s  %s\n", marker, name, formatProfileSummary(profile.MaskCredentials()))
	}
	if cfg.CurrentProfile != "" {
		fmt.Fprintf(w, "\n* = current profile\n")
	}
}

// formatProfileSummary returns a brief summary of a profile's settings.
func formatProfileSummary(p config.Profile) string {
	var parts []string
	if p.Elasticsearch.URL != "" {
		parts = append(parts, fmt.Sprintf("es=%s", p.Elasticsearch.URL))
	}
	if p.Elasticsearch.Index != "" {
		parts = append(parts, fmt.Sprintf("index=%s", p.Elasticsearch.Index))
	}
	switch {
	case p.Elasticsearch.APIKey != "":
		parts = append(parts, "auth=api-key")
	case p.Elasticsearch.Username != "":
		parts = append(parts, "auth=basic")
	}
	if p.OTLP.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("otlp=%s", p.OTLP.Endpoint))
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, ", ")
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
