// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ProfileConfig represents the top-level configuration file structure.
// Stored at ~/.config/execlog/config.yaml
type ProfileConfig struct {
	CurrentProfile string             `yaml:"current-profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile is a named set of connection settings, similar to a kubectl context.
type Profile struct {
	Elasticsearch ESProfile   `yaml:"elasticsearch,omitempty"`
	OTLP          OTLPProfile `yaml:"otlp,omitempty"`
}

// ESProfile holds Elasticsearch connection settings for a profile.
type ESProfile struct {
	URL      string `yaml:"url,omitempty"`
	Index    string `yaml:"index,omitempty"`
	APIKey   string `yaml:"api-key,omitempty"` // Supports ${ENV_VAR} syntax
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"` // Supports ${ENV_VAR} syntax
}

// OTLPProfile holds OTLP connection settings for a profile.
type OTLPProfile struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure *bool  `yaml:"insecure,omitempty"` // nil means unset
}

// Default configuration directory and file names.
const (
	ConfigDirName  = "execlog"
	ConfigFileName = "config.yaml"
)

const maskedValue = "****"

// GetConfigDir returns the path to the execlog config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/execlog
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDirName), nil
}

// GetConfigPath returns the full path to the config file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadProfiles loads the profile configuration from disk.
// A missing file yields an empty ProfileConfig.
func LoadProfiles() (*ProfileConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadProfilesFrom(path)
}

// LoadProfilesFrom loads the profile configuration at path.
func LoadProfilesFrom(path string) (*ProfileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ProfileConfig{Profiles: make(map[string]Profile)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	checkFilePermissions(path)

	var cfg ProfileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return &cfg, nil
}

// SaveProfiles writes the profile configuration to disk with 0600 permissions.
func SaveProfiles(cfg *ProfileConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// GetProfile returns the named profile, or an error if it doesn't exist.
func (c *ProfileConfig) GetProfile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// SetProfile creates or updates a named profile.
func (c *ProfileConfig) SetProfile(name string, profile Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = profile
}

// DeleteProfile removes a named profile and clears it as current.
func (c *ProfileConfig) DeleteProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return nil
}

// ListProfiles returns all profile names, sorted.
func (c *ProfileConfig) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetActiveProfile returns the currently active profile.
// If profileFlag is set, uses that. Otherwise uses current-profile from config.
// Returns nil profile and empty name if no profile is active.
func (c *ProfileConfig) GetActiveProfile(profileFlag string) (*Profile, string) {
	name := profileFlag
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return nil, ""
	}
	p, err := c.GetProfile(name)
	if err != nil {
		return nil, ""
	}
	return &p, name
}

// envVarPattern matches ${VAR_NAME} patterns
var envVarPattern = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// IsEnvRef returns true if the string is an environment variable reference.
func IsEnvRef(s string) bool {
	return envVarPattern.MatchString(s)
}

// credential is a named pointer to one secret-bearing profile field.
type credential struct {
	name  string
	value *string
}

func (p *Profile) credentials() []credential {
	return []credential{
		{"api-key", &p.Elasticsearch.APIKey},
		{"username", &p.Elasticsearch.Username},
		{"password", &p.Elasticsearch.Password},
	}
}

// Resolve returns a copy of the profile with all ${ENV_VAR} references expanded.
// Returns an error if any referenced environment variable is undefined.
func (p Profile) Resolve() (Profile, error) {
	resolved := p
	for _, c := range resolved.credentials() {
		m := envVarPattern.FindStringSubmatch(*c.value)
		if m == nil {
			continue
		}
		val, ok := os.LookupEnv(m[1])
		if !ok {
			return Profile{}, fmt.Errorf("undefined environment variable in %s: %s", c.name, *c.value)
		}
		*c.value = val
	}
	return resolved, nil
}

// HasPlainTextCredentials reports whether any credential is stored literally
// rather than as an environment variable reference.
func (p Profile) HasPlainTextCredentials() bool {
	for _, c := range p.credentials() {
		if *c.value != "" && !IsEnvRef(*c.value) {
			return true
		}
	}
	return false
}

// MaskCredentials returns a copy of the profile with credentials masked for display.
// Environment variable references are shown as-is.
func (p Profile) MaskCredentials() Profile {
	masked := p
	for _, c := range masked.credentials() {
		if !IsEnvRef(*c.value) {
			*c.value = maskValue(*c.value)
		}
	}
	return masked
}

func maskValue(s string) string {
	if s == "" {
		return ""
	}
	return maskedValue
}

// MaskAllCredentials returns a copy of the config with all profile credentials masked.
func (c ProfileConfig) MaskAllCredentials() ProfileConfig {
	masked := ProfileConfig{
		CurrentProfile: c.CurrentProfile,
		Profiles:       make(map[string]Profile, len(c.Profiles)),
	}
	for name, profile := range c.Profiles {
		masked.Profiles[name] = profile.MaskCredentials()
	}
	return masked
}

// String returns a YAML representation of the config with credentials masked.
func (c ProfileConfig) String() string {
	data, err := yaml.Marshal(c.MaskAllCredentials())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return strings.TrimSpace(string(data))
}

// checkFilePermissions warns if group or world can read the config file.
func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		log.Warn().Str("path", path).Str("mode", fmt.Sprintf("%04o", mode)).Msg("config file should have 0600 permissions")
	}
}

// PlainTextCredentialWarning is shown after saving a profile with literal secrets.
func PlainTextCredentialWarning() string {
	return "Warning: Storing credentials in plain text. Consider using environment\n" +
		"variable references (e.g., api-key: ${MY_API_KEY}) for better security."
}
