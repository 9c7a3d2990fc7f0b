// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testProfiles() *ProfileConfig {
	return &ProfileConfig{
		CurrentProfile: "prod",
		Profiles: map[string]Profile{
			"prod":  {Elasticsearch: ESProfile{URL: "https://prod:9243", APIKey: "${PROD_KEY}"}},
			"local": {Elasticsearch: ESProfile{URL: "http://localhost:9200"}},
		},
	}
}

func TestProfileConfig_CRUD(t *testing.T) {
	t.Parallel()

	cfg := testProfiles()

	if _, err := cfg.GetProfile("missing"); err == nil {
		t.Error("expected error for missing profile")
	}

	insecure := false
	cfg.SetProfile("staging", Profile{
		Elasticsearch: ESProfile{URL: "https://staging:9243", Index: "events-*"},
		OTLP:          OTLPProfile{Endpoint: "collector:4318", Insecure: &insecure},
	})
	p, err := cfg.GetProfile("staging")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Elasticsearch.Index != "events-*" || p.OTLP.Insecure == nil || *p.OTLP.Insecure {
		t.Errorf("staging = %+v", p)
	}

	if diff := cmp.Diff([]string{"local", "prod", "staging"}, cfg.ListProfiles()); diff != "" {
		t.Errorf("ListProfiles mismatch (-want +got):\n%s", diff)
	}

	if err := cfg.DeleteProfile("prod"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if cfg.CurrentProfile != "" {
		t.Errorf("CurrentProfile = %q, want cleared", cfg.CurrentProfile)
	}
	if err := cfg.DeleteProfile("prod"); err == nil {
		t.Error("expected error deleting a missing profile")
	}
}

func TestProfileConfig_SetProfileOnEmpty(t *testing.T) {
	t.Parallel()

	var cfg ProfileConfig
	cfg.SetProfile("a", Profile{})
	if len(cfg.ListProfiles()) != 1 {
		t.Errorf("profiles = %v", cfg.ListProfiles())
	}
}

func TestProfileConfig_GetActiveProfile(t *testing.T) {
	t.Parallel()

	cfg := testProfiles()
	tests := []struct {
		name     string
		flag     string
		current  string
		wantName string
	}{
		{name: "current profile", wantName: "prod", current: "prod"},
		{name: "flag wins", flag: "local", current: "prod", wantName: "local"},
		{name: "unknown flag", flag: "nope", current: "prod", wantName: ""},
		{name: "none", wantName: ""},
	}

	for _, tc := range tests {
		c := *cfg
		c.CurrentProfile = tc.current
		p, name := c.GetActiveProfile(tc.flag)
		if name != tc.wantName {
			t.Errorf("%s: name = %q, want %q", tc.name, name, tc.wantName)
		}
		if (p == nil) != (tc.wantName == "") {
			t.Errorf("%s: profile = %v", tc.name, p)
		}
	}
}

func TestIsEnvRef(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"${API_KEY}":     true,
		"${A}":           true,
		"$API_KEY":       false,
		"${API_KEY":      false,
		"prefix${KEY}":   false,
		"plain-text-key": false,
		"":               false,
		"${KEY}suffix":   false,
	}
	for in, want := range tests {
		if got := IsEnvRef(in); got != want {
			t.Errorf("IsEnvRef(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProfile_Resolve(t *testing.T) {
	t.Setenv("EXECLOG_TEST_KEY", "resolved-key")
	t.Setenv("EXECLOG_TEST_PASS", "resolved-pass")

	p := Profile{Elasticsearch: ESProfile{
		URL:      "https://es:9243",
		APIKey:   "${EXECLOG_TEST_KEY}",
		Username: "elastic",
		Password: "${EXECLOG_TEST_PASS}",
	}}

	resolved, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := ESProfile{URL: "https://es:9243", APIKey: "resolved-key", Username: "elastic", Password: "resolved-pass"}
	if diff := cmp.Diff(want, resolved.Elasticsearch); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
	if p.Elasticsearch.APIKey != "${EXECLOG_TEST_KEY}" {
		t.Error("Resolve modified the receiver")
	}

	_, err = Profile{Elasticsearch: ESProfile{Password: "${EXECLOG_TEST_UNDEFINED}"}}.Resolve()
	if err == nil || !strings.Contains(err.Error(), "password") {
		t.Errorf("err = %v, want undefined variable error naming password", err)
	}
}

func TestProfile_Credentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		es        ESProfile
		plainText bool
		masked    ESProfile
	}{
		{name: "empty", es: ESProfile{URL: "u"}, masked: ESProfile{URL: "u"}},
		{
			name:   "env refs only",
			es:     ESProfile{APIKey: "${K}", Password: "${P}"},
			masked: ESProfile{APIKey: "${K}", Password: "${P}"},
		},
		{
			name:      "plain api key",
			es:        ESProfile{APIKey: "abc"},
			plainText: true,
			masked:    ESProfile{APIKey: "****"},
		},
		{
			name:      "mixed basic auth",
			es:        ESProfile{Username: "elastic", Password: "${P}"},
			plainText: true,
			masked:    ESProfile{Username: "****", Password: "${P}"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := Profile{Elasticsearch: tc.es}
			if got := p.HasPlainTextCredentials(); got != tc.plainText {
				t.Errorf("HasPlainTextCredentials = %v, want %v", got, tc.plainText)
			}
			if diff := cmp.Diff(tc.masked, p.MaskCredentials().Elasticsearch); diff != "" {
				t.Errorf("MaskCredentials mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProfileConfig_SaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := testProfiles()
	if err := SaveProfiles(cfg); err != nil {
		t.Fatalf("SaveProfiles: %v", err)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %04o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProfilesFrom(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := LoadProfilesFrom(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Profiles == nil || len(cfg.Profiles) != 0 {
		t.Errorf("missing file should yield empty profiles, got %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("profiles: [oops"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfilesFrom(bad); err == nil {
		t.Error("expected parse error")
	}

	good := filepath.Join(dir, "good.yaml")
	data := "current-profile: dev\nprofiles:\n  dev:\n    elasticsearch:\n      url: http://dev:9200\n      index: dev-events-*\n"
	if err := os.WriteFile(good, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadProfilesFrom(good)
	if err != nil {
		t.Fatalf("LoadProfilesFrom: %v", err)
	}
	p, _ := cfg.GetActiveProfile("")
	if p == nil || p.Elasticsearch.Index != "dev-events-*" {
		t.Errorf("active profile = %+v", p)
	}
}

func TestGetConfigPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(tempDir, "execlog", "config.yaml"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestProfileConfig_String(t *testing.T) {
	t.Parallel()

	cfg := ProfileConfig{
		Profiles: map[string]Profile{
			"test": {Elasticsearch: ESProfile{URL: "http://test:9200", Password: "hunter2"}},
		},
	}
	str := cfg.String()
	if !strings.Contains(str, "http://test:9200") {
		t.Error("expected URL in output")
	}
	if strings.Contains(str, "hunter2") {
		t.Error("password should be masked")
	}
	if !strings.Contains(str, "****") {
		t.Error("expected masked credentials")
	}
}
