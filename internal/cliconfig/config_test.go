package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMerge_Precedence(t *testing.T) {
	cfg := NewDefault()

	Merge(cfg, &CLIConfig{ServerURL: "http://global:8000", LogLevel: "debug"}, SourceGlobal)
	Merge(cfg, &CLIConfig{ServerURL: "http://local:8000"}, SourceLocal)

	if cfg.ServerURL != "http://local:8000" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.Sources["serverUrl"] != SourceLocal {
		t.Errorf("serverUrl source = %q", cfg.Sources["serverUrl"])
	}
	// The local layer did not set logLevel, so the global value stays.
	if cfg.LogLevel != "debug" || cfg.Sources["logLevel"] != SourceGlobal {
		t.Errorf("LogLevel = %q from %q", cfg.LogLevel, cfg.Sources["logLevel"])
	}
	if cfg.HistoryCap != 1000 || cfg.Sources["historyCap"] != SourceDefault {
		t.Errorf("HistoryCap = %d from %q", cfg.HistoryCap, cfg.Sources["historyCap"])
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `serverUrl: http://dev:8000
historyCap: 250
sections: [overview, git]
profiles:
  staging:
    serverUrl: http://staging:8000
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.ServerURL != "http://dev:8000" || cfg.HistoryCap != 250 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Sections) != 2 || cfg.Sections[1] != "git" {
		t.Errorf("Sections = %v", cfg.Sections)
	}
	if p := cfg.Profiles["staging"]; p == nil || p.ServerURL != "http://staging:8000" {
		t.Errorf("staging profile = %+v", p)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("serverUrl: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestApplyProfile(t *testing.T) {
	cfg := NewDefault()
	cfg.Profiles = map[string]*Profile{
		"staging": {ServerURL: "http://staging:8000", AssetURL: "http://cdn.staging"},
	}

	cfg.ApplyProfile("staging")
	if cfg.ServerURL != "http://staging:8000" || cfg.AssetURL != "http://cdn.staging" {
		t.Errorf("profile not applied: %+v", cfg)
	}
	if cfg.Sources["serverUrl"] != "profile:staging" {
		t.Errorf("serverUrl source = %q", cfg.Sources["serverUrl"])
	}

	// Unknown profiles leave the config untouched.
	before := cfg.ServerURL
	cfg.ApplyProfile("missing")
	if cfg.ServerURL != before {
		t.Errorf("unknown profile changed ServerURL to %q", cfg.ServerURL)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvServerURL, "http://env:8000")
	t.Setenv(EnvHistoryCap, "50")
	t.Setenv(EnvVerbose, "1")

	cfg := NewDefault()
	LoadEnv(cfg)

	if cfg.ServerURL != "http://env:8000" || cfg.Sources["serverUrl"] != SourceEnv {
		t.Errorf("ServerURL = %q from %q", cfg.ServerURL, cfg.Sources["serverUrl"])
	}
	if cfg.HistoryCap != 50 {
		t.Errorf("HistoryCap = %d", cfg.HistoryCap)
	}
	if !cfg.Verbose {
		t.Error("Verbose not set")
	}
}
