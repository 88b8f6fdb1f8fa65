package config

import (
	"strings"
	"testing"
	"time"
)

// TestParse_Minimal verifies that a token-only config gets every default.
func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte("token: secret\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}

	if cfg.Token != "secret" {
		t.Errorf("Token = %q, want secret", cfg.Token)
	}
	if cfg.BaseURL != "https://api.snapgate.io/v1" {
		t.Errorf("BaseURL = %q, want hosted default", cfg.BaseURL)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
	if cfg.PollInterval.Duration() != time.Second {
		t.Errorf("PollInterval = %s, want 1s", cfg.PollInterval.Duration())
	}
	if cfg.StalenessTimeout.Duration() != 10*time.Minute {
		t.Errorf("StalenessTimeout = %s, want 10m", cfg.StalenessTimeout.Duration())
	}
	if cfg.HTTPTimeout.Duration() != 30*time.Second {
		t.Errorf("HTTPTimeout = %s, want 30s", cfg.HTTPTimeout.Duration())
	}
}

// TestParse_Full verifies explicit values survive parsing.
func TestParse_Full(t *testing.T) {
	yaml := `
token: secret
base_url: http://localhost:8080
concurrency: 6
poll_interval: 250ms
staleness_timeout: 2m
http_timeout: 10s
snapshot_defaults:
  widths: [375, 1280]
  min_height: 900
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}

	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Concurrency != 6 {
		t.Errorf("Concurrency = %d, want 6", cfg.Concurrency)
	}
	if cfg.PollInterval.Duration() != 250*time.Millisecond {
		t.Errorf("PollInterval = %s, want 250ms", cfg.PollInterval.Duration())
	}
	if len(cfg.SnapshotDefaults.Widths) != 2 || cfg.SnapshotDefaults.Widths[1] != 1280 {
		t.Errorf("Widths = %v, want [375 1280]", cfg.SnapshotDefaults.Widths)
	}
	if cfg.SnapshotDefaults.MinHeight != 900 {
		t.Errorf("MinHeight = %d, want 900", cfg.SnapshotDefaults.MinHeight)
	}
}

// TestParse_EnvExpansion verifies ${VAR} and ${VAR:-default} substitution
// in the token and base URL.
func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("SNAPGATE_TEST_TOKEN", "from-env")

	cfg, err := Parse([]byte("token: ${SNAPGATE_TEST_TOKEN}\nbase_url: ${SNAPGATE_TEST_URL:-https://fallback.example.com}\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if cfg.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", cfg.Token)
	}
	if cfg.BaseURL != "https://fallback.example.com" {
		t.Errorf("BaseURL = %q, want fallback default", cfg.BaseURL)
	}
}

// TestParse_EnvMissing verifies that an unset variable without a default
// is an error.
func TestParse_EnvMissing(t *testing.T) {
	_, err := Parse([]byte("token: ${SNAPGATE_DEFINITELY_UNSET_VAR}\n"))
	if err == nil {
		t.Fatal("Parse() error = nil, want unset-variable error")
	}
	if !strings.Contains(err.Error(), "SNAPGATE_DEFINITELY_UNSET_VAR") {
		t.Errorf("error %q does not name the missing variable", err)
	}
}

// TestParse_Validation exercises the rejection paths.
func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing token", "concurrency: 2\n"},
		{"bad base_url scheme", "token: x\nbase_url: ftp://example.com\n"},
		{"negative concurrency", "token: x\nconcurrency: -1\n"},
		{"poll interval too small", "token: x\npoll_interval: 10ms\n"},
		{"staleness below interval", "token: x\npoll_interval: 5s\nstaleness_timeout: 1s\n"},
		{"bad duration string", "token: x\npoll_interval: fast\n"},
		{"negative width", "token: x\nsnapshot_defaults:\n  widths: [-100]\n"},
		{"negative min height", "token: x\nsnapshot_defaults:\n  min_height: -5\n"},
		{"malformed yaml", "token: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("Parse() error = nil, want error for %s", tt.name)
			}
		})
	}
}

// TestLoad_MissingFile verifies the file-read error path.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/snapgate.yaml")
	if err == nil {
		t.Fatal("Load() error = nil, want read error")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %q, want read-failure wrap", err)
	}
}
