package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvGoogleMapsAPIKey, "maps-key")
	t.Setenv(EnvAsanaAccessToken, "asana-token")
	t.Setenv(EnvAsanaDefaultWorkspace, "12345")

	cfg := FromEnv()
	if cfg.GoogleMapsAPIKey != "maps-key" {
		t.Errorf("GoogleMapsAPIKey = %q", cfg.GoogleMapsAPIKey)
	}
	if cfg.AsanaAccessToken != "asana-token" {
		t.Errorf("AsanaAccessToken = %q", cfg.AsanaAccessToken)
	}
	if cfg.AsanaDefaultWorkspace != "12345" {
		t.Errorf("AsanaDefaultWorkspace = %q", cfg.AsanaDefaultWorkspace)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TOOLBRIDGE_TEST_VAR", "expanded")

	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"${TOOLBRIDGE_TEST_VAR}", "expanded"},
		{"$TOOLBRIDGE_TEST_VAR", "expanded"},
		{"prefix-${TOOLBRIDGE_TEST_VAR}-suffix", "prefix-expanded-suffix"},
		{"${TOOLBRIDGE_UNSET_VAR}", ""},
	}
	for _, tc := range cases {
		if got := ExpandEnv(tc.in); got != tc.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadOverlaysFileOnEnv(t *testing.T) {
	t.Setenv(EnvGoogleMapsAPIKey, "env-maps-key")
	t.Setenv(EnvPerplexityAPIKey, "env-perplexity-key")
	t.Setenv("TOOLBRIDGE_TEST_TOKEN", "sekrit")

	path := filepath.Join(t.TempDir(), "toolbridge.yaml")
	content := "asana_access_token: ${TOOLBRIDGE_TEST_TOKEN}\n" +
		"google_maps_api_key: file-maps-key\n" +
		"http_timeout: 45s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GoogleMapsAPIKey != "file-maps-key" {
		t.Errorf("file should override env, got %q", cfg.GoogleMapsAPIKey)
	}
	if cfg.PerplexityAPIKey != "env-perplexity-key" {
		t.Errorf("env value should survive when the file omits it, got %q", cfg.PerplexityAPIKey)
	}
	if cfg.AsanaAccessToken != "sekrit" {
		t.Errorf("token = %q, want expansion from env", cfg.AsanaAccessToken)
	}
	if cfg.HTTPTimeout != 45*time.Second {
		t.Errorf("HTTPTimeout = %v, want 45s", cfg.HTTPTimeout)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}
