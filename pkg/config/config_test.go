package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
environment: test
server:
  port: 8080
providers:
  - name: finnhub
    priority: 1
    api_key: "abc"
    rate_limit: 60
  - name: alphavantage
    priority: 2
  - name: twelvedata
    priority: 3
    api_key: "xyz"
`

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return p
}

func TestLoadDerivesEnabledFromCredential(t *testing.T) {
	cfg, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	enabled := cfg.EnabledProviders()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled providers, got %d", len(enabled))
	}
	if enabled[0].Name != "finnhub" || enabled[1].Name != "twelvedata" {
		t.Fatalf("unexpected enabled order: %v", enabled)
	}
}

func TestLoadAppliesTTLDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Market.CacheTTL != 2*time.Minute {
		t.Fatalf("market ttl default: %v", cfg.Market.CacheTTL)
	}
	if cfg.Signals.CacheTTL != 5*time.Minute {
		t.Fatalf("signal ttl default: %v", cfg.Signals.CacheTTL)
	}
	if cfg.Signals.Stream.MaxSymbols != 5 {
		t.Fatalf("stream max symbols default: %d", cfg.Signals.Stream.MaxSymbols)
	}
}

func TestLoadWithEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("ALPHAVANTAGE_API_KEY", "from-env")
	cfg, err := LoadWithEnv(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.EnabledProviders()) != 3 {
		t.Fatalf("expected env key to enable alphavantage")
	}
}

func TestValidateRejectsDuplicateProviders(t *testing.T) {
	body := `
environment: test
providers:
  - name: finnhub
    priority: 1
  - name: finnhub
    priority: 2
`
	if _, err := Load(writeTemp(t, body)); err == nil {
		t.Fatalf("expected duplicate provider error")
	}
}
