package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PADELY_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != 20*time.Second {
		t.Errorf("RefreshInterval = %s, want 20s", cfg.RefreshInterval)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout = %s, want 10s", cfg.UpstreamTimeout)
	}
	if len(cfg.UpstreamProxies) != 3 {
		t.Errorf("len(UpstreamProxies) = %d, want 3", len(cfg.UpstreamProxies))
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "padely.yaml")
	body := "refresh_interval: 45s\napi_port: 9000\nupstream_proxies:\n  - https://proxy.example/?\ntelegram_chat_id: 42\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PADELY_CONFIG", path)
	t.Setenv("API_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != 45*time.Second {
		t.Errorf("RefreshInterval = %s, want 45s", cfg.RefreshInterval)
	}
	if cfg.APIPort != 9100 {
		t.Errorf("APIPort = %d, want env override 9100", cfg.APIPort)
	}
	if len(cfg.UpstreamProxies) != 1 || cfg.UpstreamProxies[0] != "https://proxy.example/?" {
		t.Errorf("UpstreamProxies = %v", cfg.UpstreamProxies)
	}
	if cfg.TelegramChatID != 42 {
		t.Errorf("TelegramChatID = %d, want 42", cfg.TelegramChatID)
	}
	if cfg.CacheEnabled != true {
		t.Errorf("CacheEnabled lost its default")
	}
}

func TestEnvDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"30", 30 * time.Second},
		{"1m", time.Minute},
		{"bogus", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.in)
		if got := envDuration("TEST_DURATION", 5*time.Second); got != tt.want {
			t.Errorf("envDuration(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.UpstreamDirect = false
	cfg.UpstreamProxies = nil
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted a config with no route to upstream")
	}

	cfg = Default()
	cfg.RefreshInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted a zero refresh interval")
	}
}
