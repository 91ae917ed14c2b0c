package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("GEMINI_API_KEY", "key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Chdir(t.TempDir()) // .env topilmasin

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinInterval != 3*time.Second || cfg.MaxWarnings != 3 || cfg.ResponderTimeout != 30*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" || cfg.DataDir != "data" || cfg.ViolationDBPath != "data/violations.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.WebhookSecret == "" {
		t.Error("webhook secret not generated")
	}
	if cfg.UseWebhook() || !cfg.IsDevelopment() {
		t.Errorf("UseWebhook=%v IsDevelopment=%v", cfg.UseWebhook(), cfg.IsDevelopment())
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Chdir(t.TempDir())
	t.Setenv("MIN_INTERVAL", "5")
	t.Setenv("RESPONDER_TIMEOUT", "1500ms")
	t.Setenv("MAX_WARNINGS", "2")
	t.Setenv("ADMIN_IDS", " 1, 2 ,,3")
	t.Setenv("ALLOWED_USERNAMES", "@vaizmolld,User1")
	t.Setenv("VIOLATION_DB_PATH", "")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinInterval != 5*time.Second {
		t.Errorf("MinInterval = %v", cfg.MinInterval)
	}
	if cfg.ResponderTimeout != 1500*time.Millisecond {
		t.Errorf("ResponderTimeout = %v", cfg.ResponderTimeout)
	}
	if cfg.MaxWarnings != 2 {
		t.Errorf("MaxWarnings = %d", cfg.MaxWarnings)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, cfg.AdminIDs); diff != "" {
		t.Errorf("AdminIDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"@vaizmolld", "User1"}, cfg.AllowedUsernames); diff != "" {
		t.Errorf("AllowedUsernames mismatch (-want +got):\n%s", diff)
	}
	if cfg.ViolationDBPath != "" {
		t.Errorf("ViolationDBPath = %q, want in-memory", cfg.ViolationDBPath)
	}
	if cfg.IsDevelopment() {
		t.Error("production treated as development")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"TELEGRAM_BOT_TOKEN": ""}},
		{"missing key", map[string]string{"GEMINI_API_KEY": ""}},
		{"bad interval", map[string]string{"MIN_INTERVAL": "soon"}},
		{"bad warnings", map[string]string{"MAX_WARNINGS": "three"}},
		{"zero warnings", map[string]string{"MAX_WARNINGS": "0"}},
		{"zero timeout", map[string]string{"RESPONDER_TIMEOUT": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}
