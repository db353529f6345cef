package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// TestLoadConfig_Defaults verifies development defaults.
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != "development" || cfg.Addr != ":8080" || cfg.DBPath != "congregation.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.HistoryPageSize != 10 {
		t.Errorf("HistoryPageSize = %d, want 10", cfg.HistoryPageSize)
	}
	if len(cfg.CSRFKey) != 32 {
		t.Errorf("CSRFKey length = %d, want 32", len(cfg.CSRFKey))
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.production() {
		t.Error("default env reported as production")
	}
}

// TestLoadConfig_Overrides verifies every key is read.
func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(envMap(map[string]string{
		"CONGREGATION_ENV":               "production",
		"CONGREGATION_ADDR":              ":9000",
		"CONGREGATION_DB_PATH":           "/data/c.db",
		"CONGREGATION_HISTORY_PAGE_SIZE": "25",
		"CONGREGATION_CSRF_KEY":          strings.Repeat("ab", 32),
		"CONGREGATION_RESEND_KEY":        "re_123",
		"CONGREGATION_MAIL_FROM":         "Office <office@example.org>",
		"CONGREGATION_ALLOWED_ORIGINS":   "https://a.example.org, https://b.example.org ,",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.production() || cfg.Addr != ":9000" || cfg.DBPath != "/data/c.db" || cfg.HistoryPageSize != 25 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ResendKey != "re_123" || cfg.MailFrom != "Office <office@example.org>" {
		t.Errorf("mail cfg = %q %q", cfg.ResendKey, cfg.MailFrom)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.org" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.CSRFKey[0] != 0xab {
		t.Errorf("CSRFKey not decoded: %x", cfg.CSRFKey)
	}
}

// TestLoadConfig_Rejects verifies malformed values fail fast.
func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"page size not a number", map[string]string{"CONGREGATION_HISTORY_PAGE_SIZE": "ten"}},
		{"page size zero", map[string]string{"CONGREGATION_HISTORY_PAGE_SIZE": "0"}},
		{"short csrf key", map[string]string{"CONGREGATION_CSRF_KEY": "abcd"}},
		{"non-hex csrf key", map[string]string{"CONGREGATION_CSRF_KEY": strings.Repeat("zz", 32)}},
		{"production without csrf key", map[string]string{"CONGREGATION_ENV": "production"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(envMap(tt.env)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// TestLoadDotEnv verifies a missing file is ignored and a present one is loaded.
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CONGREGATION_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONGREGATION_TEST_DOTENV", "")
	os.Unsetenv("CONGREGATION_TEST_DOTENV")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("CONGREGATION_TEST_DOTENV"); got != "loaded" {
		t.Errorf("CONGREGATION_TEST_DOTENV = %q, want loaded", got)
	}
}
