package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points ENV_FILE at a path that does not exist so a developer's
// local .env never leaks into the tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8501 {
		t.Errorf("port = %d, want 8501", cfg.Server.Port)
	}
	if cfg.Dataset.File != "sales_data.csv" {
		t.Errorf("dataset file = %q, want sales_data.csv", cfg.Dataset.File)
	}
	if cfg.Dashboard.AgeBins != 20 {
		t.Errorf("age bins = %d, want 20", cfg.Dashboard.AgeBins)
	}
	if cfg.Address() != "localhost:8501" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SALES_DATA_FILE", "/data/q1.xlsx")
	t.Setenv("SALES_DATA_LOAD_TIMEOUT", "5s")
	t.Setenv("DASHBOARD_AGE_BINS", "10")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Dataset.File != "/data/q1.xlsx" {
		t.Errorf("dataset file = %q", cfg.Dataset.File)
	}
	if cfg.Dataset.LoadTimeout != 5*time.Second {
		t.Errorf("load timeout = %v", cfg.Dataset.LoadTimeout)
	}
	if cfg.Dashboard.AgeBins != 10 {
		t.Errorf("age bins = %d", cfg.Dashboard.AgeBins)
	}
	if got := strings.Join(cfg.Security.AllowedOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("allowed origins = %q", got)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "SALES_DATA_FILE=from-env-file.csv\nDASHBOARD_CHART_WIDTH=640\nSERVER_PORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	// Process environment wins over the file.
	t.Setenv("SERVER_PORT", "7100")
	t.Cleanup(func() {
		os.Unsetenv("SALES_DATA_FILE")
		os.Unsetenv("DASHBOARD_CHART_WIDTH")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dataset.File != "from-env-file.csv" {
		t.Errorf("dataset file = %q, want value from env file", cfg.Dataset.File)
	}
	if cfg.Dashboard.ChartWidth != 640 {
		t.Errorf("chart width = %d, want 640", cfg.Dashboard.ChartWidth)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("port = %d, want 7100", cfg.Server.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port too large", "SERVER_PORT", "70000"},
		{"zero age bins", "DASHBOARD_AGE_BINS", "0"},
		{"tiny chart", "DASHBOARD_CHART_HEIGHT", "10"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"negative rps", "SECURITY_RATE_LIMIT_RPS", "-1"},
		{"negative load timeout", "SALES_DATA_LOAD_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	if got := getEnvInt("X_INT", 3); got != 3 {
		t.Errorf("getEnvInt = %d, want 3", got)
	}
	if got := getEnvBool("X_BOOL", true); !got {
		t.Error("getEnvBool should fall back to default")
	}
	if got := getEnvDuration("X_DUR", time.Second); got != time.Second {
		t.Errorf("getEnvDuration = %v", got)
	}
}
