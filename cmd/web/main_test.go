package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/services"
)

const salesCSV = `Date,Region,Product,Sales,Customer_Satisfaction,Customer_Gender,Customer_Age
2023-01-15,North,Widget A,250.00,4.5,Female,34
2023-01-15,South,Widget B,120.50,3.8,Male,41
2023-02-10,East,Widget A,980.25,4.9,Female,28
2023-03-05,West,Widget C,75.00,2.7,Male,57
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, csv string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales_data.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	return &config.Config{
		Server:    config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second},
		Dataset:   config.DatasetConfig{File: path, LoadTimeout: 5 * time.Second},
		Dashboard: config.DashboardConfig{AgeBins: 20, ChartWidth: 400, ChartHeight: 240},
		Logger:    config.LoggerConfig{Level: "error", Format: "text"},
		Security: config.SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    1000,
			RateLimitBurst:  1000,
			AllowedOrigins:  []string{"http://localhost:8501"},
		},
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := testConfig(t, salesCSV)

	analytics := services.NewAnalytics(
		services.WithLogger(testLogger()),
		services.WithLoader(dataset.NewLoader()),
	)
	if err := loadDataset(analytics, cfg); err != nil {
		t.Fatalf("loadDataset: %v", err)
	}
	return newHandler(cfg, analytics, testLogger())
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/dashboard", http.StatusOK, "application/json"},
		{"/api/metrics?region=North", http.StatusOK, "application/json"},
		{"/api/options", http.StatusOK, "application/json"},
		{"/api/export.xlsx", http.StatusOK, "spreadsheetml"},
		{"/charts/daily-sales.png", http.StatusOK, "image/png"},
		{"/sse/dashboard", http.StatusOK, "text/event-stream"},
		{"/sse/options", http.StatusOK, "text/event-stream"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/dashboard?start=bogus", http.StatusBadRequest, "application/json"},
		{"/charts/unknown.png", http.StatusNotFound, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test the metrics computed from the loaded file
func TestServer_MetricsFromFile(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/metrics?start=2023-01-15&end=2023-01-31", nil))

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			TotalSales  float64 `json:"total_sales"`
			RecordCount int     `json:"record_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if !response.Success {
		t.Fatal("expected success=true in response")
	}
	if response.Data.RecordCount != 2 {
		t.Errorf("record_count = %d, want 2", response.Data.RecordCount)
	}
	if response.Data.TotalSales != 370.5 {
		t.Errorf("total_sales = %v, want 370.5", response.Data.TotalSales)
	}
}

// Test that the middleware chain wraps every route
func TestServer_Middleware(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)
	r.Header.Set("Origin", "http://localhost:8501")
	handler.ServeHTTP(w, r)

	headers := map[string]string{
		"X-Content-Type-Options":      "nosniff",
		"X-Frame-Options":             "DENY",
		"Access-Control-Allow-Origin": "http://localhost:8501",
	}
	for name, want := range headers {
		if got := w.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestLoadDataset_Errors(t *testing.T) {
	tests := []struct {
		name      string
		csv       string
		wantParse bool
	}{
		{"missing column", "Date,Region,Product,Sales\n2023-01-01,North,A,1\n", true},
		{"bad date", "Date,Region,Product,Sales,Customer_Satisfaction,Customer_Gender,Customer_Age\nsoon,North,A,1,4,F,30\n", true},
		{"empty file", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.csv)
			analytics := services.NewAnalytics(
				services.WithLogger(testLogger()),
				services.WithLoader(dataset.NewLoader()),
			)

			err := loadDataset(analytics, cfg)
			if err == nil {
				t.Fatal("expected an error")
			}

			var loadErr *dataset.LoadError
			if !errors.As(err, &loadErr) {
				t.Errorf("expected *dataset.LoadError, got %T", err)
			}
			var parseErr *dataset.ParseError
			if got := errors.As(err, &parseErr); got != tt.wantParse {
				t.Errorf("ParseError present = %v, want %v (%v)", got, tt.wantParse, err)
			}
		})
	}
}

func TestLoadDataset_MissingFile(t *testing.T) {
	cfg := testConfig(t, salesCSV)
	cfg.Dataset.File = filepath.Join(t.TempDir(), "absent.csv")

	analytics := services.NewAnalytics(
		services.WithLogger(testLogger()),
		services.WithLoader(dataset.NewLoader()),
	)
	if err := loadDataset(analytics, cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
