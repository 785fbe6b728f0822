package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeCollector はStatusRecorderのモック
type fakeCollector struct {
	statuses []int
}

func (f *fakeCollector) RecordHTTPStatus(statusCode int) {
	f.statuses = append(f.statuses, statusCode)
}

// TestLoggingMiddleware_LogsRequest はリクエストログにmethod/path/statusが
// 含まれることを検証する。
func TestLoggingMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	collector := &fakeCollector{}
	mw := NewLoggingMiddleware(logger, collector)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products?shop=a.myshopify.com", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["method"] != "GET" {
		t.Errorf("method = %v", entry["method"])
	}
	if entry["path"] != "/api/products" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("status = %v", entry["status"])
	}
	if entry["shop"] != "a.myshopify.com" {
		t.Errorf("shop = %v", entry["shop"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN for 4xx", entry["level"])
	}

	if len(collector.statuses) != 1 || collector.statuses[0] != http.StatusNotFound {
		t.Errorf("collector statuses = %v", collector.statuses)
	}
}

// TestLoggingMiddleware_DefaultsTo200 はWriteHeader未呼び出し時に200を
// 記録することを検証する。
func TestLoggingMiddleware_DefaultsTo200(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	mw := NewLoggingMiddleware(logger, nil)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
}
