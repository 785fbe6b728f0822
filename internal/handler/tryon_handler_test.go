package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hikaru/fitgate/internal/model"
	"github.com/hikaru/fitgate/internal/tryon"
)

// mockTryOnService はTryOnServiceInterfaceのモック
type mockTryOnService struct {
	recordFunc     func(ctx context.Context, event *tryon.Event) (string, error)
	listRecentFunc func(ctx context.Context, shop string, limit int) ([]*model.TryOnLog, error)
}

func (m *mockTryOnService) Record(ctx context.Context, event *tryon.Event) (string, error) {
	return m.recordFunc(ctx, event)
}

func (m *mockTryOnService) ListRecent(ctx context.Context, shop string, limit int) ([]*model.TryOnLog, error) {
	return m.listRecentFunc(ctx, shop, limit)
}

// fakeTryOnMetrics はTryOnMetricsのモック
type fakeTryOnMetrics struct {
	actions []string
}

func (f *fakeTryOnMetrics) RecordTryOnEvent(action string) {
	f.actions = append(f.actions, action)
}

// イベント記録成功時に{ok:true,id}を返すことを検証
func TestTryOnHandler_Record_Success(t *testing.T) {
	var gotEvent *tryon.Event
	service := &mockTryOnService{
		recordFunc: func(ctx context.Context, event *tryon.Event) (string, error) {
			gotEvent = event
			return "generated-id-1", nil
		},
	}
	collector := &fakeTryOnMetrics{}
	h := NewTryOnHandler(service, collector)

	body := `{"shop":"test-store.myshopify.com","productId":"gid://shopify/Product/1","action":"open","metadata":{"source":"widget"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/tryon/log", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Record(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if resp["ok"] != true {
		t.Errorf("ok = %v", resp["ok"])
	}
	if resp["id"] != "generated-id-1" {
		t.Errorf("id = %v", resp["id"])
	}

	if gotEvent.Shop != "test-store.myshopify.com" || gotEvent.Action != "open" {
		t.Errorf("event = %+v", gotEvent)
	}
	if gotEvent.Metadata["source"] != "widget" {
		t.Errorf("metadata = %v", gotEvent.Metadata)
	}
	if len(collector.actions) != 1 || collector.actions[0] != "open" {
		t.Errorf("metrics actions = %v", collector.actions)
	}
}

// 必須フィールド欠落で400を返すことを検証
func TestTryOnHandler_Record_MissingFields(t *testing.T) {
	service := &mockTryOnService{
		recordFunc: func(ctx context.Context, event *tryon.Event) (string, error) {
			return "", model.NewInvalidEventError([]string{"action"})
		},
	}
	h := NewTryOnHandler(service, nil)

	body := `{"shop":"test-store.myshopify.com","productId":"gid://shopify/Product/1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tryon/log", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Record(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var respBody map[string]string
	if err := json.NewDecoder(w.Body).Decode(&respBody); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if respBody["code"] != model.ErrCodeInvalidEvent {
		t.Errorf("code = %q", respBody["code"])
	}
}

// 不正なJSONボディで400を返すことを検証
func TestTryOnHandler_Record_MalformedBody(t *testing.T) {
	h := NewTryOnHandler(&mockTryOnService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tryon/log", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.Record(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// 一覧取得がJSON配列を返すことを検証
func TestTryOnHandler_ListLogs(t *testing.T) {
	var gotLimit int
	service := &mockTryOnService{
		listRecentFunc: func(ctx context.Context, shop string, limit int) ([]*model.TryOnLog, error) {
			gotLimit = limit
			return []*model.TryOnLog{
				{
					ID:        "id-1",
					Shop:      shop,
					ProductID: "gid://shopify/Product/1",
					Action:    "open",
					CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	}
	h := NewTryOnHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tryon/logs?shop=test-store.myshopify.com&limit=10", nil)
	w := httptest.NewRecorder()
	h.ListLogs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotLimit != 10 {
		t.Errorf("limit = %d, want 10", gotLimit)
	}

	var entries []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("body is not a JSON array: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d", len(entries))
	}
	if entries[0]["id"] != "id-1" || entries[0]["action"] != "open" {
		t.Errorf("entry = %v", entries[0])
	}
	if entries[0]["createdAt"] != "2026-08-01T12:00:00Z" {
		t.Errorf("createdAt = %v", entries[0]["createdAt"])
	}
}

// 一覧取得でshop欠落・不正limitに400を返すことを検証
func TestTryOnHandler_ListLogs_BadRequest(t *testing.T) {
	h := NewTryOnHandler(&mockTryOnService{}, nil)

	for _, target := range []string{
		"/api/tryon/logs",
		"/api/tryon/logs?shop=test-store.myshopify.com&limit=abc",
		"/api/tryon/logs?shop=test-store.myshopify.com&limit=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		h.ListLogs(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
	}
}
