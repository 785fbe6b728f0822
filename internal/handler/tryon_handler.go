package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hikaru/fitgate/internal/middleware"
	"github.com/hikaru/fitgate/internal/model"
	"github.com/hikaru/fitgate/internal/tryon"
)

// TryOnServiceInterface は試着イベントハンドラーが必要とするサービスインターフェース。
type TryOnServiceInterface interface {
	Record(ctx context.Context, event *tryon.Event) (string, error)
	ListRecent(ctx context.Context, shop string, limit int) ([]*model.TryOnLog, error)
}

// TryOnMetrics は試着イベントの記録を集計するメトリクスインターフェース。
type TryOnMetrics interface {
	RecordTryOnEvent(action string)
}

// TryOnHandler は試着イベントのHTTPハンドラー。
type TryOnHandler struct {
	service TryOnServiceInterface
	metrics TryOnMetrics // nil可
}

// NewTryOnHandler はTryOnHandlerを生成する。
func NewTryOnHandler(service TryOnServiceInterface, metrics TryOnMetrics) *TryOnHandler {
	return &TryOnHandler{
		service: service,
		metrics: metrics,
	}
}

// Record は試着イベントを記録する。
// POST /api/tryon/log
func (h *TryOnHandler) Record(w http.ResponseWriter, r *http.Request) {
	var event tryon.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidEventError([]string{"body"}))
		return
	}

	id, err := h.service.Record(r.Context(), &event)
	if err != nil {
		slog.Error("failed to record try-on event",
			slog.String("shop", event.Shop),
			slog.String("error", err.Error()),
		)
		writeAPIError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTryOnEvent(event.Action)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok": true,
		"id": id,
	})
}

// ListLogs は指定ショップの試着イベントを新しい順に返す。
// GET /api/tryon/logs?shop=xxx.myshopify.com&limit=50
func (h *TryOnHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewMissingShopError())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_LIMIT",
				Message:  "limitは0以上の整数で指定してください。",
				Category: model.CategoryValidation,
				Action:   "limitパラメータを修正してください。",
			})
			return
		}
		limit = parsed
	}

	logs, err := h.service.ListRecent(r.Context(), shop, limit)
	if err != nil {
		slog.Error("failed to list try-on events",
			slog.String("shop", shop),
			slog.String("error", err.Error()),
		)
		writeAPIError(w, err)
		return
	}

	type logEntry struct {
		ID         string         `json:"id"`
		Shop       string         `json:"shop"`
		ProductID  string         `json:"productId"`
		ExternalID string         `json:"externalId,omitempty"`
		VariantID  string         `json:"variantId,omitempty"`
		CustomerID string         `json:"customerId,omitempty"`
		Action     string         `json:"action"`
		Metadata   map[string]any `json:"metadata,omitempty"`
		CreatedAt  string         `json:"createdAt"`
	}

	entries := make([]logEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, logEntry{
			ID:         l.ID,
			Shop:       l.Shop,
			ProductID:  l.ProductID,
			ExternalID: l.ExternalID,
			VariantID:  l.VariantID,
			CustomerID: l.CustomerID,
			Action:     l.Action,
			Metadata:   l.Metadata,
			CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
