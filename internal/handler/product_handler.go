package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hikaru/fitgate/internal/middleware"
	"github.com/hikaru/fitgate/internal/model"
)

// ProductServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type ProductServiceInterface interface {
	ListProducts(ctx context.Context, shop string) ([]model.Product, error)
}

// ProductHandler は商品取得のHTTPハンドラー。
type ProductHandler struct {
	service ProductServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// List は商品一覧をJSON配列で返す。
// GET /api/products?shop=xxx.myshopify.com
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewMissingShopError())
		return
	}

	products, err := h.service.ListProducts(r.Context(), shop)
	if err != nil {
		slog.Error("failed to list products",
			slog.String("shop", shop),
			slog.String("error", err.Error()),
		)
		writeAPIError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}
