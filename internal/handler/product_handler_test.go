package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hikaru/fitgate/internal/model"
)

// mockProductService はProductServiceInterfaceのモック
type mockProductService struct {
	listProductsFunc func(ctx context.Context, shop string) ([]model.Product, error)
}

func (m *mockProductService) ListProducts(ctx context.Context, shop string) ([]model.Product, error) {
	return m.listProductsFunc(ctx, shop)
}

// 商品一覧をJSON配列で返すことを検証
func TestProductHandler_List_Success(t *testing.T) {
	service := &mockProductService{
		listProductsFunc: func(ctx context.Context, shop string) ([]model.Product, error) {
			return []model.Product{
				{
					ID:        "gid://shopify/Product/1",
					Title:     "Denim Jacket",
					Status:    "ACTIVE",
					UpdatedAt: "2026-08-01T00:00:00Z",
					Variants: []model.ProductVariant{
						{ID: "gid://shopify/ProductVariant/11", Title: "S", SKU: "DJ-S"},
					},
					Metafields: []model.ProductMetafield{
						{Key: "fit_model", Value: "model-v2"},
					},
				},
			}, nil
		},
	}
	h := NewProductHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/products?shop=test-store.myshopify.com", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var products []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("body is not a JSON array: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("len(products) = %d", len(products))
	}
	if products[0]["title"] != "Denim Jacket" {
		t.Errorf("title = %v", products[0]["title"])
	}
	if products[0]["updatedAt"] != "2026-08-01T00:00:00Z" {
		t.Errorf("updatedAt = %v", products[0]["updatedAt"])
	}
}

// shop欠落で400を返すことを検証
func TestProductHandler_List_MissingShop(t *testing.T) {
	h := NewProductHandler(&mockProductService{})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// トークン未保存で401を返すことを検証
func TestProductHandler_List_ShopNotInstalled(t *testing.T) {
	service := &mockProductService{
		listProductsFunc: func(ctx context.Context, shop string) ([]model.Product, error) {
			return nil, model.NewShopNotInstalledError(shop)
		},
	}
	h := NewProductHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/products?shop=test-store.myshopify.com", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["code"] != model.ErrCodeShopNotInstalled {
		t.Errorf("code = %q", body["code"])
	}
	if body["action"] == "" {
		t.Error("action should instruct reinstallation")
	}
}

// アップストリームGraphQLエラーで500を返すことを検証
func TestProductHandler_List_UpstreamError(t *testing.T) {
	service := &mockProductService{
		listProductsFunc: func(ctx context.Context, shop string) ([]model.Product, error) {
			return nil, model.NewUpstreamGraphQLError("Access denied for products")
		},
	}
	h := NewProductHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/products?shop=test-store.myshopify.com", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// 予期しないエラーで詳細を漏らさない500を返すことを検証
func TestProductHandler_List_UnexpectedError(t *testing.T) {
	service := &mockProductService{
		listProductsFunc: func(ctx context.Context, shop string) ([]model.Product, error) {
			return nil, errors.New("pq: connection refused")
		},
	}
	h := NewProductHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/products?shop=test-store.myshopify.com", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["code"] != "INTERNAL_ERROR" {
		t.Errorf("code = %q", body["code"])
	}
}
