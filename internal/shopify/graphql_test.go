package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// エンドポイントURLの組み立てを検証
func TestGraphQLClient_Endpoint(t *testing.T) {
	c := NewGraphQLClient(http.DefaultClient, "2025-01")

	got := c.Endpoint("test-store.myshopify.com")
	want := "https://test-store.myshopify.com/admin/api/2025-01/graphql.json"
	if got != want {
		t.Errorf("Endpoint() = %q, want %q", got, want)
	}
}

// アクセストークンヘッダー付きでPOSTし、dataをデコードすることを検証
func TestPostGraphQL_SendsTokenAndDecodesData(t *testing.T) {
	var gotToken, gotContentType string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"value":"hello"}}`))
	}))
	defer server.Close()

	c := NewGraphQLClient(&http.Client{Timeout: 5 * time.Second}, "2025-01")
	c.EndpointOverride = server.URL

	type payload struct {
		Value string `json:"value"`
	}

	resp, err := PostGraphQL[payload](context.Background(), c, "test-store.myshopify.com", "tok_abc", "query { value }", nil)
	if err != nil {
		t.Fatalf("PostGraphQL() error = %v", err)
	}

	if gotToken != "tok_abc" {
		t.Errorf("X-Shopify-Access-Token = %q, want %q", gotToken, "tok_abc")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody["query"] != "query { value }" {
		t.Errorf("request query = %v", gotBody["query"])
	}
	if resp.Data.Value != "hello" {
		t.Errorf("Data.Value = %q, want %q", resp.Data.Value, "hello")
	}
	if len(resp.Errors) != 0 {
		t.Errorf("Errors = %v, want empty", resp.Errors)
	}
}

// GraphQLレベルのエラー配列がそのまま返されることを検証
func TestPostGraphQL_SurfacesErrorsArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Field 'foo' doesn't exist","extensions":{"code":"undefinedField"}}]}`))
	}))
	defer server.Close()

	c := NewGraphQLClient(&http.Client{Timeout: 5 * time.Second}, "2025-01")
	c.EndpointOverride = server.URL

	resp, err := PostGraphQL[map[string]any](context.Background(), c, "test-store.myshopify.com", "tok_abc", "query { foo }", nil)
	if err != nil {
		t.Fatalf("PostGraphQL() error = %v", err)
	}
	if len(resp.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(resp.Errors))
	}
	if resp.Errors[0].Extensions.Code != "undefinedField" {
		t.Errorf("Extensions.Code = %q", resp.Errors[0].Extensions.Code)
	}
}

// HTTPレベルの失敗はエラーになることを検証
func TestPostGraphQL_NonOKStatus_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewGraphQLClient(&http.Client{Timeout: 5 * time.Second}, "2025-01")
	c.EndpointOverride = server.URL

	_, err := PostGraphQL[map[string]any](context.Background(), c, "test-store.myshopify.com", "bad_token", "query { shop }", nil)
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
