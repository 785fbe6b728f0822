package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GraphQLError はAdmin GraphQLレスポンスのerrors配列の1要素を表す。
type GraphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

// GraphQLResponse はAdmin GraphQLレスポンスの共通形。
// errorsが非空の場合、dataは不完全とみなす。
type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// GraphQLClient はAdmin GraphQLエンドポイントへのPOSTを行うクライアント。
// httpClientにはSSRFガード付きクライアントを渡すこと（接続先ホストは
// リクエスト入力に由来する）。
type GraphQLClient struct {
	httpClient *http.Client
	apiVersion string

	// テスト用にオーバーライド可能なエンドポイントURL。
	// 空の場合は "https://{shop}/admin/api/{version}/graphql.json" を使用する。
	EndpointOverride string
}

// NewGraphQLClient はGraphQLClientを生成する。
func NewGraphQLClient(httpClient *http.Client, apiVersion string) *GraphQLClient {
	return &GraphQLClient{
		httpClient: httpClient,
		apiVersion: apiVersion,
	}
}

// Endpoint は指定ショップのAdmin GraphQLエンドポイントURLを返す。
func (c *GraphQLClient) Endpoint(shop string) string {
	if c.EndpointOverride != "" {
		return c.EndpointOverride
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, c.apiVersion)
}

// PostGraphQL はAdmin GraphQLエンドポイントにクエリをPOSTし、
// レスポンスをデコードして返す。HTTPレベルの失敗とデコード失敗はエラーを返し、
// GraphQLレベルのエラー（errors配列）は呼び出し側で判定する。
func PostGraphQL[T any](ctx context.Context, c *GraphQLClient, shop, accessToken, query string, variables map[string]any) (*GraphQLResponse[T], error) {
	body := map[string]any{"query": query}
	if variables != nil {
		body["variables"] = variables
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(shop), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graphql response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graphql request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var out GraphQLResponse[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse graphql response: %w", err)
	}

	return &out, nil
}
