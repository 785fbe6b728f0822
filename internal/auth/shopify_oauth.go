package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ShopifyOAuthConfig はShopify OAuthプロバイダーの設定。
type ShopifyOAuthConfig struct {
	APIKey      string
	APISecret   string
	Scopes      string // カンマ区切り
	RedirectURL string // コールバックの絶対URL

	// HTTPClient はトークン交換に使用するクライアント。
	// 接続先ホストはshopパラメータに由来するため、SSRFガード付きクライアントを渡すこと。
	HTTPClient *http.Client

	// テスト用にオーバーライド可能なトークンエンドポイントURL。
	// 空の場合は "https://{shop}/admin/oauth/access_token" を使用する。
	TokenURLOverride string
}

// ShopifyOAuthProvider はShopifyの3-legged OAuthを提供する。
type ShopifyOAuthProvider struct {
	config ShopifyOAuthConfig
}

// NewShopifyOAuthProvider はShopifyOAuthProviderを生成する。
func NewShopifyOAuthProvider(config ShopifyOAuthConfig) *ShopifyOAuthProvider {
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &ShopifyOAuthProvider{config: config}
}

// AuthorizeURL はショップの同意画面へのリダイレクトURLを生成する。
// grant_optionsを指定しないため、発行されるのはofflineトークンとなる。
func (p *ShopifyOAuthProvider) AuthorizeURL(shop, state string) string {
	params := url.Values{
		"client_id":    {p.config.APIKey},
		"scope":        {p.config.Scopes},
		"redirect_uri": {p.config.RedirectURL},
		"state":        {state},
	}
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, params.Encode())
}

// VerifyCallback はコールバッククエリパラメータのHMAC署名を検証する。
// hmacとsignatureを除くパラメータをキー昇順で連結し、APIシークレットで
// HMAC-SHA256を計算して定数時間比較する。
func (p *ShopifyOAuthProvider) VerifyCallback(params map[string]string) error {
	provided := strings.TrimSpace(params["hmac"])
	if provided == "" {
		return fmt.Errorf("missing hmac parameter")
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	msg := strings.Join(parts, "&")

	mac := hmac.New(sha256.New, []byte(p.config.APISecret))
	_, _ = mac.Write([]byte(msg))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(provided))) {
		return fmt.Errorf("hmac verification failed")
	}
	return nil
}

// tokenResponse はトークンエンドポイントのレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// AccessToken はトークン交換の結果を表す。
type AccessToken struct {
	AccessToken string
	Scope       string
}

// ExchangeCode は認可コードをアクセストークンに交換する。
func (p *ShopifyOAuthProvider) ExchangeCode(ctx context.Context, shop, code string) (*AccessToken, error) {
	tokenURL := p.config.TokenURLOverride
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://%s/admin/oauth/access_token", shop)
	}

	body, err := json.Marshal(map[string]string{
		"client_id":     p.config.APIKey,
		"client_secret": p.config.APISecret,
		"code":          code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}

	return &AccessToken{
		AccessToken: tok.AccessToken,
		Scope:       tok.Scope,
	}, nil
}

// compile-time interface check
var _ OAuthProvider = (*ShopifyOAuthProvider)(nil)
