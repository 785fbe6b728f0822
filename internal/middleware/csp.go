package middleware

import (
	"net/http"
	"strings"
)

// EnvMode はCSPポリシー選択のための実行モード。
type EnvMode string

const (
	// EnvDevelopment はトンネル経由の開発モード。緩和されたCSPを適用する。
	EnvDevelopment EnvMode = "development"
	// EnvProduction は本番モード。厳格なCSPを適用する。
	EnvProduction EnvMode = "production"
)

// 開発モードのCSP。トンネル（ngrok）配信のassetsとHMRのための
// unsafe-eval / wss を許可する。
var developmentPolicy = strings.Join([]string{
	"default-src 'self' https:",
	"img-src 'self' data: https:",
	"style-src 'self' 'unsafe-inline' https:",
	"script-src 'self' 'unsafe-inline' 'unsafe-eval' https:",
	"font-src 'self' data: https://assets.ngrok.com https://cdn.ngrok.com https:",
	"connect-src 'self' https: wss:",
	"frame-ancestors https://admin.shopify.com https://*.myshopify.com",
	"frame-src https://admin.shopify.com https://*.myshopify.com",
}, "; ")

// 本番モードのCSP。unsafe-evalとインラインスクリプトを許可しない。
var productionPolicy = strings.Join([]string{
	"default-src 'self' https:",
	"img-src 'self' data: https:",
	"style-src 'self' 'unsafe-inline' https:",
	"script-src 'self' https:",
	"font-src 'self' data: https:",
	"connect-src 'self' https: wss:",
	"frame-ancestors https://admin.shopify.com https://*.myshopify.com",
	"frame-src https://admin.shopify.com https://*.myshopify.com",
}, "; ")

// SelectPolicy は実行モードに対応するCSPポリシー文字列を返す。
// どちらのモードでもframe-ancestorsはShopify管理画面のオリジンに限定される。
func SelectPolicy(mode EnvMode) string {
	if mode == EnvDevelopment {
		return developmentPolicy
	}
	return productionPolicy
}

// NewCSPMiddleware はすべてのレスポンス（プロキシ転送を含む）に
// Content-Security-Policyヘッダーを付与するミドルウェアを返す。
// tunneledがtrueの場合、ngrokの警告ページをスキップするヘッダーも付与する。
func NewCSPMiddleware(mode EnvMode, tunneled bool) func(next http.Handler) http.Handler {
	policy := SelectPolicy(mode)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// ハンドラーがWriteHeaderを呼ぶ前に設定する必要がある
			w.Header().Set("Content-Security-Policy", policy)
			if tunneled {
				w.Header().Set("ngrok-skip-browser-warning", "true")
			}
			next.ServeHTTP(w, r)
		})
	}
}
