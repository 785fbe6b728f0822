package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hikaru/fitgate/internal/metrics"
	"github.com/hikaru/fitgate/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger      *slog.Logger
	EnvMode     middleware.EnvMode
	Tunneled    bool // HOSTがngrokトンネルの場合true
	RateLimiter *middleware.RateLimiter

	// サービス
	AuthService    AuthServiceInterface
	ProductService ProductServiceInterface
	TryOnService   TryOnServiceInterface

	// 観測
	Metrics        *metrics.Collector // nil可
	MetricsHandler http.Handler       // /metricsを提供するハンドラー。nil可

	// UIレンダラーへのプロキシ。マッチしないパスには404を返す。
	Proxy http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CSP → Logging
//
// CSPはプロキシ転送を含むすべてのレスポンスに適用される。
// レート制限は/api/authと/api/productsのみに適用し、試着イベントの
// 記録ルートには適用しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	var statusRecorder middleware.StatusRecorder
	var oauthMetrics OAuthMetrics
	var tryonMetrics TryOnMetrics
	if deps.Metrics != nil {
		statusRecorder = deps.Metrics
		oauthMetrics = deps.Metrics
		tryonMetrics = deps.Metrics
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCSPMiddleware(deps.EnvMode, deps.Tunneled))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, statusRecorder))

	authHandler := NewAuthHandler(deps.AuthService, oauthMetrics)
	productHandler := NewProductHandler(deps.ProductService)
	tryonHandler := NewTryOnHandler(deps.TryOnService, tryonMetrics)

	// ヘルスチェック（死活監視用、依存なし）
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ルートは管理画面へ誘導する
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusFound)
	})

	// --- レート制限付きAPIルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware())

		r.Get("/api/auth", authHandler.Begin)
		r.Get("/api/auth/callback", authHandler.Callback)
		r.Get("/api/products", productHandler.List)
		r.Get("/api/tryon/logs", tryonHandler.ListLogs)
	})

	// 試着イベントの記録はレート制限なし（ウィジェットからのバーストを許容）
	r.Post("/api/tryon/log", tryonHandler.Record)

	// Prometheusスクレイプ
	if deps.MetricsHandler != nil {
		r.Get("/metrics", deps.MetricsHandler.ServeHTTP)
	}

	// 上記にマッチしないパスはUIレンダラーへのプロキシに委ねる
	r.NotFound(deps.Proxy.ServeHTTP)

	return r
}
