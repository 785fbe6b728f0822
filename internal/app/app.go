// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hikaru/fitgate/internal/auth"
	"github.com/hikaru/fitgate/internal/config"
	"github.com/hikaru/fitgate/internal/database"
	"github.com/hikaru/fitgate/internal/handler"
	"github.com/hikaru/fitgate/internal/logger"
	"github.com/hikaru/fitgate/internal/metrics"
	"github.com/hikaru/fitgate/internal/middleware"
	"github.com/hikaru/fitgate/internal/product"
	"github.com/hikaru/fitgate/internal/proxy"
	"github.com/hikaru/fitgate/internal/repository"
	"github.com/hikaru/fitgate/internal/security"
	"github.com/hikaru/fitgate/internal/shopify"
	"github.com/hikaru/fitgate/internal/tryon"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "3001"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("host", cfg.Host),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はゲートウェイサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	sessionRepo := repository.NewPostgresShopSessionRepo(db)
	tryonRepo := repository.NewPostgresTryOnLogRepo(db)

	// 3. セキュリティサービスの初期化
	outboundGuard := security.NewOutboundGuard()
	sanitizer := security.NewEventSanitizer()

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. ドメインサービスの初期化
	// トークン交換とGraphQLの接続先ホストはshopパラメータ由来のため、
	// 外向きHTTPはすべてSSRFガード付きクライアントを使う
	safeClient := outboundGuard.NewSafeClient(cfg.GraphQLTimeout)

	oauthProvider := auth.NewShopifyOAuthProvider(auth.ShopifyOAuthConfig{
		APIKey:      cfg.APIKey,
		APISecret:   cfg.APISecret,
		Scopes:      cfg.Scopes,
		RedirectURL: cfg.CallbackURL(),
		HTTPClient:  safeClient,
	})
	authService := auth.NewService(oauthProvider, sessionRepo, auth.ServiceConfig{
		DefaultScopes: cfg.Scopes,
	})

	gqlClient := shopify.NewGraphQLClient(safeClient, cfg.APIVersion)
	productService := product.NewService(sessionRepo, gqlClient, collector)

	tryonService := tryon.NewService(tryonRepo, sanitizer)

	// 6. UIレンダラーへのプロキシ
	upstreamURL, err := url.Parse(cfg.UpstreamTarget)
	if err != nil {
		return fmt.Errorf("invalid UPSTREAM_TARGET: %w", err)
	}
	uiProxy := proxy.New(upstreamURL, proxy.DefaultRules, collector)

	// 7. ルーターの構築
	envMode := middleware.EnvProduction
	if cfg.IsDevelopmentLike() {
		envMode = middleware.EnvDevelopment
	}

	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitAPI))
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:      slog.Default(),
		EnvMode:     envMode,
		Tunneled:    cfg.IsDevelopmentLike(),
		RateLimiter: rateLimiter,

		AuthService:    authService,
		ProductService: productService,
		TryOnService:   tryonService,

		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),

		Proxy: uiProxy,
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("gateway server starting",
			slog.String("addr", server.Addr),
			slog.String("upstream", cfg.UpstreamTarget),
			slog.String("env_mode", string(envMode)),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down gateway server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("gateway server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
