// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Shopify API
	APIKey     string
	APISecret  string
	Scopes     string // カンマ区切りのスコープリスト
	APIVersion string

	// 公開ホスト名（スキームなし）。OAuthコールバックURLの構築と
	// トンネル環境（ngrok）判定に使用する。
	Host string

	// Reverse Proxy
	UpstreamTarget string // UIレンダラープロセスのURL

	// Server
	ServerPort string

	// 環境モード。"development"の場合は開発用CSPを強制する。
	AppEnv string

	// Outbound
	GraphQLTimeout time.Duration

	// Rate Limit（req/min/shop）
	RateLimitAPI int
}

// IsDevelopmentLike は開発相当環境（トンネル経由または明示的なdevelopment指定）
// かどうかを返す。CSPポリシーの選択に使用する。
func (c *Config) IsDevelopmentLike() bool {
	return strings.Contains(c.Host, "ngrok") || c.AppEnv == "development"
}

// CallbackURL はOAuthコールバックの絶対URLを返す。
func (c *Config) CallbackURL() string {
	return "https://" + c.Host + "/api/auth/callback"
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（ローカル開発用）。
// 必須環境変数が未設定の場合は欠落している変数名をすべて列挙したエラーを返す。
func Load() (*Config, error) {
	// .envはローカル開発専用のため、存在しなくてもエラーにしない
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.APIKey = os.Getenv("SHOPIFY_API_KEY")
	if cfg.APIKey == "" {
		missing = append(missing, "SHOPIFY_API_KEY")
	}

	cfg.APISecret = os.Getenv("SHOPIFY_API_SECRET")
	if cfg.APISecret == "" {
		missing = append(missing, "SHOPIFY_API_SECRET")
	}

	cfg.Scopes = os.Getenv("SCOPES")
	if cfg.Scopes == "" {
		missing = append(missing, "SCOPES")
	}

	cfg.Host = normalizeHost(os.Getenv("HOST"))
	if cfg.Host == "" {
		missing = append(missing, "HOST")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.APIVersion = getEnvString("SHOPIFY_API_VERSION", "2025-01")
	cfg.UpstreamTarget = getEnvString("UPSTREAM_TARGET", "http://127.0.0.1:3000")
	cfg.ServerPort = getEnvString("SERVER_PORT", "3001")
	cfg.AppEnv = getEnvString("APP_ENV", "production")
	cfg.GraphQLTimeout = getEnvDuration("GRAPHQL_TIMEOUT", 10*time.Second)
	cfg.RateLimitAPI = getEnvInt("RATE_LIMIT_API", 120)

	return cfg, nil
}

// normalizeHost はHOSTからスキームと末尾スラッシュを除去する。
// 公開URLをそのまま設定しても動作するようにするための救済措置。
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
