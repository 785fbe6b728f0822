// Package auth はShopify OAuthフローとトークン永続化を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hikaru/fitgate/internal/model"
	"github.com/hikaru/fitgate/internal/repository"
	"github.com/hikaru/fitgate/internal/shopify"
)

// OAuthProvider は外部認可プロバイダーのインターフェース。
// 同意画面URLの生成、コールバック署名の検証、コード交換を抽象化する。
type OAuthProvider interface {
	// AuthorizeURL は同意画面へのリダイレクトURLを生成する。
	AuthorizeURL(shop, state string) string
	// VerifyCallback はコールバックパラメータの署名を検証する。
	VerifyCallback(params map[string]string) error
	// ExchangeCode は認可コードをアクセストークンに交換する。
	ExchangeCode(ctx context.Context, shop, code string) (*AccessToken, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// DefaultScopes はプロバイダーがscopeを省略した場合のフォールバック値。
	DefaultScopes string
}

// Service はOAuthフローのオーケストレーションを提供する。
type Service struct {
	oauth       OAuthProvider
	sessionRepo repository.ShopSessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	sessionRepo repository.ShopSessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// BeginAuth はshopを検証・正規化し、同意画面へのリダイレクトURLを返す。
// この時点ではトークンストアへの書き込みは行わない。
// 不正なshopの場合は*model.APIError（validationカテゴリ）を返す。
func (s *Service) BeginAuth(shop, state string) (string, error) {
	normalized := shopify.NormalizeShopDomain(shop)
	if normalized == "" {
		return "", model.NewMissingShopError()
	}
	if !shopify.IsValidShopDomain(normalized) {
		return "", model.NewInvalidShopError(normalized)
	}

	return s.oauth.AuthorizeURL(normalized, state), nil
}

// HandleCallback はコールバック署名を検証し、認可コードをトークンに交換して
// ショップセッションをUPSERTする。成功時は正規化済みのshopを返す。
// 失敗時は何も永続化しない（リトライなし、フローの最初からやり直し）。
func (s *Service) HandleCallback(ctx context.Context, params map[string]string) (string, error) {
	shop := shopify.NormalizeShopDomain(params["shop"])
	code := params["code"]

	if !shopify.IsValidShopDomain(shop) || code == "" {
		return "", fmt.Errorf("missing or invalid callback parameters")
	}

	// 1. 署名検証
	if err := s.oauth.VerifyCallback(params); err != nil {
		return "", fmt.Errorf("callback verification failed: %w", err)
	}

	// 2. 認可コードをアクセストークンに交換
	token, err := s.oauth.ExchangeCode(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	// 3. scopeのフォールバック（プロバイダーが省略した場合）
	scope := token.Scope
	if scope == "" {
		scope = s.config.DefaultScopes
	}

	// 4. ショップセッションをUPSERT（再インストール時は上書き）
	session := &model.ShopSession{
		Shop:        shop,
		AccessToken: token.AccessToken,
		Scope:       scope,
		IsOnline:    false, // 本システムはofflineトークンのみ保存する
	}
	if err := s.sessionRepo.Upsert(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist shop session: %w", err)
	}

	slog.Info("shop session saved",
		slog.String("shop", shop),
		slog.String("scope", scope),
		slog.Bool("is_online", session.IsOnline),
	)

	return shop, nil
}
