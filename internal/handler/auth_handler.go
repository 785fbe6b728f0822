// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hikaru/fitgate/internal/middleware"
	"github.com/hikaru/fitgate/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	BeginAuth(shop, state string) (string, error)
	HandleCallback(ctx context.Context, params map[string]string) (string, error)
}

// OAuthMetrics はOAuthコールバックの結果を記録するメトリクスインターフェース。
type OAuthMetrics interface {
	RecordOAuthCallback(result string)
}

// AuthHandler はShopify OAuth関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics OAuthMetrics // nil可
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, metrics OAuthMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// Begin はOAuthフローを開始し、同意画面へリダイレクトする。
// GET /api/auth?shop=xxx.myshopify.com
func (h *AuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewMissingShopError())
		return
	}

	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	consentURL, err := h.service.BeginAuth(shop, state)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	// stateをCookieに保存（CSRF対策）。
	// 埋め込みアプリのためSecure + SameSite=Noneが必要。
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	http.Redirect(w, r, consentURL, http.StatusFound)
}

// Callback はOAuthコールバックを処理し、成功時に管理画面へリダイレクトする。
// GET /api/auth/callback?shop=xxx&code=yyy&state=zzz&hmac=...
// 失敗時はプロバイダー内部の詳細を漏らさない不透明な500を返す。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("query_state", state),
		)
		h.recordCallback("failure")
		middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewOAuthFailedError())
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	// 2. クエリパラメータをすべて集めて検証・交換へ渡す
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	shop, err := h.service.HandleCallback(r.Context(), params)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		h.recordCallback("failure")
		middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewOAuthFailedError())
		return
	}

	h.recordCallback("success")

	// 3. 管理画面ダッシュボードへリダイレクト
	http.Redirect(w, r, "/admin?shop="+shop, http.StatusFound)
}

func (h *AuthHandler) recordCallback(result string) {
	if h.metrics != nil {
		h.metrics.RecordOAuthCallback(result)
	}
}

// writeAPIError は*model.APIErrorをカテゴリに応じたステータスコードで書き込む。
// それ以外のエラーは詳細をログのみに記録し、一般的な500を返す。
func writeAPIError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("unexpected error", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	status := http.StatusInternalServerError
	switch apiErr.Category {
	case model.CategoryValidation:
		status = http.StatusBadRequest
	case model.CategoryAuth:
		status = http.StatusUnauthorized
	}

	middleware.WriteErrorResponse(w, status, apiErr)
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
