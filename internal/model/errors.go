package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, upstream, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryAuth       = "auth"
	CategoryValidation = "validation"
	CategoryUpstream   = "upstream"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeMissingShop      = "MISSING_SHOP"
	ErrCodeInvalidShop      = "INVALID_SHOP"
	ErrCodeShopNotInstalled = "SHOP_NOT_INSTALLED"
	ErrCodeOAuthFailed      = "OAUTH_FAILED"
	ErrCodeInvalidEvent     = "INVALID_EVENT"
	ErrCodeUpstreamGraphQL  = "UPSTREAM_GRAPHQL_ERROR"
	ErrCodeProxyUnavailable = "PROXY_UNAVAILABLE"
)

// NewMissingShopError はshopパラメータ欠落エラーを生成する。
func NewMissingShopError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingShop,
		Message:  "shopパラメータが指定されていません。",
		Category: CategoryValidation,
		Action:   "?shop=<your-store>.myshopify.com を指定してください。",
	}
}

// NewInvalidShopError は不正なショップドメインエラーを生成する。
func NewInvalidShopError(shop string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidShop,
		Message:  fmt.Sprintf("無効なショップドメインです: %s", shop),
		Category: CategoryValidation,
		Action:   "<your-store>.myshopify.com 形式のドメインを指定してください。",
	}
}

// NewShopNotInstalledError はトークン未保存（未インストール）エラーを生成する。
func NewShopNotInstalledError(shop string) *APIError {
	return &APIError{
		Code:     ErrCodeShopNotInstalled,
		Message:  fmt.Sprintf("このショップのセッションがありません: %s", shop),
		Category: CategoryAuth,
		Action:   "アプリを再インストールして認証をやり直してください。",
	}
}

// NewOAuthFailedError はOAuthフロー失敗エラーを生成する。
// プロバイダー内部の詳細はログのみに記録し、クライアントには開示しない。
func NewOAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthFailed,
		Message:  "OAuth認証に失敗しました。",
		Category: CategoryUpstream,
		Action:   "インストールを最初からやり直してください。",
	}
}

// NewInvalidEventError は試着イベントの必須フィールド欠落エラーを生成する。
func NewInvalidEventError(missing []string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEvent,
		Message:  fmt.Sprintf("必須フィールドが欠落しています: %v", missing),
		Category: CategoryValidation,
		Action:   "shop, productId, action をすべて指定してください。",
	}
}

// NewUpstreamGraphQLError はAdmin GraphQL APIがエラーを返した場合のエラーを生成する。
func NewUpstreamGraphQLError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamGraphQL,
		Message:  fmt.Sprintf("Admin APIがエラーを返しました: %s", detail),
		Category: CategoryUpstream,
		Action:   "アクセススコープとAPIバージョンを確認してください。",
	}
}

// NewProxyUnavailableError はアップストリームUIプロセス到達不能エラーを生成する。
func NewProxyUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeProxyUnavailable,
		Message:  "アップストリームUIサーバーに接続できません。",
		Category: CategorySystem,
		Action:   "しばらく待ってから再度お試しください。",
	}
}
