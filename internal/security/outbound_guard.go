package security

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// OutboundGuardService はSSRF防止機能のインターフェースを定義する。
// トークン交換とAdmin GraphQL呼び出しの接続先ホストはリクエスト入力
// （shopパラメータ）に由来するため、すべての外向きHTTPはこのガードを通す。
type OutboundGuardService interface {
	// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
	// safeurlライブラリにより、プライベートIP、ループバック、リンクローカル、
	// メタデータIPへのリクエストが自動的にブロックされる。
	// DNS再バインディング攻撃への対策も有効化される。
	NewSafeClient(timeout time.Duration) *http.Client
}

// outboundGuard はOutboundGuardServiceの実装。
type outboundGuard struct{}

// NewOutboundGuard はOutboundGuardServiceの新しいインスタンスを生成する。
func NewOutboundGuard() *outboundGuard {
	return &outboundGuard{}
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// Shopify Admin APIはHTTPSのみのため、許可スキームはhttps、許可ポートは443に限定する。
// safeurlはnet.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// DNS再バインディング攻撃にも対応している。
func (g *outboundGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("https").
		SetAllowedPorts(443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// compile-time interface check
var _ OutboundGuardService = (*outboundGuard)(nil)
