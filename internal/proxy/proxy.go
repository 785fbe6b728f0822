// Package proxy は管理画面UIを配信するアップストリームプロセスへの
// リバースプロキシを提供する。
package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/hikaru/fitgate/internal/middleware"
	"github.com/hikaru/fitgate/internal/model"
)

// Rule はプロキシ転送の対象となるパスのルール。
// Exactがfalseの場合はサブツリー（Pathそのものと配下すべて）にマッチする。
type Rule struct {
	Path  string
	Exact bool
}

// DefaultRules はUIレンダラーへ転送するパスのルール表。
// 管理画面、ウィジェット、およびNext.jsのビルド済みアセット群を含む。
// 先頭から順に評価され、最初にマッチしたルールが適用される。
var DefaultRules = []Rule{
	{Path: "/admin"},
	{Path: "/widget"},
	{Path: "/_next"},
	{Path: "/__nextjs_font"},
	{Path: "/favicon.ico", Exact: true},
}

// Match はパスがいずれかのルールにマッチするかを返す。
func Match(rules []Rule, path string) bool {
	for _, rule := range rules {
		if rule.Exact {
			if path == rule.Path {
				return true
			}
			continue
		}
		if path == rule.Path || strings.HasPrefix(path, rule.Path+"/") {
			return true
		}
	}
	return false
}

// ErrorRecorder はプロキシ失敗を記録するメトリクスインターフェース。
type ErrorRecorder interface {
	RecordProxyError()
}

// Handler はルール表にマッチしたリクエストをアップストリームへ転送する。
// マッチしないパスには404を返す。
type Handler struct {
	rules    []Rule
	rp       *httputil.ReverseProxy
	recorder ErrorRecorder // nil可
}

// New は指定アップストリームへのプロキシハンドラーを生成する。
// Hostヘッダーはアップストリームのホストに書き換える（change-origin）。
// アップストリームのNext.js開発サーバーは自ホスト宛て以外のHostを拒否するため。
func New(target *url.URL, rules []Rule, recorder ErrorRecorder) *Handler {
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
		},
	}

	h := &Handler{
		rules:    rules,
		rp:       rp,
		recorder: recorder,
	}

	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Error("proxy request failed",
			slog.String("path", r.URL.Path),
			slog.String("upstream", target.String()),
			slog.Any("error", err),
		)
		if h.recorder != nil {
			h.recorder.RecordProxyError()
		}
		middleware.WriteErrorResponse(w, http.StatusBadGateway, model.NewProxyUnavailableError())
	}

	return h
}

// Matches はパスがこのハンドラーの転送対象かを返す。
func (h *Handler) Matches(path string) bool {
	return Match(h.rules, path)
}

// ServeHTTP はマッチしたリクエストをアップストリームへ転送する。
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.Matches(r.URL.Path) {
		http.NotFound(w, r)
		return
	}
	h.rp.ServeHTTP(w, r)
}
