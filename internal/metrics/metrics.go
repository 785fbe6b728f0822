// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordProxyError()
	RecordOAuthCallback(result string)
	RecordTryOnEvent(action string)
	ObserveGraphQLDuration(d time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	proxyErrors     prometheus.Counter
	oauthCallbacks  *prometheus.CounterVec
	tryonEvents     *prometheus.CounterVec
	graphqlDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitgate_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		proxyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitgate_proxy_errors_total",
			Help: "アップストリームUIサーバーへのプロキシ失敗の合計数",
		}),
		oauthCallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitgate_oauth_callbacks_total",
			Help: "OAuthコールバック処理の結果別合計数",
		}, []string{"result"}),
		tryonEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitgate_tryon_events_total",
			Help: "記録された試着イベントのアクション別合計数",
		}, []string{"action"}),
		graphqlDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fitgate_graphql_duration_seconds",
			Help:    "Admin GraphQL呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.proxyErrors,
		c.oauthCallbacks,
		c.tryonEvents,
		c.graphqlDuration,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordProxyError はアップストリームへのプロキシ失敗を記録する。
func (c *Collector) RecordProxyError() {
	c.proxyErrors.Inc()
}

// RecordOAuthCallback はOAuthコールバックの結果（success / failure）を記録する。
func (c *Collector) RecordOAuthCallback(result string) {
	c.oauthCallbacks.WithLabelValues(result).Inc()
}

// RecordTryOnEvent は試着イベントの記録をアクション別にカウントする。
func (c *Collector) RecordTryOnEvent(action string) {
	c.tryonEvents.WithLabelValues(action).Inc()
}

// ObserveGraphQLDuration はAdmin GraphQL呼び出しのレイテンシを記録する。
func (c *Collector) ObserveGraphQLDuration(d time.Duration) {
	c.graphqlDuration.Observe(d.Seconds())
}

// Handler はPrometheusメトリクスを公開するHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
