// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// Webhookイベント、台帳トランザクション、プロバイダ呼び出しを記録する。
type Collector struct {
	webhookEvents   *prometheus.CounterVec
	txCreated       prometheus.Counter
	txConfirmed     prometheus.Counter
	txFailed        prometheus.Counter
	providerStatus  *prometheus.CounterVec
	providerLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitbounty_webhook_events_total",
			Help: "受信したWebhookイベントのアクション別合計数",
		}, []string{"action"}),
		txCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitbounty_transactions_created_total",
			Help: "作成した報奨金トランザクションの合計数",
		}),
		txConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitbounty_transactions_confirmed_total",
			Help: "確定した報奨金トランザクションの合計数",
		}),
		txFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitbounty_transactions_failed_total",
			Help: "失敗にした報奨金トランザクションの合計数",
		}),
		providerStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitbounty_provider_status_total",
			Help: "台帳プロバイダ応答のHTTPステータスコード別合計数",
		}, []string{"status_code"}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gitbounty_provider_latency_seconds",
			Help:    "台帳プロバイダ呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.webhookEvents,
		c.txCreated,
		c.txConfirmed,
		c.txFailed,
		c.providerStatus,
		c.providerLatency,
	)

	return c
}

// RecordWebhookEvent は受信したWebhookイベントをアクション別に記録する。
func (c *Collector) RecordWebhookEvent(action string) {
	c.webhookEvents.WithLabelValues(action).Inc()
}

// RecordTransactionCreated はトランザクション作成を記録する。
func (c *Collector) RecordTransactionCreated() {
	c.txCreated.Inc()
}

// RecordTransactionConfirmed はトランザクション確定を記録する。
func (c *Collector) RecordTransactionConfirmed() {
	c.txConfirmed.Inc()
}

// RecordTransactionFailed はトランザクション失敗を記録する。
func (c *Collector) RecordTransactionFailed() {
	c.txFailed.Inc()
}

// RecordProviderCall は台帳プロバイダ呼び出しの結果を記録する。
func (c *Collector) RecordProviderCall(statusCode int, duration time.Duration) {
	c.providerStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.providerLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
