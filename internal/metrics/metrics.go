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
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordUserCreated()
	RecordPostCreated()
	RecordRelationChange(relation, action string, applied bool)
	RecordHTTPStatus(statusCode int)
	RecordStoreLatency(op string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	usersCreated    prometheus.Counter
	postsCreated    prometheus.Counter
	relationChanges *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simplesocial_users_created_total",
			Help: "作成されたユーザーの合計数",
		}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simplesocial_posts_created_total",
			Help: "作成された投稿の合計数",
		}),
		relationChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplesocial_relation_changes_total",
			Help: "関係トグル操作の合計数（result: applied=状態遷移あり, noop=既にその状態）",
		}, []string{"relation", "action", "result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplesocial_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simplesocial_store_query_duration_seconds",
			Help:    "ストア操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.usersCreated,
		c.postsCreated,
		c.relationChanges,
		c.httpStatus,
		c.storeLatency,
	)

	return c
}

// RecordUserCreated はユーザー作成を記録する。
func (c *Collector) RecordUserCreated() {
	c.usersCreated.Inc()
}

// RecordPostCreated は投稿作成を記録する。
func (c *Collector) RecordPostCreated() {
	c.postsCreated.Inc()
}

// RecordRelationChange は関係トグル操作の結果を記録する。
func (c *Collector) RecordRelationChange(relation, action string, applied bool) {
	result := "noop"
	if applied {
		result = "applied"
	}
	c.relationChanges.WithLabelValues(relation, action, result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordStoreLatency はストア操作のレイテンシを記録する。
func (c *Collector) RecordStoreLatency(op string, duration time.Duration) {
	c.storeLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使用する。
type Nop struct{}

func (Nop) RecordUserCreated()                        {}
func (Nop) RecordPostCreated()                        {}
func (Nop) RecordRelationChange(string, string, bool) {}
func (Nop) RecordHTTPStatus(int)                      {}
func (Nop) RecordStoreLatency(string, time.Duration)  {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
