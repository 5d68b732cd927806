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
// サービス層およびHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordMeetingCreated()
	RecordMeetingUpdated()
	RecordMeetingDeleted()
	RecordDeleteCompensation()
	RecordRegistration()
	RecordUnregistration()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	meetingsCreated prometheus.Counter
	meetingsUpdated prometheus.Counter
	meetingsDeleted prometheus.Counter
	deleteComp      prometheus.Counter
	registrations   prometheus.Counter
	unregistrations prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetman_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		meetingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_meetings_created_total",
			Help: "作成されたミーティングの合計数",
		}),
		meetingsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_meetings_updated_total",
			Help: "更新されたミーティングの合計数",
		}),
		meetingsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_meetings_deleted_total",
			Help: "削除されたミーティングの合計数",
		}),
		deleteComp: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_delete_compensations_total",
			Help: "削除失敗時にメンバー再登録の補償処理が走った合計数",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_registrations_total",
			Help: "ミーティングへのユーザー登録の合計数",
		}),
		unregistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_unregistrations_total",
			Help: "ミーティング登録解除の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.meetingsCreated,
		c.meetingsUpdated,
		c.meetingsDeleted,
		c.deleteComp,
		c.registrations,
		c.unregistrations,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordMeetingCreated はミーティング作成を記録する。
func (c *Collector) RecordMeetingCreated() {
	c.meetingsCreated.Inc()
}

// RecordMeetingUpdated はミーティング更新を記録する。
func (c *Collector) RecordMeetingUpdated() {
	c.meetingsUpdated.Inc()
}

// RecordMeetingDeleted はミーティング削除を記録する。
func (c *Collector) RecordMeetingDeleted() {
	c.meetingsDeleted.Inc()
}

// RecordDeleteCompensation は削除失敗時の補償処理実行を記録する。
func (c *Collector) RecordDeleteCompensation() {
	c.deleteComp.Inc()
}

// RecordRegistration はミーティングへのユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordUnregistration はミーティング登録解除を記録する。
func (c *Collector) RecordUnregistration() {
	c.unregistrations.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
