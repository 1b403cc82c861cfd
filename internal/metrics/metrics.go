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
// サービス層・ミドルウェア・ワーカーから利用する。
type MetricsCollector interface {
	RecordSignup(method string)
	RecordOpportunityCreated(kind string)
	RecordOpportunityTransition(status string)
	RecordRSVP(outcome string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSessionsPurged(count int)
}

// RSVPの結果ラベル
const (
	RSVPOutcomeAdded     = "added"
	RSVPOutcomeFull      = "full"
	RSVPOutcomeDuplicate = "duplicate"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signups        *prometheus.CounterVec
	oppsCreated    *prometheus.CounterVec
	oppTransitions *prometheus.CounterVec
	rsvps          *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	sessionsPurged prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentafamily_signups_total",
			Help: "登録方法別のアカウント作成数",
		}, []string{"method"}),
		oppsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentafamily_opportunities_created_total",
			Help: "種類別の募集作成数",
		}, []string{"kind"}),
		oppTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentafamily_opportunity_transitions_total",
			Help: "遷移先状態別の募集状態遷移数",
		}, []string{"status"}),
		rsvps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentafamily_rsvps_total",
			Help: "結果別の参加申込数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentafamily_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentafamily_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentafamily_sessions_purged_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.signups,
		c.oppsCreated,
		c.oppTransitions,
		c.rsvps,
		c.httpStatus,
		c.requestLatency,
		c.sessionsPurged,
	)

	return c
}

// RecordSignup はアカウント作成を記録する。
func (c *Collector) RecordSignup(method string) {
	c.signups.WithLabelValues(method).Inc()
}

// RecordOpportunityCreated は募集作成を記録する。
func (c *Collector) RecordOpportunityCreated(kind string) {
	c.oppsCreated.WithLabelValues(kind).Inc()
}

// RecordOpportunityTransition は募集の状態遷移を記録する。
func (c *Collector) RecordOpportunityTransition(status string) {
	c.oppTransitions.WithLabelValues(status).Inc()
}

// RecordRSVP は参加申込の結果を記録する。
func (c *Collector) RecordRSVP(outcome string) {
	c.rsvps.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSessionsPurged は削除したセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int) {
	c.sessionsPurged.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。
// メトリクスを使わないテストやサブコマンドで利用する。
type Nop struct{}

func (Nop) RecordSignup(string) {}
func (Nop) RecordOpportunityCreated(string) {}
func (Nop) RecordOpportunityTransition(string) {}
func (Nop) RecordRSVP(string) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordRequestLatency(time.Duration) {}
func (Nop) RecordSessionsPurged(int) {}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
