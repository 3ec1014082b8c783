package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics アプリケーションのPrometheusコレクタ群
// nil レシーバでも呼び出せるため、計測が不要なテストやCLIでは nil を渡せばよい
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	reportsCreated prometheus.Counter
	clustersFound  prometheus.Histogram
	llmComparisons *prometheus.CounterVec
}

// New コレクタを作成して reg に登録する
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "urbanpulse_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "urbanpulse_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		reportsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "urbanpulse_reports_created_total",
			Help: "Total reports created",
		}),
		clustersFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "urbanpulse_clusters_found",
			Help:    "Number of proximity clusters per clustering run",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		llmComparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "urbanpulse_llm_comparisons_total",
			Help: "Duplicate comparisons by result status",
		}, []string{"status"}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.reportsCreated, m.clustersFound, m.llmComparisons)
	return m
}

func (m *Metrics) ReportCreated() {
	if m == nil {
		return
	}
	m.reportsCreated.Inc()
}

func (m *Metrics) ObserveClusters(n int) {
	if m == nil {
		return
	}
	m.clustersFound.Observe(float64(n))
}

func (m *Metrics) LLMComparison(status string) {
	if m == nil {
		return
	}
	m.llmComparisons.WithLabelValues(status).Inc()
}

// Middleware リクエスト数とレイテンシを記録するginミドルウェア
// path にはルートのパターン（/reports/:id）を使い、ラベルの種類が増えすぎないようにする
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
