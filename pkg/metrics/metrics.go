// Package metrics は生成パイプラインと HTTP 層の Prometheus 指標をまとめます。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nftart"

// Metrics は登録済みのコレクタ群です。nil のまま使うと何も記録しません。
type Metrics struct {
	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	ImageCache     *prometheus.CounterVec
	Pins           *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	MetadataServed prometheus.Counter
}

// New は reg にコレクタを登録します。テストでは prometheus.NewRegistry() を渡します。
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "total",
			Help:      "Number of artwork renders by result.",
		}, []string{"result"}),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Time spent rendering and encoding one artwork.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ImageCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image_cache",
			Name:      "lookups_total",
			Help:      "Image cache lookups by outcome (hit, miss, forced).",
		}, []string{"outcome"}),
		Pins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "requests_total",
			Help:      "IPFS pin requests by kind and result.",
		}, []string{"kind", "result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
		MetadataServed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "served_total",
			Help:      "Metadata documents returned.",
		}),
	}
}

// ObserveRender は描画 1 回分を記録します。
func (m *Metrics) ObserveRender(seconds float64, err error) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.RenderDuration.Observe(seconds)
	}
}

// ObserveCache は画像キャッシュの参照結果 (hit, miss, forced) を記録します。
func (m *Metrics) ObserveCache(outcome string) {
	if m == nil {
		return
	}
	m.ImageCache.WithLabelValues(outcome).Inc()
}

// ObservePin はピン留め 1 回分を記録します。kind は image か metadata です。
func (m *Metrics) ObservePin(kind string, err error) {
	if m == nil {
		return
	}
	m.Pins.WithLabelValues(kind, result(err)).Inc()
}

// ObserveMetadata はメタデータ応答を数えます。
func (m *Metrics) ObserveMetadata() {
	if m == nil {
		return
	}
	m.MetadataServed.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
