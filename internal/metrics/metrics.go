package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopbook_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopbook_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint", "status"},
	)
	stockEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopbook_stock_events_total",
			Help: "Sales and receipts applied, edited or reversed.",
		},
		[]string{"kind", "action"},
	)
	stockRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopbook_stock_rejections_total",
			Help: "Submissions refused by a stock rule.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(stockEventsTotal)
	prometheus.MustRegister(stockRejectionsTotal)
}

// RecordRequest records one served HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordStockEvents counts n sale or receipt lines; action is one of
// "apply", "edit" or "reverse".
func RecordStockEvents(kind, action string, n int) {
	stockEventsTotal.WithLabelValues(kind, action).Add(float64(n))
}

func RecordStockRejection(reason string) {
	stockRejectionsTotal.WithLabelValues(reason).Inc()
}

func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "unknown"
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
