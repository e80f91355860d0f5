package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, "2xx", classifyStatus(201))
	assert.Equal(t, "3xx", classifyStatus(304))
	assert.Equal(t, "4xx", classifyStatus(422))
	assert.Equal(t, "5xx", classifyStatus(500))
	assert.Equal(t, "unknown", classifyStatus(99))
}

func TestCounters(t *testing.T) {
	RecordRequest("POST", "/v1/sales", 201, 20*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/sales", "2xx")))

	RecordStockEvents("sale", "apply", 3)
	RecordStockEvents("sale", "apply", 2)
	assert.Equal(t, float64(5), testutil.ToFloat64(stockEventsTotal.WithLabelValues("sale", "apply")))

	RecordStockRejection("insufficient_stock")
	assert.Equal(t, float64(1), testutil.ToFloat64(stockRejectionsTotal.WithLabelValues("insufficient_stock")))
}
