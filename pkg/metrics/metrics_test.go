package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRender(0.01, nil)
	m.ObserveRender(0, errors.New("boom"))
	m.ObserveCache("hit")
	m.ObserveCache("hit")
	m.ObservePin("image", nil)
	m.ObserveMetadata()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ImageCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Pins.WithLabelValues("image", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MetadataServed))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRender(1, nil)
		m.ObserveCache("miss")
		m.ObservePin("metadata", errors.New("x"))
		m.ObserveMetadata()
	})
}
