package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentRegistry_AppliesNamespace(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cr := NewComponentRegistryWith(reg, "multicodec", "frames")

	counter := cr.NewCounterVec(prometheus.CounterOpts{
		Name: "total",
		Help: "test counter",
	}, []string{"op"})
	counter.WithLabelValues("add").Inc()
	counter.WithLabelValues("add").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "multicodec_frames_total", families[0].GetName())
	assert.Equal(t, float64(2), testutil.ToFloat64(counter.WithLabelValues("add")))
}

func TestComponentRegistry_DuplicatePanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cr := NewComponentRegistryWith(reg, "multicodec", "")
	cr.NewGauge(prometheus.GaugeOpts{Name: "up", Help: "h"})

	assert.Panics(t, func() {
		cr.NewGauge(prometheus.GaugeOpts{Name: "up", Help: "h"})
	})
}

func TestBuckets_Increasing(t *testing.T) {
	t.Parallel()

	for name, buckets := range map[string][]float64{
		"duration": DurationBuckets,
		"size":     SizeBuckets,
		"count":    CountBuckets,
	} {
		for i := 1; i < len(buckets); i++ {
			assert.Greater(t, buckets[i], buckets[i-1], name)
		}
	}
}
