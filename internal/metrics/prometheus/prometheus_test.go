package prometheus

import (
	"testing"
	"time"

	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics/metricsTypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_PrometheusMetricsClient(t *testing.T) {
	reg := prometheus.NewRegistry()
	client, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
		Metrics:    metricsTypes.MetricTypes,
		Registerer: reg,
	}, zap.NewNop())
	require.Nil(t, err)

	t.Run("Should count increments by label", func(t *testing.T) {
		labels := []metricsTypes.MetricsLabel{{Name: "state", Value: "FOLLOWS"}}
		assert.Nil(t, client.Incr(metricsTypes.Metric_Incr_FollowStateQuery, labels, 1))
		assert.Nil(t, client.Incr(metricsTypes.Metric_Incr_FollowStateQuery, labels, 2))

		c := client.counters[metricsTypes.Metric_Incr_FollowStateQuery].WithLabelValues("FOLLOWS")
		assert.Equal(t, float64(3), testutil.ToFloat64(c))
	})
	t.Run("Should set gauges and observe timings", func(t *testing.T) {
		labels := []metricsTypes.MetricsLabel{{Name: "listId", Value: "1"}}
		assert.Nil(t, client.Gauge(metricsTypes.Metric_Gauge_FollowingCount, 12, labels))
		assert.Equal(t, float64(12), testutil.ToFloat64(client.gauges[metricsTypes.Metric_Gauge_FollowingCount].WithLabelValues("1")))

		assert.Nil(t, client.Timing(metricsTypes.Metric_Timing_ListOpsFetchDuration, time.Millisecond*5, nil))
	})
	t.Run("Should reject mismatched labels", func(t *testing.T) {
		err := client.Incr(metricsTypes.Metric_Incr_CacheHit, []metricsTypes.MetricsLabel{{Name: "bogus", Value: "x"}}, 1)
		assert.NotNil(t, err)
	})
	t.Run("Should ignore unknown metrics", func(t *testing.T) {
		assert.Nil(t, client.Incr("doesNotExist", nil, 1))
	})
	t.Run("Should fail to register twice on the same registry", func(t *testing.T) {
		_, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
			Metrics:    metricsTypes.MetricTypes,
			Registerer: reg,
		}, zap.NewNop())
		assert.NotNil(t, err)
	})
}
