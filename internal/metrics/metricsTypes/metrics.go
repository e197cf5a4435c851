package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_FollowStateQuery = "followStateQuery"
	Metric_Incr_ListOpsFetched   = "listOpsFetched"
	Metric_Incr_ListOpsSkipped   = "listOpsSkipped"
	Metric_Incr_CacheHit         = "cacheHit"
	Metric_Incr_CacheMiss        = "cacheMiss"

	Metric_Gauge_FollowingCount = "followingCount"

	Metric_Timing_ListOpsFetchDuration = "listOpsFetchDuration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name:   Metric_Incr_FollowStateQuery,
			Labels: []string{"state"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ListOpsFetched,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ListOpsSkipped,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_CacheHit,
			Labels: []string{"kind"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_CacheMiss,
			Labels: []string{"kind"},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_FollowingCount,
			Labels: []string{"listId"},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name:   Metric_Timing_ListOpsFetchDuration,
			Labels: []string{},
		},
	},
}
