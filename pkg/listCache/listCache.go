package listCache

import (
	"math/big"
	"slices"
	"time"

	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics/metricsTypes"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/storageLocation"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const (
	CacheKind_Location = "location"
	CacheKind_Ops      = "ops"
)

type ListCacheConfig struct {
	// Size bounds each of the location and ops caches. 0 means unbounded.
	Size int
	// TTL of 0 disables caching entirely.
	TTL time.Duration
}

// ListCache holds storage locations keyed by list id and raw list op logs
// keyed by storage location. Writers must invalidate the affected list after
// submitting operations so they read their own writes.
type ListCache struct {
	config      *ListCacheConfig
	locations   *expirable.LRU[string, *storageLocation.StorageLocation]
	ops         *expirable.LRU[string, []string]
	metricsSink *metrics.MetricsSink
	logger      *zap.Logger
}

func NewListCache(cfg *ListCacheConfig, ms *metrics.MetricsSink, l *zap.Logger) *ListCache {
	lc := &ListCache{
		config:      cfg,
		metricsSink: ms,
		logger:      l,
	}
	if !lc.Enabled() {
		l.Sugar().Infow("List cache disabled")
		return lc
	}
	lc.locations = expirable.NewLRU[string, *storageLocation.StorageLocation](cfg.Size, nil, cfg.TTL)
	lc.ops = expirable.NewLRU[string, []string](cfg.Size, nil, cfg.TTL)
	return lc
}

func (lc *ListCache) Enabled() bool {
	return lc.config != nil && lc.config.TTL > 0
}

func (lc *ListCache) record(kind string, hit bool) {
	name := metricsTypes.Metric_Incr_CacheMiss
	if hit {
		name = metricsTypes.Metric_Incr_CacheHit
	}
	_ = lc.metricsSink.Incr(name, []metricsTypes.MetricsLabel{{Name: "kind", Value: kind}}, 1)
}

func (lc *ListCache) GetLocation(listId *big.Int) (*storageLocation.StorageLocation, bool) {
	if !lc.Enabled() {
		return nil, false
	}
	loc, ok := lc.locations.Get(listId.String())
	lc.record(CacheKind_Location, ok)
	return loc, ok
}

func (lc *ListCache) SetLocation(listId *big.Int, loc *storageLocation.StorageLocation) {
	if !lc.Enabled() || loc == nil {
		return
	}
	lc.locations.Add(listId.String(), loc)
}

// GetOps returns a copy of the cached log so callers cannot mutate it.
func (lc *ListCache) GetOps(loc *storageLocation.StorageLocation) ([]string, bool) {
	if !lc.Enabled() {
		return nil, false
	}
	ops, ok := lc.ops.Get(loc.Key())
	lc.record(CacheKind_Ops, ok)
	if !ok {
		return nil, false
	}
	return slices.Clone(ops), true
}

func (lc *ListCache) SetOps(loc *storageLocation.StorageLocation, ops []string) {
	if !lc.Enabled() {
		return
	}
	lc.ops.Add(loc.Key(), slices.Clone(ops))
}

// InvalidateList drops the list's storage location and, when known, its log.
func (lc *ListCache) InvalidateList(listId *big.Int) {
	if !lc.Enabled() {
		return
	}
	key := listId.String()
	if loc, ok := lc.locations.Peek(key); ok {
		lc.ops.Remove(loc.Key())
	}
	lc.locations.Remove(key)
	lc.logger.Sugar().Debugw("Invalidated list", zap.String("listId", key))
}

func (lc *ListCache) InvalidateLocation(loc *storageLocation.StorageLocation) {
	if !lc.Enabled() {
		return
	}
	lc.ops.Remove(loc.Key())
}

func (lc *ListCache) Purge() {
	if !lc.Enabled() {
		return
	}
	lc.locations.Purge()
	lc.ops.Purge()
}
