package cmd

import (
	"math/big"

	"github.com/ethereumfollowprotocol/efp-sidecar/internal/config"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/logger"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics/metricsTypes"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/contractCaller/efpContractCaller"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listCache"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/service/followDataService"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type sidecarDeps struct {
	cfg            *config.Config
	logger         *zap.Logger
	metricsClients []metricsTypes.IMetricsClient
	metricsSink    *metrics.MetricsSink
	service        *followDataService.FollowDataService
}

func newLogger(cfg *config.Config) *zap.Logger {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug, Console: cfg.LogConsole})
	return l
}

// newSidecarDeps wires the follow data service from the current config.
func newSidecarDeps() (*sidecarDeps, error) {
	cfg := config.NewConfig()
	l := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
	if err != nil {
		l.Sugar().Errorw("Failed to setup metrics clients", zap.Error(err))
		return nil, err
	}
	sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, metricsClients)
	if err != nil {
		l.Sugar().Errorw("Failed to setup metrics sink", zap.Error(err))
		return nil, err
	}

	clients := efpContractCaller.NewEthereumClients(cfg, l)
	cc := efpContractCaller.NewEfpContractCallerFromConfig(cfg, clients, l)

	cache := listCache.NewListCache(&listCache.ListCacheConfig{
		Size: cfg.CacheConfig.Size,
		TTL:  cfg.CacheConfig.TTL,
	}, sink, l)

	return &sidecarDeps{
		cfg:            cfg,
		logger:         l,
		metricsClients: metricsClients,
		metricsSink:    sink,
		service:        followDataService.NewFollowDataService(cc, cache, sink, l, cfg),
	}, nil
}

func (d *sidecarDeps) close() {
	for _, c := range d.metricsClients {
		if closer, ok := c.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	_ = d.logger.Sync()
}

// parseListId accepts a decimal or 0x-prefixed hex token id.
func parseListId(s string) (*big.Int, error) {
	listId, ok := new(big.Int).SetString(s, 0)
	if !ok || listId.Sign() < 0 {
		return nil, errors.Errorf("invalid list id %q", s)
	}
	return listId, nil
}
