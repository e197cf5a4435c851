package prometheus

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type PrometheusServerConfig struct {
	Port int
}

type PrometheusServer struct {
	config     *PrometheusServerConfig
	logger     *zap.Logger
	httpServer *http.Server
}

func NewPrometheusServer(cfg *PrometheusServerConfig, l *zap.Logger) *PrometheusServer {
	return &PrometheusServer{
		config: cfg,
		logger: l,
	}
}

// Start serves /metrics until a value is received on gracefulShutdown.
func (ps *PrometheusServer) Start(gracefulShutdown chan bool) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	ps.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", ps.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		for range gracefulShutdown {
			ps.logger.Sugar().Info("Shutting down prometheus server")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := ps.httpServer.Shutdown(ctx); err != nil {
				ps.logger.Sugar().Errorw("Failed to shutdown prometheus server", zap.Error(err))
			}
			cancel()
			return
		}
	}()
	go func() {
		ps.logger.Sugar().Infow("Starting prometheus server", zap.Int("port", ps.config.Port))
		if err := ps.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ps.logger.Sugar().Errorw("Prometheus server stopped", zap.Error(err))
		}
	}()
	return nil
}
