package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGTERM, syscall.SIGINT)

	return gracefulShutdown
}

// ListenForShutdown blocks until a shutdown signal arrives or ctx is done,
// then runs signalHandler and waits up to timeToWait for drained to close.
// It reports whether a signal triggered the shutdown.
func ListenForShutdown(
	ctx context.Context,
	signalChan chan os.Signal,
	drained <-chan struct{},
	signalHandler func(),
	timeToWait time.Duration,
	l *zap.Logger,
) bool {
	signaled := false
	select {
	case sig := <-signalChan:
		l.Sugar().Infow("Caught signal", zap.String("signal", sig.String()))
		signaled = true
	case <-ctx.Done():
		l.Sugar().Infow("Context done, shutting down")
	}

	signalHandler()

	select {
	case <-drained:
	case <-time.After(timeToWait):
		l.Sugar().Warnw("Timed out waiting for shutdown", zap.Duration("waited", timeToWait))
	}
	l.Sugar().Infow("Exiting")
	return signaled
}
