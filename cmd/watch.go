package cmd

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereumfollowprotocol/efp-sidecar/internal/config"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics/metricsTypes"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics/prometheus"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/eventBus"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/eventBus/eventBusTypes"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/replay"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/service/followDataService"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/shutdown"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch <listId>",
	Short: "Poll a list and log changes to its following set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listId, err := parseListId(args[0])
		if err != nil {
			return err
		}

		deps, err := newSidecarDeps()
		if err != nil {
			return err
		}
		defer deps.close()
		l := deps.logger

		interval := deps.cfg.WatchConfig.Interval
		if interval <= 0 {
			interval = 30 * time.Second
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		promShutdown := make(chan bool, 1)
		if deps.cfg.PrometheusConfig.Enabled {
			ps := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: deps.cfg.PrometheusConfig.Port,
			}, l)
			if err := ps.Start(promShutdown); err != nil {
				l.Sugar().Errorw("Failed to start prometheus server", zap.Error(err))
				return err
			}
		}

		eb := eventBus.NewEventBus(l)
		printer := &eventBusTypes.Consumer{
			Id:      "stdout",
			Context: ctx,
			Channel: make(chan *eventBusTypes.Event, 100),
		}
		eb.Subscribe(printer)
		go printFollowingEvents(cmd.OutOrStdout(), printer)

		w := newListWatcher(deps.service, deps.metricsSink, eb, listId, l)
		drained := make(chan struct{})
		go func() {
			defer close(drained)
			w.run(ctx, interval)
		}()

		l.Sugar().Infow("Watching list",
			zap.String("listId", listId.String()),
			zap.Duration("interval", interval),
		)

		shutdown.ListenForShutdown(ctx, shutdown.CreateGracefulShutdownChannel(), drained, func() {
			l.Sugar().Info("Shutting down...")
			cancel()
			promShutdown <- true
		}, time.Second*5, l)
		return nil
	},
}

func init() {
	watchCmd.Flags().Duration(config.WatchInterval, 30*time.Second, "How often to poll the list")
	bindCommandFlags(watchCmd)
}

// printFollowingEvents writes one line per added (+) or removed (-) address.
func printFollowingEvents(out io.Writer, consumer *eventBusTypes.Consumer) {
	for {
		select {
		case <-consumer.Context.Done():
			return
		case event := <-consumer.Channel:
			data, ok := event.Data.(*eventBusTypes.FollowingChangedData)
			if !ok {
				continue
			}
			for _, a := range data.Added {
				fmt.Fprintf(out, "+%s\n", a)
			}
			for _, a := range data.Removed {
				fmt.Fprintf(out, "-%s\n", a)
			}
			fmt.Fprintf(out, "# list %s count %d root %s\n", data.ListId, data.Count, data.Root)
		}
	}
}

type listWatcher struct {
	service     *followDataService.FollowDataService
	metricsSink *metrics.MetricsSink
	eventBus    eventBusTypes.IEventBus
	listId      *big.Int
	logger      *zap.Logger

	following []string
	root      string
	loaded    bool
}

func newListWatcher(s *followDataService.FollowDataService, ms *metrics.MetricsSink, eb eventBusTypes.IEventBus, listId *big.Int, l *zap.Logger) *listWatcher {
	return &listWatcher{
		service:     s,
		metricsSink: ms,
		eventBus:    eb,
		listId:      listId,
		logger:      l,
	}
}

func (w *listWatcher) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll refetches the list and reports whether the following set changed.
func (w *listWatcher) poll(ctx context.Context) bool {
	// the log is append only on chain, so always read it fresh
	w.service.InvalidateList(w.listId)

	res, err := w.service.ReplayList(ctx, w.listId)
	if err != nil {
		w.logger.Sugar().Errorw("Failed to load list",
			zap.String("listId", w.listId.String()),
			zap.Error(err),
		)
		return false
	}
	root, err := replay.FollowingRootHex(res.Following)
	if err != nil {
		w.logger.Sugar().Errorw("Failed to compute following root", zap.Error(err))
		return false
	}

	_ = w.metricsSink.Gauge(metricsTypes.Metric_Gauge_FollowingCount, float64(len(res.Following)), []metricsTypes.MetricsLabel{
		{Name: "listId", Value: w.listId.String()},
	})

	changed := false
	added, removed := replay.DiffFollowing(w.following, res.Following)
	data := &eventBusTypes.FollowingChangedData{
		ListId:  w.listId,
		Added:   added,
		Removed: removed,
		Count:   len(res.Following),
		Root:    root,
	}
	if !w.loaded {
		w.logger.Sugar().Infow("Loaded following set",
			zap.String("listId", w.listId.String()),
			zap.Int("count", len(res.Following)),
			zap.Int("skipped", res.Skipped),
			zap.String("root", root),
		)
		w.eventBus.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_FollowingLoaded, Data: data})
	} else if root != w.root {
		w.logger.Sugar().Infow("Following set changed",
			zap.String("listId", w.listId.String()),
			zap.Strings("added", added),
			zap.Strings("removed", removed),
			zap.String("root", root),
		)
		w.eventBus.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_FollowingChanged, Data: data})
		changed = true
	}

	w.following = res.Following
	w.root = root
	w.loaded = true
	return changed
}
