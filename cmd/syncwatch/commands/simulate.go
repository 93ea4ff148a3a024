package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/internal/blocksync"
	"github.com/syncwatch/syncwatch/libs/log"
)

// MakeSimulateCommand returns the command that downloads a simulated chain
// and waits for the download to finish.
func MakeSimulateCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Download blocks from a simulated peer and wait until the chain is synced",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := log.NewLogger(cmd.OutOrStdout(), conf.LogFormat, conf.LogLevel)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return runSimulation(ctx, conf, logger)
		},
	}

	cmd.Flags().String("sync.chain-id", conf.Sync.ChainID, "chain the simulated peer serves")
	cmd.Flags().String("sync.peer-id", conf.Sync.PeerID, "node ID of the simulated peer")
	cmd.Flags().Int64("sync.start-height", conf.Sync.StartHeight, "height already present locally")
	cmd.Flags().Int64("sync.target-height", conf.Sync.TargetHeight, "chain tip reported by the peer")
	cmd.Flags().Int64("sync.batch-size", conf.Sync.BatchSize, "blocks delivered per event")
	cmd.Flags().Duration("sync.block-interval", conf.Sync.BlockInterval, "delay between two deliveries")
	cmd.Flags().Duration("sync.wait-timeout", conf.Sync.WaitTimeout, "maximum time to wait for the download (0 waits forever)")
	cmd.Flags().Bool("instrumentation.prometheus", conf.Instrumentation.Prometheus, "serve Prometheus metrics")
	cmd.Flags().String("instrumentation.prometheus-listen-addr", conf.Instrumentation.PrometheusListenAddr, "Prometheus listen address")

	return cmd
}

func runSimulation(ctx context.Context, conf *config.Config, logger log.Logger) error {
	metrics := blocksync.NopMetrics()
	if conf.Instrumentation.Prometheus {
		metrics = blocksync.PrometheusMetrics(conf.Instrumentation.Namespace, "chain_id", conf.Sync.ChainID)
		srv := startPrometheusServer(logger, conf.Instrumentation.PrometheusListenAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shut down prometheus server", "err", err)
			}
		}()
	}

	sim, err := blocksync.NewSimulator(logger, conf.Sync)
	if err != nil {
		return err
	}
	tracker := blocksync.NewTracker(logger, blocksync.WithMetrics(metrics))
	sim.AddHandler(tracker)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sim.Start(gctx); err != nil {
			return pkgerrors.Wrap(err, "starting simulator")
		}
		sim.Wait()
		return nil
	})

	g.Go(func() error {
		waitCtx := gctx
		if conf.Sync.WaitTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(gctx, conf.Sync.WaitTimeout)
			defer cancel()
		}

		if err := tracker.Await(waitCtx); err != nil {
			logger.Error("block chain download did not finish",
				"height", sim.Height(),
				"target", conf.Sync.TargetHeight,
				"err", err)
			return err
		}

		logger.Info("block chain synced", "height", sim.Height(), "session", tracker.SessionID())
		return nil
	})

	return g.Wait()
}

func startPrometheusServer(logger log.Logger, addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("prometheus server stopped", "err", err)
		}
	}()
	return srv
}
