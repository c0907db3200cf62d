// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package commands

import (
	"context"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polyd/polyd/bgp"
	bgppacket "github.com/polyd/polyd/bgp/packet"
	"github.com/polyd/polyd/internal/bootcfg"
	"github.com/polyd/polyd/internal/health"
	"github.com/polyd/polyd/internal/instance"
	"github.com/polyd/polyd/internal/kvstore"
	"github.com/polyd/polyd/internal/log"
	"github.com/polyd/polyd/internal/metrics"
	"github.com/polyd/polyd/isis"
	"github.com/polyd/polyd/ldp"
	"github.com/polyd/polyd/northbound"
	"github.com/polyd/polyd/ospf"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the polyd daemon",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := bootcfg.Load(cfgFile)
	if err != nil {
		return err
	}

	zapLevel, err := cfg.Logging.ZapLevel()
	if err != nil {
		return err
	}
	logger, err := log.New(zapLevel)
	if err != nil {
		return err
	}

	store, err := kvstore.Open(cfg.Store.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := metrics.NewRegistry()
	gatherer := metrics.NewMultiGatherer()
	if err := gatherer.Register("process", registry); err != nil {
		return err
	}

	nbMetrics, err := metrics.NewNorthbound(registry)
	if err != nil {
		return err
	}
	healthAgg := health.NewAggregator()

	journal := northbound.NewJournal(store)
	// Providers: each protocol instance's northbound.Provider adapter is
	// not yet built (tracked in DESIGN.md); the engine runs with none
	// registered, so CheckCallbacks against an empty requiredPaths list
	// trivially passes.
	engine := northbound.NewEngine(logger.With(zap.String("component", "northbound")), nbMetrics, healthAgg, store, journal, nil)
	if err := engine.CheckCallbacks(nil); err != nil {
		return err
	}

	shared := &instance.Shared{
		Store:     store,
		Keychains: instance.NewKeychainRegistry(),
		Hostnames: instance.NewHostnameCache(),
		Log:       logger,
	}

	closeSession := func(remote netip.Addr, notif bgppacket.Notification) {
		logger.Warn("closing bgp session",
			zap.String("peer", remote.String()),
			zap.Uint8("code", uint8(notif.Code)),
			zap.Uint8("subcode", notif.Subcode))
	}

	isisInst := isis.NewInstance("default", shared)
	ospfv2Inst := ospf.NewInstance("default", shared)
	ldpInst := ldp.NewInstance("default", shared)
	bgpInst := bgp.NewInstance("default", shared, closeSession)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go engine.Run(ctx)

	// Instances start out disabled (zero-value Config); a future
	// northbound commit flips Config and calls Update to activate them.
	// Referencing them here keeps the supervisor responsible for their
	// lifetime even before that wiring exists.
	_ = isisInst
	_ = ospfv2Inst
	_ = ldpInst
	_ = bgpInst

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("polyd started", zap.String("store_dir", cfg.Store.Dir))
	<-sigCh

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	engine.Shutdown()
	cancel()
	return nil
}
