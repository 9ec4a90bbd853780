package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"kvfabric/internal/config"
	"kvfabric/internal/dispatch"
	"kvfabric/internal/ioqueue"
	"kvfabric/internal/kvstore"
	"kvfabric/internal/latency"
	"kvfabric/internal/logger"
	"kvfabric/internal/metrics"
	"kvfabric/internal/worker"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromViper()
	if err != nil {
		return err // argument error: cobra/main exits 1
	}

	logFile, err := os.OpenFile("kvfabric.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kvfabric: opening log file: %v\n", err)
		os.Exit(-1)
	}
	defer logFile.Close()
	logger.Setup(io.MultiWriter(os.Stdout, logFile))

	logger.Info("----------------------------------------")
	logger.Info("kvfabric: starting, %d store workers, dispatch=%s, listen=%s", cfg.Workers, cfg.Choice, cfg.Addr())

	store, err := kvstore.NewFromSeedFile(cfg.CmdFile)
	if err != nil {
		logger.Error("kvfabric: loading seed file: %v", err)
		os.Exit(-1)
	}

	policy, err := dispatch.New(cfg.DispatchChoice())
	if err != nil {
		logger.Error("kvfabric: %v", err)
		os.Exit(-1)
	}

	var lat *latency.Recorder
	if cfg.RecordLat {
		lat = latency.NewRecorder()
	}

	stopMetrics, err := metrics.Server(cfg.MetricsAddr)
	if err != nil {
		logger.Error("kvfabric: metrics server: %v", err)
		os.Exit(-1)
	}
	defer stopMetrics(context.Background())

	netSvc := ioqueue.NewService()
	netPeerSet := worker.NewPeerSet(netSvc)

	peerQDs := make([]ioqueue.QD, 0, cfg.Workers)
	storeRuntimes := make([]*worker.Runtime, 0, cfg.Workers)

	for i := 0; i < cfg.Workers; i++ {
		storeSvc := ioqueue.NewService()
		storePeerSet := worker.NewPeerSet(storeSvc)

		netQD, storeQD := worker.RegisterPeers(netPeerSet, storePeerSet)
		peerQDs = append(peerQDs, netQD)

		sw := worker.NewStoreWorker(i+1, storeQD, store)
		storeRuntimes = append(storeRuntimes, worker.NewRuntime(fmt.Sprintf("store-%d", i+1), storeSvc, sw))
	}

	nw := worker.NewNetWorker(cfg.Addr(), policy, peerQDs, lat)
	netRuntime := worker.NewRuntime("net", netSvc, nw)

	netRuntime.Launch()
	for _, r := range storeRuntimes {
		r.Launch()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	logger.Info("kvfabric: serving on %s; press Ctrl+C to stop", cfg.Addr())
	<-sigCh

	logger.Info("kvfabric: shutting down")
	netRuntime.Stop()
	netRuntime.Join()
	for _, r := range storeRuntimes {
		r.Stop()
		r.Join()
	}

	if lat != nil {
		path := filepath.Join(cfg.LogDir, "net_traces")
		if err := lat.Dump(path); err != nil {
			logger.Error("kvfabric: dumping latency log: %v", err)
		} else {
			logger.Info("kvfabric: latency log written to %s", path)
		}
	}

	logger.Info("kvfabric: shutdown complete")
	return nil
}
