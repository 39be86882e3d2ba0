package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opsfleet/process-supervisor/pkg/config"
	"github.com/opsfleet/process-supervisor/pkg/dispatcher"
	"github.com/opsfleet/process-supervisor/pkg/httpapi"
	"github.com/opsfleet/process-supervisor/pkg/k8s"
	"github.com/opsfleet/process-supervisor/pkg/log"
	"github.com/opsfleet/process-supervisor/pkg/metrics"
	"github.com/opsfleet/process-supervisor/pkg/supervisor"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "process-supervisor",
	Short:   "Per-node worker-pool process supervisor",
	Long:    "process-supervisor launches and reaps a pool of worker processes assigned by a dispatcher, and reconciles its own Kubernetes pod lifecycle when running in-cluster.",
	Version: Version,
	RunE:    runSupervisor,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("process-supervisor version %s\nCommit: %s\n", Version, Commit))
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	cfg, err := config.Load()
	logJSON := false
	level := log.InfoLevel
	if err == nil {
		logJSON = cfg.LogJSON
		level = cfg.LogLevel
	}
	log.Init(log.Config{Level: level, JSONOutput: logJSON})
}

func runSupervisor(cmd *cobra.Command, args []string) error {
	logger := log.WithComponent("main")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dispatcherClient := dispatcher.NewClient(cfg.ObtainProcessURL, cfg.ReportProcessFinishURL, cfg.HostName)

	sup := supervisor.New(supervisor.Config{
		MaxChildren:        cfg.MaxChildrenCount,
		SigtermTimeoutSecs: cfg.SigtermTimeoutSecs,
		WorkerCommand:      cfg.WorkerCommand,
		DispatcherClient:   dispatcherClient,
	})

	collector := metrics.NewCollector(sup)
	collector.Start()
	defer collector.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup.Start(ctx)
	defer sup.Stop()
	logger.Info().Msg("supervisor loops started: populator, reaper, kill-queue worker")

	var reconciler *k8s.Reconciler
	var coordinator *k8s.Coordinator
	if params, ok := k8s.Bootstrap(); ok {
		reconciler = k8s.NewReconciler(params, sup)
		reconciler.Start(ctx)
		coordinator = k8s.NewCoordinator(params, sup)
		coordinator.Start(ctx)
		logger.Info().Str("pod", params.PodName).Msg("orchestrator reconciler and shutdown coordinator started")
	} else {
		logger.Info().Msg("running in local mode: no orchestrator reconciler or shutdown coordinator")
	}

	server := httpapi.New(sup)
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(addr); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()
	logger.Info().Str("addr", addr).Msg("http api listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("http server failed")
	}

	if reconciler != nil {
		reconciler.Stop()
	}
	if coordinator != nil {
		coordinator.Stop()
	}

	return nil
}
