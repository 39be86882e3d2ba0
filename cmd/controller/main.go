package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opsfleet/process-supervisor/pkg/k8s"
	"github.com/opsfleet/process-supervisor/pkg/log"
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
	Use:     "supervisor-controller",
	Short:   "Fleet-wide companion controller for process-supervisor pods",
	Long:    "supervisor-controller watches every supervisor pod in its own namespace, adding finalizers and propagating drain annotations, and sweeps a terminate-all trigger onto the fleet on request.",
	Version: Version,
	RunE:    runController,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", true, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

func runController(cmd *cobra.Command, args []string) error {
	logger := log.WithComponent("main")

	params, ok := k8s.BootstrapController()
	if !ok {
		return fmt.Errorf("controller requires an in-cluster Kubernetes client; it is not meant to run in local mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := k8s.NewController(params)

	doneCh := make(chan struct{})
	go func() {
		controller.Run(ctx)
		close(doneCh)
	}()
	logger.Info().Str("namespace", params.Namespace).Msg("controller started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
		cancel()
	case <-doneCh:
	}

	return nil
}
