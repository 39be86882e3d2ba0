package k8s

import (
	"context"
	"os"
	"time"

	"github.com/opsfleet/process-supervisor/pkg/log"
	"github.com/opsfleet/process-supervisor/pkg/supervisor"
)

const coordinatorInterval = 30 * time.Second

// Coordinator is the shutdown coordinator (J). It runs alongside the slot
// populator and reaper; each tick it checks whether the pod should finish:
// drain-and-empty, or terminate mode, in which case it marks the pod
// finished, clears its finalizer, and exits the process.
type Coordinator struct {
	params *Params
	sup    *supervisor.Supervisor
	stopCh chan struct{}

	// exit is the process-exit hook; overridden in tests.
	exit func(code int)
}

// NewCoordinator builds a Coordinator bound to params and sup.
func NewCoordinator(params *Params, sup *supervisor.Supervisor) *Coordinator {
	return &Coordinator{
		params: params,
		sup:    sup,
		stopCh: make(chan struct{}),
		exit:   os.Exit,
	}
}

// Start begins the coordinator's periodic loop in the background.
func (c *Coordinator) Start(ctx context.Context) {
	go c.run(ctx)
}

// Stop signals the coordinator's loop to exit without finishing the pod.
func (c *Coordinator) Stop() {
	close(c.stopCh)
}

func (c *Coordinator) run(ctx context.Context) {
	ticker := time.NewTicker(coordinatorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.tick(ctx)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick performs exactly one shutdown-coordinator check.
func (c *Coordinator) tick(ctx context.Context) {
	logger := log.WithComponent("coordinator")

	terminate := c.sup.Modes().IsTerminate()
	drain := c.sup.Modes().IsDrain()
	empty := c.sup.Table().Len() == 0

	if !terminate && !(drain && empty) {
		return
	}

	logger.Info().Bool("drain", drain).Bool("terminate", terminate).Msg("finishing supervisor pod")

	if err := mergePatchAnnotation(ctx, c.params, c.params.PodName, annotationFinished, "true"); err != nil {
		logger.Error().Err(err).Msg("failed to mark pod finished")
		return
	}

	if err := clearFinalizers(ctx, c.params, c.params.PodName); err != nil {
		logger.Error().Err(err).Msg("failed to clear finalizer")
		return
	}

	logger.Info().Msg("pod finished, exiting")
	c.exit(0)
}
