package supervisor

import (
	"context"
	"time"

	"github.com/opsfleet/process-supervisor/pkg/log"
	"github.com/opsfleet/process-supervisor/pkg/metrics"
)

const killWorkerInterval = 5 * time.Second

// RunKillQueueWorker is the periodic loop for H. Each tick it pops one
// arbitrary entry from the kill queue and invokes phase 2 of the two-phase
// kill. Popping one per tick, rather than draining the whole queue, keeps
// one victim's grace delay from blocking other victims' phase-2 attempts.
// Runs until stopCh is closed.
func (s *Supervisor) RunKillQueueWorker(ctx context.Context, stopCh <-chan struct{}) {
	logger := log.WithComponent("killworker")
	ticker := time.NewTicker(killWorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			id, ts, ok := s.killQueue.PopOne()
			if !ok {
				continue
			}
			metrics.KillQueueLength.Set(float64(s.killQueue.Len()))

			code, err := s.Kill(ctx, id, ts)
			if err != nil {
				logger.Error().Err(err).Str("work_unit_id", string(id)).Msg("phase-2 kill failed")
				continue
			}
			logger.Info().Str("work_unit_id", string(id)).Int("exit_code", code).Msg("phase-2 kill complete")
		case <-stopCh:
			return
		}
	}
}
