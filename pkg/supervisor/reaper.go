package supervisor

import (
	"time"

	"github.com/opsfleet/process-supervisor/pkg/dispatcher"
	"github.com/opsfleet/process-supervisor/pkg/log"
	"github.com/opsfleet/process-supervisor/pkg/metrics"
)

const reaperInterval = 5 * time.Second

// RunReaper is the periodic loop for F (process_states). Each tick: snapshot
// ids under a shared guard, probe each child's exit status under a short
// per-id exclusive section, report exited children to the dispatcher outside
// any guard, and remove reported ids from the process table. Runs until
// stopCh is closed.
func (s *Supervisor) RunReaper(stopCh <-chan struct{}) {
	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ProcessStates()
		case <-stopCh:
			return
		}
	}
}

// ProcessStates performs exactly one reaper tick and returns the number of
// ids reported and removed. The shutdown coordinator does not use this
// count; it checks emptiness through Table.Len.
func (s *Supervisor) ProcessStates() int {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReapCycleDuration)

	logger := log.WithComponent("reaper")
	ids := s.table.SnapshotIds()

	reaped := 0
	for _, id := range ids {
		handle, ok := s.table.Get(id)
		if !ok {
			continue
		}

		exited, code := handle.TryWait()
		if !exited {
			continue
		}

		result := dispatcher.ResultFor(code)
		report := dispatcher.FinishReport{ProcessID: string(id), Result: result}

		if err := s.dispatcherClient.ReportProcessFinish(report); err != nil {
			logger.Warn().Err(err).Str("work_unit_id", string(id)).Msg("failed to report finish, will retry next tick")
			metrics.ReportsTotal.WithLabelValues("network_error").Inc()
			continue
		}

		s.table.Take(id)
		metrics.ReportsTotal.WithLabelValues(result).Inc()
		metrics.ChildrenTotal.Set(float64(s.table.Len()))
		logger.Info().Str("work_unit_id", string(id)).Int("exit_code", code).Str("result", result).Msg("reaped exited child")
		reaped++
	}

	return reaped
}
