package supervisor

import (
	"fmt"
	"os/exec"

	"github.com/opsfleet/process-supervisor/pkg/log"
	"github.com/opsfleet/process-supervisor/pkg/metrics"
)

// Launch (D) spawns the configured worker command detached from the
// supervisor's stdio and, on success, inserts the resulting handle into the
// process table under id. No entry is created in the table on failure.
func (s *Supervisor) Launch(id WorkUnitId) (pid int, err error) {
	logger := log.WithWorkUnitID(string(id))

	if len(s.workerCommand) == 0 {
		return 0, fmt.Errorf("supervisor: launch %s: no worker command configured", id)
	}

	cmd := exec.Command(s.workerCommand[0], s.workerCommand[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		metrics.LaunchesTotal.WithLabelValues("failure").Inc()
		logger.Error().Err(err).Msg("failed to start worker process")
		return 0, fmt.Errorf("supervisor: launch %s: %w", id, err)
	}

	handle := newChildHandle(cmd.Process)
	if err := s.table.Insert(id, handle); err != nil {
		metrics.LaunchesTotal.WithLabelValues("failure").Inc()
		logger.Error().Err(err).Msg("process table insert failed after spawn")
		return handle.Pid, fmt.Errorf("supervisor: launch %s: %w", id, err)
	}

	metrics.LaunchesTotal.WithLabelValues("success").Inc()
	metrics.ChildrenTotal.Set(float64(s.table.Len()))
	logger.Info().Int("pid", handle.Pid).Msg("launched worker process")
	return handle.Pid, nil
}
