package supervisor

import (
	"context"
	"syscall"
	"time"

	"github.com/opsfleet/process-supervisor/pkg/log"
	"github.com/opsfleet/process-supervisor/pkg/metrics"
)

// SentinelUnknownExitCode is reported when SIGKILL was sent but the exit
// status still could not be observed — a race between the kill and the
// waiter goroutine. Retained for compatibility with the original supervisor.
const SentinelUnknownExitCode = 9999999

// Terminate (E, phase 1) sends SIGTERM to the child registered under id and
// enqueues it into the kill queue for phase-2 processing. The child is not
// removed from the process table here — it may still be running, and the
// reaper owns cleanup if it exits on its own.
func (s *Supervisor) Terminate(id WorkUnitId) error {
	logger := log.WithWorkUnitID(string(id))

	handle, ok := s.table.Get(id)
	if !ok {
		return ErrNotFound
	}

	if err := handle.Process.Signal(syscall.SIGTERM); err != nil {
		logger.Error().Err(err).Msg("failed to send SIGTERM")
		return err
	}

	s.killQueue.Insert(id, time.Now().Unix())
	metrics.KillQueueLength.Set(float64(s.killQueue.Len()))
	metrics.TerminationsTotal.WithLabelValues("sigterm").Inc()
	logger.Info().Msg("sent termination signal, enqueued for phase-2 kill")
	return nil
}

// Kill (E, phase 2) is invoked by the kill-queue worker with the id and the
// unix-seconds timestamp SIGTERM was sent at. It enforces the grace window,
// then escalates to SIGKILL if the child has not exited on its own. It never
// removes the child from the process table — that is the reaper's job, so
// that every exit is reported exactly once.
func (s *Supervisor) Kill(ctx context.Context, id WorkUnitId, terminatedAt int64) (exitCode int, err error) {
	logger := log.WithWorkUnitID(string(id))

	elapsed := time.Now().Unix() - terminatedAt
	remaining := time.Duration(s.sigtermTimeoutSecs)*time.Second - time.Duration(elapsed)*time.Second
	if remaining > 0 {
		select {
		case <-time.After(remaining):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	handle, ok := s.table.Get(id)
	if !ok {
		// Already reaped; treat as success with unknown exit code.
		return SentinelUnknownExitCode, nil
	}

	if exited, code := handle.TryWait(); exited {
		logger.Info().Int("exit_code", code).Msg("child already exited before SIGKILL was needed")
		return code, nil
	}

	if err := handle.Process.Signal(syscall.SIGKILL); err != nil {
		logger.Error().Err(err).Msg("failed to send SIGKILL")
		return 0, err
	}
	metrics.TerminationsTotal.WithLabelValues("sigkill").Inc()

	// Give the waiter goroutine a brief moment to observe the kill before
	// falling back to the sentinel; the reaper will eventually pick up the
	// real exit code regardless.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if exited, code := handle.TryWait(); exited {
			logger.Info().Int("exit_code", code).Msg("child exited after SIGKILL")
			return code, nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	logger.Warn().Msg("exit status unavailable after SIGKILL, reporting sentinel code")
	return SentinelUnknownExitCode, nil
}

// KillOld is the legacy single-shot synchronous variant: SIGTERM, sleep
// SIGTERM_TIMEOUT_SECS, SIGKILL, remove from the process table directly.
// A child that has already exited is removed and its exit code returned
// without sending any signal. It bypasses the reaper for removal; callers
// must not race it against Terminate/Kill for the same id.
func (s *Supervisor) KillOld(ctx context.Context, id WorkUnitId) (exitCode int, err error) {
	logger := log.WithWorkUnitID(string(id))

	handle, ok := s.table.Get(id)
	if !ok {
		return 0, ErrNotFound
	}

	if exited, code := handle.TryWait(); exited {
		s.table.Take(id)
		metrics.TerminationsTotal.WithLabelValues("legacy").Inc()
		metrics.ChildrenTotal.Set(float64(s.table.Len()))
		logger.Info().Int("exit_code", code).Msg("kill_old: child had already exited")
		return code, nil
	}

	if err := handle.Process.Signal(syscall.SIGTERM); err != nil {
		logger.Error().Err(err).Msg("kill_old: failed to send SIGTERM")
		return 0, err
	}

	select {
	case <-time.After(time.Duration(s.sigtermTimeoutSecs) * time.Second):
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	if exited, code := handle.TryWait(); exited {
		s.table.Take(id)
		metrics.TerminationsTotal.WithLabelValues("legacy").Inc()
		metrics.ChildrenTotal.Set(float64(s.table.Len()))
		logger.Info().Int("exit_code", code).Msg("kill_old: child exited before SIGKILL was needed")
		return code, nil
	}

	if err := handle.Process.Signal(syscall.SIGKILL); err != nil {
		logger.Error().Err(err).Msg("kill_old: failed to send SIGKILL")
		return 0, err
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if exited, code := handle.TryWait(); exited {
			s.table.Take(id)
			metrics.TerminationsTotal.WithLabelValues("legacy").Inc()
			metrics.ChildrenTotal.Set(float64(s.table.Len()))
			logger.Info().Int("exit_code", code).Msg("kill_old: child exited after SIGKILL")
			return code, nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.table.Take(id)
	metrics.TerminationsTotal.WithLabelValues("legacy").Inc()
	metrics.ChildrenTotal.Set(float64(s.table.Len()))
	logger.Warn().Msg("kill_old: exit status unavailable after SIGKILL, reporting sentinel code")
	return SentinelUnknownExitCode, nil
}
