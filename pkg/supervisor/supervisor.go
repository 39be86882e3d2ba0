package supervisor

import (
	"context"

	"github.com/opsfleet/process-supervisor/pkg/dispatcher"
	"github.com/opsfleet/process-supervisor/pkg/log"
)

// Supervisor is the aggregate holding the process table (A), kill queue (B)
// and mode flags (C), plus the collaborators every background loop needs.
// It is passed by shared reference to every loop; there is no package-level
// mutable state.
type Supervisor struct {
	table     *Table
	killQueue *KillQueue
	modes     *Modes

	dispatcherClient   *dispatcher.Client
	workerCommand      []string
	sigtermTimeoutSecs uint64

	stopCh chan struct{}
}

// Config collects the collaborator parameters a Supervisor needs: none of
// these are core invariants, all of them are configuration.
type Config struct {
	MaxChildren        int
	SigtermTimeoutSecs uint64
	WorkerCommand      []string
	DispatcherClient   *dispatcher.Client
}

// New builds a Supervisor with an empty process table, empty kill queue, and
// cleared mode flags.
func New(cfg Config) *Supervisor {
	return &Supervisor{
		table:              NewTable(cfg.MaxChildren),
		killQueue:          NewKillQueue(),
		modes:              NewModes(),
		dispatcherClient:   cfg.DispatcherClient,
		workerCommand:      cfg.WorkerCommand,
		sigtermTimeoutSecs: cfg.SigtermTimeoutSecs,
		stopCh:             make(chan struct{}),
	}
}

// Table returns the process table (A).
func (s *Supervisor) Table() *Table { return s.table }

// KillQueue returns the kill queue (B).
func (s *Supervisor) KillQueue() *KillQueue { return s.killQueue }

// Modes returns the mode flags (C).
func (s *Supervisor) Modes() *Modes { return s.modes }

// Len reports the current number of tracked children, for metrics
// collection.
func (s *Supervisor) Len() int { return s.table.Len() }

// KillQueueLen reports the current kill queue depth, for metrics
// collection.
func (s *Supervisor) KillQueueLen() int { return s.killQueue.Len() }

// IsDrain reports whether drain mode is set, for metrics collection.
func (s *Supervisor) IsDrain() bool { return s.modes.IsDrain() }

// IsTerminate reports whether terminate mode is set, for metrics
// collection.
func (s *Supervisor) IsTerminate() bool { return s.modes.IsTerminate() }

// StateList builds the JSON-ready id -> ChildState mapping by snapshotting
// the table's keys under a shared guard, then probing each id's exit status
// under its own short critical section — never serialized against launches.
func (s *Supervisor) StateList() map[WorkUnitId]ChildState {
	ids := s.table.SnapshotIds()
	out := make(map[WorkUnitId]ChildState, len(ids))
	for _, id := range ids {
		handle, ok := s.table.Get(id)
		if !ok {
			continue
		}
		out[id] = getChildState(id, handle)
	}
	return out
}

// Start launches the background loops that do not depend on an orchestrator
// client: the slot populator (G), the reaper (F), and the kill-queue worker
// (H). The orchestrator reconciler (I) and shutdown coordinator (J) are
// started separately by the caller when an orchestrator client is available
// (see pkg/k8s) — in local mode they simply never start.
func (s *Supervisor) Start(ctx context.Context) {
	logger := log.WithComponent("supervisor")
	logger.Info().Int("max_children", s.table.Max()).Msg("starting supervisor loops")

	go s.RunPopulator(s.stopCh)
	go s.RunReaper(s.stopCh)
	go s.RunKillQueueWorker(ctx, s.stopCh)
}

// Stop signals every background loop to exit.
func (s *Supervisor) Stop() {
	close(s.stopCh)
}
