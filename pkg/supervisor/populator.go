package supervisor

import (
	"time"

	"github.com/opsfleet/process-supervisor/pkg/log"
	"github.com/opsfleet/process-supervisor/pkg/metrics"
)

const populatorInterval = 30 * time.Second

// RunPopulator is the periodic loop for G. Each tick it fills every free
// slot by pulling one work unit from the dispatcher at a time, unless drain
// or terminate mode is observed first — terminate implies drain semantics
// for new work. It never invokes the reaper inline; it relies on F to keep
// the process table's size accurate. Runs until stopCh is closed.
func (s *Supervisor) RunPopulator(stopCh <-chan struct{}) {
	ticker := time.NewTicker(populatorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.PopulateEmptySlots()
		case <-stopCh:
			return
		}
	}
}

// PopulateEmptySlots performs exactly one populator tick. It returns
// ErrDrainModeObtained if drain or terminate mode halted the loop before it
// filled every free slot.
func (s *Supervisor) PopulateEmptySlots() error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PopulateCycleDuration)

	logger := log.WithComponent("populator")

	if s.modes.IsDrain() || s.modes.IsTerminate() {
		return ErrDrainModeObtained
	}

	free := s.table.FreeSlots()
	if free == 0 {
		return nil
	}

	for i := 0; i < free; i++ {
		if s.modes.IsDrain() || s.modes.IsTerminate() {
			return ErrDrainModeObtained
		}

		proc, err := s.dispatcherClient.ObtainNewProcess()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to obtain new process, skipping this slot")
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if _, err := s.Launch(WorkUnitId(proc.ID)); err != nil {
			logger.Warn().Err(err).Str("work_unit_id", proc.ID).Msg("failed to launch obtained process")
		}
	}

	return nil
}
