package metrics

import (
	"time"
)

// supervisorStats is the minimal view a Collector needs of the running
// supervisor: table size, kill queue depth, and mode flags. It is declared
// here, not imported from pkg/supervisor, to keep pkg/metrics dependency-free
// of the component it instruments — pkg/supervisor already depends on
// pkg/metrics, so the reverse import would cycle.
type supervisorStats interface {
	Len() int
	KillQueueLen() int
	IsDrain() bool
	IsTerminate() bool
}

// Collector periodically samples gauge-shaped supervisor state (table size,
// kill queue depth, mode flags) that isn't naturally updated at the call
// site of a single operation.
type Collector struct {
	sup    supervisorStats
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector bound to sup.
func NewCollector(sup supervisorStats) *Collector {
	return &Collector{
		sup:    sup,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics on a ticker, sampling immediately first.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	ChildrenTotal.Set(float64(c.sup.Len()))
	KillQueueLength.Set(float64(c.sup.KillQueueLen()))

	if c.sup.IsDrain() {
		DrainMode.Set(1)
	} else {
		DrainMode.Set(0)
	}

	if c.sup.IsTerminate() {
		TerminateMode.Set(1)
	} else {
		TerminateMode.Set(0)
	}
}
