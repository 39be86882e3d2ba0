package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeSupervisorStats struct {
	children  int
	killQueue int
	drain     bool
	terminate bool
}

func (f *fakeSupervisorStats) Len() int          { return f.children }
func (f *fakeSupervisorStats) KillQueueLen() int { return f.killQueue }
func (f *fakeSupervisorStats) IsDrain() bool     { return f.drain }
func (f *fakeSupervisorStats) IsTerminate() bool { return f.terminate }

func TestCollectorCollectSetsGauges(t *testing.T) {
	stats := &fakeSupervisorStats{children: 3, killQueue: 2, drain: true, terminate: false}
	c := NewCollector(stats)

	c.collect()

	assert.Equal(t, float64(3), testutil.ToFloat64(ChildrenTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(KillQueueLength))
	assert.Equal(t, float64(1), testutil.ToFloat64(DrainMode))
	assert.Equal(t, float64(0), testutil.ToFloat64(TerminateMode))
}

func TestCollectorStopEndsLoop(t *testing.T) {
	stats := &fakeSupervisorStats{}
	c := NewCollector(stats)
	c.Start()
	c.Stop()
}
