package supervisor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync/atomic"
	"testing"

	"github.com/opsfleet/process-supervisor/pkg/dispatcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupervisor(t *testing.T, maxChildren int, obtainHandler http.HandlerFunc) (*Supervisor, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(obtainHandler)
	t.Cleanup(srv.Close)

	client := dispatcher.NewClient(srv.URL+"/obtain?supervisor_id={supervisor_id}", srv.URL+"/report/{process_id}", "node-1")

	return New(Config{
		MaxChildren:        maxChildren,
		SigtermTimeoutSecs: 1,
		WorkerCommand:      []string{"sleep", "5"},
		DispatcherClient:   client,
	}), srv
}

func TestPopulateEmptySlotsFillsToCapacity(t *testing.T) {
	var counter int64
	handler := func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&counter, 1)
		proc := dispatcher.AssignedProcess{ID: fmt.Sprintf("id-%d", n)}
		json.NewEncoder(w).Encode(proc)
	}

	sup, _ := newTestSupervisor(t, 3, handler)
	defer func() {
		for _, id := range sup.Table().SnapshotIds() {
			if h, ok := sup.Table().Get(id); ok {
				h.Process.Kill()
			}
		}
	}()

	err := sup.PopulateEmptySlots()
	require.NoError(t, err)
	assert.Equal(t, 3, sup.Table().Len())
	assert.Equal(t, int64(3), atomic.LoadInt64(&counter))
}

func TestPopulateEmptySlotsStopsOnDrain(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dispatcher.AssignedProcess{ID: "x"})
	}
	sup, _ := newTestSupervisor(t, 3, handler)
	sup.Modes().SetDrain()

	err := sup.PopulateEmptySlots()
	assert.ErrorIs(t, err, ErrDrainModeObtained)
	assert.Equal(t, 0, sup.Table().Len())
}

func TestPopulateEmptySlotsStopsOnTerminate(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dispatcher.AssignedProcess{ID: "x"})
	}
	sup, _ := newTestSupervisor(t, 3, handler)
	sup.Modes().SetTerminate()

	err := sup.PopulateEmptySlots()
	assert.ErrorIs(t, err, ErrDrainModeObtained)
	assert.Equal(t, 0, sup.Table().Len())
}

func TestPopulateEmptySlotsSkipsOnDispatcherError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	sup, _ := newTestSupervisor(t, 2, handler)

	err := sup.PopulateEmptySlots()
	require.NoError(t, err)
	assert.Equal(t, 0, sup.Table().Len())
}

func TestPopulateEmptySlotsNoWorkWhenFull(t *testing.T) {
	var called int64
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&called, 1)
		json.NewEncoder(w).Encode(dispatcher.AssignedProcess{ID: "z"})
	}
	sup, _ := newTestSupervisor(t, 1, handler)

	cmd := exec.Command("sleep", "5")
	require.NoError(t, cmd.Start())
	handle := newChildHandle(cmd.Process)
	defer handle.Process.Kill()
	require.NoError(t, sup.Table().Insert("existing", handle))

	err := sup.PopulateEmptySlots()
	require.NoError(t, err)
	assert.Equal(t, int64(0), atomic.LoadInt64(&called))
}
