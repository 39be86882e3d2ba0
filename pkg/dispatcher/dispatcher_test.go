package dispatcher

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObtainNewProcessSubstitutesSupervisorID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(AssignedProcess{ID: "wu-1", SupervisorID: "node-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/obtain/{supervisor_id}", srv.URL+"/report/{process_id}", "node-1")
	proc, err := client.ObtainNewProcess()
	require.NoError(t, err)
	assert.Equal(t, "wu-1", proc.ID)
	assert.Equal(t, "/obtain/node-1", gotPath)
}

func TestObtainNewProcessBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/obtain", srv.URL+"/report/{process_id}", "node-1")
	_, err := client.ObtainNewProcess()
	assert.Error(t, err)
}

func TestReportProcessFinishSubstitutesProcessID(t *testing.T) {
	var gotPath string
	var gotBody FinishReport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/obtain", srv.URL+"/report/{process_id}", "node-1")
	err := client.ReportProcessFinish(FinishReport{ProcessID: "wu-2", Result: ResultSuccess})
	require.NoError(t, err)
	assert.Equal(t, "/report/wu-2", gotPath)
	assert.Equal(t, "wu-2", gotBody.ProcessID)
	assert.Equal(t, ResultSuccess, gotBody.Result)
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(0))
	assert.Equal(t, ResultError, ResultFor(1))
	assert.Equal(t, ResultError, ResultFor(-1))
}
