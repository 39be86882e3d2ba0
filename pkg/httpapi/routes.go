package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/opsfleet/process-supervisor/pkg/supervisor"
)

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id := supervisor.WorkUnitId(idFromPath("/launch/", r.URL.Path))
	if id == "" {
		http.NotFound(w, r)
		return
	}

	pid, err := s.sup.Launch(id)
	if err != nil {
		writeText(w, http.StatusInternalServerError, "Failed to start a process for source %s. Error: %s", id, err)
		return
	}
	writeText(w, http.StatusOK, "A process %s was started, PID=%d", id, pid)
}

func (s *Server) handleTerminate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id := supervisor.WorkUnitId(idFromPath("/terminate/", r.URL.Path))
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if err := s.sup.Terminate(id); err != nil {
		writeText(w, http.StatusInternalServerError, "Failed to start a termination of the process for source %s. Error: %v", id, err)
		return
	}
	writeText(w, http.StatusOK, "A process got the termination signal for source %s", id)
}

func (s *Server) handleKill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id := supervisor.WorkUnitId(idFromPath("/kill/", r.URL.Path))
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if _, err := s.sup.KillOld(r.Context(), id); err != nil {
		writeText(w, http.StatusInternalServerError, "Failed to kill a process %s. Error: %v", id, err)
		return
	}
	writeText(w, http.StatusOK, "A process %s was killed", id)
}

func (s *Server) handleStateList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.sup.StateList())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, "404")
}
