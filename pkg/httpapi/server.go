// Package httpapi serves the supervisor's HTTP command surface: launch,
// terminate, kill, and state-list, plus Prometheus metrics. Routing itself
// is an external collaborator — only the command set and its semantics are
// specified — so this package sticks to the standard library's ServeMux
// rather than a routing framework.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/opsfleet/process-supervisor/pkg/metrics"
	"github.com/opsfleet/process-supervisor/pkg/supervisor"
)

// Server is the supervisor's HTTP command surface.
type Server struct {
	sup *supervisor.Supervisor
	mux *http.ServeMux
}

// New builds a Server wired to sup's operations.
func New(sup *supervisor.Supervisor) *Server {
	s := &Server{sup: sup, mux: http.NewServeMux()}

	s.mux.HandleFunc("/launch/", s.handleLaunch)
	s.mux.HandleFunc("/terminate/", s.handleTerminate)
	s.mux.HandleFunc("/kill/", s.handleKill)
	s.mux.HandleFunc("/state-list", s.handleStateList)
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.HandleFunc("/", s.handleNotFound)

	return s
}

// Start serves the HTTP command surface on addr until the process exits or
// ListenAndServe returns an error.
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// Handler returns the underlying handler for embedding or testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func idFromPath(prefix, path string) string {
	if len(path) <= len(prefix) {
		return ""
	}
	return path[len(prefix):]
}

func writeText(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, format, args...)
}
