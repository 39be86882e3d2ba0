package supervisor

// ChildState is the on-demand, never-stored view of a child process reported
// via the HTTP state-list endpoint.
type ChildState struct {
	ID              WorkUnitId `json:"id"`
	IsRunning       bool       `json:"is_running"`
	IsFinished      bool       `json:"is_finished"`
	ExitCode        *int       `json:"exit_code,omitempty"`
	IsKilled        bool       `json:"is_killed"`
	RSSAnonMemoryKB *uint64    `json:"rss_anon_memory_kb,omitempty"`
}

// getChildState derives a ChildState for id/handle by probing the handle's
// exit status non-blockingly and, on Linux, reading its RSS from /proc.
func getChildState(id WorkUnitId, handle *ChildHandle) ChildState {
	state := ChildState{ID: id}

	exited, code := handle.TryWait()
	if !exited {
		state.IsRunning = true
	} else {
		state.IsFinished = true
		c := code
		state.ExitCode = &c
	}

	if rss, ok := readRSSAnonKB(handle.Pid); ok {
		state.RSSAnonMemoryKB = &rss
	}

	return state
}
