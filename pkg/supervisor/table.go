package supervisor

import (
	"os"
	"sort"
	"sync"
	"time"
)

// WorkUnitId is the dispatcher-assigned, globally unique key the supervisor
// uses across the process table and kill queue. It is opaque; historically
// integer-typed but treated as a plain string everywhere in this package.
type WorkUnitId string

// ChildHandle is the owned record for a live child process. It is created by
// the Launcher and destroyed only by the Reaper, or by the legacy KillOld
// path which bypasses the reaper for removal.
type ChildHandle struct {
	Process   *os.Process
	Pid       int
	SpawnedAt time.Time

	mu      sync.Mutex
	exited  bool
	exitErr error
	state   *os.ProcessState
	waited  chan struct{}
}

// newChildHandle wraps proc and starts the single background waiter that
// later non-blocking probes read from. os.Process.Wait may only be called
// once per process, so every other observer must go through TryWait.
func newChildHandle(proc *os.Process) *ChildHandle {
	h := &ChildHandle{
		Process:   proc,
		Pid:       proc.Pid,
		SpawnedAt: time.Now(),
		waited:    make(chan struct{}),
	}
	go h.wait()
	return h
}

func (h *ChildHandle) wait() {
	state, err := h.Process.Wait()
	h.mu.Lock()
	h.exited = true
	h.state = state
	h.exitErr = err
	h.mu.Unlock()
	close(h.waited)
}

// TryWait observes the child's current exit status without blocking.
// exited is false while the child is still running; exitCode is only
// meaningful when exited is true.
func (h *ChildHandle) TryWait() (exited bool, exitCode int) {
	select {
	case <-h.waited:
	default:
		return false, 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.exitErr != nil && h.state == nil {
		return true, -1
	}
	return true, h.state.ExitCode()
}

// Table is the process table (A): the single source of truth for which
// slots are occupied, keyed by WorkUnitId. Insertions happen only in the
// Launcher; removals happen only in the Reaper, or in the legacy KillOld
// path.
type Table struct {
	mu       sync.RWMutex
	children map[WorkUnitId]*ChildHandle
	max      int
}

// NewTable creates an empty process table bounded at max live children.
func NewTable(max int) *Table {
	return &Table{
		children: make(map[WorkUnitId]*ChildHandle),
		max:      max,
	}
}

// Insert adds handle under id. Fails with ErrAlreadyPresent if id is already
// occupied — this must never happen in practice since the dispatcher
// guarantees id uniqueness, but the check is kept as a defensive invariant.
func (t *Table) Insert(id WorkUnitId, handle *ChildHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.children[id]; exists {
		return ErrAlreadyPresent
	}
	t.children[id] = handle
	return nil
}

// Take removes and returns the handle for id, if present.
func (t *Table) Take(id WorkUnitId) (*ChildHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.children[id]
	if ok {
		delete(t.children, id)
	}
	return h, ok
}

// Get returns the handle for id without removing it.
func (t *Table) Get(id WorkUnitId) (*ChildHandle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.children[id]
	return h, ok
}

// PeekPid returns the pid for id without removing it.
func (t *Table) PeekPid(id WorkUnitId) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.children[id]
	if !ok {
		return 0, false
	}
	return h.Pid, true
}

// SnapshotIds returns an ordered snapshot of every id currently in the
// table, taken under the shared guard. O(n).
func (t *Table) SnapshotIds() []WorkUnitId {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]WorkUnitId, 0, len(t.children))
	for id := range t.children {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the current number of occupied slots.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.children)
}

// FreeSlots returns MAX_CHILDREN - |A|, never negative.
func (t *Table) FreeSlots() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	free := t.max - len(t.children)
	if free < 0 {
		free = 0
	}
	return free
}

// Max returns the configured slot bound.
func (t *Table) Max() int {
	return t.max
}
