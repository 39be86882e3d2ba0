/*
Package supervisor implements the per-node worker-pool process supervisor:
a bounded table of child worker processes (A), a pending-kill set (B),
drain/terminate mode flags (C), and the background loops that keep them
consistent with reality — the launcher (D), the two-phase terminator (E),
the reaper (F), the slot populator (G), and the kill-queue worker (H).

# Architecture

	┌─────────────────────────── Supervisor ───────────────────────────┐
	│                                                                    │
	│   ┌──────────────┐   insert    ┌───────────────┐                  │
	│   │  Populator(G)├────────────▶│ Process Table │◀──── take ───┐   │
	│   │ (≈30s ticks) │             │      (A)      │              │   │
	│   └──────┬───────┘             └───────┬───────┘              │   │
	│          │ obtain                      │ snapshot             │   │
	│          ▼                             ▼                      │   │
	│     dispatcher                   ┌───────────┐          ┌─────┴──┐│
	│                                  │ Reaper(F) │          │Terminator│
	│                                  │ (poll)    │          │  (E)    ││
	│                                  └─────┬─────┘          └────┬────┘│
	│                                        │ report                │   │
	│                                        ▼                      │   │
	│                                   dispatcher             ┌────▼───┐│
	│                                                           │KillQueue││
	│                                                           │  (B)   ││
	│                                                           └────┬───┘│
	│                                                                │   │
	│                                                     ┌──────────▼──┐│
	│                                                     │KillWorker(H)││
	│                                                     │  (≈5s ticks)││
	│                                                     └─────────────┘│
	└────────────────────────────────────────────────────────────────────┘

Every loop is launched from Supervisor.Start and holds a reference to the
same Table, KillQueue and Modes — there is no package-level mutable state.
Each of A, B and C is guarded by its own sync.RWMutex; when more than one is
needed the acquisition order is always A, then B, then C.
*/
package supervisor
