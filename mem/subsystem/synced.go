package subsystem

import (
	"sync"

	"github.com/sarchlab/memhier/mem/mem"
)

// Synced serializes every operation on a Subsystem behind one lock. A miss
// cascade mutates all three levels, so the hierarchy can only be shared as a
// whole.
type Synced struct {
	lock sync.Mutex
	s    *Subsystem
}

// NewSynced wraps s. The caller must not use s directly afterwards.
func NewSynced(s *Subsystem) *Synced {
	return &Synced{s: s}
}

// Name returns the name of the wrapped subsystem.
func (w *Synced) Name() string {
	return w.s.Name()
}

// Access is Subsystem.Access under the lock.
func (w *Synced) Access(
	addr uint32,
	writeData uint32,
	ctrl mem.AccessControl,
) (uint32, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.s.Access(addr, writeData, ctrl)
}

// HandlePeriodicTick is Subsystem.HandlePeriodicTick under the lock.
func (w *Synced) HandlePeriodicTick() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.s.HandlePeriodicTick()
}

// Stats is Subsystem.Stats under the lock.
func (w *Synced) Stats() Stats {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.s.Stats()
}

// Do runs f with exclusive use of the subsystem.
func (w *Synced) Do(f func(s *Subsystem)) {
	w.lock.Lock()
	defer w.lock.Unlock()

	f(w.s)
}

// A Snapshot is a consistent view of a subsystem for reporting.
type Snapshot struct {
	Name         string
	Stats        Stats
	MemorySize   uint64
	L1ValidLines int
	L2ValidLines int
}

// Snapshot captures the state of the wrapped subsystem.
func (w *Synced) Snapshot() Snapshot {
	w.lock.Lock()
	defer w.lock.Unlock()

	return Snapshot{
		Name:         w.s.Name(),
		Stats:        w.s.Stats(),
		MemorySize:   w.s.Storage().Capacity(),
		L1ValidLines: w.s.L1().NumValidLines(),
		L2ValidLines: w.s.L2().NumValidLines(),
	}
}
