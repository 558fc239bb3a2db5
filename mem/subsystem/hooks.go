package subsystem

import (
	"github.com/sarchlab/memhier/mem/mem"
	"github.com/sarchlab/memhier/sim"
)

// Hook positions of a subsystem.
var (
	// HookPosAccess triggers after each access completes. Item is an
	// AccessInfo.
	HookPosAccess = &sim.HookPos{Name: "Access"}

	// HookPosL1Miss triggers when an access misses in the L1 cache. Item is a
	// MissInfo.
	HookPosL1Miss = &sim.HookPos{Name: "L1Miss"}

	// HookPosL2Miss triggers when a line fetch or a write-back misses in the
	// L2 cache. Item is a MissInfo.
	HookPosL2Miss = &sim.HookPos{Name: "L2Miss"}

	// HookPosWriteBack triggers when a dirty line is evicted. Item is a
	// WriteBackInfo.
	HookPosWriteBack = &sim.HookPos{Name: "WriteBack"}

	// HookPosPeriodicTick triggers on each clock interrupt. Item is the
	// number of ticks so far.
	HookPosPeriodicTick = &sim.HookPos{Name: "PeriodicTick"}
)

// Level names a cache level.
type Level int

// The cache levels.
const (
	LevelL1 Level = iota + 1
	LevelL2
)

func (l Level) String() string {
	switch l {
	case LevelL1:
		return "L1"
	case LevelL2:
		return "L2"
	default:
		return "unknown"
	}
}

// Intent tells why a line is being brought into a cache.
type Intent int

// The intents.
const (
	// IntentRead means the line content is needed.
	IntentRead Intent = iota
	// IntentWrite means the whole line is about to be overwritten.
	IntentWrite
)

func (i Intent) String() string {
	if i == IntentWrite {
		return "write"
	}

	return "read"
}

// AccessInfo describes a completed access.
type AccessInfo struct {
	Address   uint32
	Control   mem.AccessControl
	WriteData uint32
	ReadData  uint32
	L1Miss    bool
	L2Misses  uint64
}

// MissInfo describes a cache miss.
type MissInfo struct {
	Level   Level
	Address uint32
	Intent  Intent
}

// WriteBackInfo describes a dirty line leaving a cache.
type WriteBackInfo struct {
	From    Level
	Address uint32
	Line    mem.Line
}
