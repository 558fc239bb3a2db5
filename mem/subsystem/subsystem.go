// Package subsystem provides the memory subsystem: the single word-granular
// entry point in front of the L1 cache, the L2 cache and the main store.
//
// A miss at one level is resolved by fetching the line from the level below
// and inserting it, which may evict a dirty line that has to be written back
// to the level below, which may miss in turn. The main store never misses, so
// every cascade terminates.
package subsystem

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/memhier/mem/cache"
	"github.com/sarchlab/memhier/mem/cache/l1"
	"github.com/sarchlab/memhier/mem/cache/l2"
	"github.com/sarchlab/memhier/mem/mem"
	"github.com/sarchlab/memhier/sim"
)

// ErrNotInitialized is returned when accessing a subsystem without a main
// store.
var ErrNotInitialized = errors.New("memory subsystem is not initialized")

// Stats are the counters of a subsystem. They only grow until the next Init.
type Stats struct {
	Accesses     uint64
	L1Misses     uint64
	L2Misses     uint64
	L1WriteBacks uint64
	L2WriteBacks uint64
	Ticks        uint64
}

// Subsystem owns the three levels of the hierarchy. It is not safe for
// concurrent use; see Synced.
type Subsystem struct {
	sim.HookableBase

	name    string
	storage *mem.Storage
	l1      *l1.Cache
	l2      *l2.Cache
	stats   Stats
}

// Name returns the name of the subsystem.
func (s *Subsystem) Name() string {
	return s.name
}

// Init creates a new zero-filled main store of sizeInBytes bytes, invalidates
// both caches and zeroes the counters.
func (s *Subsystem) Init(sizeInBytes uint64) error {
	storage, err := mem.NewStorage(sizeInBytes)
	if err != nil {
		return fmt.Errorf("initializing %s: %w", s.name, err)
	}

	s.storage = storage
	s.l1.Reset()
	s.l2.Reset()
	s.stats = Stats{}

	return nil
}

// Access reads and/or writes the word at addr. When both flags are set the
// returned word is the one held before the write.
func (s *Subsystem) Access(
	addr uint32,
	writeData uint32,
	ctrl mem.AccessControl,
) (uint32, error) {
	if err := s.checkAddress(addr); err != nil {
		return 0, err
	}

	s.stats.Accesses++
	info := AccessInfo{
		Address:   addr,
		Control:   ctrl,
		WriteData: writeData,
	}
	l2MissesBefore := s.stats.L2Misses

	readData, err := attemptThenResolve(
		func() (uint32, cache.Outcome) {
			return s.l1.Access(addr, writeData, ctrl)
		},
		func() error {
			info.L1Miss = true
			return s.handleL1Miss(addr)
		},
	)
	if err != nil {
		return 0, err
	}

	info.ReadData = readData
	info.L2Misses = s.stats.L2Misses - l2MissesBefore
	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosAccess,
		Item:   info,
	})

	return readData, nil
}

func (s *Subsystem) checkAddress(addr uint32) error {
	if s.storage == nil {
		return ErrNotInitialized
	}

	if uint64(addr) >= s.storage.Capacity() {
		return fmt.Errorf("%s: accessing 0x%x with %d bytes of memory: %w",
			s.name, addr, s.storage.Capacity(), mem.ErrAddressOutOfRange)
	}

	return nil
}

// handleL1Miss brings the line that holds addr into the L1 cache, writing the
// line it evicts back into the L2 cache.
func (s *Subsystem) handleL1Miss(addr uint32) error {
	s.stats.L1Misses++
	s.invokeMissHook(HookPosL1Miss, LevelL1, addr, IntentRead)

	line, err := attemptThenResolve(
		func() (mem.Line, cache.Outcome) {
			return s.l2.Access(addr, mem.Line{}, mem.ReadEnable)
		},
		func() error {
			return s.handleL2Miss(addr, IntentRead)
		},
	)
	if err != nil {
		return err
	}

	wb, needed := s.l1.InsertLine(addr, line)
	if !needed {
		return nil
	}

	s.stats.L1WriteBacks++
	s.invokeWriteBackHook(LevelL1, wb)

	_, err = attemptThenResolve(
		func() (mem.Line, cache.Outcome) {
			return s.l2.Access(wb.Address, wb.Line, mem.WriteEnable)
		},
		func() error {
			return s.handleL2Miss(wb.Address, IntentWrite)
		},
	)

	return err
}

// handleL2Miss makes the L2 cache hold the line of addr, writing the line it
// evicts back into the main store. With a write intent the line is about to
// be overwritten, so it is not read from the main store.
func (s *Subsystem) handleL2Miss(addr uint32, intent Intent) error {
	s.stats.L2Misses++
	s.invokeMissHook(HookPosL2Miss, LevelL2, addr, intent)

	var line mem.Line

	if intent == IntentRead {
		var err error

		line, err = s.storage.Read(addr)
		if err != nil {
			return err
		}
	}

	wb, needed := s.l2.InsertLine(addr, line)
	if !needed {
		return nil
	}

	s.stats.L2WriteBacks++
	s.invokeWriteBackHook(LevelL2, wb)

	return s.storage.Write(wb.Address, wb.Line)
}

// attemptThenResolve runs attempt. On a miss it runs resolve and attempts
// exactly once more, which must hit.
func attemptThenResolve[T any](
	attempt func() (T, cache.Outcome),
	resolve func() error,
) (T, error) {
	v, outcome := attempt()
	if outcome == cache.Hit {
		return v, nil
	}

	if err := resolve(); err != nil {
		var zero T
		return zero, err
	}

	v, outcome = attempt()
	if outcome != cache.Hit {
		log.Panic("access missed right after its miss was resolved")
	}

	return v, nil
}

// HandlePeriodicTick is the clock-interrupt entry point. It clears the
// reference bits of the L1 cache.
func (s *Subsystem) HandlePeriodicTick() {
	s.l1.ClearReferenceBits()
	s.stats.Ticks++

	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosPeriodicTick,
		Item:   s.stats.Ticks,
	})
}

// L1Misses returns the number of L1 misses since the last Init.
func (s *Subsystem) L1Misses() uint64 {
	return s.stats.L1Misses
}

// L2Misses returns the number of L2 misses since the last Init.
func (s *Subsystem) L2Misses() uint64 {
	return s.stats.L2Misses
}

// Accesses returns the number of accesses since the last Init.
func (s *Subsystem) Accesses() uint64 {
	return s.stats.Accesses
}

// Stats returns a copy of the counters.
func (s *Subsystem) Stats() Stats {
	return s.stats
}

// L1 gives read access to the L1 cache for inspection.
func (s *Subsystem) L1() *l1.Cache {
	return s.l1
}

// L2 gives read access to the L2 cache for inspection.
func (s *Subsystem) L2() *l2.Cache {
	return s.l2
}

// Storage gives read access to the main store for inspection.
func (s *Subsystem) Storage() *mem.Storage {
	return s.storage
}

func (s *Subsystem) invokeMissHook(
	pos *sim.HookPos,
	level Level,
	addr uint32,
	intent Intent,
) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    pos,
		Item: MissInfo{
			Level:   level,
			Address: addr,
			Intent:  intent,
		},
	})
}

func (s *Subsystem) invokeWriteBackHook(from Level, wb cache.WriteBack) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosWriteBack,
		Item: WriteBackInfo{
			From:    from,
			Address: wb.Address,
			Line:    wb.Line,
		},
	})
}
