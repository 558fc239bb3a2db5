// Package trace provides hooks that record what a memory subsystem does.
package trace

import (
	"log"

	"github.com/sarchlab/memhier/datarecording"
	"github.com/sarchlab/memhier/mem/subsystem"
	"github.com/sarchlab/memhier/sim"
)

type named interface {
	Name() string
}

func locationOf(ctx sim.HookCtx) string {
	if n, ok := ctx.Domain.(named); ok {
		return n.Name()
	}

	return ""
}

// accessEntry represents a completed access in the database
type accessEntry struct {
	ID        string
	Location  string
	Time      uint64
	What      string
	Address   uint32
	WriteData uint32
	ReadData  uint32
	L1Miss    bool
	L2Misses  uint64
}

// missEntry represents a cache miss in the database
type missEntry struct {
	ID       string
	Location string
	Time     uint64
	Level    string
	Address  uint32
	Intent   string
}

// writeBackEntry represents a dirty line leaving a cache in the database
type writeBackEntry struct {
	ID       string
	Location string
	Time     uint64
	Source   string
	Address  uint32
}

// Table names used by the DBTracer.
const (
	AccessTable    = "accesses"
	MissTable      = "misses"
	WriteBackTable = "write_backs"
)

// A LogTracer is a hook that writes one line per subsystem event.
type LogTracer struct {
	timeTeller sim.TimeTeller
	logger     *log.Logger
}

// NewLogTracer creates a new LogTracer.
func NewLogTracer(logger *log.Logger, timeTeller sim.TimeTeller) *LogTracer {
	return &LogTracer{
		timeTeller: timeTeller,
		logger:     logger,
	}
}

// Func writes the event to the log.
func (t *LogTracer) Func(ctx sim.HookCtx) {
	now := t.timeTeller.CurrentTime()
	location := locationOf(ctx)

	switch item := ctx.Item.(type) {
	case subsystem.AccessInfo:
		t.logger.Printf("access, %d, %s, %s, 0x%x, 0x%x, 0x%x, %t, %d\n",
			now, location, item.Control,
			item.Address, item.WriteData, item.ReadData,
			item.L1Miss, item.L2Misses)
	case subsystem.MissInfo:
		t.logger.Printf("miss, %d, %s, %s, 0x%x, %s\n",
			now, location, item.Level, item.Address, item.Intent)
	case subsystem.WriteBackInfo:
		t.logger.Printf("writeback, %d, %s, %s, 0x%x\n",
			now, location, item.From, item.Address)
	default:
		if ctx.Pos == subsystem.HookPosPeriodicTick {
			t.logger.Printf("tick, %d, %s, %v\n", now, location, ctx.Item)
		}
	}
}

// A DBTracer is a hook that records subsystem events into a database using
// the data recorder.
type DBTracer struct {
	timeTeller   sim.TimeTeller
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer and the tables it writes.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	timeTeller sim.TimeTeller,
) *DBTracer {
	t := &DBTracer{
		timeTeller:   timeTeller,
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(AccessTable, accessEntry{})
	t.dataRecorder.CreateTable(MissTable, missEntry{})
	t.dataRecorder.CreateTable(WriteBackTable, writeBackEntry{})

	return t
}

// Func records the event. Periodic ticks are not recorded.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case subsystem.AccessInfo:
		t.dataRecorder.InsertData(AccessTable, accessEntry{
			ID:        sim.GetIDGenerator().Generate(),
			Location:  locationOf(ctx),
			Time:      uint64(t.timeTeller.CurrentTime()),
			What:      item.Control.String(),
			Address:   item.Address,
			WriteData: item.WriteData,
			ReadData:  item.ReadData,
			L1Miss:    item.L1Miss,
			L2Misses:  item.L2Misses,
		})
	case subsystem.MissInfo:
		t.dataRecorder.InsertData(MissTable, missEntry{
			ID:       sim.GetIDGenerator().Generate(),
			Location: locationOf(ctx),
			Time:     uint64(t.timeTeller.CurrentTime()),
			Level:    item.Level.String(),
			Address:  item.Address,
			Intent:   item.Intent.String(),
		})
	case subsystem.WriteBackInfo:
		t.dataRecorder.InsertData(WriteBackTable, writeBackEntry{
			ID:       sim.GetIDGenerator().Generate(),
			Location: locationOf(ctx),
			Time:     uint64(t.timeTeller.CurrentTime()),
			Source:   item.From.String(),
			Address:  item.Address,
		})
	}
}
