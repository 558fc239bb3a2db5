// Package interrupt provides the periodic clock interrupt of a memory
// hierarchy.
package interrupt

import (
	"log"

	"github.com/sarchlab/memhier/sim"
)

// A Target receives the periodic clock interrupt.
type Target interface {
	HandlePeriodicTick()
}

// Clock raises an interrupt on its target every fixed number of cycles. It
// ticks after the primary events of each cycle and stops once nothing else
// is left in the engine.
type Clock struct {
	*sim.TickingComponent

	target        Target
	interval      uint64
	cycles        uint64
	numInterrupts uint64
}

// Tick counts one cycle and raises the interrupt when the interval is
// reached.
func (c *Clock) Tick() bool {
	c.cycles++

	if c.cycles%c.interval == 0 {
		c.target.HandlePeriodicTick()
		c.numInterrupts++
	}

	return c.Engine.HasPendingEvents()
}

// Start schedules the first cycle at the current time.
func (c *Clock) Start() {
	c.TickNow()
}

// NumInterrupts returns how many interrupts have been raised.
func (c *Clock) NumInterrupts() uint64 {
	return c.numInterrupts
}

// Builder can build clocks.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	interval uint64
	target   Target
}

// MakeBuilder returns a Builder with a 1 GHz clock that interrupts every
// 1000 cycles.
func MakeBuilder() Builder {
	return Builder{
		freq:     1 * sim.GHz,
		interval: 1000,
	}
}

// WithEngine sets the engine that drives the clock.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithInterval sets the number of cycles between two interrupts.
func (b Builder) WithInterval(cycles uint64) Builder {
	b.interval = cycles
	return b
}

// WithTarget sets who receives the interrupts.
func (b Builder) WithTarget(target Target) Builder {
	b.target = target
	return b
}

// Build creates a clock.
func (b Builder) Build(name string) *Clock {
	if b.engine == nil {
		log.Panic("clock needs an engine")
	}

	if b.target == nil {
		log.Panic("clock needs a target")
	}

	if b.interval == 0 {
		log.Panic("clock interval must be positive")
	}

	c := &Clock{
		target:   b.target,
		interval: b.interval,
	}
	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.freq, c)

	return c
}
