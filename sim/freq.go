package sim

import (
	"log"
)

// Freq defines the type of frequency
type Freq uint64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

const picosecondsPerSecond = 1_000_000_000_000

// Period returns the time between two consecutive ticks. Only frequencies
// whose period is a whole number of picoseconds are supported.
func (f Freq) Period() VTime {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	if picosecondsPerSecond%uint64(f) != 0 {
		log.Panicf("frequency %d Hz does not have an integer period", f)
	}

	return VTime(picosecondsPerSecond / uint64(f))
}

// Cycle converts a time to the number of whole cycles passed since time 0.
func (f Freq) Cycle(t VTime) uint64 {
	return uint64(t / f.Period())
}

// ThisTick returns the tick at or right after now.
func (f Freq) ThisTick(now VTime) VTime {
	p := f.Period()
	return (now + p - 1) / p * p
}

// NextTick returns the first tick strictly after now.
func (f Freq) NextTick(now VTime) VTime {
	p := f.Period()
	return (now/p + 1) * p
}

// NCyclesLater returns the tick n cycles after the tick at or after now.
func (f Freq) NCyclesLater(n int, now VTime) VTime {
	return f.ThisTick(now) + VTime(n)*f.Period()
}
