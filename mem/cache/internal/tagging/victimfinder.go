// Package tagging holds the replacement policies of the set-associative
// caches.
package tagging

// WayState is the part of a way's state that replacement decisions look at.
type WayState struct {
	Valid     bool
	Reference bool
	Dirty     bool
}

// A VictimFinder decides which way of a set receives a new line.
type VictimFinder interface {
	// FindVictim returns the way to fill. evict is false when the way does
	// not hold a valid line.
	FindVictim(ways []WayState) (way int, evict bool)
}

// nruClass ranks a valid way. Lower classes are evicted first.
func nruClass(w WayState) int {
	class := 0
	if w.Reference {
		class += 2
	}

	if w.Dirty {
		class++
	}

	return class
}

const nruClassMostRecent = 3

// NRUVictimFinder implements not-recently-used replacement. An invalid way is
// always taken first. Otherwise ways are ranked
//
//	ref=0,dirty=0 > ref=0,dirty=1 > ref=1,dirty=0
//
// and the earliest way of the best class wins. When every way is referenced
// and dirty, way 0 is evicted.
type NRUVictimFinder struct{}

// NewNRUVictimFinder returns a newly constructed NRU victim finder.
func NewNRUVictimFinder() *NRUVictimFinder {
	return &NRUVictimFinder{}
}

// FindVictim selects the way to replace.
func (f *NRUVictimFinder) FindVictim(ways []WayState) (int, bool) {
	first := [nruClassMostRecent]int{-1, -1, -1}

	for i, w := range ways {
		if !w.Valid {
			return i, false
		}

		c := nruClass(w)
		if c < nruClassMostRecent && first[c] < 0 {
			first[c] = i
		}
	}

	for _, way := range first {
		if way >= 0 {
			return way, true
		}
	}

	return 0, true
}
