package cache

import "github.com/sarchlab/memhier/mem/mem"

// Outcome tells whether a cache access found the line it asked for.
type Outcome int

// The outcomes of a cache access.
const (
	Miss Outcome = iota
	Hit
)

func (o Outcome) String() string {
	if o == Hit {
		return "hit"
	}

	return "miss"
}

// A WriteBack describes a dirty line that left a cache and must be stored in
// the level below.
type WriteBack struct {
	Address uint32
	Line    mem.Line
}
