package l1

import (
	"github.com/sarchlab/memhier/mem/cache/internal/tagging"
)

// A Builder can build L1 caches.
type Builder struct {
	victimFinder tagging.VictimFinder
}

// MakeBuilder returns a Builder with NRU replacement.
func MakeBuilder() Builder {
	return Builder{
		victimFinder: tagging.NewNRUVictimFinder(),
	}
}

// WithVictimFinder sets the replacement policy.
func (b Builder) WithVictimFinder(vf tagging.VictimFinder) Builder {
	b.victimFinder = vf
	return b
}

// Build creates an L1 cache with every entry invalid.
func (b Builder) Build() *Cache {
	Layout.MustBeValid()

	return &Cache{
		sets:         make([]Set, NumSets),
		victimFinder: b.victimFinder,
	}
}
