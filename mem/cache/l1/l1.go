// Package l1 provides the first-level cache: 64KB, 4-way set associative,
// write-back, with not-recently-used replacement.
//
// An address is split as
//
//	   18              9           3        2
//	------------------------------------------------
//	|      tag       |    set      | word   |  byte  |
//	|                |   index     | offset | offset |
//	------------------------------------------------
//
// giving 512 sets of 4 ways of 8-word lines.
package l1

import (
	"log"

	"github.com/sarchlab/memhier/mem/cache"
	"github.com/sarchlab/memhier/mem/cache/internal/tagging"
	"github.com/sarchlab/memhier/mem/mem"
)

// Layout is the address decomposition of the L1 cache.
var Layout = cache.Layout{ByteOffsetBits: 2, WordOffsetBits: 3, IndexBits: 9}

// Geometry of the L1 cache.
const (
	NumSets = 512
	NumWays = 4
)

// An Entry is one way of a set. When Valid is false the other fields carry no
// meaning.
type Entry struct {
	Valid     bool
	Reference bool
	Dirty     bool
	Tag       cache.Tag
	Line      mem.Line
}

// A Set is the group of ways an address can be stored in.
type Set struct {
	Entries [NumWays]Entry
}

// Cache is the L1 cache.
type Cache struct {
	sets         []Set
	victimFinder tagging.VictimFinder
}

// New creates an L1 cache with NRU replacement.
func New() *Cache {
	return MakeBuilder().Build()
}

// Reset clears the valid bit of every entry. Nothing else is reset.
func (c *Cache) Reset() {
	for i := range c.sets {
		for j := range c.sets[i].Entries {
			c.sets[i].Entries[j].Valid = false
		}
	}
}

// Access reads and/or writes the word at addr. A miss has no side effect. On
// a hit the entry is marked referenced, a read returns the stored word, and a
// write replaces it and marks the entry dirty. When both flags are set the
// returned word is the one held before the write.
func (c *Cache) Access(
	addr uint32,
	writeData uint32,
	ctrl mem.AccessControl,
) (uint32, cache.Outcome) {
	a := Layout.Decompose(addr)

	e := c.find(a)
	if e == nil {
		return 0, cache.Miss
	}

	e.Reference = true

	var readData uint32
	if ctrl.CanRead() {
		readData = e.Line[a.WordOffset]
	}

	if ctrl.CanWrite() {
		e.Line[a.WordOffset] = writeData
		e.Dirty = true
	}

	return readData, cache.Hit
}

// InsertLine installs line as the content of the line that holds addr. If the
// replaced entry is dirty, its address and data are returned and the bool is
// true. The new entry is valid, clean, and unreferenced.
func (c *Cache) InsertLine(
	addr uint32,
	line mem.Line,
) (cache.WriteBack, bool) {
	a := Layout.Decompose(addr)
	set := &c.sets[a.Index]

	var states [NumWays]tagging.WayState
	for i, e := range set.Entries {
		states[i] = tagging.WayState{
			Valid:     e.Valid,
			Reference: e.Reference,
			Dirty:     e.Dirty,
		}
	}

	way, evict := c.victimFinder.FindVictim(states[:])
	if way < 0 || way >= NumWays {
		log.Panicf("victim finder selected way %d of a %d-way set",
			way, NumWays)
	}

	victim := &set.Entries[way]

	var wb cache.WriteBack

	needWriteBack := evict && victim.Valid && victim.Dirty
	if needWriteBack {
		wb.Address = Layout.BaseAddress(victim.Tag, a.Index)
		wb.Line = victim.Line
	}

	*victim = Entry{
		Valid: true,
		Tag:   a.Tag,
		Line:  line,
	}

	return wb, needWriteBack
}

// ClearReferenceBits clears the reference bit of every entry, so that lines
// not accessed since the last call look not recently used again.
func (c *Cache) ClearReferenceBits() {
	for i := range c.sets {
		for j := range c.sets[i].Entries {
			c.sets[i].Entries[j].Reference = false
		}
	}
}

// Lookup returns the valid entry that holds addr without marking it
// referenced.
func (c *Cache) Lookup(addr uint32) (Entry, bool) {
	e := c.find(Layout.Decompose(addr))
	if e == nil {
		return Entry{}, false
	}

	return *e, true
}

// NumValidLines counts the valid entries in the whole cache.
func (c *Cache) NumValidLines() int {
	n := 0

	for i := range c.sets {
		for _, e := range c.sets[i].Entries {
			if e.Valid {
				n++
			}
		}
	}

	return n
}

func (c *Cache) find(a cache.Address) *Entry {
	set := &c.sets[a.Index]

	for i := range set.Entries {
		e := &set.Entries[i]
		if e.Valid && e.Tag == a.Tag {
			return e
		}
	}

	return nil
}
