// Package l2 provides the second-level cache: 1MB, direct-mapped,
// write-back. It always transfers whole lines.
//
// An address is split as
//
//	     12                 15           5
//	------------------------------------------------
//	|       tag        |       index       | offset |
//	------------------------------------------------
//
// so each of the 32768 entries is a set of its own.
package l2

import (
	"github.com/sarchlab/memhier/mem/cache"
	"github.com/sarchlab/memhier/mem/mem"
)

// Layout is the address decomposition of the L2 cache. The byte offset field
// covers the whole line.
var Layout = cache.Layout{ByteOffsetBits: 5, IndexBits: 15}

// NumEntries is the number of lines the L2 cache holds.
const NumEntries = 1 << 15

// An Entry is one line of the cache. When Valid is false the other fields
// carry no meaning.
type Entry struct {
	Valid bool
	Dirty bool
	Tag   cache.Tag
	Line  mem.Line
}

// Cache is the L2 cache.
type Cache struct {
	entries []Entry
}

// New creates an L2 cache with every entry invalid.
func New() *Cache {
	Layout.MustBeValid()

	return &Cache{
		entries: make([]Entry, NumEntries),
	}
}

// Reset clears the valid bit of every entry.
func (c *Cache) Reset() {
	for i := range c.entries {
		c.entries[i].Valid = false
	}
}

// Access reads and/or writes the whole line that holds addr. A miss has no
// side effect. On a hit a read returns the stored line and a write replaces
// it and marks the entry dirty.
func (c *Cache) Access(
	addr uint32,
	writeData mem.Line,
	ctrl mem.AccessControl,
) (mem.Line, cache.Outcome) {
	var readData mem.Line

	a := Layout.Decompose(addr)
	e := &c.entries[a.Index]

	if !e.Valid || e.Tag != a.Tag {
		return readData, cache.Miss
	}

	if ctrl.CanRead() {
		readData = e.Line
	}

	if ctrl.CanWrite() {
		e.Line = writeData
		e.Dirty = true
	}

	return readData, cache.Hit
}

// InsertLine installs line at the slot of addr. If the slot holds a valid
// dirty line, that line and its address are returned with true. The new entry
// is valid and clean.
func (c *Cache) InsertLine(
	addr uint32,
	line mem.Line,
) (cache.WriteBack, bool) {
	a := Layout.Decompose(addr)
	e := &c.entries[a.Index]

	var wb cache.WriteBack

	needWriteBack := e.Valid && e.Dirty
	if needWriteBack {
		wb.Address = Layout.BaseAddress(e.Tag, a.Index)
		wb.Line = e.Line
	}

	*e = Entry{
		Valid: true,
		Tag:   a.Tag,
		Line:  line,
	}

	return wb, needWriteBack
}

// Lookup returns the valid entry that holds addr.
func (c *Cache) Lookup(addr uint32) (Entry, bool) {
	a := Layout.Decompose(addr)
	e := c.entries[a.Index]

	if !e.Valid || e.Tag != a.Tag {
		return Entry{}, false
	}

	return e, true
}

// NumValidLines counts the valid entries.
func (c *Cache) NumValidLines() int {
	n := 0

	for _, e := range c.entries {
		if e.Valid {
			n++
		}
	}

	return n
}
