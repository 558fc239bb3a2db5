package cache

import (
	"fmt"
	"log"
)

// A Layout describes how a 32-bit address is split into byte offset, word
// offset, index and tag fields, lowest bits first. The tag takes every bit
// above the index.
type Layout struct {
	ByteOffsetBits uint
	WordOffsetBits uint
	IndexBits      uint
}

// Address is an address decomposed according to a Layout.
type Address struct {
	Tag        Tag
	Index      uint32
	WordOffset uint32
}

// MustBeValid panics if the fields do not fit in 32 bits.
func (l Layout) MustBeValid() {
	if l.TagShift() >= 32 {
		log.Panicf("layout %+v leaves no bits for the tag", l)
	}
}

// IndexShift is the position of the lowest index bit.
func (l Layout) IndexShift() uint {
	return l.ByteOffsetBits + l.WordOffsetBits
}

// TagShift is the position of the lowest tag bit.
func (l Layout) TagShift() uint {
	return l.IndexShift() + l.IndexBits
}

// TagBits is the width of the tag field.
func (l Layout) TagBits() uint {
	return 32 - l.TagShift()
}

// NumIndices is the number of distinct index values.
func (l Layout) NumIndices() int {
	return 1 << l.IndexBits
}

// Decompose splits addr into its fields.
func (l Layout) Decompose(addr uint32) Address {
	return Address{
		Tag:        MustNewTag(addr>>l.TagShift(), l.TagBits()),
		Index:      (addr >> l.IndexShift()) & mask(l.IndexBits),
		WordOffset: (addr >> l.ByteOffsetBits) & mask(l.WordOffsetBits),
	}
}

// BaseAddress rebuilds the address of the first byte of the line identified
// by tag and index.
func (l Layout) BaseAddress(tag Tag, index uint32) uint32 {
	if tag.Width() != l.TagBits() {
		log.Panicf("tag of %d bits used with a %d-bit layout",
			tag.Width(), l.TagBits())
	}

	return tag.Value()<<l.TagShift() |
		(index&mask(l.IndexBits))<<l.IndexShift()
}

// LineBase clears every bit below the index field.
func (l Layout) LineBase(addr uint32) uint32 {
	return addr &^ mask(l.IndexShift())
}

func (l Layout) String() string {
	return fmt.Sprintf("tag:%d index:%d word:%d byte:%d",
		l.TagBits(), l.IndexBits, l.WordOffsetBits, l.ByteOffsetBits)
}

func mask(bits uint) uint32 {
	if bits >= 32 {
		return ^uint32(0)
	}

	return uint32(1)<<bits - 1
}
