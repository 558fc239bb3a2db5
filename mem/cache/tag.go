package cache

import (
	"errors"
	"fmt"
)

// ErrTagOverflow is returned when a value does not fit in the width of a tag.
var ErrTagOverflow = errors.New("tag value does not fit in its width")

// A Tag is the high-order fragment of an address that a cache entry keeps to
// tell which line it holds. The width is part of the value, so tags from
// different layouts never compare equal.
type Tag struct {
	value uint32
	width uint8
}

// NewTag creates a tag of the given width.
func NewTag(value uint32, width uint) (Tag, error) {
	if width == 0 || width > 32 {
		return Tag{}, fmt.Errorf("tag width %d: %w", width, ErrTagOverflow)
	}

	if width < 32 && value>>width != 0 {
		return Tag{}, fmt.Errorf("0x%x in %d bits: %w",
			value, width, ErrTagOverflow)
	}

	return Tag{value: value, width: uint8(width)}, nil
}

// MustNewTag is NewTag that panics on error.
func MustNewTag(value uint32, width uint) Tag {
	t, err := NewTag(value, width)
	if err != nil {
		panic(err)
	}

	return t
}

// Value returns the tag bits.
func (t Tag) Value() uint32 {
	return t.value
}

// Width returns the number of bits in the tag.
func (t Tag) Width() uint {
	return uint(t.width)
}

func (t Tag) String() string {
	return fmt.Sprintf("0x%x/%d", t.value, t.width)
}
