package mem

import "fmt"

// Geometry shared by every level of the hierarchy.
const (
	BytesPerWord = 4
	WordsPerLine = 8
	BytesPerLine = BytesPerWord * WordsPerLine

	lineOffsetMask = BytesPerLine - 1
)

// A Line is the unit of transfer between the caches and the main store.
type Line [WordsPerLine]uint32

// AlignToLine returns the address of the first byte of the line that contains
// addr.
func AlignToLine(addr uint32) uint32 {
	return addr &^ lineOffsetMask
}

// AccessControl carries the independent read-enable and write-enable flags of
// an access. Both flags may be set on the same access.
type AccessControl uint8

// The control flags.
const (
	ReadEnable AccessControl = 1 << iota
	WriteEnable

	ReadWrite = ReadEnable | WriteEnable
)

// CanRead tells if the read-enable flag is set.
func (c AccessControl) CanRead() bool {
	return c&ReadEnable != 0
}

// CanWrite tells if the write-enable flag is set.
func (c AccessControl) CanWrite() bool {
	return c&WriteEnable != 0
}

func (c AccessControl) String() string {
	switch c & ReadWrite {
	case ReadEnable:
		return "read"
	case WriteEnable:
		return "write"
	case ReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("none(0x%x)", uint8(c))
	}
}
