package mem

import (
	"errors"
	"fmt"
)

// ErrMisalignedSize is returned when the size of a storage is not a whole
// number of lines.
var ErrMisalignedSize = errors.New(
	"memory size (in bytes) must be a multiple of 8-word cache lines (32 bytes)")

// ErrAddressOutOfRange is returned when an access falls outside the storage.
var ErrAddressOutOfRange = errors.New("address must be within the size of memory")

// A Storage is the main store of the hierarchy: a flat array of words that
// always holds an authoritative copy of every line that is not dirty in a
// cache.
//
// The storage is only ever accessed a full line at a time. It has no concept
// of hit or miss.
type Storage struct {
	capacity uint64
	words    []uint32
}

// NewStorage creates a zero-filled storage of sizeInBytes bytes.
func NewStorage(sizeInBytes uint64) (*Storage, error) {
	if sizeInBytes%BytesPerLine != 0 {
		return nil, fmt.Errorf("storage of %d bytes: %w",
			sizeInBytes, ErrMisalignedSize)
	}

	s := &Storage{
		capacity: sizeInBytes,
		words:    make([]uint32, sizeInBytes/BytesPerWord),
	}

	return s, nil
}

// Capacity returns the size of the storage in bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// Access reads and/or writes the line that contains addr. On a combined
// access the returned line is the content before the write.
func (s *Storage) Access(
	addr uint32,
	writeData Line,
	ctrl AccessControl,
) (Line, error) {
	var readData Line

	base, err := s.lineStart(addr)
	if err != nil {
		return readData, err
	}

	if ctrl.CanRead() {
		copy(readData[:], s.words[base:base+WordsPerLine])
	}

	if ctrl.CanWrite() {
		copy(s.words[base:base+WordsPerLine], writeData[:])
	}

	return readData, nil
}

// Read returns the line that contains addr.
func (s *Storage) Read(addr uint32) (Line, error) {
	return s.Access(addr, Line{}, ReadEnable)
}

// Write replaces the line that contains addr.
func (s *Storage) Write(addr uint32, line Line) error {
	_, err := s.Access(addr, line, WriteEnable)
	return err
}

// lineStart returns the word index of the line that holds addr.
func (s *Storage) lineStart(addr uint32) (uint64, error) {
	if uint64(addr) >= s.capacity {
		return 0, fmt.Errorf("accessing 0x%x in a %d-byte storage: %w",
			addr, s.capacity, ErrAddressOutOfRange)
	}

	return uint64(AlignToLine(addr)) / BytesPerWord, nil
}
