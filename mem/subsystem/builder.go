package subsystem

import (
	"github.com/sarchlab/memhier/mem/cache/l1"
	"github.com/sarchlab/memhier/mem/cache/l2"
)

// DefaultMemorySize is the size of the main store unless configured.
const DefaultMemorySize = 16 << 20

// A Builder can build memory subsystems.
type Builder struct {
	memorySize uint64
}

// MakeBuilder returns a Builder with the default memory size.
func MakeBuilder() Builder {
	return Builder{
		memorySize: DefaultMemorySize,
	}
}

// WithMemorySize sets the size of the main store in bytes. It must be a
// multiple of the 32-byte line size.
func (b Builder) WithMemorySize(sizeInBytes uint64) Builder {
	b.memorySize = sizeInBytes
	return b
}

// Build creates an initialized subsystem.
func (b Builder) Build(name string) (*Subsystem, error) {
	s := &Subsystem{
		name: name,
		l1:   l1.New(),
		l2:   l2.New(),
	}

	if err := s.Init(b.memorySize); err != nil {
		return nil, err
	}

	return s, nil
}
