package memaccessagent

import (
	"log"
	"math/rand"

	"github.com/sarchlab/memhier/sim"
)

// Builder can build memory access agents.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	maxAddress uint32
	writeLeft  int
	readLeft   int
	seed       int64
	memory     Memory
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() *Builder {
	return &Builder{
		freq:       1 * sim.GHz,
		maxAddress: 1024 * 1024,
		writeLeft:  1000,
		readLeft:   1000,
		seed:       1,
	}
}

func (b *Builder) WithEngine(engine sim.Engine) *Builder {
	b.engine = engine
	return b
}

func (b *Builder) WithFreq(freq sim.Freq) *Builder {
	b.freq = freq
	return b
}

func (b *Builder) WithMaxAddress(addr uint32) *Builder {
	b.maxAddress = addr
	return b
}

func (b *Builder) WithWriteLeft(write int) *Builder {
	b.writeLeft = write
	return b
}

func (b *Builder) WithReadLeft(read int) *Builder {
	b.readLeft = read
	return b
}

func (b *Builder) WithSeed(seed int64) *Builder {
	b.seed = seed
	return b
}

func (b *Builder) WithMemory(memory Memory) *Builder {
	b.memory = memory
	return b
}

func (b *Builder) Build(name string) *MemAccessAgent {
	if b.maxAddress < 4 {
		log.Panic("max address must cover at least one word")
	}

	agent := &MemAccessAgent{
		Memory:        b.memory,
		MaxAddress:    b.maxAddress,
		WriteLeft:     b.writeLeft,
		ReadLeft:      b.readLeft,
		KnownMemValue: make(map[uint32]uint32),
		rand:          rand.New(rand.NewSource(b.seed)),
	}

	agent.TickingComponent = sim.NewTickingComponent(
		name, b.engine, b.freq, agent)

	return agent
}
