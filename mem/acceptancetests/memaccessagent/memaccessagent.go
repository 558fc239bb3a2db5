// Package memaccessagent provides a component that stresses a memory
// subsystem with random reads and writes and checks every value it reads.
package memaccessagent

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/sarchlab/memhier/mem/mem"
	"github.com/sarchlab/memhier/sim"
)

var dumpLog = false

// Memory is the system under test.
type Memory interface {
	Access(addr, writeData uint32, ctrl mem.AccessControl) (uint32, error)
}

// A Mismatch is a read that did not return the last value written.
type Mismatch struct {
	Time     sim.VTime
	Address  uint32
	Expected uint32
	Actual   uint32
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%d ps: 0x%x expected 0x%x, got 0x%x",
		m.Time, m.Address, m.Expected, m.Actual)
}

// A MemAccessAgent is a Component that can help testing the memory subsystem
// by generating a large number of read and write requests. It issues one
// request per cycle.
type MemAccessAgent struct {
	*sim.TickingComponent

	Memory     Memory
	MaxAddress uint32

	WriteLeft     int
	ReadLeft      int
	KnownMemValue map[uint32]uint32
	Mismatches    []Mismatch

	rand *rand.Rand
	err  error
}

// Tick issues one read or write.
func (a *MemAccessAgent) Tick() bool {
	if a.err != nil {
		return false
	}

	if a.ReadLeft == 0 && a.WriteLeft == 0 {
		return false
	}

	if a.WriteLeft == 0 && len(a.KnownMemValue) == 0 {
		return false
	}

	if a.shouldRead() {
		a.doRead()
	} else {
		a.doWrite()
	}

	return a.err == nil
}

func (a *MemAccessAgent) shouldRead() bool {
	if len(a.KnownMemValue) == 0 {
		return false
	}

	if a.ReadLeft == 0 {
		return false
	}

	if a.WriteLeft == 0 {
		return true
	}

	dice := a.rand.Float64()

	return dice > 0.5
}

func (a *MemAccessAgent) doRead() {
	address := a.randomReadAddress()

	data, err := a.Memory.Access(address, 0, mem.ReadEnable)
	if err != nil {
		a.err = err
		return
	}

	a.ReadLeft--

	if dumpLog {
		log.Printf("%d, agent, read, 0x%X, 0x%X\n",
			a.CurrentTime(), address, data)
	}

	a.checkReadResult(address, data)
}

func (a *MemAccessAgent) randomReadAddress() uint32 {
	for {
		addr := a.randomAddress()
		if _, written := a.KnownMemValue[addr]; written {
			return addr
		}
	}
}

func (a *MemAccessAgent) randomAddress() uint32 {
	return uint32(a.rand.Int63n(int64(a.MaxAddress/mem.BytesPerWord))) *
		mem.BytesPerWord
}

// doWrite writes a random word. Some writes also read the old value back in
// the same access.
func (a *MemAccessAgent) doWrite() {
	address := a.randomAddress()
	data := a.rand.Uint32()

	ctrl := mem.WriteEnable
	old, known := a.KnownMemValue[address]

	if known && a.rand.Intn(4) == 0 {
		ctrl = mem.ReadWrite
	}

	oldData, err := a.Memory.Access(address, data, ctrl)
	if err != nil {
		a.err = err
		return
	}

	if dumpLog {
		log.Printf("%d, agent, %s, 0x%X, 0x%X\n",
			a.CurrentTime(), ctrl, address, data)
	}

	if ctrl == mem.ReadWrite && oldData != old {
		a.addMismatch(address, old, oldData)
	}

	a.WriteLeft--
	a.KnownMemValue[address] = data
}

func (a *MemAccessAgent) checkReadResult(address, data uint32) {
	expected := a.KnownMemValue[address]
	if data != expected {
		a.addMismatch(address, expected, data)
	}
}

func (a *MemAccessAgent) addMismatch(address, expected, actual uint32) {
	m := Mismatch{
		Time:     a.CurrentTime(),
		Address:  address,
		Expected: expected,
		Actual:   actual,
	}

	a.Mismatches = append(a.Mismatches, m)

	log.Printf("mismatch, %s\n", m)
}

// Start schedules the first request.
func (a *MemAccessAgent) Start() {
	a.TickNow()
}

// Err returns the error that stopped the agent, if any.
func (a *MemAccessAgent) Err() error {
	return a.err
}

// Done tells if all the requests have been issued.
func (a *MemAccessAgent) Done() bool {
	return a.ReadLeft == 0 && a.WriteLeft == 0
}
