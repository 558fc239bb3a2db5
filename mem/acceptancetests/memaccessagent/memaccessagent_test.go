package memaccessagent

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memhier/interrupt"
	"github.com/sarchlab/memhier/mem/mem"
	"github.com/sarchlab/memhier/mem/subsystem"
	"github.com/sarchlab/memhier/sim"
)

// forgetfulMemory loses every write to one address.
type forgetfulMemory struct {
	words     map[uint32]uint32
	forgotten uint32
}

func (m *forgetfulMemory) Access(
	addr, writeData uint32,
	ctrl mem.AccessControl,
) (uint32, error) {
	old := m.words[addr]

	if ctrl.CanWrite() && addr != m.forgotten {
		m.words[addr] = writeData
	}

	return old, nil
}

var _ = Describe("MemAccessAgent", func() {
	var (
		engine *sim.SerialEngine
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	It("should find no mismatch on the memory subsystem", func() {
		memory, err := subsystem.MakeBuilder().
			WithMemorySize(4 << 20).
			Build("Mem")
		Expect(err).NotTo(HaveOccurred())

		agent := MakeBuilder().
			WithEngine(engine).
			WithMemory(memory).
			WithMaxAddress(4 << 20).
			WithReadLeft(5000).
			WithWriteLeft(5000).
			WithSeed(7).
			Build("Agent")
		clock := interrupt.MakeBuilder().
			WithEngine(engine).
			WithInterval(100).
			WithTarget(memory).
			Build("Clock")

		agent.Start()
		clock.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(agent.Err()).NotTo(HaveOccurred())
		Expect(agent.Done()).To(BeTrue())
		Expect(agent.Mismatches).To(BeEmpty())
		Expect(memory.Accesses()).To(Equal(uint64(10000)))
		Expect(memory.Stats().L1WriteBacks).To(BeNumerically(">", 0))
	})

	It("should report values that were lost", func() {
		memory := &forgetfulMemory{
			words:     make(map[uint32]uint32),
			forgotten: 0,
		}

		agent := MakeBuilder().
			WithEngine(engine).
			WithMemory(memory).
			WithMaxAddress(16).
			WithReadLeft(200).
			WithWriteLeft(200).
			Build("Agent")

		agent.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(agent.Done()).To(BeTrue())
		Expect(agent.Mismatches).NotTo(BeEmpty())
		for _, m := range agent.Mismatches {
			Expect(m.Address).To(Equal(uint32(0)))
		}
	})

	It("should stop when the memory fails", func() {
		memory, err := subsystem.MakeBuilder().
			WithMemorySize(1024).
			Build("Mem")
		Expect(err).NotTo(HaveOccurred())

		agent := MakeBuilder().
			WithEngine(engine).
			WithMemory(memory).
			WithMaxAddress(1 << 20).
			Build("Agent")

		agent.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(agent.Err()).To(MatchError(mem.ErrAddressOutOfRange))
		Expect(agent.Done()).To(BeFalse())
	})

	It("should not read when nothing can be written", func() {
		agent := MakeBuilder().
			WithEngine(engine).
			WithMemory(&forgetfulMemory{words: map[uint32]uint32{}}).
			WithReadLeft(10).
			WithWriteLeft(0).
			Build("Agent")

		agent.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(agent.ReadLeft).To(Equal(10))
	})
})
