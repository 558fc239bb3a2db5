package subsystem

import (
	"math/rand"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/memhier/mem/mem"
	"github.com/sarchlab/memhier/sim"
)

const (
	l1SetStride   = 0x4000
	l2IndexStride = 0x100000
)

var _ = Describe("Subsystem", func() {
	var (
		s *Subsystem
	)

	read := func(addr uint32) uint32 {
		v, err := s.Access(addr, 0, mem.ReadEnable)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		return v
	}

	write := func(addr, v uint32) {
		_, err := s.Access(addr, v, mem.WriteEnable)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		s, err = MakeBuilder().WithMemorySize(8 << 20).Build("Mem")
		Expect(err).NotTo(HaveOccurred())
	})

	Context("initialization", func() {
		It("should start with empty caches and zero counters", func() {
			Expect(s.Name()).To(Equal("Mem"))
			Expect(s.Stats()).To(Equal(Stats{}))
			Expect(s.L1().NumValidLines()).To(Equal(0))
			Expect(s.L2().NumValidLines()).To(Equal(0))
			Expect(s.Storage().Capacity()).To(Equal(uint64(8 << 20)))
		})

		It("should reject sizes that are not whole lines", func() {
			_, err := MakeBuilder().WithMemorySize(100).Build("Mem")
			Expect(err).To(MatchError(mem.ErrMisalignedSize))
		})

		It("should keep the old state when init fails", func() {
			write(0x40, 7)

			Expect(s.Init(33)).To(MatchError(mem.ErrMisalignedSize))

			Expect(read(0x40)).To(Equal(uint32(7)))
		})

		It("should forget everything on re-init", func() {
			write(0x40, 7)
			write(0x100040, 8)

			Expect(s.Init(8 << 20)).To(Succeed())

			Expect(s.Stats()).To(Equal(Stats{}))
			Expect(s.L1().NumValidLines()).To(Equal(0))
			Expect(s.L2().NumValidLines()).To(Equal(0))
			Expect(read(0x40)).To(Equal(uint32(0)))
			Expect(read(0x100040)).To(Equal(uint32(0)))
		})

		It("should be idempotent", func() {
			Expect(s.Init(1 << 20)).To(Succeed())
			Expect(s.Init(1 << 20)).To(Succeed())

			Expect(s.Stats()).To(Equal(Stats{}))
			Expect(s.Storage().Capacity()).To(Equal(uint64(1 << 20)))
		})
	})

	It("should refuse addresses beyond the main store", func() {
		_, err := s.Access(8<<20, 0, mem.ReadEnable)

		Expect(err).To(MatchError(mem.ErrAddressOutOfRange))
		Expect(s.Stats()).To(Equal(Stats{}))
		Expect(s.L1().NumValidLines()).To(Equal(0))
	})

	It("should refuse access before initialization", func() {
		s = &Subsystem{}

		_, err := s.Access(0, 0, mem.ReadEnable)

		Expect(err).To(MatchError(ErrNotInitialized))
	})

	It("should read zero from a fresh store", func() {
		Expect(read(0x1234)).To(Equal(uint32(0)))
		Expect(s.L1Misses()).To(Equal(uint64(1)))
		Expect(s.L2Misses()).To(Equal(uint64(1)))
	})

	It("should miss only once when reading the same word repeatedly", func() {
		for i := 0; i < 10; i++ {
			read(0x1000)
		}

		Expect(s.L1Misses()).To(Equal(uint64(1)))
		Expect(s.L2Misses()).To(Equal(uint64(1)))
		Expect(s.Accesses()).To(Equal(uint64(10)))
	})

	It("should hit for every word of a fetched line", func() {
		read(0x200)

		for i := uint32(0); i < mem.WordsPerLine; i++ {
			read(0x200 + i*mem.BytesPerWord)
		}

		Expect(s.L1Misses()).To(Equal(uint64(1)))
	})

	It("should return the old value on a combined read and write", func() {
		write(0x80, 1)

		old, err := s.Access(0x80, 2, mem.ReadWrite)

		Expect(err).NotTo(HaveOccurred())
		Expect(old).To(Equal(uint32(1)))
		Expect(read(0x80)).To(Equal(uint32(2)))
	})

	Context("coherence", func() {
		It("should return a written word on an L1 hit", func() {
			write(0x40, 0xdead)

			Expect(read(0x40)).To(Equal(uint32(0xdead)))
			Expect(s.L1Misses()).To(Equal(uint64(1)))
		})

		It("should return a written word after it moved to the L2", func() {
			a := uint32(0x40)
			write(a, 0x11)
			for k := uint32(1); k <= 3; k++ {
				read(a + k*l1SetStride)
			}
			s.HandlePeriodicTick()
			for k := uint32(1); k <= 3; k++ {
				read(a + k*l1SetStride)
			}
			read(a + 4*l1SetStride)

			_, inL1 := s.L1().Lookup(a)
			Expect(inL1).To(BeFalse())
			l2Entry, inL2 := s.L2().Lookup(a)
			Expect(inL2).To(BeTrue())
			Expect(l2Entry.Dirty).To(BeTrue())
			Expect(s.Stats().L1WriteBacks).To(Equal(uint64(1)))
			Expect(s.L2Misses()).To(Equal(uint64(5)))

			Expect(read(a)).To(Equal(uint32(0x11)))
			Expect(s.L1Misses()).To(Equal(uint64(6)))
			Expect(s.L2Misses()).To(Equal(uint64(5)))
		})

		It("should keep evicted data when the write-back misses in the L2",
			func() {
				a := uint32(0x40)
				write(a, 0xcafe)
				read(a + 1*l2IndexStride)
				read(a + 2*l2IndexStride)
				read(a + 3*l2IndexStride)
				s.HandlePeriodicTick()
				read(a + 1*l2IndexStride)
				read(a + 2*l2IndexStride)
				read(a + 3*l2IndexStride)

				read(a + 4*l2IndexStride)

				Expect(s.L1Misses()).To(Equal(uint64(5)))
				Expect(s.L2Misses()).To(Equal(uint64(6)))
				l2Entry, inL2 := s.L2().Lookup(a)
				Expect(inL2).To(BeTrue())
				Expect(l2Entry.Dirty).To(BeTrue())
				Expect(l2Entry.Line[0]).To(Equal(uint32(0xcafe)))

				line, err := s.Storage().Read(a)
				Expect(err).NotTo(HaveOccurred())
				Expect(line[0]).To(Equal(uint32(0)))

				Expect(read(a)).To(Equal(uint32(0xcafe)))
			})

		It("should write dirty L2 lines to the main store", func() {
			a := uint32(0x40)
			write(a, 0xcafe)
			read(a + 1*l2IndexStride)
			read(a + 2*l2IndexStride)
			read(a + 3*l2IndexStride)
			s.HandlePeriodicTick()
			read(a + 1*l2IndexStride)
			read(a + 2*l2IndexStride)
			read(a + 3*l2IndexStride)
			read(a + 4*l2IndexStride)

			read(a + 5*l2IndexStride)

			Expect(s.Stats().L2WriteBacks).To(Equal(uint64(1)))
			line, err := s.Storage().Read(a)
			Expect(err).NotTo(HaveOccurred())
			Expect(line[0]).To(Equal(uint32(0xcafe)))

			Expect(read(a)).To(Equal(uint32(0xcafe)))
		})

		It("should match a flat memory under random traffic", func() {
			r := rand.New(rand.NewSource(1))
			known := make(map[uint32]uint32)
			last := s.Stats()

			for i := 0; i < 20000; i++ {
				addr := uint32(r.Intn(8))*l2IndexStride +
					uint32(r.Intn(6))*l1SetStride +
					uint32(r.Intn(2))*mem.BytesPerLine +
					uint32(r.Intn(8))*mem.BytesPerWord

				switch r.Intn(4) {
				case 0:
					v := r.Uint32()
					write(addr, v)
					known[addr] = v
				case 1:
					v := r.Uint32()
					old, err := s.Access(addr, v, mem.ReadWrite)
					Expect(err).NotTo(HaveOccurred())
					Expect(old).To(Equal(known[addr]))
					known[addr] = v
				case 2:
					s.HandlePeriodicTick()
				default:
					Expect(read(addr)).To(Equal(known[addr]),
						"address 0x%x", addr)
				}

				now := s.Stats()
				Expect(now.L1Misses).To(BeNumerically(">=", last.L1Misses))
				Expect(now.L2Misses).To(BeNumerically(">=", last.L2Misses))
				last = now
			}
		})
	})

	Context("with hooks", func() {
		var (
			mockCtrl *gomock.Controller
			hook     *MockHook
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			hook = NewMockHook(mockCtrl)
			s.AcceptHook(hook)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should report a cold read as two misses then the access", func() {
			var ctxs []sim.HookCtx
			hook.EXPECT().
				Func(gomock.Any()).
				Do(func(ctx sim.HookCtx) { ctxs = append(ctxs, ctx) }).
				Times(3)

			read(0x44)

			Expect(ctxs[0].Pos).To(Equal(HookPosL1Miss))
			Expect(ctxs[0].Item).To(Equal(MissInfo{
				Level: LevelL1, Address: 0x44, Intent: IntentRead,
			}))
			Expect(ctxs[1].Pos).To(Equal(HookPosL2Miss))
			Expect(ctxs[2].Pos).To(Equal(HookPosAccess))
			Expect(ctxs[2].Item).To(Equal(AccessInfo{
				Address:  0x44,
				Control:  mem.ReadEnable,
				L1Miss:   true,
				L2Misses: 1,
			}))
		})

		It("should report a full line leaving the L1", func() {
			var writeBacks []WriteBackInfo
			hook.EXPECT().
				Func(gomock.Any()).
				Do(func(ctx sim.HookCtx) {
					if wb, ok := ctx.Item.(WriteBackInfo); ok {
						writeBacks = append(writeBacks, wb)
					}
				}).
				AnyTimes()

			x := uint32(0x80)
			var expected mem.Line
			for i := uint32(0); i < mem.WordsPerLine; i++ {
				expected[i] = 0x100 + i
				write(x+i*mem.BytesPerWord, expected[i])
			}
			Expect(s.L1Misses()).To(Equal(uint64(1)))
			Expect(s.L2Misses()).To(Equal(uint64(1)))

			s.HandlePeriodicTick()
			for k := uint32(1); k <= 3; k++ {
				read(x + k*l1SetStride)
			}
			Expect(writeBacks).To(BeEmpty())

			read(x + 4*l1SetStride)

			Expect(writeBacks).To(ConsistOf(WriteBackInfo{
				From:    LevelL1,
				Address: x,
				Line:    expected,
			}))
			entry, ok := s.L2().Lookup(x)
			Expect(ok).To(BeTrue())
			Expect(entry.Line).To(Equal(expected))
		})

		It("should report periodic ticks", func() {
			hook.EXPECT().Func(sim.HookCtx{
				Domain: s,
				Pos:    HookPosPeriodicTick,
				Item:   uint64(1),
			})

			s.HandlePeriodicTick()
		})
	})

	It("should clear the L1 reference bits on a tick", func() {
		read(0x40)
		entry, _ := s.L1().Lookup(0x40)
		Expect(entry.Reference).To(BeTrue())

		s.HandlePeriodicTick()

		entry, _ = s.L1().Lookup(0x40)
		Expect(entry.Reference).To(BeFalse())
		Expect(entry.Valid).To(BeTrue())
		Expect(s.Stats().Ticks).To(Equal(uint64(1)))
	})

	It("should keep counting ticks while no hook listens", func() {
		s.HandlePeriodicTick()
		s.HandlePeriodicTick()
		Expect(s.NumHooks()).To(Equal(0))
		Expect(s.Stats().Ticks).To(Equal(uint64(2)))

		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		hook := NewMockHook(mockCtrl)
		s.AcceptHook(hook)
		hook.EXPECT().Func(sim.HookCtx{
			Domain: s,
			Pos:    HookPosPeriodicTick,
			Item:   uint64(3),
		})

		s.HandlePeriodicTick()
	})
})

var _ = Describe("Synced", func() {
	It("should serialize concurrent users", func() {
		s, err := MakeBuilder().WithMemorySize(4 << 20).Build("Mem")
		Expect(err).NotTo(HaveOccurred())
		synced := NewSynced(s)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g uint32) {
				defer wg.Done()
				for i := uint32(0); i < 256; i++ {
					addr := g*l2IndexStride/2 + i*mem.BytesPerWord
					if _, err := synced.Access(addr, g<<16|i, mem.WriteEnable); err != nil {
						errs <- err
						return
					}
					if i%64 == 0 {
						synced.HandlePeriodicTick()
					}
				}
			}(uint32(g))
		}
		wg.Wait()
		close(errs)
		Expect(errs).To(BeEmpty())

		for g := uint32(0); g < 8; g++ {
			for i := uint32(0); i < 256; i++ {
				addr := g*l2IndexStride/2 + i*mem.BytesPerWord
				v, err := synced.Access(addr, 0, mem.ReadEnable)
				Expect(err).NotTo(HaveOccurred())
				Expect(v).To(Equal(g<<16 | i))
			}
		}

		Expect(synced.Name()).To(Equal("Mem"))
		Expect(synced.Stats().Accesses).To(Equal(uint64(2 * 8 * 256)))
		synced.Do(func(s *Subsystem) {
			Expect(s.Stats().Ticks).To(Equal(uint64(8 * 4)))
		})

		snapshot := synced.Snapshot()
		Expect(snapshot.Name).To(Equal("Mem"))
		Expect(snapshot.MemorySize).To(Equal(uint64(4 << 20)))
		Expect(snapshot.L1ValidLines).To(BeNumerically(">", 0))
		Expect(snapshot.L2ValidLines).To(BeNumerically(">", 0))
	})
})
