package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NRUVictimFinder", func() {
	var (
		vf   *NRUVictimFinder
		r0d0 = WayState{Valid: true}
		r0d1 = WayState{Valid: true, Dirty: true}
		r1d0 = WayState{Valid: true, Reference: true}
		r1d1 = WayState{Valid: true, Reference: true, Dirty: true}
		none = WayState{}
	)

	BeforeEach(func() {
		vf = NewNRUVictimFinder()
	})

	It("should use the first invalid way without evicting", func() {
		way, evict := vf.FindVictim([]WayState{r1d0, r1d0, none, none})

		Expect(way).To(Equal(2))
		Expect(evict).To(BeFalse())
	})

	It("should prefer an invalid way over any valid class", func() {
		way, evict := vf.FindVictim([]WayState{r0d0, r0d0, r0d0, none})

		Expect(way).To(Equal(3))
		Expect(evict).To(BeFalse())
	})

	It("should ignore the stale flags of invalid ways", func() {
		stale := WayState{Reference: true, Dirty: true}
		way, evict := vf.FindVictim([]WayState{r1d1, stale, r0d0, r0d0})

		Expect(way).To(Equal(1))
		Expect(evict).To(BeFalse())
	})

	DescribeTable("should evict by class, earliest way first",
		func(ways []WayState, expected int) {
			way, evict := vf.FindVictim(ways)

			Expect(way).To(Equal(expected))
			Expect(evict).To(BeTrue())
		},
		Entry("one of each class", []WayState{r0d0, r0d1, r1d0, r1d1}, 0),
		Entry("one of each class reversed", []WayState{r1d1, r1d0, r0d1, r0d0}, 3),
		Entry("clean unreferenced beats dirty unreferenced",
			[]WayState{r0d1, r0d1, r0d0, r0d0}, 2),
		Entry("dirty unreferenced beats clean referenced",
			[]WayState{r1d0, r1d1, r0d1, r1d0}, 2),
		Entry("clean referenced beats dirty referenced",
			[]WayState{r1d1, r1d1, r1d1, r1d0}, 3),
		Entry("falls back to way 0", []WayState{r1d1, r1d1, r1d1, r1d1}, 0),
		Entry("earliest clean referenced", []WayState{r1d1, r1d0, r1d0, r1d1}, 1),
	)
})
