package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	It("should generate sequential ids", func() {
		g := &sequentialIDGenerator{}

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should generate unique parallel ids", func() {
		g := parallelIDGenerator{}

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
		Expect(g.Generate()).To(HaveLen(20))
	})

	It("should refuse to change the generator after use", func() {
		GetIDGenerator()

		Expect(UseParallelIDGenerator).To(Panic())
	})
})
