package l2

import (
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memhier/mem/cache"
	"github.com/sarchlab/memhier/mem/mem"
)

// Addresses 1MB apart share an entry and differ only in the tag.
const sameIndexStride = 1 << 20

func lineOf(base uint32) mem.Line {
	var l mem.Line
	for i := range l {
		l[i] = base + uint32(i)
	}

	return l
}

var _ = ginkgo.Describe("Cache", func() {
	var c *Cache

	ginkgo.BeforeEach(func() {
		c = New()
	})

	ginkgo.It("should have 1MB of capacity", func() {
		Expect(NumEntries * mem.BytesPerLine).To(Equal(1 << 20))
		Expect(Layout.NumIndices()).To(Equal(NumEntries))
		Expect(Layout.TagBits()).To(Equal(uint(12)))
	})

	ginkgo.It("should miss on a cold cache", func() {
		line, outcome := c.Access(0x100, mem.Line{}, mem.ReadEnable)

		Expect(outcome).To(Equal(cache.Miss))
		Expect(line).To(BeZero())
	})

	ginkgo.It("should not change anything on a write miss", func() {
		_, outcome := c.Access(0x100, lineOf(1), mem.WriteEnable)

		Expect(outcome).To(Equal(cache.Miss))
		Expect(c.NumValidLines()).To(BeZero())
	})

	ginkgo.Context("when a line is present", func() {
		ginkgo.BeforeEach(func() {
			_, wb := c.InsertLine(0x12345, lineOf(10))
			Expect(wb).To(BeFalse())
		})

		ginkgo.It("should be clean after insertion", func() {
			e, found := c.Lookup(0x12340)

			Expect(found).To(BeTrue())
			Expect(e.Dirty).To(BeFalse())
		})

		ginkgo.It("should read the whole line from anywhere in it", func() {
			line, outcome := c.Access(0x1235F, mem.Line{}, mem.ReadEnable)

			Expect(outcome).To(Equal(cache.Hit))
			Expect(line).To(Equal(lineOf(10)))
		})

		ginkgo.It("should write the whole line and mark it dirty", func() {
			_, outcome := c.Access(0x12340, lineOf(20), mem.WriteEnable)
			Expect(outcome).To(Equal(cache.Hit))

			e, _ := c.Lookup(0x12340)
			Expect(e.Line).To(Equal(lineOf(20)))
			Expect(e.Dirty).To(BeTrue())
		})

		ginkgo.It("should return the old line on a combined read and write", func() {
			line, _ := c.Access(0x12340, lineOf(20), mem.ReadWrite)
			Expect(line).To(Equal(lineOf(10)))

			line, _ = c.Access(0x12340, mem.Line{}, mem.ReadEnable)
			Expect(line).To(Equal(lineOf(20)))
		})

		ginkgo.It("should miss on a tag mismatch", func() {
			_, outcome := c.Access(0x12340+sameIndexStride, mem.Line{}, mem.ReadEnable)

			Expect(outcome).To(Equal(cache.Miss))
		})

		ginkgo.It("should replace a clean line silently", func() {
			_, wb := c.InsertLine(0x12340+sameIndexStride, lineOf(30))

			Expect(wb).To(BeFalse())
			_, found := c.Lookup(0x12340)
			Expect(found).To(BeFalse())
		})

		ginkgo.It("should write back a dirty line when replaced", func() {
			c.Access(0x12340, lineOf(20), mem.WriteEnable)

			wb, needed := c.InsertLine(0x12350+3*sameIndexStride, lineOf(30))

			Expect(needed).To(BeTrue())
			Expect(wb.Address).To(Equal(uint32(0x12340)))
			Expect(wb.Line).To(Equal(lineOf(20)))

			e, found := c.Lookup(0x12340 + 3*sameIndexStride)
			Expect(found).To(BeTrue())
			Expect(e.Dirty).To(BeFalse())
			Expect(e.Line).To(Equal(lineOf(30)))
		})

		ginkgo.It("should not hit after reset", func() {
			c.Reset()

			_, outcome := c.Access(0x12340, mem.Line{}, mem.ReadEnable)
			Expect(outcome).To(Equal(cache.Miss))
		})

		ginkgo.It("should not write back a stale dirty line after reset", func() {
			c.Access(0x12340, lineOf(20), mem.WriteEnable)
			c.Reset()

			_, wb := c.InsertLine(0x12340, lineOf(40))
			Expect(wb).To(BeFalse())
		})
	})

	ginkgo.It("should rebuild addresses with the high tag bits", func() {
		c.InsertLine(0xFFFFFFE0, lineOf(1))
		c.Access(0xFFFFFFE0, lineOf(2), mem.WriteEnable)

		wb, needed := c.InsertLine(0x000FFFE0, lineOf(3))

		Expect(needed).To(BeTrue())
		Expect(wb.Address).To(Equal(uint32(0xFFFFFFE0)))
	})
})
