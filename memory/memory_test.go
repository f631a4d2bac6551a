package memory

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ramulator/request"
)

func mustMemory(channels int) *Memory {
	m, err := New("mem0", Options{
		Channels: channels,
		Ranks:    1,
		Standard: "DDR4",
		Org:      "DDR4_4Gb_x8",
		Speed:    "DDR4_2400R",
	})
	Expect(err).NotTo(HaveOccurred())
	return m
}

var _ = Describe("Memory", func() {
	Context("Send", func() {
		It("routes an in-range request to its target channel", func() {
			m := mustMemory(2)

			r := request.New(0, request.Read, nil)
			Expect(m.Send(r)).To(BeTrue(), "Send should accept an in-range request")
			Expect(m.PendingRequests()).To(Equal(1))
		})

		It("still accepts an address beyond MaxAddress, since the excess bits land in the row index", func() {
			m := mustMemory(1)

			r := request.New(m.MaxAddress()*4, request.Read, nil)
			Expect(m.Send(r)).To(BeTrue(), "an out-of-range address is mapped, not rejected")
		})
	})

	Context("Tick", func() {
		It("drains a single read request to completion", func() {
			m := mustMemory(1)

			var completed bool
			r := request.New(0, request.Read, func(*request.Request) { completed = true })
			m.Send(r)

			for i := 0; i < 1000 && m.PendingRequests() > 0; i++ {
				m.Tick()
			}

			Expect(completed).To(BeTrue(), "expected the request to complete within 1000 cycles")
		})
	})

	Context("MaxAddress", func() {
		It("is positive", func() {
			m := mustMemory(1)
			Expect(m.MaxAddress()).To(BeNumerically(">", 0))
		})
	})
})
