package driver

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ramulator/memory"
	"github.com/sarchlab/ramulator/request"
	"github.com/sarchlab/ramulator/statsreg"
	"github.com/sarchlab/ramulator/trace"
)

func mustMemory(standard string) *memory.Memory {
	opts := memory.Options{Channels: 1, Ranks: 1, Standard: standard}
	switch standard {
	case "DDR4":
		opts.Org, opts.Speed = "DDR4_4Gb_x8", "DDR4_2400R"
	case "PCM":
		opts.Org, opts.Speed = "PCM_4Gb", "PCM_800"
	}
	m, err := memory.New(standard, opts)
	Expect(err).NotTo(HaveOccurred())
	return m
}

var _ = Describe("DRAMDriver", func() {
	It("drains a single read to zero pending requests", func() {
		mem := mustMemory("DDR4")
		reader := trace.NewDRAMReader(strings.NewReader("0 R\n"))
		stats := statsreg.New()

		d := NewDRAMDriver(mem, nil, reader, stats)
		Expect(d.Run()).To(Succeed())

		Expect(mem.PendingRequests()).To(Equal(0))
	})

	Context("hybrid routing", func() {
		It("routes by address range and drains both tiers", func() {
			tier1 := mustMemory("DDR4")
			tier2 := mustMemory("PCM")

			reader := trace.NewDRAMReader(strings.NewReader("0 R\n"))
			stats := statsreg.New()

			d := NewDRAMDriver(tier1, tier2, reader, stats)
			Expect(d.Run()).To(Succeed())

			Expect(tier1.PendingRequests()).To(Equal(0))
			Expect(tier2.PendingRequests()).To(Equal(0))
		})

		It("panics on an address outside both tiers' ranges", func() {
			tier1 := mustMemory("DDR4")
			tier2 := mustMemory("PCM")

			huge := tier1.MaxAddress() + tier2.MaxAddress() + 1
			reader := trace.NewDRAMReader(strings.NewReader(""))
			stats := statsreg.New()
			d := NewDRAMDriver(tier1, tier2, reader, stats)

			Expect(func() {
				d.dispatch(request.New(huge, request.Read, nil))
			}).To(Panic())
		})
	})
})
