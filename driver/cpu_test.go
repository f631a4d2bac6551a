package driver

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ramulator/processor"
	"github.com/sarchlab/ramulator/simconfig"
	"github.com/sarchlab/ramulator/statsreg"
	"github.com/sarchlab/ramulator/trace"
)

var _ = Describe("CPUDriver", func() {
	Context("default termination", func() {
		It("drains memory once the processor finishes", func() {
			mem := mustMemory("DDR4")
			stats := statsreg.New()

			reader := trace.NewCPUReader(strings.NewReader("10 0 R\n10 64 W\n"))
			core := processor.NewCore("core0", reader, mem.Send)
			proc := processor.New(core)

			cfg := simconfig.Config{CPUTick: 1, MemTick: 1}

			d := NewCPUDriver(mem, proc, stats, cfg)
			d.Run()

			Expect(proc.Finished()).To(BeTrue())
			Expect(mem.PendingRequests()).To(Equal(0))
		})
	})

	Context("early-exit termination", func() {
		It("stops as soon as the processor finishes", func() {
			mem := mustMemory("DDR4")
			stats := statsreg.New()

			reader := trace.NewCPUReader(strings.NewReader("10 0 R\n"))
			core := processor.NewCore("core0", reader, mem.Send)
			proc := processor.New(core)

			cfg := simconfig.Config{CPUTick: 1, MemTick: 1, EarlyExit: true}

			d := NewCPUDriver(mem, proc, stats, cfg)
			d.Run()

			Expect(proc.Finished()).To(BeTrue())
		})
	})

	Context("warmup", func() {
		It("resets instruction counts once warmup ends", func() {
			mem := mustMemory("DDR4")
			stats := statsreg.New()

			reader := trace.NewCPUReader(strings.NewReader(strings.Repeat("1 0 R\n", 50)))
			core := processor.NewCore("core0", reader, mem.Send)
			proc := processor.New(core)

			cfg := simconfig.Config{CPUTick: 1, MemTick: 1, WarmupInsts: 5}

			d := NewCPUDriver(mem, proc, stats, cfg)
			d.warmup()

			Expect(core.Insts()).To(BeNumerically(">=", 5), "expected warmup to retire at least 5 instructions before stopping")

			d.proc.ResetInsts()
			Expect(core.Insts()).To(Equal(uint64(0)))
		})
	})
})
