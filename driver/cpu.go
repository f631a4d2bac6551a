package driver

import (
	"fmt"

	"github.com/sarchlab/ramulator/memory"
	"github.com/sarchlab/ramulator/processor"
	"github.com/sarchlab/ramulator/simconfig"
	"github.com/sarchlab/ramulator/statsreg"
)

// CPUDriver runs spec.md section 4.6's CPU-trace mode: a warmup phase with
// stats off, then a steady-state phase with CPU:memory ticks interleaved in
// the config's cpu_tick:mem_tick ratio. Hybrid tiering has no CPU-trace
// counterpart in this engine (there is exactly one processor front-end and
// it feeds exactly one Memory); wiring a second tier here is a
// configuration error the caller should reject before constructing a
// CPUDriver.
type CPUDriver struct {
	mem   *memory.Memory
	proc  *processor.Processor
	stats *statsreg.Registry
	cfg   simconfig.Config
}

// NewCPUDriver creates a driver over mem and proc.
func NewCPUDriver(mem *memory.Memory, proc *processor.Processor, stats *statsreg.Registry, cfg simconfig.Config) *CPUDriver {
	return &CPUDriver{mem: mem, proc: proc, stats: stats, cfg: cfg}
}

// Run drives warmup then steady-state to completion.
func (d *CPUDriver) Run() {
	d.warmup()

	d.stats.MarkWarmupComplete()
	d.proc.ResetInsts()

	d.steady()

	d.mem.Finish()
}

// warmup ticks the CPU every cycle and the memory mem_tick times every
// cpu_tick CPU cycles, until every core's committed-instruction count
// reaches warmup_insts. If the trace runs out first, it warns and moves on
// rather than looping forever: spec.md section 4.6.
func (d *CPUDriver) warmup() {
	warmupInsts := d.cfg.WarmupInsts
	isWarmingUp := warmupInsts != 0

	for i := 0; isWarmingUp; i++ {
		d.proc.Tick(uint64(i))
		d.stats.Tick()

		if i%d.cfg.CPUTick == d.cfg.CPUTick-1 {
			for j := 0; j < d.cfg.MemTick; j++ {
				d.mem.Tick()
			}
		}

		isWarmingUp = false
		for _, c := range d.proc.Cores() {
			if c.Insts() < warmupInsts {
				isWarmingUp = true
			}
		}

		if isWarmingUp && d.proc.HasReachedLimit() {
			fmt.Println("warning: the input trace was exhausted during warmup; " +
				"consider lowering warmup_insts")
			break
		}
	}
}

// steady ticks the CPU once every mem_tick cycles and the memory once every
// cpu_tick cycles, out of a cpu_tick*mem_tick period, stopping per the
// configured termination mode. calc_weighted_speedup and is_early_exit both
// stop before any final drain of in-flight memory requests: this is
// intentional, mirroring the original trace toolchain, not an oversight --
// a caller that needs a fully-drained pending_requests()==0 state on exit
// must use the default (neither flag set) termination mode.
func (d *CPUDriver) steady() {
	tickMult := d.cfg.CPUTick * d.cfg.MemTick

	for i := 0; ; i++ {
		if (i%tickMult)%d.cfg.MemTick == 0 {
			d.proc.Tick(uint64(i))
			d.stats.Tick()

			switch {
			case d.cfg.CalcWeightedSpeedup:
				if d.proc.HasReachedLimit() {
					return
				}
			case d.cfg.EarlyExit:
				if d.proc.Finished() {
					return
				}
			default:
				if d.proc.Finished() && d.mem.PendingRequests() == 0 {
					return
				}
			}
		}

		if (i%tickMult)%d.cfg.CPUTick == 0 {
			d.mem.Tick()
		}
	}
}
