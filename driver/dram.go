package driver

import (
	"fmt"

	"github.com/sarchlab/ramulator/memory"
	"github.com/sarchlab/ramulator/request"
	"github.com/sarchlab/ramulator/statsreg"
	"github.com/sarchlab/ramulator/trace"
)

// DRAMDriver runs spec.md section 4.6's DRAM-trace mode: one request per
// trace line, routed to Tier2 (when present) by address range, with Tier1
// alone in the non-hybrid case.
type DRAMDriver struct {
	tier1 *memory.Memory
	tier2 *memory.Memory // nil outside hybrid mode

	reader *trace.DRAMReader
	stats  *statsreg.Registry

	pending   *request.Request
	exhausted bool
}

// NewDRAMDriver creates a driver over tier1 (and, in hybrid mode, tier2).
func NewDRAMDriver(tier1, tier2 *memory.Memory, reader *trace.DRAMReader, stats *statsreg.Registry) *DRAMDriver {
	return &DRAMDriver{tier1: tier1, tier2: tier2, reader: reader, stats: stats}
}

// Run drives the loop to completion: trace exhausted and every tier has
// zero pending requests.
func (d *DRAMDriver) Run() error {
	for {
		if err := d.fill(); err != nil {
			return err
		}

		if d.pending != nil {
			if d.dispatch(d.pending) {
				d.pending = nil
			}
		}

		if d.exhausted && d.totalPending() > 0 {
			d.tier1.SetHighWriteQWatermark(0)
			if d.tier2 != nil {
				d.tier2.SetHighWriteQWatermark(0)
			}
		}

		d.tier1.Tick()
		if d.tier2 != nil {
			d.tier2.Tick()
		}
		d.stats.Tick()

		if d.exhausted && d.pending == nil && d.totalPending() == 0 {
			break
		}
	}

	d.tier1.Finish()
	if d.tier2 != nil {
		d.tier2.Finish()
	}
	return nil
}

// fill reads the next trace entry into d.pending, if there isn't already
// one awaiting acceptance (a stalled send from a prior tick).
func (d *DRAMDriver) fill() error {
	if d.exhausted || d.pending != nil {
		return nil
	}

	entry, ok, err := d.reader.Next()
	if err != nil {
		return err
	}
	if !ok {
		d.exhausted = true
		return nil
	}

	d.pending = request.New(entry.Address, entry.Type, nil)
	return nil
}

// dispatch routes r to the correct tier by address range and sends it.
// Hybrid routing outside both tiers' ranges is a fatal configuration/data
// error per spec.md section 5's invariant.
func (d *DRAMDriver) dispatch(r *request.Request) bool {
	if d.tier2 == nil {
		return d.tier1.Send(r)
	}

	max1 := d.tier1.MaxAddress()
	switch {
	case r.Address < max1:
		return d.tier1.Send(r)
	case r.Address < max1+d.tier2.MaxAddress():
		return d.tier2.Send(r)
	default:
		panic(fmt.Sprintf("driver: address %d is outside both tiers' ranges (max1=%d, max2=%d)", r.Address, max1, d.tier2.MaxAddress()))
	}
}

func (d *DRAMDriver) totalPending() int {
	total := d.tier1.PendingRequests()
	if d.tier2 != nil {
		total += d.tier2.PendingRequests()
	}
	return total
}
