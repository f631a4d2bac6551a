// Package processor implements the minimal CPU front-end spec.md section
// 4.6 calls an external collaborator: it replays each core's CPU trace,
// retiring non-memory instructions one per cycle and emitting a
// request.Request through a send sink whenever a burst's trailing memory
// access comes due, retrying on back-pressure exactly like the DRAM-trace
// driver does.
package processor

import (
	"github.com/sarchlab/ramulator/request"
	"github.com/sarchlab/ramulator/trace"
)

// Send admits a Request to a Memory (or a hybrid router in front of two),
// reporting false on back-pressure.
type Send func(*request.Request) bool

// Core drives one trace file's worth of instructions.
type Core struct {
	name   string
	reader *trace.CPUReader
	send   Send

	insts uint64

	bubblesLeft    uint64
	awaitingAccess bool
	pending        trace.CPURecord
	exhausted      bool
}

// NewCore creates a Core reading from reader, calling send for each memory
// access its trace describes.
func NewCore(name string, reader *trace.CPUReader, send Send) *Core {
	return &Core{name: name, reader: reader, send: send}
}

// Insts returns this core's committed instruction count.
func (c *Core) Insts() uint64 { return c.insts }

// ResetInsts zeroes the committed instruction count -- the warmup-to-steady
// transition of spec.md section 4.6.
func (c *Core) ResetInsts() { c.insts = 0 }

// HasReachedLimit reports whether this core's trace has been read to EOF --
// "the limit of the input", not an instruction-count target. EOF is only
// read after the last record's access has been sent, so for a single core
// this coincides with Finished; Processor.HasReachedLimit and
// Processor.Finished differ in combining cores with OR versus AND.
func (c *Core) HasReachedLimit() bool {
	return c.exhausted
}

// Finished reports whether this core has no more instructions to retire:
// its trace is exhausted and it has no outstanding bubble burst or pending
// memory access.
func (c *Core) Finished() bool {
	return c.exhausted && !c.awaitingAccess && c.bubblesLeft == 0
}

// Tick retires up to one instruction this cycle and reports whether it did
// any work.
func (c *Core) Tick(now uint64) bool {
	if c.Finished() {
		return false
	}

	if c.awaitingAccess {
		req := request.New(c.pending.Address, c.pending.Type, nil)
		if !c.send(req) {
			return true // stalled on back-pressure; retried next tick
		}
		c.insts++
		c.awaitingAccess = false
		c.loadNext()
		return true
	}

	if c.bubblesLeft > 0 {
		c.bubblesLeft--
		c.insts++
		c.awaitingAccess = c.bubblesLeft == 0
		return true
	}

	c.loadNext()
	return true
}

// loadNext reads the next burst-then-access record, or marks the core
// exhausted once its trace runs out.
func (c *Core) loadNext() {
	rec, ok, err := c.reader.Next()
	if err != nil {
		// A malformed CPU trace line (or a read error) is a configuration
		// error, and configuration errors are fatal per spec.md section 7.
		// Trace lines are not validated before this point.
		panic(err)
	}
	if !ok {
		c.exhausted = true
		return
	}
	c.pending = rec
	c.bubblesLeft = rec.Bubbles
	c.awaitingAccess = c.bubblesLeft == 0
}

// Processor aggregates every core in a CPU-trace run.
type Processor struct {
	cores []*Core
}

// New creates a Processor over the given cores.
func New(cores ...*Core) *Processor {
	return &Processor{cores: cores}
}

// Cores returns the underlying per-core drivers.
func (p *Processor) Cores() []*Core { return p.cores }

// Tick advances every core by one cycle and reports whether any of them did
// work.
func (p *Processor) Tick(now uint64) bool {
	progress := false
	for _, c := range p.cores {
		if c.Tick(now) {
			progress = true
		}
	}
	return progress
}

// Finished reports whether every core has finished.
func (p *Processor) Finished() bool {
	for _, c := range p.cores {
		if !c.Finished() {
			return false
		}
	}
	return true
}

// HasReachedLimit reports whether any core has reached the end of its
// input trace (the calc_weighted_speedup termination condition: stop as
// soon as the first core runs out of instructions to replay).
func (p *Processor) HasReachedLimit() bool {
	for _, c := range p.cores {
		if c.HasReachedLimit() {
			return true
		}
	}
	return false
}

// ResetInsts resets every core's committed instruction count (the
// warmup-to-steady transition).
func (p *Processor) ResetInsts() {
	for _, c := range p.cores {
		c.ResetInsts()
	}
}
