// Package memory implements spec.md section 4.5's Memory: one tier's
// collection of per-channel Controllers, fed by an address Mapper that picks
// which channel (and Coordinate within it) a Request targets.
package memory

import (
	"fmt"

	"github.com/sarchlab/ramulator/controller"
	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/dramspec"
	"github.com/sarchlab/ramulator/mapping"
	"github.com/sarchlab/ramulator/request"
	"github.com/sarchlab/ramulator/statsreg"
)

// Memory is one memory tier: a fixed number of channels, each with its own
// Controller, reached through a single address Mapper. A hybrid system
// (spec.md section 4.6) is two Memory instances plus an address-range
// router in front of them; Memory itself never knows about tiering.
type Memory struct {
	name string

	mapper      mapping.Mapper
	controllers []*controller.Controller

	now uint64
}

// Options configures the Controllers a Memory builds, one per channel.
type Options struct {
	Channels  int
	Ranks     int
	Subarrays int

	Standard, Org, Speed string
	MappingName          string

	Controller controller.Options

	Stats *statsreg.Registry
}

// New builds a Memory tier: one dramspec.Spec (shared read-only across
// channels, per spec.md section 4.1), one Controller per channel (each with
// its own dramstate.Tree), and the address Mapper routing Requests to them.
func New(name string, opts Options) (*Memory, error) {
	spec, err := dramspec.New(opts.Standard, opts.Org, opts.Speed, opts.Channels, opts.Ranks, opts.Subarrays)
	if err != nil {
		return nil, fmt.Errorf("memory %s: %w", name, err)
	}

	mapper, err := mapping.New(opts.MappingName, spec)
	if err != nil {
		return nil, fmt.Errorf("memory %s: %w", name, err)
	}

	m := &Memory{name: name, mapper: mapper}
	for ch := 0; ch < opts.Channels; ch++ {
		copts := opts.Controller
		copts.Stats = opts.Stats
		cname := fmt.Sprintf("%s.controller.%d", name, ch)
		m.controllers = append(m.controllers, controller.New(cname, ch, opts.Ranks, spec, copts))
	}

	return m, nil
}

// Name returns the tier's name, e.g. "mem0".
func (m *Memory) Name() string { return m.name }

// MaxAddress returns the byte range this tier's mapping addresses.
func (m *Memory) MaxAddress() uint64 { return m.mapper.MaxAddress() }

// Send decodes r's address to a Coordinate and hands it to the target
// channel's Controller. Accepted reports whether the target channel had
// queue space; a caller seeing false should retry on a later tick.
func (m *Memory) Send(r *request.Request) bool {
	coord := m.mapper.Map(r.Address)
	r.Coord = coord
	ch := coord.At(dramorg.Channel)
	if ch < 0 || ch >= len(m.controllers) {
		return false
	}
	return m.controllers[ch].Send(r, m.now)
}

// Tick advances every channel's Controller by one cycle, in channel-index
// order (spec.md section 5's deterministic tick ordering requirement), and
// reports whether any channel made progress.
func (m *Memory) Tick() bool {
	progress := false
	for _, c := range m.controllers {
		if c.Tick(m.now) {
			progress = true
		}
	}
	m.now++
	return progress
}

// PendingRequests sums every channel's in-flight request count.
func (m *Memory) PendingRequests() int {
	total := 0
	for _, c := range m.controllers {
		total += c.PendingRequests()
	}
	return total
}

// Finish forwards to every channel's Controller.
func (m *Memory) Finish() {
	for _, c := range m.controllers {
		c.Finish()
	}
}

// SetHighWriteQWatermark forwards to every channel's Controller. Called
// with 0 at end-of-trace to force an immediate, permanent write-drain
// (spec.md section 4.4).
func (m *Memory) SetHighWriteQWatermark(x float64) {
	for _, c := range m.controllers {
		c.SetHighWriteQWatermark(x)
	}
}
