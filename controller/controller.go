// Package controller implements the per-channel memory controller of
// spec.md section 4.4: FR-FCFS (or FCFS) read/write scheduling with
// watermark-driven write-drain hysteresis, periodic refresh injection, and
// the retire -> drain-check -> refresh-inject -> schedule -> issue pipeline
// driven once per tick.
package controller

import (
	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/dramspec"
	"github.com/sarchlab/ramulator/dramstate"
	"github.com/sarchlab/ramulator/request"
	"github.com/sarchlab/ramulator/statsreg"
)

// completion is a scheduled retirement: the cycle at which a request's
// terminal command finishes and the request itself can be marked Completed.
type completion struct {
	at   uint64
	req  *request.Request
	rank int
}

// Options configures a Controller's queues and hysteresis thresholds.
// Zero-valued fields fall back to the teacher-idiom sensible defaults New
// applies.
type Options struct {
	ReadQueueCapacity  int
	WriteQueueCapacity int
	OtherQueueCapacity int

	HighWriteWatermark float64
	LowWriteWatermark  float64

	Policy Policy

	Stats *statsreg.Registry
}

// Controller is one channel's memory controller: it owns that channel's
// dramstate.Tree and the queues feeding it, per spec.md section 4.4.
type Controller struct {
	name    string
	channel int

	spec dramspec.Spec
	tree *dramstate.Tree

	readQ  *queue
	writeQ *queue
	otherQ *queue

	writeMode bool

	highWM, lowWM float64
	policy        Policy

	rankCount      int
	lastRefreshAt  []uint64
	refreshPending []bool

	completions []completion

	stats *controllerStats
}

type controllerStats struct {
	reads, writes, refreshes *statsreg.Counter
	latency                  *statsreg.Histogram
}

// New creates a Controller for one channel, with its own node tree built
// fresh from spec (each channel's tree is independent, per spec.md section
// 4.2 -- a Controller never reaches across channels).
func New(name string, channel, rankCount int, spec dramspec.Spec, opts Options) *Controller {
	if opts.ReadQueueCapacity == 0 {
		opts.ReadQueueCapacity = 64
	}
	if opts.WriteQueueCapacity == 0 {
		opts.WriteQueueCapacity = 64
	}
	if opts.OtherQueueCapacity == 0 {
		opts.OtherQueueCapacity = rankCount + 1
	}
	if opts.HighWriteWatermark == 0 {
		opts.HighWriteWatermark = 0.8
	}
	if opts.LowWriteWatermark == 0 {
		opts.LowWriteWatermark = 0.2
	}

	c := &Controller{
		name:    name,
		channel: channel,

		spec: spec,
		tree: dramstate.Build(spec, channel),

		readQ:  newQueue(opts.ReadQueueCapacity),
		writeQ: newQueue(opts.WriteQueueCapacity),
		otherQ: newQueue(opts.OtherQueueCapacity),

		highWM: opts.HighWriteWatermark,
		lowWM:  opts.LowWriteWatermark,
		policy: opts.Policy,

		rankCount:      rankCount,
		lastRefreshAt:  make([]uint64, rankCount),
		refreshPending: make([]bool, rankCount),
	}

	if opts.Stats != nil {
		c.stats = &controllerStats{
			reads:     opts.Stats.Counter(name+".reads", "requests admitted as reads"),
			writes:    opts.Stats.Counter(name+".writes", "requests admitted as writes"),
			refreshes: opts.Stats.Counter(name+".refreshes", "refresh commands issued"),
			latency:   opts.Stats.Histogram(name+".latency", "cycles from admission to completion", []float64{10, 50, 100, 250, 500, 1000, 5000}),
		}
	}

	return c
}

// Name returns the controller's name, e.g. "controller.0".
func (c *Controller) Name() string { return c.name }

// Finish flushes any terminal bookkeeping. This controller's stats are
// written directly to their sinks as requests retire, so there is nothing
// left to flush; the method exists to satisfy the public contract spec.md
// section 4.4 names.
func (c *Controller) Finish() {}

// SetHighWriteQWatermark overrides the high write-queue watermark.
// Setting it to 0 forces an immediate, permanent switch to WriteMode --
// the end-of-trace forced-drain idiom of spec.md section 4.4.
func (c *Controller) SetHighWriteQWatermark(x float64) {
	c.highWM = x
}

// Send attempts to admit r into its target queue at cycle now. Refresh
// requests are never sent externally; the controller generates them
// itself.
func (c *Controller) Send(r *request.Request, now uint64) bool {
	var q *queue
	switch r.Type {
	case request.Write:
		q = c.writeQ
	default:
		q = c.readQ
	}

	if !q.push(r) {
		return false
	}
	r.Arrive = now
	r.State = request.Enqueued

	if c.stats != nil {
		if r.Type == request.Write {
			c.stats.writes.Inc()
		} else {
			c.stats.reads.Inc()
		}
	}
	return true
}

// PendingRequests returns the number of requests still in flight: queued or
// awaiting retirement.
func (c *Controller) PendingRequests() int {
	return c.readQ.len() + c.writeQ.len() + c.otherQ.len() + len(c.completions)
}

// Tick advances the controller by one cycle, running the retire ->
// drain-check -> refresh-inject -> schedule -> issue pipeline of spec.md
// section 4.4. It returns whether any work happened, so a driver can detect
// a fully-drained, idle memory subsystem.
func (c *Controller) Tick(now uint64) bool {
	progress := c.retire(now)

	c.updateWriteMode()

	c.injectRefresh(now)

	if c.issue(now) {
		progress = true
	}

	return progress
}

func (c *Controller) retire(now uint64) bool {
	progress := false
	kept := c.completions[:0]
	for _, comp := range c.completions {
		if comp.at > now {
			kept = append(kept, comp)
			continue
		}
		comp.req.Complete(now)
		if c.stats != nil && comp.req.Type != request.Refresh {
			c.stats.latency.Observe(float64(comp.req.Latency()))
		}
		if comp.req.Type == request.Refresh {
			c.refreshPending[comp.rank] = false
			c.lastRefreshAt[comp.rank] = now
		}
		progress = true
	}
	c.completions = kept
	return progress
}

// updateWriteMode applies the watermark hysteresis of spec.md section 4.4:
// switch to draining writes once the write queue crosses the high
// watermark, and back to reads once it falls to the low watermark. Between
// the two thresholds the current mode is sticky.
func (c *Controller) updateWriteMode() {
	occ := c.writeQ.occupancy()
	switch {
	case occ >= c.highWM:
		c.writeMode = true
	case occ <= c.lowWM:
		c.writeMode = false
	}
}

// injectRefresh enqueues a REF request for any rank whose refresh interval
// has elapsed and whose banks are all idle, per spec.md section 4.2's
// requirement that REF finds its rank already precharged. A rank with busy
// banks is simply retried next tick; lastRefreshAt only advances when a
// refresh actually retires, so a busy rank naturally backs off the nominal
// cadence rather than bursting refreshes once it frees up.
func (c *Controller) injectRefresh(now uint64) {
	interval := c.spec.RefreshInterval()
	if interval == 0 {
		// A zero interval (PCM, STTMRAM presets) means the standard needs
		// no refresh.
		return
	}

	for rank := 0; rank < c.rankCount; rank++ {
		if c.refreshPending[rank] {
			continue
		}
		if now-c.lastRefreshAt[rank] < interval {
			continue
		}
		if !c.tree.AllBanksIdleUnderRank(rank) {
			continue
		}

		var coord dramorg.Coordinate
		coord[dramorg.Rank] = rank

		r := request.New(0, request.Refresh, nil)
		r.Coord = coord
		r.Arrive = now

		if !c.otherQ.push(r) {
			continue
		}
		c.refreshPending[rank] = true
	}
}

// issue runs the schedule+issue stages: pick one candidate (the other
// queue's front request takes priority over the active read/write queue,
// matching refresh's real-world priority over ordinary accesses; an empty
// active queue falls back to the other of read/write), decode its next
// command, and issue it if legal.
func (c *Controller) issue(now uint64) bool {
	var candidate *request.Request
	fromOther := false

	if c.otherQ.len() > 0 {
		candidate = c.otherQ.reqs[0]
		fromOther = true
	} else {
		active, idle := c.readQ, c.writeQ
		if c.writeMode {
			active, idle = c.writeQ, c.readQ
		}
		// An empty active queue yields to the other one, so neither reads
		// nor writes starve (e.g. reads left over after a forced drain).
		if active.len() == 0 {
			active = idle
		}
		candidate = c.policy.pick(active, func(r *request.Request) bool {
			return c.nextCommand(r).IsAccess()
		})
	}

	if candidate == nil {
		return false
	}

	cmd := c.nextCommand(candidate)
	if !c.tree.Check(cmd, candidate.Coord, now) {
		return false
	}

	c.tree.Update(cmd, candidate.Coord, now)

	terminal := cmd.IsAccess() || candidate.Type == request.Refresh
	if !terminal {
		return true
	}

	rank := candidate.Coord.At(dramorg.Rank)

	switch {
	case fromOther:
		c.otherQ.remove(candidate)
		if c.stats != nil {
			c.stats.refreshes.Inc()
		}
	case candidate.Type == request.Write:
		c.writeQ.remove(candidate)
	default:
		c.readQ.remove(candidate)
	}

	c.completions = append(c.completions, completion{
		at:   now + c.spec.Latency(cmd),
		req:  candidate,
		rank: rank,
	})

	return true
}

// nextCommand returns the command issue would attempt next for r: the
// refresh command for a refresh request, otherwise whatever Spec.Decode
// derives from its type and current bank state.
func (c *Controller) nextCommand(r *request.Request) request.Command {
	if r.Type == request.Refresh {
		cmd, _ := c.spec.RefreshCommand()
		return cmd
	}
	return c.spec.Decode(r.Type, r.Coord, c.tree.Leaf(r.Coord))
}
