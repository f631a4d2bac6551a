// Package request defines the value types that flow through the engine: the
// Request a producer (trace reader or processor front-end) submits, and the
// Command a Controller derives from it on the way to a DRAM node.
package request

import "github.com/sarchlab/ramulator/dramorg"

// Type names the kind of memory operation a Request performs.
type Type int

const (
	Read Type = iota
	Write
	Refresh
)

// String names the request type, "R"/"W"/"REF", matching the trace format
// in spec section 6.
func (t Type) String() string {
	switch t {
	case Read:
		return "R"
	case Write:
		return "W"
	case Refresh:
		return "REF"
	default:
		return "?"
	}
}

// State tracks where a Request sits in its lifecycle.
type State int

const (
	Enqueued State = iota
	InFlight
	Completed
)

// Callback is invoked exactly once, when a Request's terminal command
// retires. It receives the completed request so the caller can read
// Arrive/Depart to build a latency histogram.
type Callback func(*Request)

// Request is one memory operation traveling through the engine. It is
// decoded to a Coordinate when it enters a Memory; a send retried after
// back-pressure decodes it again, to the same Coordinate.
type Request struct {
	Address uint64
	Type    Type

	Arrive uint64
	Depart uint64

	Coord dramorg.Coordinate

	State State

	onComplete Callback
}

// New creates a Request with its completion callback. Arrive is set by the
// Controller that accepts it, not here: a Request may be retried across
// several ticks before it is accepted (back-pressure), and Arrive must
// reflect the cycle it was actually admitted.
func New(addr uint64, typ Type, cb Callback) *Request {
	return &Request{
		Address:    addr,
		Type:       typ,
		onComplete: cb,
	}
}

// Complete sets Depart and invokes the completion callback. It must be
// called at most once per Request; the Controller enforces this by only
// calling Complete from the retire stage of Tick, on a Request's terminal
// command.
func (r *Request) Complete(now uint64) {
	r.Depart = now
	r.State = Completed
	if r.onComplete != nil {
		r.onComplete(r)
	}
}

// Latency returns Depart-Arrive. Only meaningful once State == Completed.
func (r *Request) Latency() uint64 {
	return r.Depart - r.Arrive
}
