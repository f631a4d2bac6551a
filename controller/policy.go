package controller

import "github.com/sarchlab/ramulator/request"

// Policy names a read/write queue scheduling policy, configurable per
// spec.md section 6 ("scheduling policy" config key).
type Policy int

const (
	// FRFCFS is "first ready, first come first served": among the active
	// queue's requests, prefer one whose next command is the access
	// itself, with no ACT/PRE prerequisite (a row hit), breaking ties by arrival
	// order; fall back to the oldest request otherwise, so non-hitting
	// requests still make progress opening their row.
	FRFCFS Policy = iota

	// FCFS always picks the oldest request in the active queue, ignoring
	// row-buffer state.
	FCFS
)

// pick selects the next request from q to attempt issuing this cycle, or
// nil if q is empty. ready(r) reports whether r's next command is a row
// hit needing no ACT/PRE first.
func (p Policy) pick(q *queue, ready func(*request.Request) bool) *request.Request {
	if len(q.reqs) == 0 {
		return nil
	}
	if p == FCFS {
		return q.reqs[0]
	}
	for _, r := range q.reqs {
		if ready(r) {
			return r
		}
	}
	return q.reqs[0]
}
