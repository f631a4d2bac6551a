// Package dramspec is the immutable, per-standard timing spec described in
// spec.md section 4.1: the organization hierarchy, per-level fan-out, the
// command/command gap table, and the command-decode function. Standards
// differ only in the tables a Preset supplies; the Spec type that consumes
// them is the same for every standard (spec.md's "tagged-variant encoding").
package dramspec

import (
	"fmt"

	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/request"
)

// Scope names whether a timing constraint, once triggered, applies only to
// the node it was issued against (SameNode) or to every sibling at that
// level (AnySibling) -- e.g. tRRD (ACT->ACT) applies to every bank in a
// rank, not just the bank that was activated.
type Scope int

const (
	SameNode Scope = iota
	AnySibling
)

// Constraint is one (gap, scope) entry in timing[level][from][to]. Multiple
// entries for the same (level, from, to) are conjunctive: every one must be
// satisfied.
type Constraint struct {
	To    request.Command
	Gap   uint64
	Scope Scope
}

// BankView is the read-only subset of a bank-leaf node's state that Spec's
// decode/prereq functions need: whether a row is open, and which one.
type BankView interface {
	IsOpen() bool
	OpenRow() int
}

// Spec is the run-time polymorphic timing spec every DRAM standard
// implements. A factory (New) returns the concrete Spec for a requested
// standard/org/speed combination; callers never branch on the standard name
// again after construction.
type Spec interface {
	// Name is the standard name, e.g. "DDR4".
	Name() string

	// Levels returns the ordered hierarchy from Channel down to Column for
	// this standard. Not every standard has every dramorg.Level.
	Levels() []dramorg.Level

	// Count returns the fan-out at a level, e.g. Count(dramorg.Bank) == 4
	// for DDR4_4Gb_x8 (banks per bank group).
	Count(level dramorg.Level) int

	// Timing returns the constraints triggered when `from` is issued at
	// `level`. Empty if `from` has no constraints at that level.
	Timing(level dramorg.Level, from request.Command) []Constraint

	// Prereq returns the prerequisite command that must be issued before
	// `cmd` can legally target the bank described by view, or cmd itself if
	// there is no outstanding prerequisite (row already open on the right
	// row, or cmd does not need an open row).
	Prereq(cmd request.Command, view BankView, coord dramorg.Coordinate) request.Command

	// Decode returns the next command to issue to progress a request of the
	// given type at coord, given the bank-leaf's current state.
	Decode(typ request.Type, coord dramorg.Coordinate, view BankView) request.Command

	// Latency returns the number of cycles between issuing cmd and its
	// completion (the point at which data is ready / the command's effect
	// is final), used to schedule retirement.
	Latency(cmd request.Command) uint64

	// RefreshInterval returns the cycle period at which a RefreshLevel node
	// must receive a refresh command.
	RefreshInterval() uint64

	// RefreshCommand returns the refresh command this standard issues
	// (REF or REFPB) and the level it targets.
	RefreshCommand() (cmd request.Command, level dramorg.Level)

	// SetChannelRankCount overrides the channel/rank fan-out, mirroring the
	// source's set_channel_number/set_rank_number -- these come from the
	// config file, not the org preset.
	SetChannelRankCount(channels, ranks int)

	// LeafLevel returns the deepest level modeled as a tree node (Bank, or
	// Subarray for standards with independent per-subarray row buffers).
	LeafLevel() dramorg.Level
}

// errUnknownStandard is returned by New for a standard name outside the
// fourteen spec.md section 6 names.
type errUnknownStandard string

func (e errUnknownStandard) Error() string {
	return fmt.Sprintf("dramspec: unknown standard %q", string(e))
}
