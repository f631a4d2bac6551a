package dramspec

import (
	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/request"
)

// genericSpec is the single Spec implementation every standard resolves to;
// standards differ only in the tables New (factory.go) fills it with. This is the
// "tagged-variant" rendering spec.md section 9 calls out as the
// language-neutral stand-in for the source's compile-time specialization.
type genericSpec struct {
	name string

	levels []dramorg.Level
	counts map[dramorg.Level]int

	timing  map[dramorg.Level]map[request.Command][]Constraint
	latency map[request.Command]uint64

	refreshInterval uint64
	refreshCmd      request.Command
	refreshLevel    dramorg.Level

	leafLevel dramorg.Level
}

func (s *genericSpec) Name() string { return s.name }

func (s *genericSpec) Levels() []dramorg.Level { return s.levels }

func (s *genericSpec) Count(level dramorg.Level) int { return s.counts[level] }

func (s *genericSpec) Timing(level dramorg.Level, from request.Command) []Constraint {
	byFrom, ok := s.timing[level]
	if !ok {
		return nil
	}
	return byFrom[from]
}

func (s *genericSpec) Latency(cmd request.Command) uint64 {
	return s.latency[cmd]
}

func (s *genericSpec) RefreshInterval() uint64 { return s.refreshInterval }

func (s *genericSpec) RefreshCommand() (request.Command, dramorg.Level) {
	return s.refreshCmd, s.refreshLevel
}

func (s *genericSpec) SetChannelRankCount(channels, ranks int) {
	s.counts[dramorg.Channel] = channels
	s.counts[dramorg.Rank] = ranks
}

// Prereq returns the command that must precede cmd given the bank-leaf's
// current state: PRE if the wrong row is open, ACT if the bank is closed,
// else cmd itself.
func (s *genericSpec) Prereq(cmd request.Command, view BankView, coord dramorg.Coordinate) request.Command {
	if !cmd.IsAccess() {
		return cmd
	}
	if !view.IsOpen() {
		return request.ACT
	}
	if view.OpenRow() != coord.At(dramorg.Row) {
		return request.PRE
	}
	return cmd
}

// Decode returns the next command needed to progress a request of type typ
// at coord: PRE if the open row is wrong, ACT if the bank is closed, else
// the access command itself.
func (s *genericSpec) Decode(typ request.Type, coord dramorg.Coordinate, view BankView) request.Command {
	access := request.RD
	if typ == request.Write {
		access = request.WR
	}
	return s.Prereq(access, view, coord)
}

// LeafLevel returns the deepest level this spec's node tree models
// explicitly (Bank, or Subarray for standards with independent per-subarray
// row buffers). Row/Column are not modeled as tree nodes: their only
// observable effect is the bank-leaf's open-row field, so a node per row
// would add state without adding behavior the controller can act on.
func (s *genericSpec) LeafLevel() dramorg.Level { return s.leafLevel }
