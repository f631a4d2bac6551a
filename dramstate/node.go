// Package dramstate implements the DRAM node tree of spec.md section 4.2: a
// tree mirroring a channel's organization hierarchy, tracking per-command
// next-legal-cycle tables and bank-leaf open-row/power state, and offering
// the decode/check/update operations the Controller's issue stage drives on
// every tick.
package dramstate

import (
	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/dramspec"
	"github.com/sarchlab/ramulator/request"
)

// PowerState is a bank-leaf's current state.
type PowerState int

const (
	Closed PowerState = iota
	Opened
	PoweredDown
	ActivePowerDown
	SelfRefresh
)

// node is one node in the tree: an internal node below Channel down to
// leafLevel-1, or a bank-leaf node at leafLevel carrying open-row state.
// A flat array indexed by (level, linear index) is the allocation-free
// rendering spec.md section 9 recommends for the hot check/update path;
// this tree-of-structs form is kept instead for the clarity of an explicit
// parent pointer (AnySibling scope needs "all of my parent's children").
type node struct {
	level  dramorg.Level
	index  int
	parent *node

	children []*node

	nextLegal map[request.Command]uint64

	open    bool
	openRow int
	state   PowerState
}

func newNode(level dramorg.Level, index int, parent *node) *node {
	return &node{
		level:     level,
		index:     index,
		parent:    parent,
		nextLegal: make(map[request.Command]uint64),
		state:     Closed,
	}
}

// IsOpen implements dramspec.BankView.
func (n *node) IsOpen() bool { return n.open }

// OpenRow implements dramspec.BankView.
func (n *node) OpenRow() int { return n.openRow }

// legalAt returns the earliest cycle cmd may be issued through this node,
// 0 (always legal) if no constraint has ever targeted it.
func (n *node) legalAt(cmd request.Command) uint64 {
	return n.nextLegal[cmd]
}

func (n *node) bumpLegalAt(cmd request.Command, cycle uint64) {
	if cycle > n.nextLegal[cmd] {
		n.nextLegal[cmd] = cycle
	}
}

// Tree is the node subtree a single Controller owns: a Channel-level root
// (this channel's own node) and every Rank/BankGroup/Bank/Subarray node
// beneath it, per spec.md section 4.2.
type Tree struct {
	spec dramspec.Spec
	root *node

	// levelsBelowChannel is spec.Levels() truncated to [Rank..leafLevel],
	// the walk order every path traversal follows.
	levelsBelowChannel []dramorg.Level
}

// Build constructs the node subtree for one channel.
func Build(spec dramspec.Spec, channelIndex int) *Tree {
	t := &Tree{spec: spec}

	leaf := spec.LeafLevel()
	for _, l := range spec.Levels() {
		if l == dramorg.Channel {
			continue
		}
		t.levelsBelowChannel = append(t.levelsBelowChannel, l)
		if l == leaf {
			break
		}
	}

	t.root = newNode(dramorg.Channel, channelIndex, nil)
	t.grow(t.root, 0)

	return t
}

func (t *Tree) grow(parent *node, depth int) {
	if depth >= len(t.levelsBelowChannel) {
		return
	}
	level := t.levelsBelowChannel[depth]
	count := t.spec.Count(level)
	parent.children = make([]*node, count)
	for i := 0; i < count; i++ {
		child := newNode(level, i, parent)
		parent.children[i] = child
		t.grow(child, depth+1)
	}
}

// path returns, for each level in t.levelsBelowChannel (shallowest first),
// the node on the way to coord -- stopping early if coord does not reach
// that deep (e.g. REFRESH only addresses down to Rank).
func (t *Tree) path(coord dramorg.Coordinate, downTo dramorg.Level) []*node {
	nodes := make([]*node, 0, len(t.levelsBelowChannel)+1)
	cur := t.root
	nodes = append(nodes, cur)
	for _, level := range t.levelsBelowChannel {
		cur = cur.children[coord.At(level)]
		nodes = append(nodes, cur)
		if level == downTo {
			break
		}
	}
	return nodes
}

// deepestLevelFor returns the deepest hierarchy level a command's
// coordinate meaningfully addresses: Rank for REF (which targets a whole
// rank, never a specific row), leafLevel for everything else, including
// REFPB, which targets a single bank.
func (t *Tree) deepestLevelFor(cmd request.Command) dramorg.Level {
	if cmd == request.REF {
		return dramorg.Rank
	}
	return t.spec.LeafLevel()
}

// Leaf returns the bank-leaf (or subarray-leaf) node addressed by coord,
// exposed as a dramspec.BankView for Spec.Decode/Prereq.
func (t *Tree) Leaf(coord dramorg.Coordinate) dramspec.BankView {
	path := t.path(coord, t.spec.LeafLevel())
	return path[len(path)-1]
}

// Check reports whether cmd is legal at coord at cycle now: every node cmd
// would touch (from the channel root down to the command's deepest
// addressed level) must already have now >= its recorded next-legal-cycle
// for cmd, per spec.md section 4.2.
func (t *Tree) Check(cmd request.Command, coord dramorg.Coordinate, now uint64) bool {
	path := t.path(coord, t.deepestLevelFor(cmd))
	for _, n := range path {
		if now < n.legalAt(cmd) {
			return false
		}
	}
	return true
}

// Update applies cmd's timing effects and bank-leaf state transition, per
// spec.md section 4.2. Callers must have already confirmed Check(cmd, ...)
// at the same `now`.
func (t *Tree) Update(cmd request.Command, coord dramorg.Coordinate, now uint64) {
	path := t.path(coord, t.deepestLevelFor(cmd))
	pathByLevel := make(map[dramorg.Level]*node, len(path))
	for _, n := range path {
		pathByLevel[n.level] = n
	}
	deepestOnPath := path[len(path)-1]

	for _, level := range t.levelsBelowChannel {
		constraints := t.spec.Timing(level, cmd)
		if len(constraints) == 0 {
			continue
		}

		n, onPath := pathByLevel[level]
		for _, c := range constraints {
			legal := now + c.Gap

			if onPath {
				if c.Scope == dramspec.SameNode {
					n.bumpLegalAt(c.To, legal)
				} else {
					for _, sibling := range n.parent.children {
						sibling.bumpLegalAt(c.To, legal)
					}
				}
				continue
			}

			// level lies deeper than this command's own coordinate path
			// (e.g. REF stops at Rank but gates ACT on every Bank beneath
			// it): only AnySibling constraints make sense here, applied to
			// every descendant at `level` under the deepest node the
			// command's path did reach.
			if c.Scope != dramspec.AnySibling {
				continue
			}
			for _, descendant := range descendantsAt(deepestOnPath, level) {
				descendant.bumpLegalAt(c.To, legal)
			}
		}
	}

	t.applyStateTransition(cmd, coord, path)
}

// descendantsAt collects every descendant of n at the given level.
func descendantsAt(n *node, level dramorg.Level) []*node {
	if n.level == level {
		return []*node{n}
	}
	var out []*node
	for _, c := range n.children {
		out = append(out, descendantsAt(c, level)...)
	}
	return out
}

func (t *Tree) applyStateTransition(cmd request.Command, coord dramorg.Coordinate, path []*node) {
	switch {
	case cmd == request.ACT:
		leaf := path[len(path)-1]
		leaf.open = true
		leaf.openRow = coord.At(dramorg.Row)
		leaf.state = Opened
	case cmd == request.PRE:
		leaf := path[len(path)-1]
		leaf.open = false
		leaf.state = Closed
	case cmd == request.PREA:
		closeAllBanksUnder(rankNodeOf(path))
	case cmd.IsAutoPrecharge():
		leaf := path[len(path)-1]
		leaf.open = false
		leaf.state = Closed
	case cmd == request.REF:
		closeAllBanksUnder(rankNodeOf(path))
	case cmd == request.REFPB:
		leaf := path[len(path)-1]
		leaf.open = false
		leaf.state = Closed
	}
}

func rankNodeOf(path []*node) *node {
	for _, n := range path {
		if n.level == dramorg.Rank {
			return n
		}
	}
	return nil
}

func closeAllBanksUnder(n *node) {
	if n == nil {
		return
	}
	if len(n.children) == 0 {
		n.open = false
		n.state = Closed
		return
	}
	for _, c := range n.children {
		closeAllBanksUnder(c)
	}
}

// AllBanksIdleUnderRank reports whether every bank-leaf under the given
// rank is closed -- the precondition the Controller's refresh-injection
// stage checks before issuing REF, since spec.md section 4.2 requires REF
// to find its rank already precharged.
func (t *Tree) AllBanksIdleUnderRank(rank int) bool {
	rankNode := t.root.children[rank]
	return allIdle(rankNode)
}

func allIdle(n *node) bool {
	if len(n.children) == 0 {
		return !n.open
	}
	for _, c := range n.children {
		if !allIdle(c) {
			return false
		}
	}
	return true
}
