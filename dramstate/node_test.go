package dramstate

import (
	"testing"

	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/dramspec"
	"github.com/sarchlab/ramulator/request"
)

func mustSpec(t *testing.T) dramspec.Spec {
	t.Helper()
	spec, err := dramspec.New("DDR4", "DDR4_4Gb_x8", "DDR4_2400R", 1, 1, 0)
	if err != nil {
		t.Fatalf("dramspec.New: %v", err)
	}
	return spec
}

func coord(bankGroup, bank, row int) dramorg.Coordinate {
	var c dramorg.Coordinate
	c[dramorg.Channel] = 0
	c[dramorg.Rank] = 0
	c[dramorg.BankGroup] = bankGroup
	c[dramorg.Bank] = bank
	c[dramorg.Row] = row
	return c
}

func TestActThenAccessSequence(t *testing.T) {
	spec := mustSpec(t)
	tree := Build(spec, 0)
	c := coord(0, 0, 5)

	// Closed bank: must activate first.
	if got := spec.Decode(request.Read, c, tree.Leaf(c)); got != request.ACT {
		t.Fatalf("Decode on closed bank = %v, want ACT", got)
	}

	now := uint64(0)
	if !tree.Check(request.ACT, c, now) {
		t.Fatalf("ACT should be legal at cycle 0 on a fresh tree")
	}
	tree.Update(request.ACT, c, now)

	// Immediately after ACT, RD is not yet legal (tRCD not elapsed).
	if tree.Check(request.RD, c, now) {
		t.Fatalf("RD should not be legal immediately after ACT")
	}

	// Row now open: Decode should go straight to RD (row hit).
	if got := spec.Decode(request.Read, c, tree.Leaf(c)); got != request.RD {
		t.Fatalf("Decode on open matching row = %v, want RD", got)
	}

	// After tRCD cycles, RD becomes legal.
	trcd := spec.Latency(request.ACT)
	if !tree.Check(request.RD, c, now+trcd) {
		t.Fatalf("RD should be legal at now+tRCD=%d", now+trcd)
	}
}

func TestRowConflictRequiresPrecharge(t *testing.T) {
	spec := mustSpec(t)
	tree := Build(spec, 0)
	c1 := coord(0, 0, 5)
	c2 := coord(0, 0, 6) // same bank, different row

	tree.Update(request.ACT, c1, 0)

	if got := spec.Decode(request.Read, c2, tree.Leaf(c2)); got != request.PRE {
		t.Fatalf("Decode on wrong-row-open bank = %v, want PRE", got)
	}
}

// TestSiblingBanksDoNotBlockEachOther mirrors spec.md scenario S3: two
// requests to different banks in the same rank must not precharge or
// otherwise interfere with one another's activation, beyond the rank-wide
// ACT->ACT gap (tRRD) that spaces any two activates in a rank.
func TestSiblingBanksDoNotBlockEachOther(t *testing.T) {
	spec := mustSpec(t)
	tree := Build(spec, 0)
	cBank0 := coord(0, 0, 1)
	cBank1 := coord(0, 1, 1)

	if !tree.Check(request.ACT, cBank0, 0) {
		t.Fatalf("ACT on bank 0 should be legal at cycle 0")
	}
	tree.Update(request.ACT, cBank0, 0)

	var rrd uint64
	for _, c := range spec.Timing(dramorg.Rank, request.ACT) {
		if c.To == request.ACT && c.Gap > rrd {
			rrd = c.Gap
		}
	}
	if !tree.Check(request.ACT, cBank1, rrd) {
		t.Fatalf("ACT on bank 1 should be legal once tRRD=%d has elapsed, despite bank 0 being open", rrd)
	}
}

func TestRefreshBlocksActivateAcrossRank(t *testing.T) {
	spec := mustSpec(t)
	tree := Build(spec, 0)
	var rankCoord dramorg.Coordinate
	rankCoord[dramorg.Channel] = 0
	rankCoord[dramorg.Rank] = 0

	tree.Update(request.REF, rankCoord, 100)

	c := coord(0, 2, 0)
	if tree.Check(request.ACT, c, 100) {
		t.Fatalf("ACT should not be legal on any bank immediately after REF")
	}

	trfc := spec.Latency(request.REF)
	if !tree.Check(request.ACT, c, 100+trfc) {
		t.Fatalf("ACT should be legal again after tRFC has elapsed")
	}
}

func TestAllBanksIdleUnderRank(t *testing.T) {
	spec := mustSpec(t)
	tree := Build(spec, 0)

	if !tree.AllBanksIdleUnderRank(0) {
		t.Fatalf("a fresh tree should have every bank idle")
	}

	c := coord(0, 0, 3)
	tree.Update(request.ACT, c, 0)

	if tree.AllBanksIdleUnderRank(0) {
		t.Fatalf("rank should not be reported idle while a bank is open")
	}

	tree.Update(request.PRE, c, 50)
	if !tree.AllBanksIdleUnderRank(0) {
		t.Fatalf("rank should be idle again after precharge")
	}
}
