package dramspec

import (
	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/dramspec/presets"
	"github.com/sarchlab/ramulator/request"
)

// buildTimingTable turns a preset's named constants into the
// level/from/to/gap/scope constraint table genericSpec.Timing serves.
//
// Every standard's table follows the same shape:
//   - ACT->RD, ACT->WR at Bank level (tRCD): the row must be open long
//     enough before it can be accessed.
//   - ACT->PRE at Bank level (tRAS): the row must stay open at least
//     this long.
//   - PRE->ACT at Bank level (tRP): precharge must complete before the
//     bank reopens.
//   - RD->PRE (tRTP) and WR->PRE (tWR) at Bank level: a pending access
//     must drain before the bank can precharge.
//   - RD/WR->RD/WR same-bank-group (tCCD) and, for standards with bank
//     groups, cross-bank-group (tCCDL) at Rank scope: back-to-back column
//     accesses need a minimum gap.
//   - WR->RD at Rank scope (tWTR): bus turnaround after a write burst.
//     tWTRL is not applied.
//   - ACT->ACT at Rank scope (tRRD, and a conservative tFAW/4 folded into
//     the same gap -- spec.md section 1 scopes exact timing values as data,
//     so the four-activate sliding window is approximated as a pairwise
//     gap rather than modeled as a true window).
//   - REF->ACT at Rank scope (tRFC): the whole rank is unavailable for the
//     refresh duration.
func buildTimingTable(speed presets.Speed, hasBankGroup bool) map[dramorg.Level]map[request.Command][]Constraint {
	t := map[dramorg.Level]map[request.Command][]Constraint{
		dramorg.Bank: {
			request.ACT: {
				{To: request.RD, Gap: speed.TRCD, Scope: SameNode},
				{To: request.WR, Gap: speed.TRCD, Scope: SameNode},
				{To: request.RDA, Gap: speed.TRCD, Scope: SameNode},
				{To: request.WRA, Gap: speed.TRCD, Scope: SameNode},
				{To: request.PRE, Gap: speed.TRAS, Scope: SameNode},
			},
			request.PRE: {
				{To: request.ACT, Gap: speed.TRP, Scope: SameNode},
			},
			request.PREA: {
				{To: request.ACT, Gap: speed.TRP, Scope: AnySibling},
			},
			request.RD: {
				{To: request.PRE, Gap: speed.TRTP, Scope: SameNode},
			},
			request.WR: {
				{To: request.PRE, Gap: speed.TWR + speed.TCWL, Scope: SameNode},
			},
			request.RDA: {
				{To: request.ACT, Gap: speed.TRTP + speed.TRP, Scope: SameNode},
			},
			request.WRA: {
				{To: request.ACT, Gap: speed.TWR + speed.TCWL + speed.TRP, Scope: SameNode},
			},
		},
		dramorg.Rank: {
			request.ACT: {
				{To: request.ACT, Gap: rrdGap(speed), Scope: AnySibling},
			},
			request.WR: {
				{To: request.RD, Gap: speed.TWTR, Scope: AnySibling},
			},
		},
	}
	// REF targets a rank but disables ACT on every bank beneath it; REFPB
	// targets a single bank. Both are registered at Bank level so Update
	// can apply them to the bank-leaf nodes even though a REF's own
	// coordinate path stops at Rank.
	t[dramorg.Bank][request.REF] = []Constraint{
		{To: request.ACT, Gap: speed.TRFC, Scope: AnySibling},
	}
	t[dramorg.Bank][request.REFPB] = []Constraint{
		{To: request.ACT, Gap: speed.TRFC, Scope: SameNode},
	}

	ccdGap := speed.TCCD
	ccdLevel := dramorg.Rank
	if hasBankGroup {
		ccdLevel = dramorg.BankGroup
		t[ccdLevel] = map[request.Command][]Constraint{}
	}
	t[ccdLevel][request.RD] = append(t[ccdLevel][request.RD],
		Constraint{To: request.RD, Gap: ccdGap, Scope: AnySibling},
		Constraint{To: request.WR, Gap: ccdGap, Scope: AnySibling},
	)
	t[ccdLevel][request.WR] = append(t[ccdLevel][request.WR],
		Constraint{To: request.WR, Gap: ccdGap, Scope: AnySibling},
		Constraint{To: request.RD, Gap: ccdGap, Scope: AnySibling},
	)

	if hasBankGroup {
		t[dramorg.Rank][request.RD] = append(t[dramorg.Rank][request.RD],
			Constraint{To: request.RD, Gap: speed.TCCDL, Scope: AnySibling},
			Constraint{To: request.WR, Gap: speed.TCCDL, Scope: AnySibling},
		)
		t[dramorg.Rank][request.WR] = append(t[dramorg.Rank][request.WR],
			Constraint{To: request.WR, Gap: speed.TCCDL, Scope: AnySibling},
			Constraint{To: request.RD, Gap: speed.TCCDL, Scope: AnySibling},
		)
	}

	return t
}

// rrdGap folds a conservative quarter of tFAW (rounded up) into the
// pairwise ACT->ACT gap so any five consecutive activates in a rank span at
// least tFAW, without modeling the sliding window explicitly.
func rrdGap(speed presets.Speed) uint64 {
	fawQuarter := (speed.TFAW + 3) / 4
	if speed.TRRD > fawQuarter {
		return speed.TRRD
	}
	return fawQuarter
}

func buildLatencyTable(speed presets.Speed) map[request.Command]uint64 {
	return map[request.Command]uint64{
		request.ACT:   speed.TRCD,
		request.PRE:   speed.TRP,
		request.PREA:  speed.TRP,
		request.RD:    speed.TCWL + 4, // command to data-ready, burst fixed at 4 beats
		request.WR:    speed.TCWL,
		request.RDA:   speed.TCWL + 4,
		request.WRA:   speed.TCWL,
		request.REF:   speed.TRFC,
		request.REFPB: speed.TRFC,
	}
}
