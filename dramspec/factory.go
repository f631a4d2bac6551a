package dramspec

import (
	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/dramspec/presets"
	"github.com/sarchlab/ramulator/request"
)

// New is the single factory every standard resolves through -- spec.md
// section 9's "collapse to a single factory returning a spec object"
// design note. standard/org/speed name a preset triple (e.g. "DDR4",
// "DDR4_4Gb_x8", "DDR4_2400R"); channels/ranks/subarrays override the
// preset's own counts, mirroring the source's set_channel_number/
// set_rank_number/get_subarrays being driven by the config file rather
// than the org preset.
func New(standard, org, speed string, channels, ranks, subarrays int) (Spec, error) {
	known := false
	for _, name := range presets.Names() {
		if name == standard {
			known = true
			break
		}
	}
	if !known {
		return nil, errUnknownStandard(standard)
	}

	std, o, sp, err := presets.Lookup(standard, org, speed)
	if err != nil {
		return nil, err
	}

	levels := []dramorg.Level{dramorg.Channel, dramorg.Rank}
	counts := map[dramorg.Level]int{
		dramorg.Channel: channels,
		dramorg.Rank:    ranks,
	}

	if std.HasBankGroup {
		levels = append(levels, dramorg.BankGroup)
		counts[dramorg.BankGroup] = o.BankGroups
	}

	levels = append(levels, dramorg.Bank)
	counts[dramorg.Bank] = o.Banks

	leaf := dramorg.Bank
	if std.HasSubarray {
		levels = append(levels, dramorg.Subarray)
		n := subarrays
		if n <= 0 {
			n = o.Subarrays
		}
		counts[dramorg.Subarray] = n
		leaf = dramorg.Subarray
	}

	levels = append(levels, dramorg.Row, dramorg.Column)
	counts[dramorg.Row] = o.Rows
	counts[dramorg.Column] = o.Columns

	refreshCmd := request.REF
	refreshLevel := dramorg.Rank

	return &genericSpec{
		name:            standard,
		levels:          levels,
		counts:          counts,
		timing:          buildTimingTable(sp, std.HasBankGroup),
		latency:         buildLatencyTable(sp),
		refreshInterval: sp.TREFI,
		refreshCmd:      refreshCmd,
		refreshLevel:    refreshLevel,
		leafLevel:       leaf,
	}, nil
}

// Names lists the standards this build recognizes.
func Names() []string { return presets.Names() }
