// Package mapping implements the address-to-Coordinate functions spec.md
// section 4.5 calls "defaultmapping unless overridden by a mapping-name
// option". Mapping is deliberately kept separate from dramspec: it is
// listed in spec.md section 6 as a named, swappable config option
// ("--mapping <name>"), not part of a standard's own timing data.
package mapping

import (
	"fmt"
	"math/bits"

	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/dramspec"
)

// LineBytes is the byte granularity addresses are grouped at before the
// column field begins -- the low bits within one burst transfer.
const LineBytes = 64

// Mapper turns a byte Address into an organization Coordinate, and reports
// the total addressable byte range for one Memory tier (spec.md section
// 4.5's max_address).
type Mapper interface {
	Name() string
	Map(addr uint64) dramorg.Coordinate
	MaxAddress() uint64
}

// bitSliceMapper is "defaultmapping": the column field sits right above the
// line offset, followed by the channel, rank, bankgroup and bank fields, so
// consecutive cache lines fall in the same row of the same bank; whatever is
// left at the top of the address is the row field (not wrapped to the row
// count).
type bitSliceMapper struct {
	name string

	offsetBits int
	fieldBits  map[dramorg.Level]int
	fieldOrder []dramorg.Level // low to high, Row excluded (it gets the remainder)

	maxAddress uint64
}

// New builds the named mapping function for spec. "defaultmapping" is the
// only mapping this build implements; any other name is a configuration
// error (spec.md section 7).
func New(name string, spec dramspec.Spec) (Mapper, error) {
	if name != "defaultmapping" && name != "" {
		return nil, fmt.Errorf("mapping: unknown mapping %q", name)
	}

	m := &bitSliceMapper{
		name:       "defaultmapping",
		offsetBits: bits.Len(uint(LineBytes - 1)),
		fieldBits:  map[dramorg.Level]int{},
	}

	order := []dramorg.Level{dramorg.Column, dramorg.Channel, dramorg.Rank, dramorg.BankGroup, dramorg.Bank}
	total := uint64(1)
	consumed := m.offsetBits
	for _, level := range order {
		count := spec.Count(level)
		if count <= 0 {
			count = 1
		}
		width := bitWidth(count)
		m.fieldBits[level] = width
		m.fieldOrder = append(m.fieldOrder, level)
		consumed += width
		total *= uint64(count)
	}

	rows := spec.Count(dramorg.Row)
	if rows <= 0 {
		rows = 1
	}
	m.fieldBits[dramorg.Row] = bitWidth(rows)
	total *= uint64(rows)

	m.maxAddress = total * LineBytes

	return m, nil
}

func bitWidth(count int) int {
	if count <= 1 {
		return 0
	}
	return bits.Len(uint(count - 1))
}

func (m *bitSliceMapper) Name() string { return m.name }

func (m *bitSliceMapper) MaxAddress() uint64 { return m.maxAddress }

func (m *bitSliceMapper) Map(addr uint64) dramorg.Coordinate {
	var c dramorg.Coordinate

	shifted := addr >> uint(m.offsetBits)
	for _, level := range m.fieldOrder {
		width := m.fieldBits[level]
		if width == 0 {
			continue
		}
		mask := uint64(1)<<uint(width) - 1
		c[level] = int(shifted & mask)
		shifted >>= uint(width)
	}
	c[dramorg.Row] = int(shifted)

	return c
}
