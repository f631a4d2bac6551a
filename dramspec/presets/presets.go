// Package presets holds the embedded, per-standard organization and speed
// tables dramspec.New builds a Spec from. Keeping them as data (loaded with
// gopkg.in/yaml.v3 via go:embed) rather than Go literals follows spec.md
// section 1's framing: "the numerical values of any specific DRAM-standard
// timing table [are] data, not design".
package presets

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed standards.yaml
var standardsYAML []byte

// Org is one organization preset: fan-out counts at each level below
// Channel, plus the row/column address width.
type Org struct {
	Ranks      int `yaml:"ranks"`
	BankGroups int `yaml:"bankgroups"`
	Banks      int `yaml:"banks"`
	Subarrays  int `yaml:"subarrays"`
	Rows       int `yaml:"rows"`
	Columns    int `yaml:"columns"`
}

// Speed is one speed-bin preset: the timing constants a Spec's constraint
// table is built from.
type Speed struct {
	TRCD  uint64 `yaml:"trcd"`
	TRP   uint64 `yaml:"trp"`
	TRAS  uint64 `yaml:"tras"`
	TWR   uint64 `yaml:"twr"`
	TRTP  uint64 `yaml:"trtp"`
	TCCD  uint64 `yaml:"tccd"`
	TCCDL uint64 `yaml:"tccdl"`
	TRRD  uint64 `yaml:"trrd"`
	TRRDL uint64 `yaml:"trrdl"`
	TFAW  uint64 `yaml:"tfaw"`
	TRFC  uint64 `yaml:"trfc"`
	TREFI uint64 `yaml:"trefi"`
	TCWL  uint64 `yaml:"tcwl"`
	TWTR  uint64 `yaml:"twtr"`
	TWTRL uint64 `yaml:"twtrl"`
}

// Standard is one DRAM standard's full preset table: whether it has a
// BankGroup/Subarray level, and its named org/speed presets.
type Standard struct {
	HasBankGroup bool             `yaml:"has_bankgroup"`
	HasSubarray  bool             `yaml:"has_subarray"`
	Orgs         map[string]Org   `yaml:"orgs"`
	Speeds       map[string]Speed `yaml:"speeds"`
}

type catalog struct {
	Standards map[string]Standard `yaml:"standards"`
}

var loaded catalog

func init() {
	if err := yaml.Unmarshal(standardsYAML, &loaded); err != nil {
		panic(fmt.Sprintf("presets: embedded standards.yaml is malformed: %v", err))
	}
}

// Lookup returns the Org and Speed preset named org/speed under standard,
// or an error naming whichever of standard/org/speed was not found.
func Lookup(standard, org, speed string) (Standard, Org, Speed, error) {
	std, ok := loaded.Standards[standard]
	if !ok {
		return Standard{}, Org{}, Speed{}, fmt.Errorf("presets: unknown standard %q", standard)
	}
	o, ok := std.Orgs[org]
	if !ok {
		return Standard{}, Org{}, Speed{}, fmt.Errorf("presets: standard %q has no org preset %q", standard, org)
	}
	s, ok := std.Speeds[speed]
	if !ok {
		return Standard{}, Org{}, Speed{}, fmt.Errorf("presets: standard %q has no speed preset %q", standard, speed)
	}
	return std, o, s, nil
}

// Names returns the standard names this build recognizes, matching
// spec.md section 6's configuration option list.
func Names() []string {
	names := make([]string, 0, len(loaded.Standards))
	for name := range loaded.Standards {
		names = append(names, name)
	}
	return names
}
