package simconfig

import (
	"strings"
	"testing"
)

func TestParseFillsRecognizedFields(t *testing.T) {
	input := `
# a comment
standard = DDR4
org=DDR4_4Gb_x8
speed=DDR4_2400R
channels=2
ranks=4
warmup_insts=100000
calc_weighted_speedup=true
high_watermark=0.8
low_watermark=0.4
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Standard != "DDR4" || cfg.Org != "DDR4_4Gb_x8" || cfg.Speed != "DDR4_2400R" {
		t.Fatalf("unexpected standard/org/speed: %+v", cfg)
	}
	if cfg.Channels != 2 || cfg.Ranks != 4 {
		t.Fatalf("unexpected channels/ranks: %+v", cfg)
	}
	if cfg.WarmupInsts != 100000 {
		t.Fatalf("unexpected warmup_insts: %d", cfg.WarmupInsts)
	}
	if !cfg.CalcWeightedSpeedup {
		t.Fatalf("expected calc_weighted_speedup=true")
	}
	if cfg.HighWriteWatermark != 0.8 || cfg.LowWriteWatermark != 0.4 {
		t.Fatalf("unexpected watermarks: %+v", cfg)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("standard=DDR3\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Channels != 1 || cfg.Ranks != 1 {
		t.Fatalf("expected default channels/ranks of 1, got %+v", cfg)
	}
	if cfg.SchedulingPolicy != "FRFCFS" {
		t.Fatalf("expected default scheduling policy FRFCFS, got %q", cfg.SchedulingPolicy)
	}
}

func TestParseRejectsMissingStandard(t *testing.T) {
	_, err := Parse(strings.NewReader("org=DDR4_4Gb_x8\n"))
	if err == nil {
		t.Fatalf("expected an error for a config missing 'standard'")
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("standard DDR4\n"))
	if err == nil {
		t.Fatalf("expected an error for a line with no '='")
	}
}

func TestRawPreservesUnrecognizedKeys(t *testing.T) {
	cfg, err := Parse(strings.NewReader("standard=DDR4\nrow_buffer_policy=open\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, ok := cfg.Raw("row_buffer_policy")
	if !ok || v != "open" {
		t.Fatalf("expected raw key to be preserved, got %q, %v", v, ok)
	}
}
