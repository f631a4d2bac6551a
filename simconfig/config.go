// Package simconfig reads the key=value configuration files spec.md
// section 6 describes: text files naming a DRAM standard, its organization
// and speed presets, channel/rank/subarray counts, and the driver/scheduler
// tuning knobs. The format is the original trace toolchain's own (not
// YAML/JSON), so it is parsed with a small line scanner rather than a
// general-purpose config library -- see DESIGN.md.
package simconfig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config holds one memory tier's configuration, parsed from a single
// config file named on the command line.
type Config struct {
	Standard string
	Org      string
	Speed    string

	Channels  int
	Ranks     int
	Subarrays int

	CPUTick int
	MemTick int

	WarmupInsts uint64

	EarlyExit           bool
	CalcWeightedSpeedup bool

	SchedulingPolicy string

	ReadQueueCapacity  int
	WriteQueueCapacity int
	OtherQueueCapacity int

	HighWriteWatermark float64
	LowWriteWatermark  float64

	raw map[string]string
}

// defaults mirrors the original trace toolchain's built-in fallbacks, used
// for any key the config file omits.
func defaults() Config {
	return Config{
		Channels:           1,
		Ranks:              1,
		CPUTick:            1,
		MemTick:            1,
		SchedulingPolicy:   "FRFCFS",
		ReadQueueCapacity:  32,
		WriteQueueCapacity: 32,
		OtherQueueCapacity: 8,
		HighWriteWatermark: 0.8,
		LowWriteWatermark:  0.2,
	}
}

// Load reads and parses a config file from path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("simconfig: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads key=value lines from r. Blank lines and lines beginning with
// '#' are ignored. Duplicate keys overwrite earlier ones.
func Parse(r io.Reader) (Config, error) {
	cfg := defaults()
	cfg.raw = map[string]string{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, fmt.Errorf("simconfig: line %d: expected key=value, got %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		cfg.raw[key] = value

		if err := cfg.apply(key, value); err != nil {
			return Config{}, fmt.Errorf("simconfig: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("simconfig: %w", err)
	}

	if cfg.Standard == "" {
		return Config{}, fmt.Errorf("simconfig: missing required key %q", "standard")
	}

	return cfg, nil
}

func (c *Config) apply(key, value string) error {
	switch key {
	case "standard":
		c.Standard = value
	case "org":
		c.Org = value
	case "speed":
		c.Speed = value
	case "channels":
		return assignInt(&c.Channels, value)
	case "ranks":
		return assignInt(&c.Ranks, value)
	case "subarrays":
		return assignInt(&c.Subarrays, value)
	case "cpu_tick":
		return assignInt(&c.CPUTick, value)
	case "mem_tick":
		return assignInt(&c.MemTick, value)
	case "warmup_insts":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("warmup_insts: %w", err)
		}
		c.WarmupInsts = n
	case "early_exit":
		return assignBool(&c.EarlyExit, value)
	case "calc_weighted_speedup":
		return assignBool(&c.CalcWeightedSpeedup, value)
	case "scheduling_policy":
		c.SchedulingPolicy = value
	case "read_queue_capacity":
		return assignInt(&c.ReadQueueCapacity, value)
	case "write_queue_capacity":
		return assignInt(&c.WriteQueueCapacity, value)
	case "other_queue_capacity":
		return assignInt(&c.OtherQueueCapacity, value)
	case "high_watermark":
		return assignFloat(&c.HighWriteWatermark, value)
	case "low_watermark":
		return assignFloat(&c.LowWriteWatermark, value)
	default:
		// Unrecognized keys are kept in raw but otherwise ignored: the
		// original format's config files carry knobs this core doesn't
		// consume (e.g. per-standard micro-architectural parameters).
	}
	return nil
}

func assignInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func assignFloat(dst *float64, value string) error {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func assignBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// Raw returns the value originally given for key, and whether it was
// present at all -- an escape hatch for options this Config does not
// otherwise model.
func (c Config) Raw(key string) (string, bool) {
	v, ok := c.raw[key]
	return v, ok
}
