// Command ramulator is the CLI entry point spec.md section 6 describes:
// it loads one (or two, in hybrid mode) memory-tier configs, an address
// mapping, and a trace, wires the engine together, drives it to
// completion, and prints the stats registry.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ramulator/controller"
	"github.com/sarchlab/ramulator/driver"
	"github.com/sarchlab/ramulator/memory"
	"github.com/sarchlab/ramulator/processor"
	"github.com/sarchlab/ramulator/simconfig"
	"github.com/sarchlab/ramulator/statsreg"
	"github.com/sarchlab/ramulator/trace"
)

func main() {
	// The serial engine is never ticked: every subsystem here drives its own
	// integer cycle counter directly (see DESIGN.md). It is constructed and
	// discarded; no component is registered with it.
	_ = sim.NewSerialEngine()

	var mode string
	var statsPath string
	var mappingNames []string

	root := &cobra.Command{
		Use:   "ramulator <config1> [config2] <trace1> [trace2...]",
		Short: "Cycle-accurate DRAM timing simulator",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, mode, statsPath, mappingNames)
		},
	}

	root.Flags().StringVar(&mode, "mode", "", "trace mode: cpu or dram")
	root.Flags().StringVar(&statsPath, "stats", "", "stats output file (default <standard>.stats)")
	root.Flags().StringSliceVar(&mappingNames, "mapping", nil, "address-to-coordinate mapping name(s), default defaultmapping")
	_ = root.MarkFlagRequired("mode")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func run(args []string, mode, statsPath string, mappingNames []string) error {
	switch mode {
	case "cpu":
		return runCPU(args, statsPath, mappingNames)
	case "dram":
		return runDRAM(args, statsPath, mappingNames)
	default:
		return fmt.Errorf("ramulator: --mode must be \"cpu\" or \"dram\", got %q", mode)
	}
}

func mappingName(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return "defaultmapping"
}

func runDRAM(args []string, statsPath string, mappingNames []string) error {
	var cfg1Path, cfg2Path, tracePath string
	switch len(args) {
	case 2:
		cfg1Path, tracePath = args[0], args[1]
	case 3:
		cfg1Path, cfg2Path, tracePath = args[0], args[1], args[2]
	default:
		return fmt.Errorf("ramulator: dram mode expects \"config [config2] trace\", got %d positional args", len(args))
	}

	cfg1, err := simconfig.Load(cfg1Path)
	if err != nil {
		return err
	}

	stats := statsreg.New()

	tier1, err := buildMemory("mem0", cfg1, mappingName(mappingNames, 0), stats)
	if err != nil {
		return err
	}

	var tier2 *memory.Memory
	var standard2 string
	if cfg2Path != "" {
		cfg2, err := simconfig.Load(cfg2Path)
		if err != nil {
			return err
		}
		standard2 = cfg2.Standard

		tier2, err = buildMemory("mem1", cfg2, mappingName(mappingNames, 1), stats)
		if err != nil {
			return err
		}
	}

	if statsPath == "" {
		statsPath = defaultStatsPath(cfg1, standard2)
	}

	reader, closer, err := trace.OpenDRAMTrace(tracePath)
	if err != nil {
		return err
	}
	defer closer.Close()

	d := driver.NewDRAMDriver(tier1, tier2, reader, stats)
	if err := d.Run(); err != nil {
		return err
	}

	return writeStats(stats, statsPath)
}

func runCPU(args []string, statsPath string, mappingNames []string) error {
	cfgPath, tracePaths := args[0], args[1:]

	cfg, err := simconfig.Load(cfgPath)
	if err != nil {
		return err
	}

	stats := statsreg.New()

	mem, err := buildMemory("mem0", cfg, mappingName(mappingNames, 0), stats)
	if err != nil {
		return err
	}

	if statsPath == "" {
		statsPath = cfg.Standard + ".stats"
	}

	var cores []*processor.Core
	for i, path := range tracePaths {
		reader, closer, err := trace.OpenCPUTrace(path)
		if err != nil {
			return err
		}
		defer closer.Close()
		cores = append(cores, processor.NewCore(fmt.Sprintf("core%d", i), reader, mem.Send))
	}
	proc := processor.New(cores...)

	d := driver.NewCPUDriver(mem, proc, stats, cfg)
	d.Run()

	return writeStats(stats, statsPath)
}

func buildMemory(name string, cfg simconfig.Config, mapping string, stats *statsreg.Registry) (*memory.Memory, error) {
	return memory.New(name, memory.Options{
		Channels:    cfg.Channels,
		Ranks:       cfg.Ranks,
		Subarrays:   cfg.Subarrays,
		Standard:    cfg.Standard,
		Org:         cfg.Org,
		Speed:       cfg.Speed,
		MappingName: mapping,
		Controller:  controllerOptionsFrom(cfg),
		Stats:       stats,
	})
}

// controllerOptionsFrom translates a parsed Config's scheduler/queue knobs
// into controller.Options, resolving the scheduling_policy name to its
// Policy constant.
func controllerOptionsFrom(cfg simconfig.Config) controller.Options {
	policy := controller.FRFCFS
	if strings.EqualFold(cfg.SchedulingPolicy, "FCFS") {
		policy = controller.FCFS
	}

	return controller.Options{
		ReadQueueCapacity:  cfg.ReadQueueCapacity,
		WriteQueueCapacity: cfg.WriteQueueCapacity,
		OtherQueueCapacity: cfg.OtherQueueCapacity,
		HighWriteWatermark: cfg.HighWriteWatermark,
		LowWriteWatermark:  cfg.LowWriteWatermark,
		Policy:             policy,
	}
}

func defaultStatsPath(cfg1 simconfig.Config, standard2 string) string {
	if standard2 == "" {
		return cfg1.Standard + ".stats"
	}
	return cfg1.Standard + "_" + standard2 + ".stats"
}

func writeStats(stats *statsreg.Registry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ramulator: %w", err)
	}
	defer f.Close()
	return stats.PrintAll(f)
}
