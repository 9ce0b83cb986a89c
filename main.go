package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/ripplesim/ripple/config"
	"github.com/ripplesim/ripple/fluid"
	"github.com/ripplesim/ripple/sim"
	"github.com/ripplesim/ripple/telemetry"
	"github.com/ripplesim/ripple/view"
)

// particleSource is implemented by both variants; frame stats read through it.
type particleSource interface {
	Particles() []fluid.Particle
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	variant := flag.String("variant", "bf", "Simulation variant: bf (all-pairs) or grid (block grid)")
	interactive := flag.Bool("2d", false, "Run the interactive 2-D variant instead of a headless run")
	frames := flag.Int("frames", 0, "Total frames (0 = use config)")
	outputDir := flag.String("output-dir", "", "Snapshot directory (overrides config; \"none\" disables)")
	logPerf := flag.Bool("log-perf", false, "Log per-phase timing at the end of the run")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *interactive {
		view.Run(cfg)
		return
	}

	totalFrames := cfg.Sim.TotalFrames
	if *frames > 0 {
		totalFrames = *frames
	}

	dir := cfg.Output.Dir
	switch *outputDir {
	case "":
	case "none":
		dir = ""
	default:
		dir = *outputDir
	}

	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	perf := telemetry.NewPerfCollector()

	var method sim.Method
	switch *variant {
	case "bf":
		method = sim.NewBruteForce(cfg, perf)
	case "grid":
		method = sim.NewBlockGrid(cfg, perf)
	default:
		slog.Error("unknown variant", "variant", *variant)
		os.Exit(1)
	}

	src := method.(particleSource)
	output := func(frame int, filename string, pts []telemetry.Point) error {
		perf.StartPhase(telemetry.PhaseOutput)
		defer perf.EndPhase()

		if err := om.WriteFrame(filename, pts); err != nil {
			return err
		}
		if cfg.Output.FrameStats {
			return om.WriteFrameStats(telemetry.ComputeFrameStats(frame, src.Particles()))
		}
		return nil
	}

	slog.Info("starting run",
		"variant", *variant,
		"frames", totalFrames,
		"substeps_per_frame", cfg.Derived.Substeps,
		"output_dir", om.Dir(),
	)

	driver := sim.NewDriver(method, totalFrames, cfg.Derived.Substeps, output)
	if err := driver.Run(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	if *logPerf {
		perf.LogSummary()
	}
	slog.Info("run complete", "frames", driver.Frame())
}
