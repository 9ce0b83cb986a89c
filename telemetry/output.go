// Package telemetry provides snapshot output, per-frame statistics, and
// phase timing for simulation runs.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/ripplesim/ripple/config"
)

// Point is one particle in a frame snapshot: a position and the variant's
// fixed visualization radius.
type Point struct {
	X      float32 `csv:"x"`
	Y      float32 `csv:"y"`
	Z      float32 `csv:"z"`
	Radius float32 `csv:"radius"`
}

// OutputManager handles structured run output: one CSV per frame snapshot
// plus a run-level frame stats log.
type OutputManager struct {
	dir         string
	statsFile   *os.File
	statsHeader bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &OutputManager{dir: dir}, nil
}

// WriteFrame writes one frame's particle snapshot to its own CSV file. The
// filename is chosen by the caller; the manager only roots it in the output
// directory.
func (om *OutputManager) WriteFrame(filename string, pts []Point) error {
	if om == nil {
		return nil
	}

	f, err := os.Create(filepath.Join(om.dir, filename))
	if err != nil {
		return fmt.Errorf("creating frame file: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(pts, f); err != nil {
		return fmt.Errorf("writing frame %s: %w", filename, err)
	}
	return nil
}

// WriteFrameStats appends a frame stats record to frames.csv. The first
// write includes headers; subsequent writes skip them.
func (om *OutputManager) WriteFrameStats(fs FrameStats) error {
	if om == nil {
		return nil
	}

	if om.statsFile == nil {
		f, err := os.Create(filepath.Join(om.dir, "frames.csv"))
		if err != nil {
			return fmt.Errorf("creating frames.csv: %w", err)
		}
		om.statsFile = f
	}

	records := []FrameStats{fs}
	if !om.statsHeader {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing frame stats: %w", err)
		}
		om.statsHeader = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing frame stats: %w", err)
		}
	}
	return nil
}

// WriteConfig saves the current configuration as YAML next to the snapshots.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes the run-level files. Per-frame files are closed as
// they are written.
func (om *OutputManager) Close() error {
	if om == nil || om.statsFile == nil {
		return nil
	}
	return om.statsFile.Close()
}
