// Package sim owns the simulation driver and the two run variants. The
// driver holds the frame loop and output cadence; variants supply the
// per-substep physics behind a small Method interface chosen at construction.
package sim

import (
	"fmt"
	"log/slog"

	"github.com/ripplesim/ripple/telemetry"
)

// State is the driver's lifecycle state.
type State int

const (
	// Running means frames remain to be simulated.
	Running State = iota
	// Done means the configured frame count is exhausted. The driver never
	// loops or resets.
	Done
)

// Method is the capability a simulation variant provides: one substep of its
// physics, and a snapshot of every live particle's position with the
// variant's visualization radius.
type Method interface {
	Substep()
	Snapshot() []telemetry.Point
}

// OutputFunc receives each completed frame's snapshot. The driver does not
// interpret the result beyond surfacing the error; the file format and
// medium are the collaborator's concern.
type OutputFunc func(frame int, filename string, pts []telemetry.Point) error

// Driver runs a Method for a fixed number of frames, with a fixed number of
// substeps per frame, invoking the output hook once per completed frame.
type Driver struct {
	method      Method
	substeps    int
	totalFrames int
	frame       int
	output      OutputFunc
}

// NewDriver creates a driver. substeps is frame_dt/dt truncated to an
// integer by the caller; any remainder of frame_dt is dropped, not
// accumulated. A nil output disables the hook.
func NewDriver(method Method, totalFrames, substeps int, output OutputFunc) *Driver {
	return &Driver{
		method:      method,
		substeps:    substeps,
		totalFrames: totalFrames,
		output:      output,
	}
}

// State reports whether frames remain.
func (d *Driver) State() State {
	if d.frame >= d.totalFrames {
		return Done
	}
	return Running
}

// Frame returns the number of completed frames.
func (d *Driver) Frame() int {
	return d.frame
}

// Advance runs one frame: all substeps, the frame-counter increment, and the
// output hook with a filename keyed by the new frame index. Advancing a Done
// driver is a no-op.
func (d *Driver) Advance() error {
	if d.State() == Done {
		return nil
	}

	for i := 0; i < d.substeps; i++ {
		d.method.Substep()
	}
	d.frame++

	slog.Info("frame complete", "frame", d.frame, "of", d.totalFrames)

	if d.output != nil {
		name := FrameFilename(d.frame)
		if err := d.output(d.frame, name, d.method.Snapshot()); err != nil {
			return fmt.Errorf("output frame %d: %w", d.frame, err)
		}
	}
	return nil
}

// Run advances until Done.
func (d *Driver) Run() error {
	for d.State() == Running {
		if err := d.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// FrameFilename returns the generated snapshot filename for a frame index.
func FrameFilename(frame int) string {
	return fmt.Sprintf("%05d.csv", frame)
}
