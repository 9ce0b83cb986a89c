// Package view renders the 2-D interactive variant in a raylib window.
package view

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/ripplesim/ripple/config"
	"github.com/ripplesim/ripple/fluid2"
)

// App holds the interactive 2-D simulation and its display state.
type App struct {
	particles []fluid2.Particle
	par       fluid2.Params
	substeps  int
	lattice   int

	width, height float32
	frame         int
	paused        bool
	stepOnce      bool
}

// NewApp seeds the 2-D lattice from the view config.
func NewApp(cfg *config.Config) *App {
	v := &cfg.View
	const lattice = 40
	return &App{
		particles: fluid2.SeedLattice(lattice, float32(v.DX)),
		par: fluid2.Params{
			DX:          float32(v.DX),
			DT:          float32(v.DT),
			GravityY:    float32(v.Gravity),
			Stiffness:   float32(v.Stiffness),
			RestDensity: float32(cfg.Fluid.RestDensity),
		},
		substeps: v.Substeps,
		lattice:  lattice,
		width:    float32(v.Width),
		height:   float32(v.Height),
	}
}

// Run opens the window and loops until closed.
func Run(cfg *config.Config) {
	v := &cfg.View
	rl.InitWindow(int32(v.Width), int32(v.Height), "ripple sph2d")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(v.TargetFPS))

	app := NewApp(cfg)
	for !rl.WindowShouldClose() {
		app.handleInput()
		app.Update()
		app.draw()
	}
}

// handleInput processes keyboard input.
func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		a.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.particles = fluid2.SeedLattice(a.lattice, a.par.DX)
		a.frame = 0
	}
}

// Update advances one displayed frame: reset pressures, then run the
// configured number of substeps.
func (a *App) Update() {
	if a.paused && !a.stepOnce {
		return
	}
	a.stepOnce = false

	fluid2.ResetPressure(a.particles)
	for i := 0; i < a.substeps; i++ {
		fluid2.Substep(a.particles, a.par)
	}
	a.frame++
}

// draw renders particles shaded by their last computed density.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(128, 128, 128, 255))

	for i := range a.particles {
		p := &a.particles[i]

		// Density shading: 1/InvDensity recovers the last density pass's
		// estimate; InvDensity is never cleared in this variant.
		shade := 1 / p.InvDensity * 0.5 * 255
		v := uint8(max(0, min(shade, 255)))

		x := p.X * a.width
		y := (1 - p.Y) * a.height
		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, 3, rl.NewColor(v, v, 255, 255))
	}

	rl.DrawText(fmt.Sprintf("frame: %d  particles: %d", a.frame, len(a.particles)), 10, 10, 20, rl.White)
	rl.DrawText("[space] pause  [n] step  [r] reset", 10, 35, 20, rl.White)
	if a.paused {
		rl.DrawText("PAUSED", 10, 60, 20, rl.Yellow)
	}

	rl.EndDrawing()
}

// Particles exposes the particle buffer for tests.
func (a *App) Particles() []fluid2.Particle {
	return a.particles
}
