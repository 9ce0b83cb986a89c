package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// Phase names for the simulation substep.
const (
	PhaseDensity = "density"
	PhaseForce   = "force"
	PhaseMigrate = "migrate"
	PhaseOutput  = "output"
)

// PerfCollector accumulates per-phase wall time over a run.
type PerfCollector struct {
	phases     map[string]time.Duration
	counts     map[string]int
	phaseStart time.Time
	lastPhase  string
}

// NewPerfCollector creates an empty collector.
func NewPerfCollector() *PerfCollector {
	return &PerfCollector{
		phases: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

// StartPhase closes the previous phase, if any, and starts timing a new one.
func (pc *PerfCollector) StartPhase(name string) {
	if pc == nil {
		return
	}
	now := time.Now()
	pc.closePhase(now)
	pc.lastPhase = name
	pc.phaseStart = now
}

// EndPhase closes the currently open phase.
func (pc *PerfCollector) EndPhase() {
	if pc == nil {
		return
	}
	pc.closePhase(time.Now())
	pc.lastPhase = ""
}

func (pc *PerfCollector) closePhase(now time.Time) {
	if pc.lastPhase == "" {
		return
	}
	pc.phases[pc.lastPhase] += now.Sub(pc.phaseStart)
	pc.counts[pc.lastPhase]++
}

// Total returns the summed duration across all phases.
func (pc *PerfCollector) Total() time.Duration {
	if pc == nil {
		return 0
	}
	var total time.Duration
	for _, d := range pc.phases {
		total += d
	}
	return total
}

// SortedNames returns phase names ordered by accumulated time, longest first.
func (pc *PerfCollector) SortedNames() []string {
	if pc == nil {
		return nil
	}
	names := make([]string, 0, len(pc.phases))
	for name := range pc.phases {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return pc.phases[names[i]] > pc.phases[names[j]]
	})
	return names
}

// LogSummary emits one structured log line per phase.
func (pc *PerfCollector) LogSummary() {
	if pc == nil {
		return
	}
	total := pc.Total()
	for _, name := range pc.SortedNames() {
		d := pc.phases[name]
		pct := float64(0)
		if total > 0 {
			pct = float64(d) / float64(total) * 100
		}
		slog.Info("phase timing",
			"phase", name,
			"total", d.Round(time.Microsecond).String(),
			"calls", pc.counts[name],
			"pct", pct,
		)
	}
}
