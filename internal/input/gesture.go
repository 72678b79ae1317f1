package input

import (
	"time"

	"beatbox-service/internal/types"
)

// Axis indexes the accelerometer axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	axisCount
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// Sample is one raw accelerometer reading.
type Sample struct {
	X, Y, Z int16
}

func (s Sample) axis(a Axis) int {
	switch a {
	case AxisX:
		return int(s.X)
	case AxisY:
		return int(s.Y)
	default:
		return int(s.Z)
	}
}

// AxisConfig binds one axis to a voice.
type AxisConfig struct {
	Threshold int
	Debounce  time.Duration
	Voice     types.Trigger
}

type GestureConfig struct {
	DeadZone int
	Axes     [3]AxisConfig
}

// DefaultGestureConfig is tuned for a LIS2DW12 at +/-2g.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		DeadZone: 1000,
		Axes: [3]AxisConfig{
			AxisX: {Threshold: 5000, Debounce: 200 * time.Millisecond, Voice: types.TriggerSnare},
			AxisY: {Threshold: 5000, Debounce: 200 * time.Millisecond, Voice: types.TriggerHiHat},
			AxisZ: {Threshold: 7000, Debounce: 200 * time.Millisecond, Voice: types.TriggerBassDrum},
		},
	}
}

// Hit is one detected air-drum strike.
type Hit struct {
	Axis  Axis
	Delta int
	Voice types.Trigger
}

type axisState struct {
	previous    int
	baseline    int
	lastTrigger time.Time
}

// GestureDetector classifies strikes independently per axis. The baseline
// is the first sample after Reset and stays fixed while listening.
type GestureDetector struct {
	cfg        GestureConfig
	axes       [axisCount]axisState
	calibrated bool
}

func NewGestureDetector(cfg GestureConfig) *GestureDetector {
	return &GestureDetector{cfg: cfg}
}

// Reset drops the baseline; the next sample becomes the new reference.
func (g *GestureDetector) Reset() {
	g.calibrated = false
}

func (g *GestureDetector) Calibrated() bool {
	return g.calibrated
}

// Baseline returns the reference value for an axis.
func (g *GestureDetector) Baseline(a Axis) int {
	return g.axes[a].baseline
}

// Previous returns the last value seen on an axis.
func (g *GestureDetector) Previous(a Axis) int {
	return g.axes[a].previous
}

// Process evaluates one sample and returns the strikes it contains.
func (g *GestureDetector) Process(s Sample, now time.Time) []Hit {
	if !g.calibrated {
		for a := AxisX; a < axisCount; a++ {
			v := s.axis(a)
			g.axes[a].baseline = v
			g.axes[a].previous = v
		}
		g.calibrated = true
		return nil
	}

	var hits []Hit
	for a := AxisX; a < axisCount; a++ {
		st := &g.axes[a]
		cfg := g.cfg.Axes[a]
		v := s.axis(a)
		st.previous = v

		delta := v - st.baseline
		mag := delta
		if mag < 0 {
			mag = -mag
		}
		if mag <= cfg.Threshold || mag <= g.cfg.DeadZone {
			continue
		}
		if !st.lastTrigger.IsZero() && now.Sub(st.lastTrigger) <= cfg.Debounce {
			continue
		}

		st.lastTrigger = now
		hits = append(hits, Hit{Axis: a, Delta: delta, Voice: cfg.Voice})
	}
	return hits
}
