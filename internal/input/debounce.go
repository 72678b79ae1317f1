// Package input holds the hardware-independent decoders for the encoder,
// the push buttons and the accelerometer. Every decoder is owned by a single
// poller goroutine and is not safe for concurrent use.
package input

import "time"

// Edge selects which level transition counts as a press.
type Edge int

const (
	// EdgeFalling fires on HIGH -> LOW (active-low buttons).
	EdgeFalling Edge = iota
	// EdgeRising fires on LOW -> HIGH.
	EdgeRising
)

const DefaultButtonDebounce = 200 * time.Millisecond

// ButtonDebouncer turns a polled line level into one event per physical press.
type ButtonDebouncer struct {
	edge      Edge
	window    time.Duration
	lastLevel bool
	lastPress time.Time
}

func NewButtonDebouncer(edge Edge, window time.Duration) *ButtonDebouncer {
	return &ButtonDebouncer{
		edge:      edge,
		window:    window,
		lastLevel: edge == EdgeFalling, // idle level
	}
}

// Update feeds one sample and reports whether it completes a press.
func (d *ButtonDebouncer) Update(level bool, now time.Time) bool {
	idle := d.edge == EdgeFalling
	fired := false

	if d.lastLevel == idle && level != idle {
		if d.lastPress.IsZero() || now.Sub(d.lastPress) > d.window {
			d.lastPress = now
			fired = true
		}
	}

	d.lastLevel = level
	return fired
}
