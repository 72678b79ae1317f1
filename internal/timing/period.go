// Package timing tracks loop period statistics for the playback and
// accelerometer loops.
package timing

import (
	"fmt"
	"sync"
	"time"
)

type Stats struct {
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Count int
}

func (s Stats) String() string {
	return fmt.Sprintf("min=%.2fms max=%.2fms avg=%.2fms n=%d",
		Millis(s.Min), Millis(s.Max), Millis(s.Avg), s.Count)
}

// Millis converts a duration to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// PeriodTimer records the interval between successive marks.
type PeriodTimer struct {
	mu    sync.Mutex
	name  string
	last  time.Time
	min   time.Duration
	max   time.Duration
	total time.Duration
	count int
}

func NewPeriodTimer(name string) *PeriodTimer {
	return &PeriodTimer{name: name}
}

func (p *PeriodTimer) Name() string {
	return p.name
}

// Mark records now; from the second mark on, the elapsed period is counted.
func (p *PeriodTimer) Mark(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		p.record(now.Sub(p.last))
	}
	p.last = now
}

// Record adds a measured period directly.
func (p *PeriodTimer) Record(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(d)
}

func (p *PeriodTimer) record(d time.Duration) {
	if p.count == 0 || d < p.min {
		p.min = d
	}
	if d > p.max {
		p.max = d
	}
	p.total += d
	p.count++
}

// Pause forgets the last mark so a gap (e.g. idle time) is not counted.
func (p *PeriodTimer) Pause() {
	p.mu.Lock()
	p.last = time.Time{}
	p.mu.Unlock()
}

func (p *PeriodTimer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{Min: p.min, Max: p.max, Count: p.count}
	if p.count > 0 {
		s.Avg = p.total / time.Duration(p.count)
	}
	return s
}

func (p *PeriodTimer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = time.Time{}
	p.min, p.max, p.total, p.count = 0, 0, 0, 0
}
