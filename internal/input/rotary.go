package input

import "time"

const (
	DefaultEncoderDebounce = 500 * time.Microsecond
	DefaultEncoderStep     = 5
)

// quadrature position encoded as A<<1 | B
func encoderState(a, b bool) uint8 {
	var s uint8
	if a {
		s |= 2
	}
	if b {
		s |= 1
	}
	return s
}

type transition struct {
	from, to uint8
}

// chainStep gives the phase required before a transition and the phase after
// it. Both chains start and end at the rest state 3; the chain starts
// (3->1, 3->2) ignore the current phase.
type chainStep struct {
	need, next int
	start      bool
	done       bool
}

var quadratureChain = map[transition]chainStep{
	// clockwise 3 -> 1 -> 0 -> 2 -> 3
	{3, 1}: {next: 1, start: true},
	{1, 0}: {need: 1, next: 2},
	{0, 2}: {need: 2, next: 3},
	{2, 3}: {need: 3, next: 0, done: true},
	// counter-clockwise 3 -> 2 -> 0 -> 1 -> 3
	{3, 2}: {next: -1, start: true},
	{2, 0}: {need: -1, next: -2},
	{0, 1}: {need: -2, next: -3},
	{1, 3}: {need: -3, next: 0, done: true},
}

// RotaryDecoder is a quadrature state machine that emits a signed step only
// after a complete four-transition detent in one direction.
type RotaryDecoder struct {
	step         int
	debounce     time.Duration
	lastState    uint8
	phase        int
	lastAccepted time.Time
}

func NewRotaryDecoder(step int, debounce time.Duration) *RotaryDecoder {
	if step <= 0 {
		step = DefaultEncoderStep
	}
	return &RotaryDecoder{
		step:      step,
		debounce:  debounce,
		lastState: 3,
	}
}

// Prime seeds the last known line state, usually from the first read after
// the lines are requested.
func (d *RotaryDecoder) Prime(a, b bool) {
	d.lastState = encoderState(a, b)
	d.phase = 0
}

// Phase returns the current half-step position in [-3, 3].
func (d *RotaryDecoder) Phase() int {
	return d.phase
}

// Sample feeds one simultaneous read of both lines and returns the rotation
// delta: +step, -step or 0.
func (d *RotaryDecoder) Sample(a, b bool, now time.Time) int {
	if !d.lastAccepted.IsZero() && now.Sub(d.lastAccepted) < d.debounce {
		return 0
	}
	d.lastAccepted = now

	current := encoderState(a, b)
	last := d.lastState
	d.lastState = current

	if current == last {
		return 0
	}

	cs, ok := quadratureChain[transition{last, current}]
	if !ok || (!cs.start && cs.need != d.phase) {
		d.phase = 0
		return 0
	}

	d.phase = cs.next
	if !cs.done {
		return 0
	}
	if cs.need > 0 {
		return d.step
	}
	return -d.step
}

// Accumulator integrates rotation deltas into a bounded value.
type Accumulator struct {
	value    int
	min, max int
}

func NewAccumulator(initial, min, max int) *Accumulator {
	a := &Accumulator{min: min, max: max}
	a.Sync(initial)
	return a
}

// Sync re-seeds the accumulator, e.g. after the tempo was changed elsewhere.
func (a *Accumulator) Sync(v int) {
	a.value = a.clamp(v)
}

func (a *Accumulator) Add(delta int) int {
	a.value = a.clamp(a.value + delta)
	return a.value
}

func (a *Accumulator) Value() int {
	return a.value
}

func (a *Accumulator) clamp(v int) int {
	if v < a.min {
		return a.min
	}
	if v > a.max {
		return a.max
	}
	return v
}
