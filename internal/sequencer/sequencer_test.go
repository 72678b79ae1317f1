package sequencer

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/librescoot/librefsm"

	"beatbox-service/internal/fsm"
	"beatbox-service/internal/logger"
	"beatbox-service/internal/sound"
	"beatbox-service/internal/tempo"
	"beatbox-service/internal/types"
)

// fakeClock advances instantly to every deadline it is asked to wait for.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) WaitUntil(ctx context.Context, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t
	}
	return nil
}

type hit struct {
	trigger types.Trigger
	at      time.Duration
}

// recordingSink stores every trigger with its offset from the clock origin.
type recordingSink struct {
	mu     sync.Mutex
	clock  *fakeClock
	origin time.Time
	hits   []hit
	onEmit func(types.Trigger)
}

func newRecordingSink(c *fakeClock) *recordingSink {
	return &recordingSink{clock: c, origin: c.Now()}
}

func (r *recordingSink) Emit(t types.Trigger) {
	r.mu.Lock()
	r.hits = append(r.hits, hit{trigger: t, at: r.clock.Now().Sub(r.origin)})
	fn := r.onEmit
	r.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

func (r *recordingSink) snapshot() []hit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]hit(nil), r.hits...)
}

func newTestSequencer(t *testing.T, bpm int, mode types.Mode) (*Sequencer, *tempo.State, *fakeClock, *recordingSink) {
	t.Helper()

	clock := newFakeClock()
	sink := newRecordingSink(clock)
	state := tempo.New(bpm, mode)
	seq := New(state, sink, logger.NewLogger(nil, logger.LogLevelNone), WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := seq.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return seq, state, clock, sink
}

func TestRockAt120BPM(t *testing.T) {
	seq, _, clock, sink := newTestSequencer(t, 120, types.ModeRock)
	start := clock.Now()

	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	want := []hit{
		{types.TriggerBassDrum, 0},
		{types.TriggerHiHat, 0},
		{types.TriggerHiHat, 250 * time.Millisecond},
		{types.TriggerSnare, 500 * time.Millisecond},
		{types.TriggerHiHat, 500 * time.Millisecond},
		{types.TriggerHiHat, 750 * time.Millisecond},
	}
	got := sink.snapshot()
	if len(got) != len(want) {
		t.Fatalf("Expected %d hits, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hit %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	if elapsed := clock.Now().Sub(start); elapsed != time.Second {
		t.Errorf("Expected cycle of 1s, got %v", elapsed)
	}
	if seq.State() != fsm.StatePlayingRock {
		t.Errorf("Expected state %s, got %s", fsm.StatePlayingRock, seq.State())
	}
}

func TestCycleDurationMatchesTempo(t *testing.T) {
	for _, mode := range []types.Mode{types.ModeRock, types.ModeCustom} {
		for _, bpm := range []int{tempo.MinBPM, 97, 120, 233, tempo.MaxBPM} {
			seq, _, clock, _ := newTestSequencer(t, bpm, mode)
			start := clock.Now()

			if err := seq.RunCycle(context.Background()); err != nil {
				t.Fatalf("RunCycle failed: %v", err)
			}

			want := 2 * 60 * float64(time.Second) / float64(bpm)
			got := float64(clock.Now().Sub(start))
			if math.Abs(got-want) > float64(time.Microsecond) {
				t.Errorf("%s at %d BPM: cycle %v, want %v", mode, bpm, time.Duration(got), time.Duration(want))
			}
		}
	}
}

func TestCustomPatternSteps(t *testing.T) {
	seq, _, _, sink := newTestSequencer(t, 120, types.ModeCustom)

	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	got := sink.snapshot()
	if len(got) != 8 {
		t.Fatalf("Expected 8 hits, got %d: %v", len(got), got)
	}
	// Quarter beats at 120 BPM are 125ms; the last snare falls on step 7.
	last := got[len(got)-1]
	if last.trigger != types.TriggerSnare || last.at != 875*time.Millisecond {
		t.Errorf("Expected snare at 875ms, got %+v", last)
	}
	if seq.State() != fsm.StatePlayingCustom {
		t.Errorf("Expected state %s, got %s", fsm.StatePlayingCustom, seq.State())
	}
}

func TestOffEmitsNothing(t *testing.T) {
	seq, _, clock, sink := newTestSequencer(t, 120, types.ModeOff)
	start := clock.Now()

	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	if hits := sink.snapshot(); len(hits) != 0 {
		t.Errorf("Expected no triggers in Off, got %v", hits)
	}
	if elapsed := clock.Now().Sub(start); elapsed != DefaultIdleInterval {
		t.Errorf("Expected idle wait of %v, got %v", DefaultIdleInterval, elapsed)
	}
	if seq.State() != fsm.StateIdle {
		t.Errorf("Expected state %s, got %s", fsm.StateIdle, seq.State())
	}
}

func TestModeChangeAppliesAtCycleBoundary(t *testing.T) {
	seq, state, _, sink := newTestSequencer(t, 120, types.ModeRock)

	sink.onEmit = func(tr types.Trigger) {
		if tr == types.TriggerSnare {
			state.SetMode(types.ModeCustom)
		}
	}

	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if n := len(sink.snapshot()); n != 6 {
		t.Errorf("Expected the rock cycle to finish with 6 hits, got %d", n)
	}
	if seq.State() != fsm.StatePlayingRock {
		t.Errorf("Expected rock to keep playing until the boundary, got %s", seq.State())
	}

	sink.onEmit = nil
	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if seq.State() != fsm.StatePlayingCustom {
		t.Errorf("Expected custom after the boundary, got %s", seq.State())
	}
}

func TestTempoChangeAppliesNextCycle(t *testing.T) {
	seq, state, clock, sink := newTestSequencer(t, 120, types.ModeRock)

	sink.onEmit = func(types.Trigger) { state.SetBPM(60) }
	start := clock.Now()
	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if elapsed := clock.Now().Sub(start); elapsed != time.Second {
		t.Errorf("Expected first cycle at 120 BPM (1s), got %v", elapsed)
	}

	sink.onEmit = nil
	start = clock.Now()
	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if elapsed := clock.Now().Sub(start); elapsed != 2*time.Second {
		t.Errorf("Expected second cycle at 60 BPM (2s), got %v", elapsed)
	}
}

func TestStateChangeHook(t *testing.T) {
	seq, state, _, _ := newTestSequencer(t, 120, types.ModeOff)

	changes := make(chan librefsm.StateID, 4)
	seq.OnStateChange(func(from, to librefsm.StateID) {
		changes <- to
	})

	state.SetMode(types.ModeRock)
	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	select {
	case to := <-changes:
		if to != fsm.StatePlayingRock {
			t.Errorf("Expected transition to %s, got %s", fsm.StatePlayingRock, to)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for state change hook")
	}
}

func TestPeriodTimerMarkedPerStep(t *testing.T) {
	seq, _, _, _ := newTestSequencer(t, 120, types.ModeRock)

	if err := seq.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	s := seq.PeriodTimer().Stats()
	if s.Count != 3 || s.Avg != 250*time.Millisecond {
		t.Errorf("Expected 3 periods of 250ms, got %+v", s)
	}
}

func TestRunCycleRequiresStart(t *testing.T) {
	seq := New(tempo.New(120, types.ModeRock), sound.Discard{}, logger.NewLogger(nil, logger.LogLevelNone))
	if err := seq.RunCycle(context.Background()); err == nil {
		t.Error("Expected error before Start")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	state := tempo.New(tempo.MaxBPM, types.ModeRock)
	seq := New(state, sound.Discard{}, logger.NewLogger(nil, logger.LogLevelNone))

	ctx, cancel := context.WithCancel(context.Background())
	if err := seq.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- seq.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean stop, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestPatternBeats(t *testing.T) {
	if Rock.Beats() != 2 || Custom.Beats() != 2 {
		t.Errorf("Expected both patterns to span 2 beats, got %v and %v", Rock.Beats(), Custom.Beats())
	}
	if _, ok := PatternFor(types.ModeOff); ok {
		t.Error("Expected no pattern for Off")
	}
}
