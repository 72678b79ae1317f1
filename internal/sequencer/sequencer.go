// Package sequencer plays the beat patterns selected by the shared
// tempo/mode register.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/librescoot/librefsm"

	"beatbox-service/internal/fsm"
	"beatbox-service/internal/logger"
	"beatbox-service/internal/sound"
	"beatbox-service/internal/tempo"
	"beatbox-service/internal/timing"
	"beatbox-service/internal/types"
)

const DefaultIdleInterval = 500 * time.Millisecond

// Ensure Sequencer implements fsm.Actions
var _ fsm.Actions = (*Sequencer)(nil)

type Option func(*Sequencer)

func WithClock(c Clock) Option {
	return func(s *Sequencer) { s.clock = c }
}

func WithIdleInterval(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.idle = d
		}
	}
}

// WithPeriodTimer marks every emitted step on t.
func WithPeriodTimer(t *timing.PeriodTimer) Option {
	return func(s *Sequencer) { s.period = t }
}

type Sequencer struct {
	logger *logger.Logger
	state  *tempo.State
	sink   sound.Sink
	clock  Clock
	period *timing.PeriodTimer
	idle   time.Duration

	mu      sync.Mutex
	machine *librefsm.Machine
	hooks   []func(from, to librefsm.StateID)
}

func New(state *tempo.State, sink sound.Sink, l *logger.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		logger: l,
		state:  state,
		sink:   sink,
		clock:  realClock{},
		period: timing.NewPeriodTimer("audio"),
		idle:   DefaultIdleInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sink == nil {
		s.sink = sound.Discard{}
	}
	return s
}

// PeriodTimer returns the timer marked on every played step.
func (s *Sequencer) PeriodTimer() *timing.PeriodTimer {
	return s.period
}

// OnStateChange registers fn to run after every state transition. fn runs
// while the state machine is locked and must not call State.
func (s *Sequencer) OnStateChange(fn func(from, to librefsm.StateID)) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Start builds and starts the state machine. It must be called once before
// RunCycle or Run.
func (s *Sequencer) Start(ctx context.Context) error {
	machine, err := fsm.NewDefinition(s).Build()
	if err != nil {
		return fmt.Errorf("failed to build sequencer FSM: %w", err)
	}

	machine.OnStateChange(func(from, to librefsm.StateID) {
		s.logger.Infof("State transition: %s -> %s", from, to)

		s.mu.Lock()
		hooks := append([]func(from, to librefsm.StateID){}, s.hooks...)
		s.mu.Unlock()

		for _, fn := range hooks {
			fn(from, to)
		}
	})

	if err := machine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sequencer FSM: %w", err)
	}

	s.mu.Lock()
	s.machine = machine
	s.mu.Unlock()
	return nil
}

// State returns the current sequencer state; StateIdle before Start.
func (s *Sequencer) State() librefsm.StateID {
	s.mu.Lock()
	machine := s.machine
	s.mu.Unlock()

	if machine == nil {
		return fsm.StateIdle
	}
	return machine.CurrentState()
}

// sync moves the machine to the state for mode. Only called between cycles.
func (s *Sequencer) sync(machine *librefsm.Machine, mode types.Mode) error {
	want := fsm.StateForMode(mode)
	if machine.CurrentState() == want {
		return nil
	}
	return machine.SendSync(librefsm.Event{ID: fsm.EventForMode(mode)})
}

// RunCycle performs one iteration: one full pattern pass when playing, one
// idle interval otherwise. Tempo and mode are read once at the start, so
// changes made during the cycle take effect on the next one. The only
// errors returned are a missing Start or ctx cancellation.
func (s *Sequencer) RunCycle(ctx context.Context) error {
	s.mu.Lock()
	machine := s.machine
	s.mu.Unlock()
	if machine == nil {
		return errors.New("sequencer not started")
	}

	snap := s.state.Snapshot()
	if err := s.sync(machine, snap.Mode); err != nil {
		s.logger.Warnf("Failed to switch to mode %s: %v", snap.Mode, err)
	}

	var pattern Pattern
	switch machine.CurrentState() {
	case fsm.StatePlayingRock:
		pattern = Rock
	case fsm.StatePlayingCustom:
		pattern = Custom
	default:
		return s.clock.WaitUntil(ctx, s.clock.Now().Add(s.idle))
	}

	return s.play(ctx, pattern, snap.BPM)
}

// play emits each step at an absolute offset from the cycle start, so late
// wakeups do not push back the steps after them.
func (s *Sequencer) play(ctx context.Context, p Pattern, bpm int) error {
	beat := BeatDuration(bpm)
	start := s.clock.Now()

	var offset float64
	for _, step := range p.Steps {
		if err := s.clock.WaitUntil(ctx, start.Add(scale(offset, beat))); err != nil {
			return err
		}
		s.period.Mark(s.clock.Now())
		for _, t := range step.Triggers {
			s.sink.Emit(t)
		}
		offset += step.Fraction
	}

	return s.clock.WaitUntil(ctx, start.Add(scale(offset, beat)))
}

// Run loops RunCycle until ctx is cancelled.
func (s *Sequencer) Run(ctx context.Context) error {
	s.logger.Infof("Sequencer running")
	defer s.logger.Infof("Sequencer stopped")

	for {
		if err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// === State Actions ===

func (s *Sequencer) EnterIdle(c *librefsm.Context) error {
	s.logger.Debugf("Sequencer idle")
	return nil
}

func (s *Sequencer) EnterPlaying(c *librefsm.Context) error {
	s.logger.Debugf("Sequencer playing at %d BPM", s.state.BPM())
	return nil
}

// ExitPlaying breaks the period chain so the time spent idle or switching
// patterns is not counted as a step period.
func (s *Sequencer) ExitPlaying(c *librefsm.Context) error {
	s.period.Pause()
	return nil
}
