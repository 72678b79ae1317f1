package fsm

import "github.com/librescoot/librefsm"

// NewDefinition creates the sequencer FSM definition. Every state can
// reach every other one; the mode register decides which event is sent.
func NewDefinition(actions Actions) *librefsm.Definition {
	return librefsm.NewDefinition().
		State(StateIdle,
			librefsm.WithOnEnter(actions.EnterIdle),
		).
		State(StatePlayingRock,
			librefsm.WithOnEnter(actions.EnterPlaying),
			librefsm.WithOnExit(actions.ExitPlaying),
		).
		State(StatePlayingCustom,
			librefsm.WithOnEnter(actions.EnterPlaying),
			librefsm.WithOnExit(actions.ExitPlaying),
		).

		// From Idle
		Transition(StateIdle, EvModeRock, StatePlayingRock).
		Transition(StateIdle, EvModeCustom, StatePlayingCustom).

		// From PlayingRock
		Transition(StatePlayingRock, EvModeOff, StateIdle).
		Transition(StatePlayingRock, EvModeCustom, StatePlayingCustom).

		// From PlayingCustom
		Transition(StatePlayingCustom, EvModeOff, StateIdle).
		Transition(StatePlayingCustom, EvModeRock, StatePlayingRock).

		Initial(StateIdle)
}
