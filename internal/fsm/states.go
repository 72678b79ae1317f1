package fsm

import (
	"github.com/librescoot/librefsm"

	"beatbox-service/internal/types"
)

// Sequencer states
const (
	StateIdle          librefsm.StateID = "idle"
	StatePlayingRock   librefsm.StateID = "playing-rock"
	StatePlayingCustom librefsm.StateID = "playing-custom"
)

// Sequencer events, sent once per cycle boundary when the mode differs
// from the running state.
const (
	EvModeOff    librefsm.EventID = "mode-off"
	EvModeRock   librefsm.EventID = "mode-rock"
	EvModeCustom librefsm.EventID = "mode-custom"
)

// StateForMode maps a mode onto the state that plays it.
func StateForMode(m types.Mode) librefsm.StateID {
	switch m {
	case types.ModeRock:
		return StatePlayingRock
	case types.ModeCustom:
		return StatePlayingCustom
	default:
		return StateIdle
	}
}

// EventForMode returns the event that moves the machine into StateForMode(m).
func EventForMode(m types.Mode) librefsm.EventID {
	switch m {
	case types.ModeRock:
		return EvModeRock
	case types.ModeCustom:
		return EvModeCustom
	default:
		return EvModeOff
	}
}

// IsPlaying reports whether id emits a pattern.
func IsPlaying(id librefsm.StateID) bool {
	return id == StatePlayingRock || id == StatePlayingCustom
}
