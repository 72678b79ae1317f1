package fsm

import "github.com/librescoot/librefsm"

// Actions defines the callbacks the sequencer state machine runs on
// state entry and exit. The Sequencer implements this interface.
type Actions interface {
	EnterIdle(c *librefsm.Context) error
	EnterPlaying(c *librefsm.Context) error
	ExitPlaying(c *librefsm.Context) error
}
