package core

import (
	"context"

	"beatbox-service/internal/display"
	"beatbox-service/internal/hardware"
	"beatbox-service/internal/input"
	"beatbox-service/internal/messaging"
	"beatbox-service/internal/timing"
	"beatbox-service/internal/types"
)

// MessagingClient defines the Redis operations needed by BeatboxSystem
type MessagingClient interface {
	SetCallbacks(callbacks messaging.Callbacks)
	Connect() error
	StartListening() error
	Close() error

	PublishStatus(s types.Status) error
	PublishSequencerState(state string) error
	PublishTiming(name string, s timing.Stats) error
	ReportHit(t types.Trigger, source string) error
	ReportFaultPresent(code int, description string) error
}

// LineReader reads named GPIO inputs
type LineReader interface {
	RequestInputs(names ...string) error
	ReadLine(name string) (bool, error)
	Cleanup()
}

type Accelerometer interface {
	ReadSample() (input.Sample, error)
	Close() error
}

type Joystick interface {
	ReadDirection() (hardware.Direction, error)
	Close() error
}

// Panel is the LCD with its screen selection
type Panel interface {
	Update(c display.Content) error
	NextScreen() display.Screen
	Close() error
}

type VolumeControl interface {
	Volume() int
	SetVolume(v int) int
}

// CommandServer is a remote control channel served until its context ends
type CommandServer interface {
	Listen() error
	Serve(ctx context.Context) error
	Close() error
}
