// File: internal/core/system.go
package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/librescoot/librefsm"

	"beatbox-service/internal/config"
	"beatbox-service/internal/hardware"
	"beatbox-service/internal/logger"
	"beatbox-service/internal/remote"
	"beatbox-service/internal/sequencer"
	"beatbox-service/internal/sound"
	"beatbox-service/internal/tempo"
	"beatbox-service/internal/timing"
	"beatbox-service/internal/types"
)

// telemetryQueue bounds the Redis writes waiting behind a stalled server.
const telemetryQueue = 64

// telemetryEvent is one queued Redis write.
type telemetryEvent struct {
	what string
	send func(MessagingClient) error
}

// Fault codes reported when a subsystem is disabled at startup
const (
	FaultGPIO = iota + 1
	FaultAccelerometer
	FaultJoystick
	FaultDisplay
	FaultAudio
	FaultMIDI
	FaultRemote
)

type Fault struct {
	Code        int
	Description string
}

// Deps are the opened devices and channels. A nil field disables that
// subsystem.
type Deps struct {
	GPIO     LineReader
	Accel    Accelerometer
	Joystick Joystick
	Panel    Panel
	Sink     sound.Sink
	Volume   VolumeControl
	Redis    MessagingClient
	Faults   []Fault
}

type BeatboxSystem struct {
	cfg    *config.Config
	logger *logger.Logger

	state      *tempo.State
	seq        *sequencer.Sequencer
	accelTimer *timing.PeriodTimer

	gpio     LineReader
	accel    Accelerometer
	joystick Joystick
	panel    Panel
	sink     sound.Sink
	volume   VolumeControl
	redis    MessagingClient
	remote   CommandServer
	faults   []Fault
	events   chan telemetryEvent

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

func NewBeatboxSystem(cfg *config.Config, deps Deps, l *logger.Logger) (*BeatboxSystem, error) {
	mode, err := cfg.InitialMode()
	if err != nil {
		return nil, err
	}

	sink := deps.Sink
	if sink == nil {
		sink = sound.Discard{}
	}

	b := &BeatboxSystem{
		cfg:        cfg,
		logger:     l,
		state:      tempo.New(cfg.Tempo.BPM, mode),
		accelTimer: timing.NewPeriodTimer("accel"),
		gpio:       deps.GPIO,
		accel:      deps.Accel,
		joystick:   deps.Joystick,
		panel:      deps.Panel,
		sink:       sink,
		volume:     deps.Volume,
		redis:      deps.Redis,
		faults:     append([]Fault(nil), deps.Faults...),
		events:     make(chan telemetryEvent, telemetryQueue),
		done:       make(chan struct{}),
	}

	b.seq = sequencer.New(b.state, sink, l.WithTag("sequencer"),
		sequencer.WithIdleInterval(cfg.Sequencer.IdleInterval))

	if cfg.Remote.Enabled {
		b.remote = remote.NewServer(cfg.Remote.Addr, b, l.WithTag("remote"))
	}

	return b, nil
}

// Done is closed when a remote stop command was received.
func (b *BeatboxSystem) Done() <-chan struct{} {
	return b.done
}

func (b *BeatboxSystem) Start(ctx context.Context) error {
	b.logger.Infof("Starting beatbox system")

	b.mu.Lock()
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.mu.Unlock()

	// Redis first so startup faults can be reported
	b.startMessaging()
	if b.redis != nil {
		b.spawn("telemetry", b.telemetryLoop)
	}

	b.seq.OnStateChange(b.onSequencerStateChange)
	if err := b.seq.Start(b.ctx); err != nil {
		b.cancel()
		return fmt.Errorf("failed to start sequencer: %w", err)
	}
	b.spawn("sequencer", func(ctx context.Context) {
		if err := b.seq.Run(ctx); err != nil {
			b.logger.Errorf("Sequencer stopped: %v", err)
		}
	})

	b.startInputs()
	b.startRemote()

	b.spawn("status", b.statusLoop)

	for _, f := range b.faults {
		b.reportFault(f)
	}

	b.logger.Infof("Beatbox system started: %s", b.Status())
	return nil
}

func (b *BeatboxSystem) spawn(name string, fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.logger.Debugf("Starting %s goroutine", name)
		fn(b.ctx)
		b.logger.Debugf("%s goroutine exited", name)
	}()
}

func (b *BeatboxSystem) addFault(code int, format string, args ...interface{}) {
	f := Fault{Code: code, Description: fmt.Sprintf(format, args...)}
	b.logger.Warnf("Subsystem disabled: %s", f.Description)
	b.faults = append(b.faults, f)
}

func (b *BeatboxSystem) reportFault(f Fault) {
	if b.redis == nil {
		return
	}
	if err := b.redis.ReportFaultPresent(f.Code, f.Description); err != nil {
		b.logger.Warnf("Failed to report fault %d: %v", f.Code, err)
	}
}

func (b *BeatboxSystem) startMessaging() {
	if b.redis == nil {
		return
	}

	b.redis.SetCallbacks(b.callbacks())
	if err := b.redis.Connect(); err != nil {
		b.logger.Warnf("Redis unavailable, command channel disabled: %v", err)
		b.redis.Close()
		b.redis = nil
		return
	}
	if err := b.redis.StartListening(); err != nil {
		b.logger.Warnf("Failed to start Redis listeners: %v", err)
	}
}

func (b *BeatboxSystem) startInputs() {
	if b.gpio == nil {
		b.addFault(FaultGPIO, "GPIO not available")
	} else {
		if b.cfg.Encoder.Enabled {
			if err := b.gpio.RequestInputs(hardware.LineEncoderA, hardware.LineEncoderB); err != nil {
				b.addFault(FaultGPIO, "rotary encoder: %v", err)
			} else {
				b.spawn("rotary", b.rotaryPoller)
			}
		}

		if b.cfg.Buttons.Enabled {
			if err := b.gpio.RequestInputs(hardware.LineEncoderButton); err != nil {
				b.addFault(FaultGPIO, "mode button: %v", err)
			} else {
				b.spawn("mode-button", func(ctx context.Context) {
					b.buttonPoller(ctx, hardware.LineEncoderButton, b.handleModeButton)
				})
			}

			if b.panel != nil {
				if err := b.gpio.RequestInputs(hardware.LineJoystickButton); err != nil {
					b.addFault(FaultGPIO, "screen button: %v", err)
				} else {
					b.spawn("screen-button", func(ctx context.Context) {
						b.buttonPoller(ctx, hardware.LineJoystickButton, b.handleScreenButton)
					})
				}
			}
		}
	}

	if b.accel != nil {
		b.spawn("gesture", b.gesturePoller)
	}
}

func (b *BeatboxSystem) startRemote() {
	if b.remote == nil {
		return
	}
	if err := b.remote.Listen(); err != nil {
		b.addFault(FaultRemote, "UDP remote control: %v", err)
		b.remote = nil
		return
	}
	b.spawn("remote", func(ctx context.Context) {
		if err := b.remote.Serve(ctx); err != nil {
			b.logger.Errorf("Remote control stopped: %v", err)
		}
	})
}

// onSequencerStateChange runs under the sequencer FSM lock.
func (b *BeatboxSystem) onSequencerStateChange(from, to librefsm.StateID) {
	b.queueTelemetry("sequencer state", func(m MessagingClient) error {
		return m.PublishSequencerState(string(to))
	})
}

// queueTelemetry hands a Redis write to the telemetry goroutine. It never
// blocks; when the queue is full the event is dropped.
func (b *BeatboxSystem) queueTelemetry(what string, send func(MessagingClient) error) {
	if b.redis == nil {
		return
	}
	select {
	case b.events <- telemetryEvent{what: what, send: send}:
	default:
		b.logger.Debugf("Telemetry queue full, dropping %s", what)
	}
}

func (b *BeatboxSystem) telemetryLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.events:
			if err := ev.send(b.redis); err != nil {
				b.logger.Debugf("Failed to publish %s: %v", ev.what, err)
			}
		}
	}
}

// Status returns the current snapshot for display and telemetry.
func (b *BeatboxSystem) Status() types.Status {
	snap := b.state.Snapshot()
	s := types.Status{
		Mode:      snap.Mode,
		BPM:       snap.BPM,
		Sequencer: string(b.seq.State()),
	}
	if b.volume != nil {
		s.Volume = b.volume.Volume()
	}
	return s
}

// Shutdown stops every goroutine, waits for them and releases the devices.
func (b *BeatboxSystem) Shutdown() {
	b.logger.Infof("Shutting down beatbox system")

	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	b.wg.Wait()
	b.logger.Debugf("All goroutines stopped")

	if b.remote != nil {
		b.remote.Close()
	}
	if b.gpio != nil {
		b.gpio.Cleanup()
	}
	if b.accel != nil {
		b.accel.Close()
	}
	if b.joystick != nil {
		b.joystick.Close()
	}
	if b.panel != nil {
		b.panel.Close()
	}
	if b.redis != nil {
		b.redis.Close()
	}

	b.logger.Infof("Beatbox system stopped")
}

// RequestStop closes Done once.
func (b *BeatboxSystem) RequestStop() {
	b.stopOnce.Do(func() {
		b.logger.Infof("Stop requested")
		close(b.done)
	})
}
