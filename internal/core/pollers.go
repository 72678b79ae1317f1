package core

import (
	"context"
	"time"

	"beatbox-service/internal/display"
	"beatbox-service/internal/hardware"
	"beatbox-service/internal/input"
	"beatbox-service/internal/tempo"
	"beatbox-service/internal/types"
)

// every calls fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func(now time.Time)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fn(now)
		}
	}
}

func (b *BeatboxSystem) readEncoder() (bool, bool, error) {
	a, err := b.gpio.ReadLine(hardware.LineEncoderA)
	if err != nil {
		return false, false, err
	}
	bl, err := b.gpio.ReadLine(hardware.LineEncoderB)
	if err != nil {
		return false, false, err
	}
	return a, bl, nil
}

func (b *BeatboxSystem) rotaryPoller(ctx context.Context) {
	log := b.logger.WithTag("rotary")
	dec := input.NewRotaryDecoder(b.cfg.Encoder.Step, b.cfg.Encoder.Debounce)
	acc := input.NewAccumulator(b.state.BPM(), tempo.MinBPM, tempo.MaxBPM)

	if a, bl, err := b.readEncoder(); err == nil {
		dec.Prime(a, bl)
	}

	every(ctx, b.cfg.Encoder.PollInterval, func(now time.Time) {
		a, bl, err := b.readEncoder()
		if err != nil {
			log.Debugf("Encoder read failed: %v", err)
			return
		}

		delta := dec.Sample(a, bl, now)
		if delta == 0 {
			return
		}

		// Remote tempo changes must not be overwritten by a stale count
		acc.Sync(b.state.BPM())
		bpm := acc.Add(delta)
		if b.state.SetBPM(bpm) {
			log.Debugf("Tempo %d BPM", bpm)
		}
	})
}

// buttonPoller fires onPress once per debounced press of an active-low line.
func (b *BeatboxSystem) buttonPoller(ctx context.Context, line string, onPress func()) {
	deb := input.NewButtonDebouncer(input.EdgeFalling, b.cfg.Buttons.Debounce)

	every(ctx, b.cfg.Buttons.PollInterval, func(now time.Time) {
		level, err := b.gpio.ReadLine(line)
		if err != nil {
			b.logger.Debugf("Failed to read %s: %v", line, err)
			return
		}
		if deb.Update(level, now) {
			onPress()
		}
	})
}

func (b *BeatboxSystem) handleModeButton() {
	m := b.state.CycleMode()
	b.logger.Infof("Mode button: %s", m)
}

func (b *BeatboxSystem) handleScreenButton() {
	s := b.panel.NextScreen()
	b.logger.Debugf("Screen button: %s", s)
	b.refreshDisplay(b.Status())
}

// gesturePoller samples the accelerometer while the sequencer is off and
// plays the voice of every detected strike.
func (b *BeatboxSystem) gesturePoller(ctx context.Context) {
	log := b.logger.WithTag("gesture")

	cfg, err := b.cfg.GestureConfig()
	if err != nil {
		log.Errorf("Invalid gesture config: %v", err)
		return
	}
	det := input.NewGestureDetector(cfg)
	listening := false

	every(ctx, b.cfg.Gesture.PollInterval, func(now time.Time) {
		if b.state.Mode() != types.ModeOff {
			if listening {
				log.Debugf("Gestures paused")
				det.Reset()
				b.accelTimer.Pause()
				listening = false
			}
			return
		}
		if !listening {
			log.Debugf("Gestures listening")
			listening = true
		}

		s, err := b.accel.ReadSample()
		if err != nil {
			log.Debugf("Sample read failed: %v", err)
			return
		}
		b.accelTimer.Mark(now)

		for _, hit := range det.Process(s, now) {
			log.Debugf("%s strike %d -> %s", hit.Axis, hit.Delta, hit.Voice)
			b.sink.Emit(hit.Voice)
			b.reportHit(hit.Voice, "gesture")
		}
	})
}

func (b *BeatboxSystem) reportHit(t types.Trigger, source string) {
	b.queueTelemetry("hit", func(m MessagingClient) error {
		return m.ReportHit(t, source)
	})
}

// statusLoop logs the status, applies the joystick to the volume and
// refreshes display and telemetry.
func (b *BeatboxSystem) statusLoop(ctx context.Context) {
	every(ctx, b.cfg.StatusInterval, func(time.Time) {
		b.pollJoystick()

		s := b.Status()
		b.logger.Infof("Status: %s", s)
		b.refreshDisplay(s)
		b.publishTelemetry(s)
	})
}

func (b *BeatboxSystem) pollJoystick() {
	if b.joystick == nil || b.volume == nil {
		return
	}

	dir, err := b.joystick.ReadDirection()
	if err != nil {
		b.logger.Debugf("Joystick read failed: %v", err)
		return
	}

	switch dir {
	case hardware.DirectionUp:
		b.volume.SetVolume(b.volume.Volume() + b.cfg.Joystick.VolumeStep)
	case hardware.DirectionDown:
		b.volume.SetVolume(b.volume.Volume() - b.cfg.Joystick.VolumeStep)
	}
}

func (b *BeatboxSystem) refreshDisplay(s types.Status) {
	if b.panel == nil {
		return
	}
	err := b.panel.Update(display.Content{
		Status: s,
		Audio:  b.seq.PeriodTimer().Stats(),
		Accel:  b.accelTimer.Stats(),
	})
	if err != nil {
		b.logger.Debugf("Display update failed: %v", err)
	}
}

func (b *BeatboxSystem) publishTelemetry(s types.Status) {
	if b.redis == nil {
		return
	}
	if err := b.redis.PublishStatus(s); err != nil {
		b.logger.Debugf("Failed to publish status: %v", err)
		return
	}
	b.redis.PublishTiming("audio", b.seq.PeriodTimer().Stats())
	b.redis.PublishTiming("accel", b.accelTimer.Stats())
}
