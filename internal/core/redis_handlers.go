package core

import (
	"fmt"

	"beatbox-service/internal/messaging"
	"beatbox-service/internal/remote"
	"beatbox-service/internal/tempo"
	"beatbox-service/internal/types"
)

// Ensure BeatboxSystem serves the UDP remote control
var _ remote.Handler = (*BeatboxSystem)(nil)

// callbacks routes Redis commands to the same handlers as UDP.
func (b *BeatboxSystem) callbacks() messaging.Callbacks {
	return messaging.Callbacks{
		ModeCallback:   b.SetMode,
		TempoCallback:  b.SetTempo,
		VolumeCallback: b.SetVolume,
		PlayCallback:   b.Play,
		StopCallback:   b.Stop,
	}
}

func (b *BeatboxSystem) SetMode(m types.Mode) error {
	if !b.state.SetMode(m) {
		b.logger.Debugf("Ignoring invalid mode %d", int(m))
		return fmt.Errorf("mode %d out of range", int(m))
	}
	b.logger.Infof("Mode set to %s", m)
	return nil
}

func (b *BeatboxSystem) SetTempo(bpm int) error {
	if !b.state.SetBPM(bpm) {
		b.logger.Debugf("Ignoring invalid tempo %d", bpm)
		return fmt.Errorf("tempo %d out of range %d-%d", bpm, tempo.MinBPM, tempo.MaxBPM)
	}
	b.logger.Infof("Tempo set to %d BPM", bpm)
	return nil
}

// SetVolume clamps v into range.
func (b *BeatboxSystem) SetVolume(v int) error {
	if b.volume == nil {
		return fmt.Errorf("audio disabled")
	}
	got := b.volume.SetVolume(v)
	if got != v {
		b.logger.Debugf("Volume %d clamped to %d", v, got)
	}
	b.logger.Infof("Volume set to %d", got)
	return nil
}

func (b *BeatboxSystem) Play(t types.Trigger) error {
	if !t.Valid() {
		return fmt.Errorf("invalid trigger %d", int(t))
	}
	b.sink.Emit(t)
	b.reportHit(t, "remote")
	return nil
}

// Stop is the remote stop command.
func (b *BeatboxSystem) Stop() {
	b.RequestStop()
}

