package messaging

import (
	"testing"

	"beatbox-service/internal/logger"
	"beatbox-service/internal/types"
)

func newTestClient(cb Callbacks) *RedisClient {
	r := NewRedisClient("127.0.0.1:0", 0, logger.NewLogger(nil, logger.LogLevelNone))
	r.SetCallbacks(cb)
	return r
}

func TestCommandHandlers(t *testing.T) {
	var (
		mode    types.Mode
		bpm     int
		volume  int
		played  types.Trigger
		stopped bool
	)
	r := newTestClient(Callbacks{
		ModeCallback:   func(m types.Mode) error { mode = m; return nil },
		TempoCallback:  func(v int) error { bpm = v; return nil },
		VolumeCallback: func(v int) error { volume = v; return nil },
		PlayCallback:   func(tr types.Trigger) error { played = tr; return nil },
		StopCallback:   func() { stopped = true },
	})
	defer r.client.Close()

	if err := r.handleModeCommand("custom"); err != nil || mode != types.ModeCustom {
		t.Errorf("mode: got %s (%v)", mode, err)
	}
	if err := r.handleTempoCommand("150"); err != nil || bpm != 150 {
		t.Errorf("tempo: got %d (%v)", bpm, err)
	}
	if err := r.handleVolumeCommand("40"); err != nil || volume != 40 {
		t.Errorf("volume: got %d (%v)", volume, err)
	}
	if err := r.handlePlayCommand("snare"); err != nil || played != types.TriggerSnare {
		t.Errorf("play: got %s (%v)", played, err)
	}

	r.handleControlMessage("reboot")
	if stopped {
		t.Error("Unexpected stop on unknown control message")
	}
	r.handleControlMessage("stop")
	if !stopped {
		t.Error("Expected stop callback")
	}
}

func TestCommandHandlersRejectGarbage(t *testing.T) {
	called := false
	r := newTestClient(Callbacks{
		ModeCallback:  func(types.Mode) error { called = true; return nil },
		TempoCallback: func(int) error { called = true; return nil },
		PlayCallback:  func(types.Trigger) error { called = true; return nil },
	})
	defer r.client.Close()

	if err := r.handleModeCommand("disco"); err == nil {
		t.Error("Expected mode parse error")
	}
	if err := r.handleTempoCommand("fast"); err == nil {
		t.Error("Expected tempo parse error")
	}
	if err := r.handlePlayCommand("cowbell"); err == nil {
		t.Error("Expected play parse error")
	}
	if called {
		t.Error("Callbacks must not run for invalid values")
	}
}

func TestMissingCallbacksAreIgnored(t *testing.T) {
	r := newTestClient(Callbacks{})
	defer r.client.Close()

	if err := r.handleVolumeCommand("10"); err != nil {
		t.Errorf("Expected nil without callback, got %v", err)
	}
	r.handleControlMessage("stop")
}
