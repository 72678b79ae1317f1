// Package tempo holds the tempo/mode register shared by the input pollers,
// the beat sequencer and the display/telemetry observers.
package tempo

import (
	"sync"

	"beatbox-service/internal/types"
)

const (
	MinBPM     = 40
	MaxBPM     = 300
	DefaultBPM = 120
)

// ValidBPM reports whether v is inside the accepted tempo range.
func ValidBPM(v int) bool {
	return v >= MinBPM && v <= MaxBPM
}

// ClampBPM forces v into the accepted tempo range.
func ClampBPM(v int) int {
	if v < MinBPM {
		return MinBPM
	}
	if v > MaxBPM {
		return MaxBPM
	}
	return v
}

// Snapshot is a consistent copy of the register.
type Snapshot struct {
	BPM  int
	Mode types.Mode
}

// State is the shared tempo/mode register. All access goes through its
// methods; invalid writes are dropped and the previous value is kept.
type State struct {
	mu   sync.RWMutex
	bpm  int
	mode types.Mode
}

// New returns a register seeded with bpm and mode, falling back to
// DefaultBPM and ModeOff for invalid values.
func New(bpm int, mode types.Mode) *State {
	s := &State{bpm: DefaultBPM, mode: types.ModeOff}
	s.SetBPM(bpm)
	s.SetMode(mode)
	return s
}

// SetBPM stores v if it is within [MinBPM, MaxBPM] and reports whether it did.
func (s *State) SetBPM(v int) bool {
	if !ValidBPM(v) {
		return false
	}
	s.mu.Lock()
	s.bpm = v
	s.mu.Unlock()
	return true
}

// SetMode stores m if it is a defined mode and reports whether it did.
func (s *State) SetMode(m types.Mode) bool {
	if !m.Valid() {
		return false
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	return true
}

// CycleMode advances to the next mode in a single locked step and returns it.
func (s *State) CycleMode() types.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = s.mode.Next()
	return s.mode
}

func (s *State) BPM() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bpm
}

func (s *State) Mode() types.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{BPM: s.bpm, Mode: s.mode}
}
