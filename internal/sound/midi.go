package sound

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"beatbox-service/internal/logger"
	"beatbox-service/internal/types"
)

// General MIDI percussion channel 10.
const drumChannel = 9

var gmDrumNotes = map[types.Trigger]uint8{
	types.TriggerBassDrum: 36,
	types.TriggerSnare:    38,
	types.TriggerHiHat:    42,
	types.TriggerTom:      45,
	types.TriggerSplash:   55,
}

// MIDIOut plays triggers as General MIDI drum notes.
type MIDIOut struct {
	logger   *logger.Logger
	mu       sync.Mutex
	send     func(msg midi.Message) error
	port     drivers.Out
	velocity uint8
}

// OpenMIDI finds an output port whose name contains portName.
func OpenMIDI(portName string, l *logger.Logger) (*MIDIOut, error) {
	port, err := midi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("MIDI output %q not found: %w", portName, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output port: %w", err)
	}
	l.Infof("MIDI drums on %s", port)

	m := newMIDIOut(send, l)
	m.port = port
	return m, nil
}

func newMIDIOut(send func(msg midi.Message) error, l *logger.Logger) *MIDIOut {
	return &MIDIOut{
		logger:   l,
		send:     send,
		velocity: 100,
	}
}

func (m *MIDIOut) Emit(t types.Trigger) {
	note, ok := gmDrumNotes[t]
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.send(midi.NoteOn(drumChannel, note, m.velocity)); err != nil {
		m.logger.Debugf("MIDI note on %s failed: %v", t, err)
		return
	}
	if err := m.send(midi.NoteOff(drumChannel, note)); err != nil {
		m.logger.Debugf("MIDI note off %s failed: %v", t, err)
	}
}

func (m *MIDIOut) Close() error {
	if m.port == nil {
		return nil
	}
	return m.port.Close()
}
