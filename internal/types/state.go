package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects what the beat sequencer plays.
type Mode int

const (
	ModeOff Mode = iota
	ModeRock
	ModeCustom
)

var modeNames = [...]string{
	ModeOff:    "off",
	ModeRock:   "rock",
	ModeCustom: "custom",
}

func (m Mode) Valid() bool {
	return m >= ModeOff && m <= ModeCustom
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next returns the mode the mode button cycles to.
func (m Mode) Next() Mode {
	if !m.Valid() {
		return ModeOff
	}
	return (m + 1) % Mode(len(modeNames))
}

// ParseMode accepts a mode name ("rock") or its number ("1").
// Out-of-range numbers are returned as-is so callers can apply their own validation.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return ModeOff, fmt.Errorf("invalid mode %q", s)
	}
	return Mode(n), nil
}

// Trigger is a single percussion voice. The numeric values match the
// remote "play N" command.
type Trigger int

const (
	TriggerBassDrum Trigger = iota
	TriggerHiHat
	TriggerSnare
	TriggerTom
	TriggerSplash
)

var triggerNames = [...]string{
	TriggerBassDrum: "bass",
	TriggerHiHat:    "hihat",
	TriggerSnare:    "snare",
	TriggerTom:      "tom",
	TriggerSplash:   "splash",
}

// AllTriggers lists every voice in numeric order.
var AllTriggers = []Trigger{TriggerBassDrum, TriggerHiHat, TriggerSnare, TriggerTom, TriggerSplash}

func (t Trigger) Valid() bool {
	return t >= TriggerBassDrum && t <= TriggerSplash
}

func (t Trigger) String() string {
	if !t.Valid() {
		return fmt.Sprintf("trigger(%d)", int(t))
	}
	return triggerNames[t]
}

func ParseTrigger(s string) (Trigger, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range triggerNames {
		if s == name {
			return Trigger(i), nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Trigger(n).Valid() {
		return TriggerBassDrum, fmt.Errorf("invalid trigger %q", s)
	}
	return Trigger(n), nil
}

// Status is the snapshot published to display and telemetry observers.
type Status struct {
	Mode      Mode
	BPM       int
	Volume    int
	Sequencer string
}

func (s Status) String() string {
	return fmt.Sprintf("mode=%s bpm=%d volume=%d sequencer=%s", s.Mode, s.BPM, s.Volume, s.Sequencer)
}
