package sequencer

import (
	"time"

	"beatbox-service/internal/types"
)

// Step is one slot of a pattern: the voices struck together and the
// length of the slot as a fraction of a beat.
type Step struct {
	Triggers []types.Trigger
	Fraction float64
}

type Pattern struct {
	Name  string
	Steps []Step
}

// Beats returns the length of one pass through the pattern in beats.
func (p Pattern) Beats() float64 {
	var total float64
	for _, s := range p.Steps {
		total += s.Fraction
	}
	return total
}

// Rock is a straight eighth-note groove: kick on one, snare on two,
// hi-hat on every half beat.
var Rock = Pattern{
	Name: "rock",
	Steps: []Step{
		{Triggers: []types.Trigger{types.TriggerBassDrum, types.TriggerHiHat}, Fraction: 0.5},
		{Triggers: []types.Trigger{types.TriggerHiHat}, Fraction: 0.5},
		{Triggers: []types.Trigger{types.TriggerSnare, types.TriggerHiHat}, Fraction: 0.5},
		{Triggers: []types.Trigger{types.TriggerHiHat}, Fraction: 0.5},
	},
}

// Custom is a syncopated sixteenth-note groove over the same two beats.
var Custom = Pattern{
	Name: "custom",
	Steps: []Step{
		{Triggers: []types.Trigger{types.TriggerBassDrum, types.TriggerHiHat}, Fraction: 0.25},
		{Fraction: 0.25},
		{Triggers: []types.Trigger{types.TriggerHiHat}, Fraction: 0.25},
		{Triggers: []types.Trigger{types.TriggerBassDrum}, Fraction: 0.25},
		{Triggers: []types.Trigger{types.TriggerSnare, types.TriggerHiHat}, Fraction: 0.25},
		{Fraction: 0.25},
		{Triggers: []types.Trigger{types.TriggerHiHat}, Fraction: 0.25},
		{Triggers: []types.Trigger{types.TriggerSnare}, Fraction: 0.25},
	},
}

// PatternFor returns the pattern played in mode m; false for ModeOff.
func PatternFor(m types.Mode) (Pattern, bool) {
	switch m {
	case types.ModeRock:
		return Rock, true
	case types.ModeCustom:
		return Custom, true
	default:
		return Pattern{}, false
	}
}

// BeatDuration is the length of one beat at bpm.
func BeatDuration(bpm int) time.Duration {
	return time.Minute / time.Duration(bpm)
}

func scale(beats float64, beat time.Duration) time.Duration {
	return time.Duration(beats * float64(beat))
}
