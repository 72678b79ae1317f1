// Package display renders the status and timing screens onto the LCD.
package display

import (
	"fmt"

	"beatbox-service/internal/timing"
	"beatbox-service/internal/types"
)

// Screen selects what the LCD shows; the joystick button cycles it.
type Screen int

const (
	ScreenStatus Screen = iota
	ScreenAudioTiming
	ScreenAccelTiming
	screenCount
)

func (s Screen) String() string {
	switch s {
	case ScreenStatus:
		return "status"
	case ScreenAudioTiming:
		return "audio-timing"
	case ScreenAccelTiming:
		return "accel-timing"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

func (s Screen) Next() Screen {
	return (s + 1) % screenCount
}

// Content is everything a screen may show.
type Content struct {
	Status types.Status
	Audio  timing.Stats
	Accel  timing.Stats
}

// Lines returns the text shown on screen s.
func Lines(s Screen, c Content) []string {
	switch s {
	case ScreenAudioTiming:
		return timingLines("Audio Timing", c.Audio)
	case ScreenAccelTiming:
		return timingLines("Accel Timing", c.Accel)
	default:
		return []string{
			modeTitle(c.Status.Mode),
			fmt.Sprintf("BPM: %d", c.Status.BPM),
			fmt.Sprintf("Vol: %d", c.Status.Volume),
		}
	}
}

func modeTitle(m types.Mode) string {
	switch m {
	case types.ModeRock:
		return "Rock"
	case types.ModeCustom:
		return "Custom"
	default:
		return "Off"
	}
}

func timingLines(title string, s timing.Stats) []string {
	return []string{
		title,
		fmt.Sprintf("Min: %.2f ms", timing.Millis(s.Min)),
		fmt.Sprintf("Max: %.2f ms", timing.Millis(s.Max)),
		fmt.Sprintf("Avg: %.2f ms", timing.Millis(s.Avg)),
	}
}
