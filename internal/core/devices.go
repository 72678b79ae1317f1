package core

import (
	"beatbox-service/internal/config"
	"beatbox-service/internal/display"
	"beatbox-service/internal/hardware"
	"beatbox-service/internal/logger"
	"beatbox-service/internal/messaging"
	"beatbox-service/internal/sound"
)

// Audio holds the sound outputs; they outlive the pollers and are closed
// after Shutdown.
type Audio struct {
	Player *sound.Player
	MIDI   *sound.MIDIOut
}

func (a *Audio) Close() {
	if a.Player != nil {
		a.Player.Close()
	}
	if a.MIDI != nil {
		a.MIDI.Close()
	}
}

// OpenDevices opens everything cfg enables. A device that fails to open is
// left nil and recorded as a fault; it never stops the others.
func OpenDevices(cfg *config.Config, l *logger.Logger) (Deps, *Audio) {
	var deps Deps
	fault := func(code int, what string, err error) {
		l.Warnf("%s disabled: %v", what, err)
		deps.Faults = append(deps.Faults, Fault{Code: code, Description: what + ": " + err.Error()})
	}

	deps.GPIO = hardware.NewLinuxGPIO(cfg.Lines, l.WithTag("gpio"))

	if cfg.Gesture.Enabled {
		accel, err := hardware.OpenAccelerometer(cfg.Gesture.Bus, cfg.Gesture.Address)
		if err != nil {
			fault(FaultAccelerometer, "accelerometer", err)
		} else {
			deps.Accel = accel
		}
	}

	if cfg.Joystick.Enabled {
		switch cfg.Joystick.Backend {
		case "iio":
			deps.Joystick = hardware.NewJoystick(hardware.NewIIOJoystick(cfg.Joystick.IIODevice, cfg.Joystick.IIOChannel))
		default:
			adc, err := hardware.OpenADCJoystick(cfg.Joystick.Bus, cfg.Joystick.Address)
			if err != nil {
				fault(FaultJoystick, "joystick", err)
			} else {
				deps.Joystick = hardware.NewJoystick(adc)
			}
		}
	}

	if cfg.Display.Enabled {
		fb, err := display.OpenFramebuffer(cfg.Display.Device, cfg.Display.Width, cfg.Display.Height)
		if err != nil {
			fault(FaultDisplay, "display", err)
		} else {
			deps.Panel = display.New(fb)
		}
	}

	audio := &Audio{Player: sound.NewPlayer(l.WithTag("audio"))}
	audio.Player.SetVolume(cfg.Audio.Volume)
	deps.Volume = audio.Player

	var sinks sound.Multi
	if cfg.Audio.Enabled {
		paths, _ := cfg.SamplePaths()
		if err := audio.Player.Load(paths); err != nil {
			fault(FaultAudio, "audio", err)
		} else if err := audio.Player.Open(cfg.Audio.Latency); err != nil {
			fault(FaultAudio, "audio", err)
		} else {
			sinks = append(sinks, audio.Player)
		}
	}

	if cfg.MIDI.Enabled {
		out, err := sound.OpenMIDI(cfg.MIDI.Port, l.WithTag("midi"))
		if err != nil {
			fault(FaultMIDI, "MIDI", err)
		} else {
			audio.MIDI = out
			sinks = append(sinks, out)
		}
	}
	deps.Sink = sinks

	if cfg.Redis.Enabled {
		deps.Redis = messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.DB, l.WithTag("redis"))
	}

	return deps, audio
}
