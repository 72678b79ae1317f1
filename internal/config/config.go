// Package config loads the service configuration from YAML on top of the
// built-in board defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"beatbox-service/internal/display"
	"beatbox-service/internal/hardware"
	"beatbox-service/internal/input"
	"beatbox-service/internal/remote"
	"beatbox-service/internal/sequencer"
	"beatbox-service/internal/sound"
	"beatbox-service/internal/tempo"
	"beatbox-service/internal/types"
)

const DefaultPath = "/etc/beatbox/beatbox.yaml"

type TempoConfig struct {
	BPM  int    `yaml:"bpm"`
	Mode string `yaml:"mode"`
}

type SequencerConfig struct {
	IdleInterval time.Duration `yaml:"idle_interval"`
}

type EncoderConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Step         int           `yaml:"step"`
	Debounce     time.Duration `yaml:"debounce"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type ButtonConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Debounce     time.Duration `yaml:"debounce"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type AxisConfig struct {
	Threshold int           `yaml:"threshold"`
	Debounce  time.Duration `yaml:"debounce"`
	Voice     string        `yaml:"voice"`
}

type GestureConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Bus          string        `yaml:"bus"`
	Address      uint16        `yaml:"address"`
	PollInterval time.Duration `yaml:"poll_interval"`
	DeadZone     int           `yaml:"dead_zone"`
	X            AxisConfig    `yaml:"x"`
	Y            AxisConfig    `yaml:"y"`
	Z            AxisConfig    `yaml:"z"`
}

type JoystickConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Backend    string `yaml:"backend"` // "i2c" or "iio"
	Bus        string `yaml:"bus"`
	Address    uint16 `yaml:"address"`
	IIODevice  string `yaml:"iio_device"`
	IIOChannel int    `yaml:"iio_channel"`
	VolumeStep int    `yaml:"volume_step"`
}

type AudioConfig struct {
	Enabled bool              `yaml:"enabled"`
	Samples map[string]string `yaml:"samples"`
	Latency time.Duration     `yaml:"latency"`
	Volume  int               `yaml:"volume"`
}

type MIDIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

type DisplayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Device  string `yaml:"device"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

type RemoteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	DB      int    `yaml:"db"`
}

type Config struct {
	LogLevel       int                            `yaml:"log_level"`
	StatusInterval time.Duration                  `yaml:"status_interval"`
	Tempo          TempoConfig                    `yaml:"tempo"`
	Sequencer      SequencerConfig                `yaml:"sequencer"`
	Lines          map[string]hardware.LineConfig `yaml:"lines"`
	Encoder        EncoderConfig                  `yaml:"encoder"`
	Buttons        ButtonConfig                   `yaml:"buttons"`
	Gesture        GestureConfig                  `yaml:"gesture"`
	Joystick       JoystickConfig                 `yaml:"joystick"`
	Audio          AudioConfig                    `yaml:"audio"`
	MIDI           MIDIConfig                     `yaml:"midi"`
	Display        DisplayConfig                  `yaml:"display"`
	Remote         RemoteConfig                   `yaml:"remote"`
	Redis          RedisConfig                    `yaml:"redis"`
}

func Default() *Config {
	lines := make(map[string]hardware.LineConfig, len(hardware.DefaultLines))
	for name, l := range hardware.DefaultLines {
		lines[name] = l
	}

	gesture := input.DefaultGestureConfig()
	axis := func(a input.Axis) AxisConfig {
		c := gesture.Axes[a]
		return AxisConfig{Threshold: c.Threshold, Debounce: c.Debounce, Voice: c.Voice.String()}
	}

	return &Config{
		LogLevel:       3,
		StatusInterval: time.Second,
		Tempo: TempoConfig{
			BPM:  tempo.DefaultBPM,
			Mode: types.ModeRock.String(),
		},
		Sequencer: SequencerConfig{IdleInterval: sequencer.DefaultIdleInterval},
		Lines:     lines,
		Encoder: EncoderConfig{
			Enabled:      true,
			Step:         input.DefaultEncoderStep,
			Debounce:     input.DefaultEncoderDebounce,
			PollInterval: time.Millisecond,
		},
		Buttons: ButtonConfig{
			Enabled:      true,
			Debounce:     input.DefaultButtonDebounce,
			PollInterval: 100 * time.Millisecond,
		},
		Gesture: GestureConfig{
			Enabled:      true,
			Bus:          hardware.DefaultI2CBus,
			Address:      hardware.AccelAddress,
			PollInterval: 10 * time.Millisecond,
			DeadZone:     gesture.DeadZone,
			X:            axis(input.AxisX),
			Y:            axis(input.AxisY),
			Z:            axis(input.AxisZ),
		},
		Joystick: JoystickConfig{
			Enabled:    true,
			Backend:    "i2c",
			Bus:        hardware.DefaultI2CBus,
			Address:    hardware.JoystickAddress,
			IIODevice:  hardware.DefaultIIODevice,
			IIOChannel: hardware.DefaultIIOChannel,
			VolumeStep: 5,
		},
		Audio: AudioConfig{
			Enabled: true,
			Samples: map[string]string{
				"bass":  "/usr/share/beatbox/bass.wav",
				"hihat": "/usr/share/beatbox/hihat.wav",
				"snare": "/usr/share/beatbox/snare.wav",
			},
			Latency: 50 * time.Millisecond,
			Volume:  sound.DefaultVolume,
		},
		MIDI: MIDIConfig{Port: "MIDI"},
		Display: DisplayConfig{
			Enabled: true,
			Device:  display.DefaultFramebuffer,
			Width:   display.DefaultWidth,
			Height:  display.DefaultHeight,
		},
		Remote: RemoteConfig{Enabled: true, Addr: remote.DefaultAddr},
		Redis:  RedisConfig{Enabled: true, Addr: "localhost:6379"},
	}
}

// Load overlays the YAML file at path on Default. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	base := copyLines(c.Lines)
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if c.Lines, err = mergeLines(base, data); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// lineOverlay records which fields of a lines entry the file sets.
type lineOverlay struct {
	Chip *int `yaml:"chip"`
	Line *int `yaml:"line"`
}

func copyLines(lines map[string]hardware.LineConfig) map[string]hardware.LineConfig {
	out := make(map[string]hardware.LineConfig, len(lines))
	for name, l := range lines {
		out[name] = l
	}
	return out
}

// mergeLines applies the lines entries of data field by field, so an entry
// naming only a line keeps the chip of base.
func mergeLines(base map[string]hardware.LineConfig, data []byte) (map[string]hardware.LineConfig, error) {
	var overlay struct {
		Lines map[string]lineOverlay `yaml:"lines"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, err
	}

	merged := copyLines(base)
	for name, o := range overlay.Lines {
		l := merged[name]
		if o.Chip != nil {
			l.Chip = *o.Chip
		}
		if o.Line != nil {
			l.Line = *o.Line
		}
		merged[name] = l
	}
	return merged, nil
}

func (c *Config) Validate() error {
	if c.LogLevel < 0 || c.LogLevel > 4 {
		return fmt.Errorf("log_level %d out of range 0-4", c.LogLevel)
	}
	if !tempo.ValidBPM(c.Tempo.BPM) {
		return fmt.Errorf("tempo.bpm %d out of range %d-%d", c.Tempo.BPM, tempo.MinBPM, tempo.MaxBPM)
	}
	if _, err := c.InitialMode(); err != nil {
		return err
	}
	if c.StatusInterval <= 0 {
		return fmt.Errorf("status_interval must be positive")
	}

	for _, name := range []string{
		hardware.LineEncoderA, hardware.LineEncoderB,
		hardware.LineEncoderButton, hardware.LineJoystickButton,
	} {
		if _, ok := c.Lines[name]; !ok {
			return fmt.Errorf("lines.%s missing", name)
		}
	}

	if c.Encoder.Step <= 0 {
		return fmt.Errorf("encoder.step must be positive")
	}
	if c.Encoder.PollInterval <= 0 || c.Buttons.PollInterval <= 0 || c.Gesture.PollInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if _, err := c.GestureConfig(); err != nil {
		return err
	}

	switch c.Joystick.Backend {
	case "i2c", "iio":
	default:
		return fmt.Errorf("joystick.backend %q must be i2c or iio", c.Joystick.Backend)
	}

	if c.Audio.Volume < sound.MinVolume || c.Audio.Volume > sound.MaxVolume {
		return fmt.Errorf("audio.volume %d out of range %d-%d", c.Audio.Volume, sound.MinVolume, sound.MaxVolume)
	}
	if _, err := c.SamplePaths(); err != nil {
		return err
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display size must be positive")
	}
	return nil
}

func (c *Config) InitialMode() (types.Mode, error) {
	m, err := types.ParseMode(c.Tempo.Mode)
	if err != nil {
		return types.ModeOff, fmt.Errorf("tempo.mode: %w", err)
	}
	if !m.Valid() {
		return types.ModeOff, fmt.Errorf("tempo.mode %q out of range", c.Tempo.Mode)
	}
	return m, nil
}

// GestureConfig converts the per-axis settings for the detector.
func (c *Config) GestureConfig() (input.GestureConfig, error) {
	g := input.GestureConfig{DeadZone: c.Gesture.DeadZone}
	for a, ac := range map[input.Axis]AxisConfig{
		input.AxisX: c.Gesture.X,
		input.AxisY: c.Gesture.Y,
		input.AxisZ: c.Gesture.Z,
	} {
		voice, err := types.ParseTrigger(ac.Voice)
		if err != nil {
			return g, fmt.Errorf("gesture.%s.voice: %w", a, err)
		}
		if ac.Threshold <= 0 {
			return g, fmt.Errorf("gesture.%s.threshold must be positive", a)
		}
		g.Axes[a] = input.AxisConfig{Threshold: ac.Threshold, Debounce: ac.Debounce, Voice: voice}
	}
	return g, nil
}

// SamplePaths maps the voice names of audio.samples onto triggers.
func (c *Config) SamplePaths() (map[types.Trigger]string, error) {
	paths := make(map[types.Trigger]string, len(c.Audio.Samples))
	for name, path := range c.Audio.Samples {
		t, err := types.ParseTrigger(name)
		if err != nil {
			return nil, fmt.Errorf("audio.samples: %w", err)
		}
		paths[t] = path
	}
	return paths, nil
}
