package sound

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"beatbox-service/internal/logger"
	"beatbox-service/internal/types"
)

const (
	MinVolume     = 0
	MaxVolume     = 100
	DefaultVolume = 80

	resampleQuality = 4
)

// ClampVolume forces v into [MinVolume, MaxVolume].
func ClampVolume(v int) int {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}

// gain maps a 0-100 volume onto beep's base-2 exponent: 100 is unity,
// every 20 steps halves the amplitude.
func gain(volume int) float64 {
	return float64(volume-MaxVolume) / 20
}

// Player decodes wav samples into memory and mixes them on the speaker.
type Player struct {
	logger  *logger.Logger
	mu      sync.RWMutex
	samples map[types.Trigger]*beep.Buffer
	format  beep.Format
	volume  int
	open    bool
}

func NewPlayer(l *logger.Logger) *Player {
	return &Player{
		logger:  l,
		samples: make(map[types.Trigger]*beep.Buffer),
		volume:  DefaultVolume,
	}
}

func decodeWav(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open sample %s: %w", path, err)
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode sample %s: %w", path, err)
	}
	return streamer, format, nil
}

// Load reads one wav file per voice. The first sample fixes the output
// format; the rest are resampled to it. Voices that fail to load stay
// silent. Load fails only if nothing could be loaded.
func (p *Player) Load(paths map[types.Trigger]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range types.AllTriggers {
		path, ok := paths[t]
		if !ok || path == "" {
			continue
		}

		streamer, format, err := decodeWav(path)
		if err != nil {
			p.logger.Warnf("Voice %s disabled: %v", t, err)
			continue
		}

		if p.format.SampleRate == 0 {
			p.format = beep.Format{SampleRate: format.SampleRate, NumChannels: 2, Precision: 2}
		}

		var src beep.Streamer = streamer
		if format.SampleRate != p.format.SampleRate {
			src = beep.Resample(resampleQuality, format.SampleRate, p.format.SampleRate, streamer)
		}

		buffer := beep.NewBuffer(p.format)
		buffer.Append(src)
		streamer.Close()

		p.samples[t] = buffer
		p.logger.Infof("Loaded voice %s from %s (%d frames)", t, path, buffer.Len())
	}

	if len(p.samples) == 0 {
		return fmt.Errorf("no samples could be loaded")
	}
	return nil
}

// Open initializes the speaker with a buffer of the given latency.
func (p *Player) Open(latency time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format.SampleRate == 0 {
		return fmt.Errorf("no samples loaded")
	}
	if err := speaker.Init(p.format.SampleRate, p.format.SampleRate.N(latency)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	p.open = true
	p.logger.Infof("Speaker ready at %d Hz", p.format.SampleRate)
	return nil
}

// Loaded reports whether a sample is available for t.
func (p *Player) Loaded(t types.Trigger) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.samples[t] != nil
}

// Emit starts the sample for t; overlapping hits are mixed by the speaker.
func (p *Player) Emit(t types.Trigger) {
	p.mu.RLock()
	buffer := p.samples[t]
	open := p.open
	volume := p.volume
	p.mu.RUnlock()

	if !open || buffer == nil {
		return
	}

	speaker.Play(&effects.Volume{
		Streamer: buffer.Streamer(0, buffer.Len()),
		Base:     2,
		Volume:   gain(volume),
		Silent:   volume == MinVolume,
	})
}

func (p *Player) Volume() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

// SetVolume clamps v into range, stores it and returns the stored value.
func (p *Player) SetVolume(v int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = ClampVolume(v)
	return p.volume
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		speaker.Clear()
		p.open = false
	}
}
