package display

import (
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"beatbox-service/internal/timing"
	"beatbox-service/internal/types"
)

type mockPanel struct {
	width, height int
	shown         []image.Image
	closed        bool
}

func (p *mockPanel) Size() (int, int) { return p.width, p.height }

func (p *mockPanel) Show(img image.Image) error {
	p.shown = append(p.shown, img)
	return nil
}

func (p *mockPanel) Close() error {
	p.closed = true
	return nil
}

// slowPanel counts Show calls that overlap another one.
type slowPanel struct {
	inFlight atomic.Int32
	overlaps atomic.Int32
	frames   atomic.Int32
}

func (p *slowPanel) Size() (int, int) { return 48, 48 }

func (p *slowPanel) Show(img image.Image) error {
	if p.inFlight.Add(1) > 1 {
		p.overlaps.Add(1)
	}
	time.Sleep(2 * time.Millisecond)
	p.inFlight.Add(-1)
	p.frames.Add(1)
	return nil
}

func (p *slowPanel) Close() error { return nil }

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	panel := &slowPanel{}
	d := New(panel)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(bpm int) {
			defer wg.Done()
			d.Update(Content{Status: types.Status{Mode: types.ModeRock, BPM: bpm}})
		}(100 + i)
	}
	wg.Wait()

	if n := panel.frames.Load(); n != 8 {
		t.Errorf("Expected 8 frames, got %d", n)
	}
	if n := panel.overlaps.Load(); n != 0 {
		t.Errorf("Expected frames to be written one at a time, got %d overlaps", n)
	}
}

func countLit(img image.Image) int {
	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0x8000 {
				lit++
			}
		}
	}
	return lit
}

func TestScreenCycle(t *testing.T) {
	s := ScreenStatus
	want := []Screen{ScreenAudioTiming, ScreenAccelTiming, ScreenStatus}
	for _, w := range want {
		s = s.Next()
		if s != w {
			t.Fatalf("Expected %s, got %s", w, s)
		}
	}
}

func TestStatusLines(t *testing.T) {
	lines := Lines(ScreenStatus, Content{
		Status: types.Status{Mode: types.ModeRock, BPM: 120, Volume: 80},
	})
	want := []string{"Rock", "BPM: 120", "Vol: 80"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTimingLines(t *testing.T) {
	lines := Lines(ScreenAccelTiming, Content{
		Accel: timing.Stats{Min: 9 * time.Millisecond, Max: 11 * time.Millisecond, Avg: 10 * time.Millisecond},
	})
	if lines[0] != "Accel Timing" || lines[3] != "Avg: 10.00 ms" {
		t.Errorf("Unexpected timing lines: %v", lines)
	}
}

func TestUpdateRendersText(t *testing.T) {
	panel := &mockPanel{width: DefaultWidth, height: DefaultHeight}
	d := New(panel)

	if err := d.Update(Content{Status: types.Status{Mode: types.ModeOff, BPM: 90, Volume: 50}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(panel.shown) != 1 {
		t.Fatalf("Expected one frame, got %d", len(panel.shown))
	}
	img := panel.shown[0]
	if img.Bounds().Dx() != DefaultWidth || img.Bounds().Dy() != DefaultHeight {
		t.Errorf("Unexpected frame size %v", img.Bounds())
	}
	if countLit(img) == 0 {
		t.Error("Expected rendered text, frame is blank")
	}

	if d.NextScreen() != ScreenAudioTiming || d.Screen() != ScreenAudioTiming {
		t.Error("Expected NextScreen to select the audio timing screen")
	}

	d.Close()
	if !panel.closed {
		t.Error("Expected Close to close the panel")
	}
}

func TestEncodeRGB565(t *testing.T) {
	img := TextImage(4, 2, Foreground, Foreground)
	buf := EncodeRGB565(img, 4, 2)
	if len(buf) != 16 {
		t.Fatalf("Expected 16 bytes, got %d", len(buf))
	}
	if buf[0] != 0xff || buf[1] != 0xff {
		t.Errorf("Expected white pixel 0xffff, got %02x%02x", buf[1], buf[0])
	}
}

func TestFramebufferWritesFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fb0")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	fb, err := OpenFramebuffer(path, 8, 8)
	if err != nil {
		t.Fatalf("OpenFramebuffer failed: %v", err)
	}
	if err := fb.Show(TextImage(8, 8, Background, Foreground)); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	fb.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 8*8*2 {
		t.Errorf("Expected %d bytes, got %d", 8*8*2, len(data))
	}
}
