package display

import (
	"fmt"
	"image"
	"os"
)

const (
	DefaultFramebuffer = "/dev/fb0"
	DefaultWidth       = 240
	DefaultHeight      = 240
)

// Framebuffer is an RGB565 Linux fbdev panel.
type Framebuffer struct {
	f      *os.File
	width  int
	height int
}

func OpenFramebuffer(path string, width, height int) (*Framebuffer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open framebuffer %s: %w", path, err)
	}
	return &Framebuffer{f: f, width: width, height: height}, nil
}

func (fb *Framebuffer) Size() (int, int) {
	return fb.width, fb.height
}

func (fb *Framebuffer) Show(img image.Image) error {
	if _, err := fb.f.WriteAt(EncodeRGB565(img, fb.width, fb.height), 0); err != nil {
		return fmt.Errorf("failed to write framebuffer: %w", err)
	}
	return nil
}

func (fb *Framebuffer) Close() error {
	return fb.f.Close()
}
