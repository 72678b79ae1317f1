package display

import (
	"image"
	"sync"
)

// Panel is a pixel sink of fixed size.
type Panel interface {
	Size() (width, height int)
	Show(img image.Image) error
	Close() error
}

// Display keeps the selected screen and redraws it on demand.
type Display struct {
	panel  Panel
	mu     sync.Mutex
	screen Screen

	// render serializes frames so two writers never interleave on the panel
	render sync.Mutex
}

func New(panel Panel) *Display {
	return &Display{panel: panel}
}

func (d *Display) Screen() Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen
}

// NextScreen advances to the next screen and returns it.
func (d *Display) NextScreen() Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screen = d.screen.Next()
	return d.screen
}

// Update renders the selected screen with c and pushes it to the panel.
func (d *Display) Update(c Content) error {
	d.mu.Lock()
	screen := d.screen
	d.mu.Unlock()

	d.render.Lock()
	defer d.render.Unlock()

	w, h := d.panel.Size()
	return d.panel.Show(TextImage(w, h, Background, Foreground, Lines(screen, c)...))
}

func (d *Display) Close() error {
	return d.panel.Close()
}
