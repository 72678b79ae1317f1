package hardware

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"beatbox-service/internal/logger"
)

// LinuxGPIO reads named input lines through the GPIO character device.
type LinuxGPIO struct {
	logger   *logger.Logger
	mappings map[string]LineConfig
	chips    map[int]*gpiocdev.Chip
	lines    map[string]*gpiocdev.Line
	mu       sync.RWMutex
}

func NewLinuxGPIO(mappings map[string]LineConfig, l *logger.Logger) *LinuxGPIO {
	if mappings == nil {
		mappings = DefaultLines
	}
	return &LinuxGPIO{
		logger:   l,
		mappings: mappings,
		chips:    make(map[int]*gpiocdev.Chip),
		lines:    make(map[string]*gpiocdev.Line),
	}
}

func (g *LinuxGPIO) chip(n int) (*gpiocdev.Chip, error) {
	if chip, ok := g.chips[n]; ok {
		return chip, nil
	}
	chip, err := gpiocdev.NewChip(fmt.Sprintf("gpiochip%d", n))
	if err != nil {
		return nil, fmt.Errorf("failed to open GPIO chip %d: %w", n, err)
	}
	g.chips[n] = chip
	return chip, nil
}

// RequestInputs requests every named line as an input. Lines that are
// already held are skipped.
func (g *LinuxGPIO) RequestInputs(names ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, name := range names {
		if _, ok := g.lines[name]; ok {
			continue
		}
		mapping, ok := g.mappings[name]
		if !ok {
			return fmt.Errorf("no line mapping for %s", name)
		}

		chip, err := g.chip(mapping.Chip)
		if err != nil {
			return err
		}

		line, err := chip.RequestLine(mapping.Line,
			gpiocdev.AsInput,
			gpiocdev.WithConsumer(Consumer))
		if err != nil {
			return fmt.Errorf("failed to request GPIO line %d on chip %d for %s: %w",
				mapping.Line, mapping.Chip, name, err)
		}

		g.lines[name] = line
		g.logger.Infof("Configured input %s: chip=%d, line=%d", name, mapping.Chip, mapping.Line)
	}
	return nil
}

// ReadLine returns true when the named line reads high.
func (g *LinuxGPIO) ReadLine(name string) (bool, error) {
	g.mu.RLock()
	line, ok := g.lines[name]
	g.mu.RUnlock()

	if !ok {
		return false, fmt.Errorf("input %s not requested", name)
	}

	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return v == 1, nil
}

func (g *LinuxGPIO) Cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for name, line := range g.lines {
		line.Close()
		g.logger.Debugf("Closed GPIO line for %s", name)
	}
	g.lines = make(map[string]*gpiocdev.Line)

	for id, chip := range g.chips {
		chip.Close()
		g.logger.Debugf("Closed GPIO chip %d", id)
	}
	g.chips = make(map[int]*gpiocdev.Chip)
}
