package hardware

import (
	"encoding/binary"
	"fmt"
)

type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// Raw 12-bit readings of the joystick Y axis.
const (
	joystickUpMin   = 2000
	joystickUpMax   = 4000
	joystickDownMin = 500
)

// ClassifyJoystick maps a raw Y reading onto a direction.
func ClassifyJoystick(raw int) Direction {
	switch {
	case InRange(raw, joystickUpMin, joystickUpMax):
		return DirectionUp
	case InRange(raw, joystickDownMin, joystickUpMin-1):
		return DirectionDown
	default:
		return DirectionNone
	}
}

// JoystickSource yields raw 12-bit joystick Y readings.
type JoystickSource interface {
	ReadRaw() (int, error)
}

// Joystick classifies readings from a JoystickSource.
type Joystick struct {
	source JoystickSource
}

func NewJoystick(source JoystickSource) *Joystick {
	return &Joystick{source: source}
}

func (j *Joystick) ReadDirection() (Direction, error) {
	raw, err := j.source.ReadRaw()
	if err != nil {
		return DirectionNone, err
	}
	return ClassifyJoystick(raw), nil
}

func (j *Joystick) Close() error {
	if c, ok := j.source.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// ADCJoystick drives the ADC over raw I2C: select channel Y, then read the
// left-aligned 12-bit conversion.
type ADCJoystick struct {
	bus Bus
}

func NewADCJoystick(bus Bus) *ADCJoystick {
	return &ADCJoystick{bus: bus}
}

func OpenADCJoystick(path string, addr uint16) (*ADCJoystick, error) {
	dev, err := OpenI2C(path, addr)
	if err != nil {
		return nil, err
	}
	return NewADCJoystick(dev), nil
}

func (j *ADCJoystick) ReadRaw() (int, error) {
	cfg := make([]byte, 2)
	binary.BigEndian.PutUint16(cfg, adcConfigChannelY)
	if err := j.bus.WriteReg(adcConfigReg, cfg...); err != nil {
		return 0, fmt.Errorf("failed to select joystick channel: %w", err)
	}

	buf := make([]byte, 2)
	if err := j.bus.ReadReg(adcConversionReg, buf); err != nil {
		return 0, fmt.Errorf("failed to read joystick: %w", err)
	}
	return int(binary.BigEndian.Uint16(buf) >> 4), nil
}

func (j *ADCJoystick) Close() error {
	return j.bus.Close()
}
