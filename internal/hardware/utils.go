package hardware

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const iioRoot = "/sys/bus/iio/devices"

// IIOJoystick reads the joystick through the kernel ADC driver's sysfs
// channel instead of raw I2C.
type IIOJoystick struct {
	root    string
	device  string
	channel int
}

func NewIIOJoystick(device string, channel int) *IIOJoystick {
	return &IIOJoystick{root: iioRoot, device: device, channel: channel}
}

func (j *IIOJoystick) ReadRaw() (int, error) {
	return ReadAdcValue(j.root, j.device, j.channel)
}

// ReadAdcValue reads in_voltageN_raw of an IIO device below root.
func ReadAdcValue(root, device string, channel int) (int, error) {
	path := filepath.Join(root, device, fmt.Sprintf("in_voltage%d_raw", channel))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return -1, fmt.Errorf("ADC sysfs not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return -1, fmt.Errorf("failed reading %s: %w", path, err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return -1, fmt.Errorf("failed parsing ADC value: %w", err)
	}

	return value, nil
}

func InRange(v, min, max int) bool {
	return v >= min && v <= max
}
