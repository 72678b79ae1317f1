package hardware

import (
	"encoding/binary"
	"fmt"

	"beatbox-service/internal/input"
)

// Accelerometer reads raw samples from a LIS2DW12.
type Accelerometer struct {
	bus Bus
}

// NewAccelerometer checks the device identity and configures it for
// continuous sampling.
func NewAccelerometer(bus Bus) (*Accelerometer, error) {
	who := make([]byte, 1)
	if err := bus.ReadReg(accelWhoAmI, who); err != nil {
		return nil, fmt.Errorf("failed to read WHO_AM_I: %w", err)
	}
	if who[0] != accelIdentity {
		return nil, fmt.Errorf("unexpected accelerometer id 0x%02x, want 0x%02x", who[0], accelIdentity)
	}

	if err := bus.WriteReg(accelCtrl1, accelCtrl1Value); err != nil {
		return nil, fmt.Errorf("failed to configure CTRL1: %w", err)
	}
	if err := bus.WriteReg(accelCtrl6, accelCtrl6Value); err != nil {
		return nil, fmt.Errorf("failed to configure CTRL6: %w", err)
	}
	return &Accelerometer{bus: bus}, nil
}

func OpenAccelerometer(path string, addr uint16) (*Accelerometer, error) {
	dev, err := OpenI2C(path, addr)
	if err != nil {
		return nil, err
	}
	a, err := NewAccelerometer(dev)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return a, nil
}

// ReadSample burst-reads OUT_X_L..OUT_Z_H; the device auto-increments the
// register address.
func (a *Accelerometer) ReadSample() (input.Sample, error) {
	buf := make([]byte, 6)
	if err := a.bus.ReadReg(accelOutXL, buf); err != nil {
		return input.Sample{}, err
	}
	return input.Sample{
		X: int16(binary.LittleEndian.Uint16(buf[0:2])),
		Y: int16(binary.LittleEndian.Uint16(buf[2:4])),
		Z: int16(binary.LittleEndian.Uint16(buf[4:6])),
	}, nil
}

func (a *Accelerometer) Close() error {
	return a.bus.Close()
}
