package hardware

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

const i2cSlave = 0x0703 // I2C_SLAVE ioctl

// Bus is a register-addressed device on an I2C bus.
type Bus interface {
	ReadReg(reg byte, buf []byte) error
	WriteReg(reg byte, data ...byte) error
	Close() error
}

// I2CDevice talks to one slave address through /dev/i2c-N.
type I2CDevice struct {
	mu   sync.Mutex
	fd   int
	path string
	addr uint16
}

func OpenI2C(path string, addr uint16) (*I2CDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to select I2C address 0x%02x on %s: %w", addr, path, err)
	}
	return &I2CDevice{fd: fd, path: path, addr: addr}, nil
}

// ReadReg writes the register address and reads len(buf) bytes back.
func (d *I2CDevice) ReadReg(reg byte, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := unix.Write(d.fd, []byte{reg}); err != nil {
		return fmt.Errorf("i2c 0x%02x: write register 0x%02x: %w", d.addr, reg, err)
	}
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		return fmt.Errorf("i2c 0x%02x: read register 0x%02x: %w", d.addr, reg, err)
	}
	if n != len(buf) {
		return fmt.Errorf("i2c 0x%02x: short read from 0x%02x: %d of %d bytes", d.addr, reg, n, len(buf))
	}
	return nil
}

func (d *I2CDevice) WriteReg(reg byte, data ...byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	msg := append([]byte{reg}, data...)
	n, err := unix.Write(d.fd, msg)
	if err != nil {
		return fmt.Errorf("i2c 0x%02x: write register 0x%02x: %w", d.addr, reg, err)
	}
	if n != len(msg) {
		return fmt.Errorf("i2c 0x%02x: short write to 0x%02x", d.addr, reg)
	}
	return nil
}

func (d *I2CDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
