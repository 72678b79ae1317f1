package hardware

const (
	Consumer = "beatbox-service"

	DefaultI2CBus = "/dev/i2c-1"

	// LIS2DW12 accelerometer
	AccelAddress  = 0x19
	accelWhoAmI   = 0x0F
	accelIdentity = 0x44
	accelCtrl1    = 0x20
	accelCtrl6    = 0x25
	accelOutXL    = 0x28

	accelCtrl1Value = 0x60 // 200 Hz, high-performance mode
	accelCtrl6Value = 0x00 // ±2 g

	// ADS1015-style joystick ADC
	JoystickAddress   = 0x48
	adcConversionReg  = 0x00
	adcConfigReg      = 0x01
	adcConfigChannelY = 0x83C2

	// IIO sysfs fallback for the same ADC when the kernel driver owns it
	DefaultIIODevice  = "iio:device0"
	DefaultIIOChannel = 1
)

// Line names used by the pollers.
const (
	LineEncoderA       = "encoder_a"
	LineEncoderB       = "encoder_b"
	LineEncoderButton  = "encoder_button"
	LineJoystickButton = "joystick_button"
)

type LineConfig struct {
	Chip int `yaml:"chip"`
	Line int `yaml:"line"`
}

// DefaultLines is the board wiring of the encoder and the two push buttons.
var DefaultLines = map[string]LineConfig{
	LineEncoderA:       {Chip: 2, Line: 7},
	LineEncoderB:       {Chip: 2, Line: 8},
	LineEncoderButton:  {Chip: 0, Line: 10},
	LineJoystickButton: {Chip: 2, Line: 15},
}
