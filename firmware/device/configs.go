//go:build tinygo

package device

import (
	"machine"
)

// ButtonConfig has the input pins of the OK and CANCEL buttons
type ButtonConfig struct {
	OK     machine.Pin
	Cancel machine.Pin
}

// EEPROMConfig describes the I2C EEPROM holding the params
type EEPROMConfig struct {
	Bus machine.I2CConfig
	// Size in bytes. The AT24C32 holds 4096.
	Size int
}
