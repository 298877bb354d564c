package controller

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialPortNone disables the serial connection. Commands are logged at debug level and dropped.
const SerialPortNone = "none"

// ErrNoUSBSerial is returned by GetSerialPorts when no USB serial device is attached
var ErrNoUSBSerial = errors.New("no USB serial ports found")

// GetSerialPorts lists the names of attached USB serial ports
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var result []string
	for _, p := range ports {
		if p.IsUSB {
			result = append(result, p.Name)
		}
	}

	if len(result) == 0 {
		return nil, ErrNoUSBSerial
	}
	return result, nil
}

func openSerial(name string, baudRate int) (serial.Port, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", name, err)
	}
	return port, nil
}
