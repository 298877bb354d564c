//go:build tinygo

package main

import (
	"machine"

	"tinygo.org/x/drivers/at24cx"

	"github.com/calvinmclean/spin360/catalog"
	"github.com/calvinmclean/spin360/firmware/commands"
	"github.com/calvinmclean/spin360/firmware/device"
	"github.com/calvinmclean/spin360/store"
)

func main() {
	eepromCfg := device.EEPROMConfig{
		Bus:  machine.I2CConfig{SDA: machine.GP4, SCL: machine.GP5},
		Size: 4096,
	}
	buttonCfg := device.ButtonConfig{
		OK:     machine.GP14,
		Cancel: machine.GP15,
	}

	err := machine.I2C0.Configure(eepromCfg.Bus)
	if err != nil {
		panic(err)
	}

	eeprom := at24cx.New(machine.I2C0)
	eeprom.Configure(at24cx.Config{})

	params, err := catalog.Default().Build()
	if err != nil {
		panic(err)
	}

	d, err := device.New(params, store.NewBlock(&eeprom, eepromCfg.Size), buttonCfg)
	if err != nil {
		panic(err)
	}

	commands.Run(&d)
}
