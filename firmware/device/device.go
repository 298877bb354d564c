//go:build tinygo

package device

import (
	"errors"
	"machine"
	"time"

	"github.com/calvinmclean/spin360"
	"github.com/calvinmclean/spin360/firmware/commands"
	"github.com/calvinmclean/spin360/param"
	"github.com/calvinmclean/spin360/store"
)

// Device is the SPIN360 rig as seen by the serial command loop. It owns the param
// table, the EEPROM it is persisted to and the raw button samples.
type Device struct {
	params *param.Set
	store  store.Store

	state spin360.ProgramState

	buttonCfg ButtonConfig
	ok        spin360.RawButton
	cancel    spin360.RawButton

	startTime time.Time
	verbose   bool
}

var _ commands.Controller = (*Device)(nil)

// New configures the button pins and loads params from st. A failed load is reported
// but not fatal: the params keep their defaults and the device starts in ErrorSettings.
func New(params *param.Set, st store.Store, buttonCfg ButtonConfig) (Device, error) {
	if params == nil || st == nil {
		return Device{}, errors.New("params and store are required")
	}

	for _, p := range []machine.Pin{buttonCfg.OK, buttonCfg.Cancel} {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}

	d := Device{
		params:    params,
		store:     st,
		state:     spin360.ProgramStateMenu,
		buttonCfg: buttonCfg,
		startTime: time.Now(),
	}

	blank, err := params.Blank(st)
	switch {
	case err != nil:
		println(d.ts(), "error reading params:", err.Error())
		d.state = spin360.ProgramStateErrorSettings
	case blank:
		// keep the built-in defaults until they are written with W
		println(d.ts(), "EEPROM is blank, using default params")
		d.state = spin360.ProgramStateErrorSettings
	default:
		err = params.LoadAll(st)
		if err != nil {
			println(d.ts(), "error loading params:", err.Error())
			d.state = spin360.ProgramStateErrorSettings
		}
	}

	return d, nil
}

// Param returns the i-th param or nil
func (d *Device) Param(i int) *param.Param {
	return d.params.At(i)
}

// PersistAll writes every param to EEPROM
func (d *Device) PersistAll() error {
	if d.verbose {
		println(d.ts(), "PersistAll")
	}
	return d.params.PersistAll(d.store)
}

// LoadAll reads every param from EEPROM
func (d *Device) LoadAll() error {
	if d.verbose {
		println(d.ts(), "LoadAll")
	}
	return d.params.LoadAll(d.store)
}

// SetState records the program state reported by the menu logic
func (d *Device) SetState(ps spin360.ProgramState) {
	if d.verbose {
		println(d.ts(), "SetState:", ps.String())
	}
	d.state = ps
}

// SampleButtons takes a new sample of both button lines. Buttons are wired active-low.
func (d *Device) SampleButtons() {
	d.ok.Sample(spin360.Level(!d.buttonCfg.OK.Get()))
	d.cancel.Sample(spin360.Level(!d.buttonCfg.Cancel.Get()))

	if d.verbose && (d.ok.Changed() || d.cancel.Changed()) {
		println(d.ts(), "buttons: ok="+d.ok.Current.String(), "cancel="+d.cancel.Current.String())
	}
}

// Debug prints out details of the Device's state
func (d *Device) Debug() {
	println(d.ts(), "state="+d.state.String(), "ok="+d.ok.Current.String(), "cancel="+d.cancel.Current.String())
	for _, p := range d.params.All() {
		println(d.ts(), p.String())
	}
}

// Verbose sets the Device to Verbose mode and increases logging
func (d *Device) Verbose() {
	d.verbose = true
	println(d.ts(), "Set Verbose Mode")
}

func (d *Device) Print(s string) {
	println(s)
}

// ReadByte reads from the serial port. While no byte is available the buttons are sampled.
func (d *Device) ReadByte() (byte, error) {
	b, err := machine.Serial.ReadByte()
	if err != nil {
		d.SampleButtons()
		time.Sleep(time.Millisecond)
	}
	return b, err
}

func (d *Device) WriteByte(b byte) error {
	return machine.Serial.WriteByte(b)
}

// ts returns the uptime timestamp for logging
func (d *Device) ts() string {
	return "[" + time.Since(d.startTime).Truncate(time.Millisecond).String() + "]"
}
