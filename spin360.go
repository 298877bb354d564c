// Package spin360 holds the shared vocabulary of the SPIN360 turntable rig: the
// program states, the confirm/cancel button states and the raw button samples
// that the firmware and the host exchange.
//
// This package defines the alphabet of the rig's state machine, not the automaton.
// Transition rules live in whatever controller consumes these values.
package spin360

const TerminationChar = 0x04 // ascii EOT (End of Transmission)

// ProgramState is the screen/mode the rig is currently in
type ProgramState int

const (
	ProgramStateMenu ProgramState = iota
	ProgramStateSettings
	ProgramStateModifySettings
	ProgramStateGettingPics
	ProgramStateErrorSettings
)

func (ps ProgramState) String() string {
	switch ps {
	case ProgramStateMenu:
		return "Menu"
	case ProgramStateSettings:
		return "Settings"
	case ProgramStateModifySettings:
		return "ModifySettings"
	case ProgramStateGettingPics:
		return "GettingPics"
	case ProgramStateErrorSettings:
		return "ErrorSettings"
	default:
		return "Unknown"
	}
}

// Valid reports whether ps is one of the declared states
func (ps ProgramState) Valid() bool {
	return ps >= ProgramStateMenu && ps <= ProgramStateErrorSettings
}

// Byte returns the single character used for ps on the serial protocol
func (ps ProgramState) Byte() byte {
	switch ps {
	case ProgramStateMenu:
		return 'M'
	case ProgramStateSettings:
		return 'S'
	case ProgramStateModifySettings:
		return 'X'
	case ProgramStateGettingPics:
		return 'P'
	case ProgramStateErrorSettings:
		return 'E'
	default:
		return '?'
	}
}

// ParseProgramState is the inverse of ProgramState.Byte
func ParseProgramState(b byte) (ProgramState, bool) {
	for ps := ProgramStateMenu; ps <= ProgramStateErrorSettings; ps++ {
		if ps.Byte() == b {
			return ps, true
		}
	}
	return ProgramStateMenu, false
}

// ButtonState is the interpreted result of the OK/CANCEL buttons
type ButtonState int

const (
	ButtonUnpressed ButtonState = iota
	ButtonOK
	ButtonCancel
)

func (bs ButtonState) String() string {
	switch bs {
	case ButtonOK:
		return "OK"
	case ButtonCancel:
		return "Cancel"
	default:
		fallthrough
	case ButtonUnpressed:
		return "Unpressed"
	}
}

// Level is a digital sample of an input line
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// RawButton keeps the last two samples of a button line so an edge can be detected.
// The zero value has both samples Low.
type RawButton struct {
	Current  Level
	Previous Level
}

// Sample shifts Current into Previous and records l as the new Current sample
func (b *RawButton) Sample(l Level) {
	b.Previous = b.Current
	b.Current = l
}

// Changed reports whether the last two samples differ
func (b RawButton) Changed() bool {
	return b.Current != b.Previous
}

// Int32Loader is the read side of an atomic.Int32
type Int32Loader interface {
	Load() int32
}

// VariableRef points at an integer cell owned by someone else, together with the
// bounds that cell is expected to stay within. It can only read the cell. Lower
// and Higher are copied when the reference is made, so a new reference is needed
// after the owner changes its bounds.
type VariableRef struct {
	cell   Int32Loader
	Lower  int
	Higher int
}

// NewVariableRef creates a reference to cell with the given bounds
func NewVariableRef(cell Int32Loader, lower, higher int) VariableRef {
	return VariableRef{cell: cell, Lower: lower, Higher: higher}
}

// Value reads the referenced cell. It returns false when the reference is unset.
func (v VariableRef) Value() (int16, bool) {
	if v.cell == nil {
		return 0, false
	}
	return int16(v.cell.Load()), true
}

// Contains reports whether n is within [Lower, Higher]
func (v VariableRef) Contains(n int) bool {
	return n >= v.Lower && n <= v.Higher
}

// Within reports whether the referenced cell currently holds an in-bounds value.
// An unset reference is never within bounds.
func (v VariableRef) Within() bool {
	val, ok := v.Value()
	return ok && v.Contains(int(val))
}
