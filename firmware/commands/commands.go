package commands

import (
	"errors"
	"io"

	"github.com/calvinmclean/spin360"
	"github.com/calvinmclean/spin360/param"
)

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a device
type Controller interface {
	Param(int) *param.Param
	PersistAll() error
	LoadAll() error
	SetState(spin360.ProgramState)
	Debug()
	Verbose()

	// I/O
	Print(string)
	ReadByte() (byte, error)
	WriteByte(byte) error
}

var (
	GetCommand = &Command{
		Flag:      'G',
		InputSize: 1,
		Run: func(c Controller, b []byte) error {
			p, err := lookup(c, b[0])
			if err != nil {
				return err
			}
			c.Print(p.String())
			return nil
		},
		Description: "Print a parameter. Input: index 0-9.",
	}
	IncrementCommand = &Command{
		Flag:      '+',
		InputSize: 1,
		Run: func(c Controller, b []byte) error {
			p, err := lookup(c, b[0])
			if err != nil {
				return err
			}
			c.Print(p.Increment().String())
			return nil
		},
		Description: "Increment a parameter, stopping at its maximum. Input: index 0-9.",
	}
	DecrementCommand = &Command{
		Flag:      '-',
		InputSize: 1,
		Run: func(c Controller, b []byte) error {
			p, err := lookup(c, b[0])
			if err != nil {
				return err
			}
			c.Print(p.Decrement().String())
			return nil
		},
		Description: "Decrement a parameter, stopping at its minimum. Input: index 0-9.",
	}
	AddCommand = &Command{
		Flag:      'A',
		InputSize: 3,
		Run: func(c Controller, b []byte) error {
			p, err := lookup(c, b[0])
			if err != nil {
				return err
			}

			s := 1
			if b[1] == '-' {
				s = -1
			} else if b[1] != '+' {
				return errors.New("invalid sign: " + string(b[1]))
			}

			v, ok := digit(b[2])
			if !ok {
				return errors.New("invalid amount: " + string(b[2]))
			}

			c.Print(p.Add(v * s).String())
			return nil
		},
		Description: "Add to a parameter, saturating at its bounds. Input: index 0-9, '+' or '-', amount 0-9.",
	}
	PersistCommand = &Command{
		Flag:      'W',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			return c.PersistAll()
		},
		Description: "Write all parameters to EEPROM.",
	}
	LoadCommand = &Command{
		Flag:      'L',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			return c.LoadAll()
		},
		Description: "Load all parameters from EEPROM.",
	}
	SetStateCommand = &Command{
		Flag:      'M',
		InputSize: 1,
		Run: func(c Controller, b []byte) error {
			ps, ok := spin360.ParseProgramState(b[0])
			if !ok {
				return errors.New("invalid state: " + string(b[0]))
			}
			c.SetState(ps)
			return nil
		},
		Description: "Set the program state. Input: 'M' (Menu), 'S' (Settings), 'X' (ModifySettings), 'P' (GettingPics), 'E' (ErrorSettings).",
	}
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current state.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable verbose output.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) error {
			c.Print("Available Commands:")
			for _, cmd := range commands {
				c.Print(string(cmd.Flag) + ": " + cmd.Description)
			}
			return nil
		},
	}
)

var commands = []*Command{
	GetCommand,
	IncrementCommand,
	DecrementCommand,
	AddCommand,
	PersistCommand,
	LoadCommand,
	SetStateCommand,
	DebugCommand,
	VerboseCommand,
}

func digit(b byte) (int, bool) {
	if b < '0' || b > '9' {
		return 0, false
	}
	return int(b - '0'), true
}

func lookup(c Controller, b byte) (*param.Param, error) {
	i, ok := digit(b)
	if !ok {
		return nil, errors.New("invalid index: " + string(b))
	}
	p := c.Param(i)
	if p == nil {
		return nil, errors.New("unknown param: " + string(b))
	}
	return p, nil
}

func commandMap() map[byte]*Command {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}
	return cmdMap
}

// Run reads and executes commands until the input reports io.EOF. Every executed
// command is followed by spin360.TerminationChar so the host knows the response is complete.
func Run(c Controller) {
	cmdMap := commandMap()

	for {
		cmdIn, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			continue
		}

		cmd, ok := cmdMap[cmdIn]
		if !ok {
			continue
		}

		in := make([]byte, cmd.InputSize)
		for i := 0; i < int(cmd.InputSize); {
			b, err := c.ReadByte()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				continue
			}

			in[i] = b
			i++
		}

		err = cmd.Run(c, in)
		if err != nil {
			c.Print("error: " + err.Error())
		}
		c.WriteByte(spin360.TerminationChar)
	}
}
