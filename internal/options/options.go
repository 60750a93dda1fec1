// Package options contains the program options.
package options

import "time"

// Default values of the emulator options.
const (
	DefaultBurst    = 8
	DefaultHz       = 60
	DefaultCycles   = 600
	DefaultKeyHold  = 150 * time.Millisecond
	MaxBurst        = 1000
	MaxHz           = 1000
	DefaultWavRate  = 44100
	DefaultToneFreq = 440
)

// Parameters contains file path options.
type Parameters struct {
	Input string // program image to run
	Wav   string // file to record the sound output to
}

// Flags contains behavior options.
type Flags struct {
	Headless bool // run without terminal frontend
	List     bool // print a disassembly listing and exit
	Truncate bool // truncate oversized program images instead of rejecting them
	Debug    bool
	Quiet    bool
}

// Program options of the emulator binary.
type Program struct {
	Parameters
	Flags
}

// Emulator defines options to control the interpreter and the host loop.
type Emulator struct {
	Burst       int           // instructions executed per cycle
	Hz          int           // cycles per second when running interactively
	Cycles      int           // cycles to run in headless mode
	KeyHold     time.Duration // time a key stays pressed in the terminal frontend
	Trace       bool          // log every executed instruction
	Breakpoints []uint16      // addresses that stop a headless run
}

// NewEmulator returns a new options instance with default options.
func NewEmulator() Emulator {
	return Emulator{
		Burst:   DefaultBurst,
		Hz:      DefaultHz,
		Cycles:  DefaultCycles,
		KeyHold: DefaultKeyHold,
	}
}
