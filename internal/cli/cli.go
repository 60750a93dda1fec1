// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns program and emulator options
func ParseFlags() (options.Program, options.Emulator, error) {
	return parseArgs(os.Args)
}

func parseArgs(arguments []string) (options.Program, options.Emulator, error) {
	flags := flag.NewFlagSet(arguments[0], flag.ContinueOnError)
	var opts options.Program
	emulatorOpts := options.NewEmulator()
	var breakpoints string
	var holdMs int

	readOptionFlags(flags, &opts)
	readEmulatorFlags(flags, &emulatorOpts, &breakpoints, &holdMs)

	err := flags.Parse(arguments[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, emulatorOpts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, emulatorOpts, err
	}
	opts.Input = args[0]

	emulatorOpts.KeyHold = time.Duration(holdMs) * time.Millisecond
	emulatorOpts.Breakpoints, err = parseBreakpoints(breakpoints)
	if err != nil {
		return opts, emulatorOpts, err
	}

	if err := validateOptions(opts, emulatorOpts); err != nil {
		return opts, emulatorOpts, err
	}

	return opts, emulatorOpts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information and all flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <program file>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("only one program file can be run, got %d", len(args)),
		}
	}
	return nil
}

// validateOptions checks the value ranges and combinations of the options
func validateOptions(opts options.Program, emulatorOpts options.Emulator) error {
	if emulatorOpts.Burst < 1 || emulatorOpts.Burst > options.MaxBurst {
		return fmt.Errorf("invalid burst size %d, valid range is 1-%d", emulatorOpts.Burst, options.MaxBurst)
	}
	if emulatorOpts.Hz < 1 || emulatorOpts.Hz > options.MaxHz {
		return fmt.Errorf("invalid cycle rate %d, valid range is 1-%d", emulatorOpts.Hz, options.MaxHz)
	}
	if emulatorOpts.Cycles < 1 {
		return fmt.Errorf("invalid cycle count %d", emulatorOpts.Cycles)
	}
	if emulatorOpts.KeyHold <= 0 {
		return fmt.Errorf("invalid key hold time %s", emulatorOpts.KeyHold)
	}
	if len(emulatorOpts.Breakpoints) > 0 && !opts.Headless {
		return fmt.Errorf("breakpoints are only supported in headless mode")
	}
	return nil
}

// parseBreakpoints parses a comma separated list of hex addresses.
func parseBreakpoints(s string) ([]uint16, error) {
	if s == "" {
		return nil, nil
	}

	var addresses []uint16
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "$")
		address, err := strconv.ParseUint(field, 16, 12)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint address '%s': %w", field, err)
		}
		addresses = append(addresses, uint16(address))
	}
	return addresses, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Wav, "wav", "", "name of a .wav file to record the sound output to")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal display and print the final frame")
	flags.BoolVar(&opts.List, "list", false, "print a disassembly listing of the program and exit")
	flags.BoolVar(&opts.Truncate, "truncate", false, "truncate program files that do not fit into memory")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readEmulatorFlags(flags *flag.FlagSet, opts *options.Emulator, breakpoints *string, holdMs *int) {
	flags.IntVar(&opts.Burst, "burst", options.DefaultBurst, "instructions executed per cycle")
	flags.IntVar(&opts.Hz, "hz", options.DefaultHz, "cycles per second, also the timer rate")
	flags.IntVar(&opts.Cycles, "cycles", options.DefaultCycles, "cycles to run in headless mode")
	flags.IntVar(holdMs, "hold", int(options.DefaultKeyHold/time.Millisecond), "milliseconds a key stays pressed in the terminal display")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, requires -debug")
	flags.StringVar(breakpoints, "break", "", "comma separated hex addresses that stop a headless run, for example 200,2a4")
}
