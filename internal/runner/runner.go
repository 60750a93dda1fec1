// Package runner drives the interpreter for a program session, either
// paced in real time for an interactive display or as fast as possible
// for headless runs.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// statusInterval is the number of cycles between status updates of the display.
const statusInterval = 6

// Display presents the emulation output. Calls are made from the runner
// goroutine, implementations have to synchronize with their own event loop.
type Display interface {
	Frame(frame machine.Frame)
	Status(status Status)
}

// SoundRecorder receives the sound state once per cycle.
type SoundRecorder interface {
	AddCycle(soundActive bool)
}

// KeyEvent is a logical key press or release from the host.
type KeyEvent struct {
	Key  uint8
	Down bool
}

// Status is a snapshot of the registers for display purposes.
type Status struct {
	PC         uint16
	I          uint16
	SP         uint8
	V          [machine.RegisterCount]uint8
	DelayTimer uint8
	SoundTimer uint8
	Opcode     uint16
	Cycles     uint64
}

// Result summarizes a headless run.
type Result struct {
	Cycles     uint64
	Draws      int
	Breakpoint bool
	PC         uint16
	Frame      machine.Frame
}

// Runner owns the interpreter of a session.
type Runner struct {
	logger *log.Logger
	opts   options.Emulator

	state       *machine.State
	interpreter *interpreter.Interpreter
	recorder    SoundRecorder
	latch       *keypad.Latch
	breakpoints set.Set[uint16]

	draws int
}

// New creates a runner with a freshly initialized machine that has the
// program image loaded. A nil logger disables all logging.
func New(logger *log.Logger, image []byte, opts options.Emulator) *Runner {
	state := machine.New()
	loaded := state.LoadProgram(image)
	if loaded < len(image) && logger != nil {
		logger.Warn("Program image truncated while loading",
			log.Int("size", len(image)),
			log.Int("loaded", loaded))
	}

	breakpoints := set.New[uint16]()
	for _, address := range opts.Breakpoints {
		breakpoints.Add(address)
	}

	return &Runner{
		logger:      logger,
		opts:        opts,
		state:       state,
		interpreter: interpreter.New(logger, state, opts),
		breakpoints: breakpoints,
	}
}

// SetRecorder sets a recorder that receives the sound state of every cycle.
func (r *Runner) SetRecorder(recorder SoundRecorder) {
	r.recorder = recorder
}

// EnableAutoRelease releases pressed keys automatically after the hold
// time, for hosts that do not report key releases.
func (r *Runner) EnableAutoRelease(hold time.Duration) {
	r.latch = keypad.NewLatch(hold)
}

// Interpreter returns the interpreter of the session.
func (r *Runner) Interpreter() *interpreter.Interpreter {
	return r.interpreter
}

// Status returns a snapshot of the current registers.
func (r *Runner) Status() Status {
	s := r.state
	return Status{
		PC:         s.PC,
		I:          s.I,
		SP:         s.SP,
		V:          s.V,
		DelayTimer: s.DelayTimer,
		SoundTimer: s.SoundTimer,
		Opcode:     s.Opcode,
		Cycles:     r.interpreter.Cycles(),
	}
}

// RunHeadless executes the configured number of cycles without pacing.
// The run stops early when the program counter is at a breakpoint
// address at the end of a cycle.
func (r *Runner) RunHeadless(ctx context.Context) (Result, error) {
	for range r.opts.Cycles {
		if err := ctx.Err(); err != nil {
			return r.result(false), fmt.Errorf("headless run: %w", err)
		}

		r.cycle()

		if r.breakpoints.Contains(r.state.PC) {
			if r.logger != nil {
				r.logger.Info("Breakpoint reached",
					log.Hex("pc", r.state.PC),
					log.Int("cycle", int(r.interpreter.Cycles())))
			}
			return r.result(true), nil
		}
	}
	return r.result(false), nil
}

// Run paces the interpreter at the configured cycle rate until the
// context is cancelled or the key channel is closed. Frames are pushed
// to the display whenever the program drew to the framebuffer.
func (r *Runner) Run(ctx context.Context, display Display, keys <-chan KeyEvent) error {
	hz := r.opts.Hz
	if hz <= 0 {
		hz = options.DefaultHz
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	display.Frame(r.state.Framebuffer())
	display.Status(r.Status())

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("interactive run: %w", ctx.Err())

		case event, ok := <-keys:
			if !ok {
				return nil
			}
			r.HandleKey(event, time.Now())

		case now := <-ticker.C:
			r.releaseExpired(now)
			if r.cycle() {
				display.Frame(r.state.Framebuffer())
			}
			if r.interpreter.Cycles()%statusInterval == 0 {
				display.Status(r.Status())
			}
		}
	}
}

// HandleKey applies a key event to the keypad.
func (r *Runner) HandleKey(event KeyEvent, now time.Time) {
	if !event.Down {
		r.state.KeyUp(event.Key)
		return
	}

	if r.latch != nil {
		r.latch.Press(event.Key, now)
	}
	r.state.KeyDown(event.Key)
}

func (r *Runner) releaseExpired(now time.Time) {
	if r.latch == nil {
		return
	}
	for _, key := range r.latch.Expired(now) {
		r.state.KeyUp(key)
	}
}

func (r *Runner) cycle() bool {
	drawn := r.interpreter.Cycle()
	if drawn {
		r.draws++
	}
	if r.recorder != nil {
		r.recorder.AddCycle(r.state.SoundFlag)
	}
	return drawn
}

func (r *Runner) result(breakpoint bool) Result {
	return Result{
		Cycles:     r.interpreter.Cycles(),
		Draws:      r.draws,
		Breakpoint: breakpoint,
		PC:         r.state.PC,
		Frame:      r.state.Framebuffer(),
	}
}
