package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// drawProgram clears the screen, draws the font glyph 0 at 0,0 and loops.
var drawProgram = []byte{
	0x00, 0xE0, // 200: cls
	0xA0, 0x00, // 202: ld I, $000
	0xD0, 0x05, // 204: drw V0, V0, $5
	0x12, 0x06, // 206: jp $206
}

// soundProgram sets the sound timer to 3 and loops.
var soundProgram = []byte{
	0x60, 0x03, // 200: ld V0, $03
	0xF0, 0x18, // 202: ld ST, V0
	0x12, 0x04, // 204: jp $204
}

type recorder struct {
	cycles []bool
}

func (r *recorder) AddCycle(soundActive bool) {
	r.cycles = append(r.cycles, soundActive)
}

type display struct {
	frames chan machine.Frame
	status chan Status
}

func newDisplay() *display {
	return &display{
		frames: make(chan machine.Frame, 64),
		status: make(chan Status, 64),
	}
}

func (d *display) Frame(frame machine.Frame) {
	select {
	case d.frames <- frame:
	default:
	}
}

func (d *display) Status(status Status) {
	select {
	case d.status <- status:
	default:
	}
}

func testOptions(cycles int) options.Emulator {
	opts := options.NewEmulator()
	opts.Cycles = cycles
	return opts
}

func TestRunHeadless(t *testing.T) {
	r := New(log.NewTestLogger(t), drawProgram, testOptions(3))

	result, err := r.RunHeadless(t.Context())
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), result.Cycles)
	assert.Equal(t, 1, result.Draws)
	assert.False(t, result.Breakpoint)
	assert.Equal(t, uint16(0x206), result.PC)

	lines := strings.Split(RenderText(result.Frame), "\n")
	assert.Equal(t, "####....", lines[0][:8])
	assert.Equal(t, "#..#....", lines[1][:8])
	assert.Equal(t, "####....", lines[4][:8])
	assert.Equal(t, "........", lines[5][:8])
}

func TestRunHeadless_Breakpoint(t *testing.T) {
	opts := testOptions(100)
	opts.Breakpoints = []uint16{0x206}
	r := New(log.NewTestLogger(t), drawProgram, opts)

	result, err := r.RunHeadless(t.Context())
	assert.NoError(t, err)
	assert.True(t, result.Breakpoint)
	assert.Equal(t, uint64(1), result.Cycles)
	assert.Equal(t, uint16(0x206), result.PC)
}

func TestRunHeadless_Cancelled(t *testing.T) {
	r := New(log.NewTestLogger(t), drawProgram, testOptions(100))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	result, err := r.RunHeadless(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, uint64(0), result.Cycles)
}

func TestRunHeadless_Recorder(t *testing.T) {
	r := New(log.NewTestLogger(t), soundProgram, testOptions(4))
	rec := &recorder{}
	r.SetRecorder(rec)

	_, err := r.RunHeadless(t.Context())
	assert.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, false}, rec.cycles)
}

func TestNew_TruncatesImage(t *testing.T) {
	image := make([]byte, machine.MaxProgramSize+10)
	image[machine.MaxProgramSize-1] = 0xAB
	r := New(log.NewTestLogger(t), image, testOptions(1))

	state := r.Interpreter().State()
	assert.Equal(t, uint8(0xAB), state.Memory[machine.MemorySize-1])
}

func TestHandleKey_AutoRelease(t *testing.T) {
	r := New(log.NewTestLogger(t), drawProgram, testOptions(1))
	r.EnableAutoRelease(100 * time.Millisecond)
	state := r.Interpreter().State()

	now := time.Now()
	r.HandleKey(KeyEvent{Key: 5, Down: true}, now)
	assert.Equal(t, uint8(1), state.Keypad[5])

	r.releaseExpired(now.Add(50 * time.Millisecond))
	assert.Equal(t, uint8(1), state.Keypad[5])

	r.releaseExpired(now.Add(150 * time.Millisecond))
	assert.Equal(t, uint8(0), state.Keypad[5])
}

func TestHandleKey_Release(t *testing.T) {
	r := New(log.NewTestLogger(t), drawProgram, testOptions(1))
	state := r.Interpreter().State()

	now := time.Now()
	r.HandleKey(KeyEvent{Key: 0xA, Down: true}, now)
	assert.Equal(t, uint8(1), state.Keypad[0xA])
	r.HandleKey(KeyEvent{Key: 0xA}, now)
	assert.Equal(t, uint8(0), state.Keypad[0xA])
}

func TestRun(t *testing.T) {
	opts := testOptions(0)
	opts.Hz = options.MaxHz
	r := New(log.NewTestLogger(t), drawProgram, opts)
	disp := newDisplay()
	keys := make(chan KeyEvent)

	errs := make(chan error, 1)
	go func() {
		errs <- r.Run(t.Context(), disp, keys)
	}()

	initial := <-disp.frames
	assert.Equal(t, machine.Frame{}, initial)

	select {
	case frame := <-disp.frames:
		assert.Equal(t, uint8(1), frame[0])
	case <-time.After(5 * time.Second):
		t.Fatal("no frame drawn")
	}

	keys <- KeyEvent{Key: 3, Down: true}
	close(keys)

	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
	assert.Equal(t, uint8(1), r.Interpreter().State().Keypad[3])
}

func TestRun_Cancelled(t *testing.T) {
	r := New(log.NewTestLogger(t), drawProgram, testOptions(0))
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := r.Run(ctx, newDisplay(), make(chan KeyEvent))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRenderText(t *testing.T) {
	var frame machine.Frame
	frame[0] = 1
	frame[machine.DisplayWidth*machine.DisplayHeight-1] = 1

	text := RenderText(frame)
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	assert.Len(t, lines, machine.DisplayHeight)
	assert.Equal(t, "#"+strings.Repeat(".", machine.DisplayWidth-1), lines[0])
	assert.Equal(t, strings.Repeat(".", machine.DisplayWidth-1)+"#", lines[machine.DisplayHeight-1])
}

func TestNew_NilLogger(t *testing.T) {
	image := make([]byte, machine.MaxProgramSize+2)
	copy(image, drawProgram)
	opts := testOptions(5)
	opts.Breakpoints = []uint16{0x206}

	r := New(nil, image, opts)
	result, err := r.RunHeadless(t.Context())
	assert.NoError(t, err)
	assert.True(t, result.Breakpoint)
}
