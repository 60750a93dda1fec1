// Package frontend implements the interactive terminal user interface.
package frontend

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jroimartin/gocui"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/runner"
)

const (
	displayView   = "display"
	registersView = "registers"
	statusView    = "status"

	displayLines    = machine.DisplayHeight / 2
	registerLines   = 4
	keyQueueSize    = 32
	frameBorder     = 2
	statusLines     = 1
	displayBottom   = displayLines + 1
	registersTop    = displayBottom + 1
	registersBottom = registersTop + registerLines + 1
	statusTop       = registersBottom + 1
)

// Minimum terminal size required by the layout.
const (
	MinWidth  = machine.DisplayWidth + frameBorder
	MinHeight = statusTop + statusLines + frameBorder
)

// ErrTerminalTooSmall is returned when the terminal can not fit the layout.
var ErrTerminalTooSmall = errors.New("terminal too small")

// Terminal is a gocui based display that forwards key presses as events.
// It implements runner.Display.
type Terminal struct {
	gui   *gocui.Gui
	keys  chan runner.KeyEvent
	title string

	mu     sync.Mutex
	frame  machine.Frame
	status runner.Status
}

// New initializes the terminal user interface.
func New(title string) (*Terminal, error) {
	if err := checkTerminalSize(); err != nil {
		return nil, err
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("creating terminal gui: %w", err)
	}

	t := &Terminal{
		gui:   g,
		keys:  make(chan runner.KeyEvent, keyQueueSize),
		title: title,
	}
	g.SetManagerFunc(t.layout)

	if err := t.bindKeys(); err != nil {
		g.Close()
		return nil, err
	}
	return t, nil
}

// Keys returns the channel that receives key press events.
func (t *Terminal) Keys() <-chan runner.KeyEvent {
	return t.keys
}

// MainLoop runs the event loop until the user quits.
func (t *Terminal) MainLoop() error {
	if err := t.gui.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		return fmt.Errorf("terminal main loop: %w", err)
	}
	return nil
}

// Quit stops the event loop from another goroutine.
func (t *Terminal) Quit() {
	t.gui.Update(func(*gocui.Gui) error {
		return gocui.ErrQuit
	})
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.gui.Close()
}

// Frame schedules a redraw of the display with the given frame.
func (t *Terminal) Frame(frame machine.Frame) {
	t.mu.Lock()
	t.frame = frame
	t.mu.Unlock()

	t.gui.Update(t.drawDisplay)
}

// Status schedules a redraw of the register view.
func (t *Terminal) Status(status runner.Status) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()

	t.gui.Update(t.drawRegisters)
}

func (t *Terminal) bindKeys() error {
	for _, r := range keypad.Runes() {
		key, _ := keypad.Lookup(r)
		if err := t.gui.SetKeybinding("", r, gocui.ModNone, t.pressKey(key)); err != nil {
			return fmt.Errorf("binding key %q: %w", r, err)
		}
	}

	for _, key := range []gocui.Key{gocui.KeyCtrlC, gocui.KeyEsc} {
		if err := t.gui.SetKeybinding("", key, gocui.ModNone, quit); err != nil {
			return fmt.Errorf("binding quit key: %w", err)
		}
	}
	return nil
}

// pressKey returns a handler that queues a key press. Presses are
// dropped while the queue is full so the event loop never blocks.
func (t *Terminal) pressKey(key uint8) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		select {
		case t.keys <- runner.KeyEvent{Key: key, Down: true}:
		default:
		}
		return nil
	}
}

func (t *Terminal) layout(g *gocui.Gui) error {
	if v, err := g.SetView(displayView, 0, 0, MinWidth-1, displayBottom); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return fmt.Errorf("creating display view: %w", err)
		}
		v.Title = t.title
	}

	if v, err := g.SetView(registersView, 0, registersTop, MinWidth-1, registersBottom); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return fmt.Errorf("creating registers view: %w", err)
		}
		v.Title = "Registers"
	}

	if v, err := g.SetView(statusView, 0, statusTop, MinWidth-1, statusTop+statusLines+1); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return fmt.Errorf("creating status view: %w", err)
		}
		v.Title = "Keys"
		_, _ = fmt.Fprint(v, keyHelp())
	}
	return nil
}

func (t *Terminal) drawDisplay(g *gocui.Gui) error {
	v, err := g.View(displayView)
	if errors.Is(err, gocui.ErrUnknownView) {
		return nil // not laid out yet
	}
	if err != nil {
		return fmt.Errorf("getting display view: %w", err)
	}

	t.mu.Lock()
	lines := RenderBlocks(t.frame)
	t.mu.Unlock()

	v.Clear()
	_, _ = fmt.Fprint(v, strings.Join(lines, "\n"))
	return nil
}

func (t *Terminal) drawRegisters(g *gocui.Gui) error {
	v, err := g.View(registersView)
	if errors.Is(err, gocui.ErrUnknownView) {
		return nil // not laid out yet
	}
	if err != nil {
		return fmt.Errorf("getting registers view: %w", err)
	}

	t.mu.Lock()
	lines := FormatRegisters(t.status)
	t.mu.Unlock()

	v.Clear()
	_, _ = fmt.Fprint(v, strings.Join(lines, "\n"))
	return nil
}

func quit(*gocui.Gui, *gocui.View) error {
	return gocui.ErrQuit
}

func checkTerminalSize() error {
	width, height, ok := terminalSize()
	if !ok {
		return nil
	}
	return checkSize(width, height)
}

func checkSize(width, height int) error {
	if width < MinWidth || height < MinHeight {
		return fmt.Errorf("%w: %dx%d, need at least %dx%d",
			ErrTerminalTooSmall, width, height, MinWidth, MinHeight)
	}
	return nil
}
