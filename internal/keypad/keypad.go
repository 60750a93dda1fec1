// Package keypad maps host keyboard input onto the 16 logical CHIP-8 keys.
package keypad

import (
	"time"
	"unicode"

	"github.com/retroenv/retrochip8/internal/machine"
)

// Layout lists the host keys for the logical keys 0-F, following the
// common QWERTY layout of the original 4x4 hex keypad:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  q w e r
//	7 8 9 E      a s d f
//	A 0 B F      z x c v
const Layout = "x123qweasdzc4rfv"

// Lookup returns the logical key for a host key rune. Lookup is case insensitive.
func Lookup(r rune) (uint8, bool) {
	r = unicode.ToLower(r)
	for key, mapped := range Layout {
		if mapped == r {
			return uint8(key), true
		}
	}
	return 0, false
}

// Runes returns all host key runes that map to a logical key, in lower and upper case.
func Runes() []rune {
	runes := make([]rune, 0, 2*len(Layout))
	for _, r := range Layout {
		runes = append(runes, r)
		if upper := unicode.ToUpper(r); upper != r {
			runes = append(runes, upper)
		}
	}
	return runes
}

// Latch synthesizes key releases for hosts that only report key presses.
// A pressed key stays down until the hold time passed since its last press.
type Latch struct {
	hold      time.Duration
	pressed   [machine.KeyCount]bool
	deadlines [machine.KeyCount]time.Time
}

// NewLatch returns a latch that releases keys after the given hold time.
func NewLatch(hold time.Duration) *Latch {
	return &Latch{
		hold: hold,
	}
}

// Press marks the key as pressed at the given time. Repeated presses
// extend the hold time. Keys outside 0-F are ignored.
func (l *Latch) Press(key uint8, now time.Time) {
	if key >= machine.KeyCount {
		return
	}

	l.pressed[key] = true
	l.deadlines[key] = now.Add(l.hold)
}

// Expired releases all keys whose hold time passed and returns them.
func (l *Latch) Expired(now time.Time) []uint8 {
	var released []uint8
	for key := range machine.KeyCount {
		if l.pressed[key] && !now.Before(l.deadlines[key]) {
			l.pressed[key] = false
			released = append(released, uint8(key))
		}
	}
	return released
}
