package keypad

import (
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name  string
		r     rune
		key   uint8
		valid bool
	}{
		{"key 0", 'x', 0x0, true},
		{"key 1", '1', 0x1, true},
		{"key 5", 'w', 0x5, true},
		{"key A", 'z', 0xA, true},
		{"key C", '4', 0xC, true},
		{"key F", 'v', 0xF, true},
		{"upper case", 'V', 0xF, true},
		{"unmapped", 'p', 0, false},
		{"unmapped digit", '9', 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := Lookup(tt.r)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestRunes(t *testing.T) {
	runes := Runes()

	// digits have no upper case variant
	assert.Len(t, runes, 2*len(Layout)-4)
	for _, r := range runes {
		_, ok := Lookup(r)
		assert.True(t, ok)
	}
}

func TestLatch(t *testing.T) {
	start := time.Unix(1000, 0)
	latch := NewLatch(100 * time.Millisecond)

	latch.Press(3, start)
	assert.Len(t, latch.Expired(start.Add(50*time.Millisecond)), 0)

	// a repeated press extends the hold time
	latch.Press(3, start.Add(80*time.Millisecond))
	assert.Len(t, latch.Expired(start.Add(150*time.Millisecond)), 0)

	released := latch.Expired(start.Add(180 * time.Millisecond))
	assert.Equal(t, []uint8{3}, released)
	assert.Len(t, latch.Expired(start.Add(time.Second)), 0)
}

func TestLatch_InvalidKey(t *testing.T) {
	latch := NewLatch(time.Millisecond)
	now := time.Now()
	latch.Press(16, now)
	assert.Len(t, latch.Expired(now.Add(time.Second)), 0)
}
