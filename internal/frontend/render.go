package frontend

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/runner"
)

// half block runes indexed by top pixel | bottom pixel<<1
var blocks = [4]rune{' ', '▀', '▄', '█'}

func bit(set bool) int {
	if set {
		return 1
	}
	return 0
}

// RenderBlocks renders the frame with two pixel rows per text line.
func RenderBlocks(frame machine.Frame) []string {
	lines := make([]string, 0, displayLines)
	var sb strings.Builder

	for y := 0; y < machine.DisplayHeight; y += 2 {
		sb.Reset()
		for x := range machine.DisplayWidth {
			index := bit(frame.Pixel(x, y)) | bit(frame.Pixel(x, y+1))<<1
			sb.WriteRune(blocks[index])
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// FormatRegisters returns the register view lines for a status snapshot.
func FormatRegisters(status runner.Status) []string {
	return []string{
		fmt.Sprintf("PC $%04X  I $%04X  SP $%X  DT $%02X  ST $%02X  cycle %d",
			status.PC, status.I, status.SP, status.DelayTimer, status.SoundTimer, status.Cycles),
		"V0-V7  " + formatBytes(status.V[:8]),
		"V8-VF  " + formatBytes(status.V[8:]),
		fmt.Sprintf("last   $%04X  %s", status.Opcode, chip8.Format(status.Opcode)),
	}
}

func formatBytes(values []uint8) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = fmt.Sprintf("%02X", value)
	}
	return strings.Join(parts, " ")
}

// keyHelp lists the host keys in the layout of the hex keypad.
func keyHelp() string {
	var sb strings.Builder
	for row, key := range []string{"123c", "456d", "789e", "a0bf"} {
		if row > 0 {
			sb.WriteString(" ")
		}
		for _, r := range key {
			logical := strings.IndexRune("0123456789abcdef", r)
			sb.WriteByte(keypad.Layout[logical])
		}
	}
	sb.WriteString("  esc: quit")
	return sb.String()
}
