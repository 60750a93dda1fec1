package runner

import (
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
)

// RenderText renders the frame as text, one line per pixel row with
// '#' for set and '.' for cleared pixels.
func RenderText(frame machine.Frame) string {
	var sb strings.Builder
	sb.Grow((machine.DisplayWidth + 1) * machine.DisplayHeight)

	for y := range machine.DisplayHeight {
		for x := range machine.DisplayWidth {
			if frame.Pixel(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
