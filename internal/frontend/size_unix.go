//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package frontend

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminalSize returns the size of the terminal attached to stdout.
func terminalSize() (int, int, bool) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}
