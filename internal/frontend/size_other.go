//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd)

package frontend

// terminalSize is not supported on this platform, the layout check is skipped.
func terminalSize() (int, int, bool) {
	return 0, 0, false
}
