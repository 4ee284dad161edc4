// Package cli provides console formatting helpers: ANSI colour, column
// alignment, and a small table renderer, used by the orchestrator's
// startup banner and its error output.
package cli

import "strings"

var monochrome = false

// SetMonochrome disables ANSI colour output for the remainder of the
// process — wired to the --monochrome flag (§6).
func SetMonochrome(on bool) {
	monochrome = on
}

func wrap(code, s string) string {
	if monochrome {
		return s
	}
	return code + s + "\033[0m"
}

func Green(s string) string  { return wrap("\033[32m", s) }
func Yellow(s string) string { return wrap("\033[33m", s) }
func Red(s string) string    { return wrap("\033[31m", s) }
func Bold(s string) string   { return wrap("\033[1m", s) }
func Dim(s string) string    { return wrap("\033[2m", s) }

// DotPad pads name with dots to the given width.
// Example: DotPad("host", 20) → "host ..............."
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}
