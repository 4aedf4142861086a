package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	colorHeader   = color.New(color.FgCyan, color.Bold)
	colorAide     = color.New(color.FgGreen)
	colorPool     = color.New(color.FgYellow)
	colorFixed    = color.New(color.FgMagenta)
	colorMuted    = color.New(color.FgHiBlack)
	colorConflict = color.New(color.FgRed, color.Bold)
)

// DisableColor turns off all colored output.
func DisableColor() {
	color.NoColor = true
}

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
