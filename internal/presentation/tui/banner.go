package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the Cadence banner with its version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Same gradient as the action listing (Indigo/Violet)
	lines := []struct {
		text  string
		color string
	}{
		{"   ___          _", "#818cf8"},
		{"  / __|__ _ __| |___ _ _  __ ___", "#a78bfa"},
		{" | (__/ _` / _` / -_) ' \\/ _/ -_)", "#c084fc"},
		{"  \\___\\__,_\\__,_\\___|_||_\\__\\___|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+version).Faint())
	fmt.Fprintln(w)
}
