package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the hostflow banner, coloured when w is a colour terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{" _               _    __ _", "#818cf8"},
		{"| |__   ___  ___| |_ / _| | _____      __", "#a78bfa"},
		{"| '_ \\ / _ \\/ __| __| |_| |/ _ \\ \\ /\\ / /", "#c084fc"},
		{"| | | | (_) \\__ \\ |_|  _| | (_) \\ V  V /", "#e879f9"},
		{"|_| |_|\\___/|___/\\__|_| |_|\\___/ \\_/\\_/", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
