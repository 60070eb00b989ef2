package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the knitout banner, coloured when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{" _        _ _              _   ", "#818cf8"},
		{"| | ___ _(_) |_ ___  _   _| |_ ", "#a78bfa"},
		{"| |/ / '_ \\ | __/ _ \\| | | | __|", "#c084fc"},
		{"|   <| | | | | || (_) | |_| | |_ ", "#e879f9"},
		{"|_|\\_\\_| |_|_|\\__\\___/ \\__,_|\\__|", "#f472b6"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status writes a one-line result marker: green for ok, red otherwise.
func Status(w io.Writer, ok bool, msg string) {
	out := termenv.NewOutput(w)
	mark, color := "✔", "#22c55e"
	if !ok {
		mark, color = "✘", "#ef4444"
	}
	fmt.Fprintf(w, "%s %s\n", out.String(mark).Foreground(out.Color(color)).Bold(), msg)
}
