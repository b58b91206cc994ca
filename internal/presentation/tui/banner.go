package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{` _ __ ___   ___ _ __ | |_ ___  _ __ `, "#34d399"},
	{`| '_ ' _ \ / _ \ '_ \| __/ _ \| '__|`, "#2dd4bf"},
	{`| | | | | |  __/ | | | || (_) | |   `, "#22d3ee"},
	{`|_| |_| |_|\___|_| |_|\__\___/|_|   `, "#38bdf8"},
}

// PrintBanner writes the mentor banner, colored when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Dim renders secondary text, such as hints and prompts.
func Dim(w io.Writer, s string) string {
	return termenv.NewOutput(w).String(s).Faint().String()
}
