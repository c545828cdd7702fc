package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the regiongraph banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"  ┬─┐┌─┐┌─┐┬┌─┐┌┐┌┌─┐┬─┐┌─┐┌─┐┬ ┬", "#34d399"},
		{"  ├┬┘├┤ │ ┬││ ││││││ ┬├┬┘├─┤├─┘├─┤", "#2dd4bf"},
		{"  ┴└─└─┘└─┘┴└─┘┘└┘└─┘┴└─┴ ┴┴  ┴ ┴", "#22d3ee"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
