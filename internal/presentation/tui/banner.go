package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the optigate banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"              _   _             _       ", "#818cf8"},
		{"   ___  _ __ | |_(_) __ _  __ _| |_ ___ ", "#a78bfa"},
		{"  / _ \\| '_ \\| __| |/ _` |/ _` | __/ _ \\", "#c084fc"},
		{" | (_) | |_) | |_| | (_| | (_| | ||  __/", "#e879f9"},
		{"  \\___/| .__/ \\__|_|\\__, |\\__,_|\\__\\___|", "#f472b6"},
		{"       |_|          |___/               ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
