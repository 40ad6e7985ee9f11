package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner.
func PrintBanner(w io.Writer, opts ...termenv.OutputOption) {
	out := termenv.NewOutput(w, opts...)
	lines := []struct{ text, color string }{
		{" _                     _     _           _        ", "#818cf8"},
		{"| |__   __ _ _ __   __| |___| |__   __ _| | _____ ", "#a78bfa"},
		{"| '_ \\ / _` | '_ \\ / _` / __| '_ \\ / _` | |/ / _ \\", "#c084fc"},
		{"| | | | (_| | | | | (_| \\__ \\ | | | (_| |   <  __/", "#e879f9"},
		{"|_| |_|\\__,_|_| |_|\\__,_|___/_| |_|\\__,_|_|\\_\\___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
