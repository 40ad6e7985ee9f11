package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/handshake/pkg/domain"
	"github.com/muesli/termenv"
)

// Printer writes one-line progress updates for a running process.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter creates a printer. The color profile is detected from w
// unless overridden with termenv.WithProfile.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w, opts...)}
}

func (p *Printer) line(color, prefix, msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.out.String(prefix).Foreground(p.out.Color(color)).Bold(), msg)
}

// Waiting announces that the process started.
func (p *Printer) Waiting(invitationID string) {
	p.line("#818cf8", "…", fmt.Sprintf("waiting for records of invitation %s (Ctrl+C to dismiss)", Clean(invitationID)))
}

// Notice tells the user the resolution is taking longer than expected.
func (p *Printer) Notice() {
	p.line("#fbbf24", "!", "this is taking longer than expected")
}

// Resolved prints the destination.
func (p *Printer) Resolved(dest domain.Destination) {
	msg := Label(dest.Kind())
	if target := Target(dest); target != "" {
		msg += " " + target
	}
	p.line("#34d399", "✔", msg)
}

// Failed prints an error that ended the process.
func (p *Printer) Failed(err error) {
	p.line("#fb7185", "✘", Clean(err.Error()))
}
