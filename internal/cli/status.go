package cli

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// statusLine reports run progress on stderr. On a color terminal the
// "Icons: n/total" counter is rewritten in place; otherwise only the start
// and end messages are printed, one per line.
type statusLine struct {
	out         *termenv.Output
	interactive bool
	quiet       bool
}

// newStatusLine creates a status line on w. A quiet status line prints
// nothing, which keeps stderr clean for --json consumers.
func newStatusLine(w io.Writer, quiet bool) *statusLine {
	out := termenv.NewOutput(w)
	return &statusLine{
		out:         out,
		interactive: out.Profile != termenv.Ascii,
		quiet:       quiet,
	}
}

// Found implements batch.Reporter.
func (s *statusLine) Found(icons, models int) {
	s.println(s.out.String(fmt.Sprintf("Found %d icons from %d models. Processing...", icons, models)).
		Foreground(termenv.ANSICyan).String())
}

// Progress implements batch.Reporter.
func (s *statusLine) Progress(done, total int) {
	if s.quiet || !s.interactive {
		return
	}
	s.out.ClearLine()
	fmt.Fprintf(s.out, "\rIcons: %d/%d", done, total)
	if done >= total {
		fmt.Fprintln(s.out)
	}
}

// Complete prints the final counter.
func (s *statusLine) Complete(succeeded, total int) {
	color := termenv.ANSIGreen
	if succeeded == 0 && total > 0 {
		color = termenv.ANSIRed
	} else if succeeded < total {
		color = termenv.ANSIYellow
	}
	s.println(s.out.String(fmt.Sprintf("Icon generation complete: %d/%d", succeeded, total)).
		Foreground(color).String())
}

// Failed prints the message of an aborted run.
func (s *statusLine) Failed(err error) {
	s.println(s.out.String("Failed: " + err.Error()).Foreground(termenv.ANSIRed).String())
}

func (s *statusLine) println(line string) {
	if s.quiet {
		return
	}
	fmt.Fprintln(s.out, line)
}
