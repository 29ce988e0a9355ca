// internal/console/console.go
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Console renders operator feedback. It is not a logger: every line here is
// meant for the person at the prompt.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	success *color.Color
	failure *color.Color
	notice  *color.Color
	hint    *color.Color
	heading *color.Color
}

// New writes to out. Color is used only when enabled and out is a terminal.
func New(out io.Writer, enableColor bool) *Console {
	c := &Console{
		out:     out,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed, color.Bold),
		notice:  color.New(color.FgCyan),
		hint:    color.New(color.FgYellow),
		heading: color.New(color.Bold),
	}
	useColor := enableColor && IsTerminal(out)
	for _, col := range []*color.Color{c.success, c.failure, c.notice, c.hint, c.heading} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *Console) line(col *color.Color, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if col == nil {
		fmt.Fprintln(c.out, msg)
		return
	}
	fmt.Fprintln(c.out, col.Sprint(msg))
}

// Success reports a completed action.
func (c *Console) Success(format string, args ...interface{}) { c.line(c.success, format, args...) }

// Info reports progress.
func (c *Console) Info(format string, args ...interface{}) { c.line(c.notice, format, args...) }

// Hint suggests what the operator can do next.
func (c *Console) Hint(format string, args ...interface{}) { c.line(c.hint, format, args...) }

func (c *Console) Heading(format string, args ...interface{}) { c.line(c.heading, format, args...) }

// Println writes a plain line.
func (c *Console) Println(format string, args ...interface{}) { c.line(nil, format, args...) }

// Error renders one error line.
func (c *Console) Error(err error) { c.line(c.failure, "Error: %v", err) }

// Errorf renders one error line from a format.
func (c *Console) Errorf(format string, args ...interface{}) {
	c.line(c.failure, "Error: "+format, args...)
}

// Prompt writes text without a trailing newline.
func (c *Console) Prompt(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, text)
}
