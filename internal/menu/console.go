package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Console is the operator's terminal: prompts on out, answers from in.
type Console struct {
	out   io.Writer
	lines <-chan string
	ok    *color.Color
	fail  *color.Color
	title *color.Color
}

// NewConsole starts reading in line by line so prompts can give up when the
// context is cancelled. A nil in gives an output-only console whose prompts
// return io.EOF.
func NewConsole(in io.Reader, out io.Writer) *Console {
	lines := make(chan string)
	if in == nil {
		close(lines)
	} else {
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(in)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
		}()
	}

	return &Console{
		out:   out,
		lines: lines,
		ok:    color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		title: color.New(color.Bold),
	}
}

// Prompt prints label and waits for one line. It returns io.EOF when input
// ends and ctx.Err() when the context is cancelled first.
func (c *Console) Prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(c.out, label)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// Println writes a plain line.
func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted text.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

// Success writes a ✓ status line.
func (c *Console) Success(format string, a ...interface{}) {
	c.ok.Fprintf(c.out, "✓ "+format+"\n", a...)
}

// Failure writes a ✗ status line.
func (c *Console) Failure(format string, a ...interface{}) {
	c.fail.Fprintf(c.out, "✗ "+format+"\n", a...)
}

// Heading writes an emphasized line.
func (c *Console) Heading(text string) {
	c.title.Fprintln(c.out, text)
}
