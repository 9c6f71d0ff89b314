package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when a confirmation is needed but stdin cannot answer it
var ErrNotTerminal = errors.New("standard input is not a terminal: use --yes or --silent to run unattended")

// TerminalConfirmer prompts on out and reads a y/N answer from in
type TerminalConfirmer struct {
	in  *os.File
	out io.Writer
}

// NewTerminalConfirmer creates a confirmer bound to the given terminal
func NewTerminalConfirmer(in *os.File, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: in, out: out}
}

// Confirm asks the question and waits for an answer or ctx cancellation
func (c *TerminalConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if !term.IsTerminal(int(c.in.Fd())) {
		return false, ErrNotTerminal
	}
	return ask(ctx, c.in, c.out, prompt)
}

// ask writes prompt and parses one line from r. Anything but y or yes declines.
func ask(ctx context.Context, r io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N] ", prompt)

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-answers:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
