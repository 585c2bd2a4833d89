package hostsys

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TerminalChooser implements Chooser over a line-based terminal. It is
// the interactive frontend for the assemble CLI.
type TerminalChooser struct {
	in  *bufio.Scanner
	out io.Writer
}

var _ Chooser = (*TerminalChooser)(nil)

// NewTerminalChooser reads selections from in and writes prompts to out.
func NewTerminalChooser(in io.Reader, out io.Writer) *TerminalChooser {
	return &TerminalChooser{in: bufio.NewScanner(in), out: out}
}

// PresentChoice prints a numbered option list and reads the selection.
// An empty line declines when allowed.
func (t *TerminalChooser) PresentChoice(ctx context.Context, req ChoiceRequest) (string, error) {
	fmt.Fprintf(t.out, "\n%s\n%s\n", req.Title, req.Prompt)
	for i, opt := range req.Options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt)
	}
	if req.AllowEmpty {
		fmt.Fprintln(t.out, "  (empty = no, thanks)")
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(t.out, "> ")
		if !t.in.Scan() {
			if err := t.in.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		line := strings.TrimSpace(t.in.Text())
		if line == "" {
			if req.AllowEmpty {
				return "", nil
			}
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(req.Options) {
			fmt.Fprintln(t.out, "invalid selection")
			continue
		}
		return req.Options[n-1], nil
	}
}

// Decide prints a yes/no question; "y" selects acceptLabel.
func (t *TerminalChooser) Decide(ctx context.Context, title, question, acceptLabel, declineLabel string) (bool, error) {
	fmt.Fprintf(t.out, "\n%s\n%s\n  y) %s\n  n) %s\n", title, question, acceptLabel, declineLabel)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprint(t.out, "> ")
		if !t.in.Scan() {
			if err := t.in.Err(); err != nil {
				return false, err
			}
			return false, io.EOF
		}
		switch strings.ToLower(strings.TrimSpace(t.in.Text())) {
		case "y", "yes", "j", "ja":
			return true, nil
		case "n", "no", "nein":
			return false, nil
		}
		fmt.Fprintln(t.out, "please answer y or n")
	}
}
