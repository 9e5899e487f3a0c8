// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// DefaultTerminalWidth is the fallback width when detection fails.
const DefaultTerminalWidth = 80

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or DefaultTerminalWidth.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return width
}

// =============================================================================
// PROMPTS
// =============================================================================

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("aborted")

// Prompter asks the user for input.
type Prompter interface {
	Prompt(label string) (string, error)
	Password(label string) (string, error)
	Close() error
}

func (s IO) prompter() Prompter {
	if s.Prompter != nil {
		return s.Prompter
	}
	if isTerminal(s.In) && isTerminal(s.Out) {
		return newTermPrompter()
	}
	return newLinePrompter(s.In, s.Out)
}

// termPrompter edits lines with liner. Ctrl+C aborts.
type termPrompter struct {
	line *liner.State
}

func newTermPrompter() *termPrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &termPrompter{line: line}
}

func (p *termPrompter) Prompt(label string) (string, error) {
	s, err := p.line.Prompt(label)
	return strings.TrimSpace(s), promptErr(err)
}

func (p *termPrompter) Password(label string) (string, error) {
	s, err := p.line.PasswordPrompt(label)
	return s, promptErr(err)
}

func (p *termPrompter) Close() error {
	return p.line.Close()
}

func promptErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return ErrAborted
	}
	return err
}

// linePrompter reads answers one line at a time, for pipes and tests.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if s == "" {
			return "", ErrAborted
		}
	}
	return strings.TrimSpace(s), nil
}

func (p *linePrompter) Password(label string) (string, error) {
	s, err := p.Prompt(label)
	fmt.Fprintln(p.out)
	return s, err
}

func (p *linePrompter) Close() error { return nil }

// ask prompts for label until a non-empty answer arrives, unless value
// already holds one.
func ask(p Prompter, label, value string, secret bool) (string, error) {
	for strings.TrimSpace(value) == "" {
		var err error
		if secret {
			value, err = p.Password(label)
		} else {
			value, err = p.Prompt(label)
		}
		if err != nil {
			return "", err
		}
	}
	return value, nil
}

// =============================================================================
// MARKDOWN
// =============================================================================

// renderMarkdown renders md for a terminal. Piped output gets the raw text.
func renderMarkdown(w io.Writer, md string) string {
	if !isTerminal(w) {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth(w)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
