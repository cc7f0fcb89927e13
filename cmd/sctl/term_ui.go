package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// termUI is the raw-mode single-keystroke orchestrator UI: step/continue/
// pause bound to keys, and a terminal-width-aware status line.
type termUI struct {
	fd       int
	oldState *term.State
}

func newTermUI() (*termUI, error) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return &termUI{fd: fd, oldState: old}, nil
}

func (t *termUI) Close() {
	term.Restore(t.fd, t.oldState)
}

// readKey blocks for a single keystroke.
func (t *termUI) readKey() (byte, error) {
	var buf [1]byte
	if _, err := os.Stdin.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// statusLine truncates msg to the terminal width so a long ack line never
// wraps the raw-mode display.
func (t *termUI) statusLine(msg string) string {
	w, _, err := term.GetSize(t.fd)
	if err != nil || w <= 0 || len(msg) <= w {
		return msg
	}
	return msg[:w-1]
}
