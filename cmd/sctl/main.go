// Command sctl is a reference orchestrator for a debugplane.ControlPlane
// host: it writes commands to the action file, tails the ack file, and
// renders responses. It runs as a separate process, typically on a
// different host than the emulator — not an in-process debugger UI.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	baseDir := flag.String("dir", ".", "IPC directory shared with the emulator")
	interactive := flag.Bool("i", false, "interactive raw-mode keystroke UI")
	flag.Parse()

	c := newClient(*baseDir)

	if *interactive {
		runInteractive(c)
		return
	}

	cmds := flag.Args()
	if len(cmds) == 0 {
		runREPL(c)
		return
	}
	if err := c.send(strings.Join(cmds, " ")); err != nil {
		fmt.Fprintln(os.Stderr, "sctl:", err)
		os.Exit(1)
	}
	waitAndPrint(c)
}

// runREPL reads commands from stdin one line at a time, line-buffered —
// the non-raw-mode counterpart to runInteractive.
func runREPL(c *client) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := c.send(line); err != nil {
			fmt.Fprintln(os.Stderr, "sctl:", err)
			continue
		}
		waitAndPrint(c)
	}
}

// waitAndPrint polls the ack file until it changes or times out.
func waitAndPrint(c *client) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ack, ok := c.pollNewAck(); ok {
			fmt.Println(ack)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// runInteractive binds single keystrokes to the most common commands:
// s=step, c=continue, p=pause, r=run, y=yank last ack to the clipboard,
// q=quit.
func runInteractive(c *client) {
	ui, err := newTermUI()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sctl:", err)
		os.Exit(1)
	}
	defer ui.Close()

	lastAck := ""
	for {
		key, err := ui.readKey()
		if err != nil {
			return
		}
		var cmd string
		switch key {
		case 's':
			cmd = "step"
		case 'c':
			cmd = "continue"
		case 'p':
			cmd = "pause"
		case 'r':
			cmd = "run"
		case 'y':
			_ = yank(lastAck)
			continue
		case 'q':
			_ = c.send("quit")
			return
		default:
			continue
		}
		if err := c.send(cmd); err != nil {
			continue
		}
		if ack, ok := waitAck(c); ok {
			lastAck = ack
			fmt.Print("\r\n", ui.statusLine(ack), "\r\n")
		}
	}
}

func waitAck(c *client) (string, bool) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ack, ok := c.pollNewAck(); ok {
			return ack, true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return "", false
}
