package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// client writes commands to the action file and reads the ack file across
// the filesystem bridge: writes go to a sibling temp path and are renamed
// into place, matching the orchestrator discipline the control plane
// expects on the other end.
type client struct {
	baseDir string
	seq     atomic.Uint64
	lastAck string
}

func newClient(baseDir string) *client {
	c := &client{baseDir: baseDir}
	c.seq.Store(1)
	return c
}

func (c *client) actionPath() string { return filepath.Join(c.baseDir, "mednafen_action.txt") }
func (c *client) ackPath() string    { return filepath.Join(c.baseDir, "mednafen_ack.txt") }

// send writes one or more commands under a fresh header. A bumped sequence
// number is required on every write — an unchanged header is, by design,
// never dispatched.
func (c *client) send(commands ...string) error {
	seq := c.seq.Add(1)
	var b strings.Builder
	fmt.Fprintf(&b, "# %d\n", seq)
	for _, cmd := range commands {
		b.WriteString(cmd)
		b.WriteByte('\n')
	}

	tmp := c.actionPath() + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing temp action file: %w", err)
	}
	return os.Rename(tmp, c.actionPath())
}

// readAck returns the current contents of the ack file, or "" if it
// hasn't been written yet.
func (c *client) readAck() string {
	data, err := os.ReadFile(c.ackPath())
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\n")
}

// pollNewAck returns the ack text only if it differs from the last one
// observed (dedup by content, same discipline as the action file watcher).
func (c *client) pollNewAck() (string, bool) {
	cur := c.readAck()
	if cur == "" || cur == c.lastAck {
		return "", false
	}
	c.lastAck = cur
	return cur, true
}
