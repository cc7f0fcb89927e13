package debugplane

import (
	"fmt"
	"os"
)

// lineTrace is the shared shape for the low-rate, text, flush-on-write
// recorders (call trace, CD-block traces, input trace, and the unified
// merge): arm opens (creating/truncating) the file, writeLine appends and
// flushes immediately so a crashing emulator still yields a diagnosable
// file, disarm closes it.
type lineTrace struct {
	file  *os.File
	armed bool
}

func (t *lineTrace) arm(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	t.file = f
	t.armed = true
	return nil
}

func (t *lineTrace) writeLine(format string, args ...any) {
	if !t.armed {
		return
	}
	fmt.Fprintf(t.file, format+"\n", args...)
	t.file.Sync()
}

func (t *lineTrace) disarm() {
	if !t.armed {
		return
	}
	t.file.Close()
	t.file = nil
	t.armed = false
}
