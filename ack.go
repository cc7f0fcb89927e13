package debugplane

import (
	"fmt"
	"os"
)

// ackWriter emits exactly one response message per call, truncating and
// rewriting ackPath with " cycle=<C> seq=<S>" appended to every message.
// Safe to call from the frame tick, the dispatcher, the instruction hook,
// and the watchpoint callback — all run on the single emulator thread, so
// no locking is needed.
type ackWriter struct {
	path  string
	hooks Hooks
	seq   uint64
}

func newAckWriter(path string, hooks Hooks) *ackWriter {
	return &ackWriter{path: path, hooks: hooks}
}

// write truncates and rewrites ackPath with msg plus the cycle/seq suffix,
// returning the sequence number assigned. seq strictly increases across
// the file's lifetime.
func (a *ackWriter) write(msg string) uint64 {
	a.seq++
	line := fmt.Sprintf("%s cycle=%d seq=%d\n", msg, a.hooks.MasterCycle(), a.seq)
	// Best-effort write: no error from the ack path may ever propagate back
	// into the emulator callback boundary.
	_ = os.WriteFile(a.path, []byte(line), 0644)
	return a.seq
}
