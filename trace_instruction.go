package debugplane

// instructionTrace is the file-based instruction trace recorder: gated by
// a [start_line, stop_line] window over a unified line counter shared with
// the unified-trace variant below. Each record is one text line:
// "<cycle> <m|s> pc=0xHHHHHHHH line=<n>".
type instructionTrace struct {
	lineTrace
	startLine, stopLine uint64
}

func (t *instructionTrace) arm(path string, start, stop uint64) error {
	if err := t.lineTrace.arm(path); err != nil {
		return err
	}
	t.startLine, t.stopLine = start, stop
	return nil
}

// record writes a line if line falls within [startLine, stopLine].
func (t *instructionTrace) record(line, cycle uint64, side CPUSide, pc uint32) {
	if !t.armed || line < t.startLine || line > t.stopLine {
		return
	}
	t.writeLine("%d %s pc=0x%08X line=%d", cycle, side.lower(), pc, line)
}

// unifiedInsnWindow is the insn_trace_unified variant: same
// [start_line, stop_line] gating, but appends lowercase m|s instruction
// lines into the unified trace stream instead of its own file, so it has
// no path argument and no file of its own — it piggybacks on whichever
// unifiedTrace is currently armed.
type unifiedInsnWindow struct {
	armed               bool
	startLine, stopLine uint64
}

func (w *unifiedInsnWindow) arm(start, stop uint64) {
	w.armed = true
	w.startLine, w.stopLine = start, stop
}

func (w *unifiedInsnWindow) disarm() {
	w.armed = false
}

func (w *unifiedInsnWindow) inWindow(line uint64) bool {
	return w.armed && line >= w.startLine && line <= w.stopLine
}
