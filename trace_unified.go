package debugplane

// unifiedTrace is the unified trace recorder: call events (M/S), CD-block
// events (CMD/DRV/IRQ/BUF), and instruction events (m/s, gated by
// unifiedInsnWindow) interleaved in emission order into one text file.
type unifiedTrace struct {
	lineTrace
}

func (t *unifiedTrace) recordCall(cycle uint64, side CPUSide, callerPC, target uint32) {
	t.writeLine("%d %s 0x%08X 0x%08X", cycle, side.upper(), callerPC-4, target)
}

func (t *unifiedTrace) recordCDBlock(cycle uint64, kind, payload string) {
	t.writeLine("%d %s %s", cycle, kind, payload)
}

func (t *unifiedTrace) recordInstruction(line, cycle uint64, side CPUSide, pc uint32) {
	t.writeLine("%d %s pc=0x%08X line=%d", cycle, side.lower(), pc, line)
}
