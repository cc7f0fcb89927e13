package debugplane

// callTrace is the call trace recorder: one line per subroutine-call event
// (JSR/BSR/BSRF or equivalent) on either CPU, formatted
// "<cycle> <M|S> <caller_pc_minus_4> <target>".
type callTrace struct {
	lineTrace
}

func (t *callTrace) record(cycle uint64, side CPUSide, callerPC, target uint32) {
	t.writeLine("%d %s 0x%08X 0x%08X", cycle, side.upper(), callerPC-4, target)
}
