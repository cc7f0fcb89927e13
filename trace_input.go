package debugplane

// inputTrace records input injector calls and system-command log events:
// one line per event with the frame number.
type inputTrace struct {
	lineTrace
}

func (t *inputTrace) recordButton(frame uint64, verb, name string) {
	t.writeLine("frame=%d %s %s", frame, verb, name)
}

func (t *inputTrace) recordClear(frame uint64) {
	t.writeLine("frame=%d input_clear", frame)
}
