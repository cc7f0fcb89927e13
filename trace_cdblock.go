package debugplane

// scdqTrace and cdbTrace record CD Block event callbacks: text, opaque
// payload defined by the collaborator. The control plane does not
// interpret the payload, only timestamps and appends it.
type scdqTrace struct {
	lineTrace
}

func (t *scdqTrace) record(cycle uint64, payload string) {
	t.writeLine("%d %s", cycle, payload)
}

type cdbTrace struct {
	lineTrace
}

func (t *cdbTrace) record(cycle uint64, payload string) {
	t.writeLine("%d %s", cycle, payload)
}
