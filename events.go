package debugplane

// OnCPUWrite and OnDMAWrite are the two independent write-observation call
// sites feeding the watchpoint engine: the CPU-side store path and the
// SCU-DMA engine's write path. Both forward to the same callback.
func (cp *ControlPlane) OnCPUWrite(pc, pr, addr, old, new uint32) {
	if !cp.state.active {
		return
	}
	cp.watchpoint.onWrite(pc, pr, addr, old, new, cp.state.frameCounter)
}

func (cp *ControlPlane) OnDMAWrite(pc, pr, addr, old, new uint32) {
	if !cp.state.active {
		return
	}
	cp.watchpoint.onWrite(pc, pr, addr, old, new, cp.state.frameCounter)
}

// OnCallEvent records a subroutine-call event (JSR/BSR/BSRF or equivalent)
// on either CPU, into both the call trace and the unified trace.
func (cp *ControlPlane) OnCallEvent(side CPUSide, callerPC, target uint32) {
	if !cp.state.active {
		return
	}
	cycle := cp.hooks.MasterCycle()
	cp.callTrc.record(cycle, side, callerPC, target)
	cp.unifiedTrc.recordCall(cycle, side, callerPC, target)
}

// OnCDBlockEvent and OnSCDQEvent forward opaque CD Block payloads into
// their respective traces.
func (cp *ControlPlane) OnCDBlockEvent(kind, payload string) {
	if !cp.state.active {
		return
	}
	cycle := cp.hooks.MasterCycle()
	cp.cdbTrc.record(cycle, payload)
	cp.unifiedTrc.recordCDBlock(cycle, kind, payload)
}

func (cp *ControlPlane) OnSCDQEvent(payload string) {
	if !cp.state.active {
		return
	}
	cp.scdqTrc.record(cp.hooks.MasterCycle(), payload)
}

// PortZeroRead is called by the emulator's input pipeline when it requests
// port-0 input; the injector ORs input_mask into the existing data and
// leaves other ports untouched.
func (cp *ControlPlane) PortZeroRead(raw uint16) uint16 {
	return cp.input.apply(raw)
}
