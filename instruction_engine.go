package debugplane

import "fmt"

// OnInstruction is installed by the hook activation manager as the
// per-instruction callback, invoked for every master-CPU instruction while
// the hook is enabled. This is one of the module's two suspension points:
// it blocks the caller inside the spin-wait at the bottom until a command
// releases the pause.
func (cp *ControlPlane) OnInstruction(decodePC uint32) {
	s := cp.state
	if !s.active {
		return
	}

	// 1. Per-instruction trace recording.
	cp.pcTrace.record(decodePC)
	if cp.insnTrc.armed || cp.unifiedWin.armed {
		s.insnLineCounter++
		cycle := cp.hooks.MasterCycle()
		cp.insnTrc.record(s.insnLineCounter, cycle, MasterCPU, decodePC)
		if cp.unifiedWin.inWindow(s.insnLineCounter) {
			cp.unifiedTrc.recordInstruction(s.insnLineCounter, cycle, MasterCPU, decodePC)
		}
	}

	// 2. Breakpoint match.
	bpHit := s.breakpoints.has(decodePC)

	// 3. Step countdown.
	stepDone := false
	if s.stepState.kind == stepCountingDown {
		s.stepState.n--
		if s.stepState.n == 0 {
			stepDone = true
		}
	}

	// run_to_cycle is checked alongside the step countdown since both are
	// per-instruction pause conditions; cycles only ever advance as
	// instructions retire.
	cycleDone := false
	if s.runToCycleTarget != nil && cp.hooks.MasterCycle() >= *s.runToCycleTarget {
		cycleDone = true
		s.runToCycleTarget = nil
	}

	// 4. No pause reason: return.
	if !bpHit && !stepDone && !cycleDone {
		return
	}
	if cycleDone && !bpHit && !stepDone {
		s.stepState = pausedStep()
		cp.ack.write(fmt.Sprintf("done run_to_cycle target=%d", cp.hooks.MasterCycle()))
		cp.recomputeHook()
		for s.stepState.kind == stepPaused && s.active {
			cp.sleepPoll()
		}
		return
	}

	// 5. Enter instruction pause. Breakpoint hits report the decode PC (the
	// matched value by construction); step completion reports the fetch PC,
	// which differs from the decode PC by one instruction boundary.
	s.stepState = pausedStep()
	if bpHit {
		cp.ack.write(fmt.Sprintf("break pc=0x%08X addr=0x%08X frame=%d", decodePC, decodePC, s.frameCounter))
	} else {
		cp.ack.write(fmt.Sprintf("done step pc=0x%08X frame=%d", cp.hooks.MasterPC(), s.frameCounter))
	}
	cp.recomputeHook()

	// 6. Spin-wait at instruction granularity.
	for s.stepState.kind == stepPaused && s.active {
		cp.sleepPoll()
	}
}
