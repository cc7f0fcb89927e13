package debugplane

import (
	"fmt"
	"strings"
)

// dispatchLine parses one whitespace-separated command line, validates it,
// mutates state, and writes exactly one ack (two, for the handful of
// commands that emit an immediate ok followed by a later done). Unknown
// commands and validation failures are formatted as an error ack and never
// propagate an error back to the caller — the callback boundary never
// throws.
func (cp *ControlPlane) dispatchLine(line string) (string, uint64) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", 0
	}
	cmd, args := fields[0], fields[1:]
	s := cp.state

	switch cmd {
	case "frame_advance":
		n := coerceFloor1(parseDecimalU64(arg(args, 0)))
		cp.cancelInstructionPause()
		s.frameMode = advanceMode(n)
		return cp.ackf("ok frame_advance %d", n)

	case "run_to_frame":
		n, ok := parseDecimalU64(arg(args, 0))
		if !ok {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		cp.cancelInstructionPause()
		s.frameMode = runToFrameMode(n)
		return cp.ackf("ok run_to_frame %d", n)

	case "run":
		cp.cancelInstructionPause()
		s.frameMode = freeMode()
		return cp.ackf("ok run")

	case "pause":
		cp.cancelInstructionPause()
		s.frameMode = pausedMode()
		return cp.ackf("ok pause frame=%d", s.frameCounter)

	case "quit":
		msg, seq := cp.ackf("ok quit")
		cp.Shutdown()
		return msg, seq

	case "status":
		return cp.ackf("status frame=%d paused=%t inst_paused=%t breakpoints=%d input=0x%04X",
			s.frameCounter, s.frameMode.kind == framePaused, s.stepState.kind == stepPaused,
			s.breakpoints.total(), cp.input.mask)

	case "input":
		name := arg(args, 0)
		if err := cp.input.press(name); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w %s", err, name))
		}
		cp.inputTrc.recordButton(s.frameCounter, "press", name)
		return cp.ackf("ok input %s", name)

	case "input_release":
		name := arg(args, 0)
		if err := cp.input.release(name); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w %s", err, name))
		}
		cp.inputTrc.recordButton(s.frameCounter, "release", name)
		return cp.ackf("ok input_release %s", name)

	case "input_clear":
		cp.input.clear()
		cp.inputTrc.recordClear(s.frameCounter)
		return cp.ackf("ok input_clear")

	case "dump_regs":
		return cp.ackf("%s", formatRegs(cp.hooks.MasterRegisters()))

	case "dump_slave_regs":
		return cp.ackf("%s", formatRegs(cp.hooks.SlaveRegisters()))

	case "dump_regs_bin":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := writeRegsBin(path, cp.hooks.MasterRegisters()); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok dump_regs_bin %s", path)

	case "dump_slave_regs_bin":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := writeRegsBin(path, cp.hooks.SlaveRegisters()); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok dump_slave_regs_bin %s", path)

	case "dump_mem":
		addr, ok1 := parseHex32(arg(args, 0))
		size, ok2 := parseHex32(arg(args, 1))
		if !ok1 || !ok2 {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		return cp.ackf("%s", formatMemDump(cp.hooks, addr, int(size)))

	case "dump_mem_bin":
		addr, ok1 := parseHex32(arg(args, 0))
		size, ok2 := parseHex32(arg(args, 1))
		path := arg(args, 2)
		if !ok1 || !ok2 || path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		written, err := dumpMemBin(cp.hooks, addr, int(size), path)
		if err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok dump_mem_bin 0x%08X 0x%X", addr, written)

	case "dump_vdp2_regs":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := dumpVDP2Regs(cp.hooks, path); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok dump_vdp2_regs %s", path)

	case "screenshot":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		s.pendingScreenshotPath = path
		return cp.ackf("ok screenshot_queued %s", path)

	case "step":
		n := coerceFloor1(parseDecimalU64(arg(args, 0)))
		s.stepState = countingDownStep(n)
		cp.recomputeHook()
		return cp.ackf("ok step %d", n)

	case "breakpoint":
		addr, ok := parseHex32(arg(args, 0))
		if !ok {
			return cp.ackErr(cmd, ErrBadNumber)
		}
		s.breakpoints.add(addr)
		cp.recomputeHook()
		return cp.ackf("ok breakpoint 0x%08X total=%d", addr, s.breakpoints.total())

	case "breakpoint_clear":
		removed := s.breakpoints.clear()
		cp.recomputeHook()
		return cp.ackf("ok breakpoint_clear removed=%d", removed)

	case "breakpoint_list":
		var b strings.Builder
		fmt.Fprintf(&b, "breakpoints count=%d", s.breakpoints.total())
		for _, addr := range s.breakpoints.addresses() {
			fmt.Fprintf(&b, " 0x%08X", addr)
		}
		return cp.ackf("%s", b.String())

	case "continue":
		s.stepState = disarmedStep()
		cp.recomputeHook()
		return cp.ackf("ok continue")

	case "dump_cycle":
		return cp.ackf("ok dump_cycle value=%d", cp.hooks.MasterCycle())

	case "run_to_cycle":
		target, ok := parseDecimalU64(arg(args, 0))
		if !ok {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		v := target
		s.runToCycleTarget = &v
		cp.recomputeHook()
		return cp.ackf("ok run_to_cycle target=%d", target)

	case "deterministic":
		cp.hooks.SeedDeterministicRNG()
		return cp.ackf("ok deterministic")

	case "pc_trace_frame":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.pcTrace.arm(path); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		s.frameMode = advanceMode(1)
		cp.recomputeHook()
		return cp.ackf("ok pc_trace_frame_started")

	case "call_trace":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.callTrc.arm(path); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok call_trace %s", path)

	case "call_trace_stop":
		cp.callTrc.disarm()
		return cp.ackf("ok call_trace_stop")

	case "insn_trace":
		path := arg(args, 0)
		start, ok1 := parseDecimalU64(arg(args, 1))
		stop, ok2 := parseDecimalU64(arg(args, 2))
		if path == "" || !ok1 || !ok2 {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.insnTrc.arm(path, start, stop); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		cp.recomputeHook()
		return cp.ackf("ok insn_trace %s", path)

	case "insn_trace_stop":
		cp.insnTrc.disarm()
		cp.recomputeHook()
		return cp.ackf("ok insn_trace_stop")

	case "insn_trace_unified":
		start, ok1 := parseDecimalU64(arg(args, 0))
		stop, ok2 := parseDecimalU64(arg(args, 1))
		if !ok1 || !ok2 {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		cp.unifiedWin.arm(start, stop)
		cp.recomputeHook()
		return cp.ackf("ok insn_trace_unified")

	case "unified_trace":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.unifiedTrc.arm(path); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok unified_trace %s", path)

	case "unified_trace_stop":
		cp.unifiedTrc.disarm()
		cp.unifiedWin.disarm()
		cp.recomputeHook()
		return cp.ackf("ok unified_trace_stop")

	case "scdq_trace":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.scdqTrc.arm(path); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok scdq_trace %s", path)

	case "scdq_trace_stop":
		cp.scdqTrc.disarm()
		return cp.ackf("ok scdq_trace_stop")

	case "cdb_trace":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.cdbTrc.arm(path); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok cdb_trace %s", path)

	case "cdb_trace_stop":
		cp.cdbTrc.disarm()
		return cp.ackf("ok cdb_trace_stop")

	case "input_trace":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.inputTrc.arm(path); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok input_trace %s", path)

	case "input_trace_stop":
		cp.inputTrc.disarm()
		return cp.ackf("ok input_trace_stop")

	case "watchpoint":
		addr, ok := parseHex32(arg(args, 0))
		if !ok {
			return cp.ackErr(cmd, ErrBadNumber)
		}
		cp.watchpoint.armSingle(addr)
		return cp.ackf("ok watchpoint 0x%08X", addr)

	case "watchpoint_clear":
		cp.watchpoint.clear()
		return cp.ackf("ok watchpoint_clear")

	case "vdp2_watchpoint":
		lo, ok1 := parseHex32(arg(args, 0))
		hi, ok2 := parseHex32(arg(args, 1))
		path := arg(args, 2)
		if !ok1 || !ok2 || path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.watchpoint.armRange(lo, hi, path); err != nil {
			return cp.ackErr(cmd, fmt.Errorf("%w: %s", ErrOpenFailed, err))
		}
		return cp.ackf("ok vdp2_watchpoint 0x%08X 0x%08X %s", lo, hi, path)

	case "vdp2_watchpoint_clear":
		cp.watchpoint.clear()
		return cp.ackf("ok vdp2_watchpoint_clear")

	case "show_window":
		s.pendingWindowShow, s.pendingWindowHide = true, false
		return cp.ackf("ok show_window")

	case "hide_window":
		s.pendingWindowHide, s.pendingWindowShow = true, false
		return cp.ackf("ok hide_window")

	case "script":
		path := arg(args, 0)
		if path == "" {
			return cp.ackErr(cmd, ErrMissingArgument)
		}
		if err := cp.script.runFile(path); err != nil {
			return cp.ackErr(cmd, err)
		}
		return cp.ackf("ok script %s", path)

	case "script_stop":
		cp.script.stop()
		return cp.ackf("ok script_stop")

	case "lua":
		expr := strings.Join(args, " ")
		result, err := cp.script.runExpr(expr)
		if err != nil {
			return cp.ackErr(cmd, err)
		}
		return cp.ackf("ok lua %s", result)

	default:
		return cp.ackf("error unknown command: %s", cmd)
	}
}

// arg returns fields[i] or "" if out of range.
func arg(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func (cp *ControlPlane) ackf(format string, a ...any) (string, uint64) {
	msg := fmt.Sprintf(format, a...)
	return msg, cp.ack.write(msg)
}

func (cp *ControlPlane) ackErr(cmd string, err error) (string, uint64) {
	msg := formatError(cmd, err)
	return msg, cp.ack.write(msg)
}
