package debugplane

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config configures a ControlPlane. There is no config file or flag parsing
// inside the library — a host binary such as cmd/sctl owns its own
// flag.FlagSet; this package only ever reads BaseDir and PollInterval.
type Config struct {
	// BaseDir is the IPC directory holding mednafen_action.txt,
	// mednafen_ack.txt, and watchpoint_hits.txt.
	BaseDir string

	// PollInterval overrides the spin-wait poll interval used while paused.
	// Zero means use defaultPollInterval.
	PollInterval time.Duration
}

const defaultPollInterval = 10 * time.Millisecond

// ControlState is the single owned record of process-wide control state,
// touched only from the emulator thread. No mutex: the caller's single-
// thread discipline is the synchronization mechanism.
type ControlState struct {
	active bool

	baseDir, actionPath, ackPath string

	frameCounter uint64
	frameMode    FrameMode
	stepState    StepState

	breakpoints *breakpointSet

	pendingScreenshotPath string
	pendingWindowShow     bool
	pendingWindowHide     bool

	insnLineCounter uint64

	// runToCycleTarget backs run_to_cycle. nil means no run_to_cycle is
	// pending; otherwise the instruction hook pauses once the master cycle
	// counter reaches this value.
	runToCycleTarget *uint64
}

// ControlPlane is the composition root wiring every component together. It
// is the type a host emulator embeds: call the On* methods from the CPU
// loop, the bus-write path, the DMA engine, and the CD Block, and call
// Activate once at startup.
type ControlPlane struct {
	cfg   Config
	hooks Hooks
	state *ControlState

	ack     *ackWriter
	watcher *actionWatcher
	hookMgr *hookActivation

	input      inputInjector
	watchpoint *watchpointEngine
	script     *scriptEngine
	encoder    ScreenshotEncoder

	pcTrace    pcFrameTrace
	callTrc    callTrace
	insnTrc    instructionTrace
	unifiedWin unifiedInsnWindow
	unifiedTrc unifiedTrace
	scdqTrc    scdqTrace
	cdbTrc     cdbTrace
	inputTrc   inputTrace
}

// New constructs a ControlPlane. It does not yet touch the filesystem or
// the emulator; call Activate to do that.
func New(cfg Config, hooks Hooks) *ControlPlane {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	actionPath := filepath.Join(cfg.BaseDir, "mednafen_action.txt")
	ackPath := filepath.Join(cfg.BaseDir, "mednafen_ack.txt")

	cp := &ControlPlane{
		cfg:   cfg,
		hooks: hooks,
		state: &ControlState{
			baseDir:     cfg.BaseDir,
			actionPath:  actionPath,
			ackPath:     ackPath,
			frameMode:   pausedMode(),
			stepState:   disarmedStep(),
			breakpoints: newBreakpointSet(),
		},
	}
	cp.ack = newAckWriter(ackPath, hooks)
	cp.watcher = newActionWatcher(actionPath)
	cp.hookMgr = &hookActivation{hooks: hooks}
	cp.watchpoint = newWatchpointEngine(cfg.BaseDir, cp.ack)
	cp.script = newScriptEngine(cp)
	return cp
}

// SetEncoder installs the PNG encoder consulted on screenshot. Optional;
// screenshot fails with ErrEncodeFailed if unset.
func (cp *ControlPlane) SetEncoder(enc ScreenshotEncoder) {
	cp.encoder = enc
}

// Activate brings the control plane up: creates the IPC directory, writes
// the initial ready ack, and begins in frame_mode = Paused so an
// orchestrator attaching at launch never races a free-running frame.
func (cp *ControlPlane) Activate() error {
	if err := os.MkdirAll(cp.state.baseDir, 0755); err != nil {
		return fmt.Errorf("creating base dir: %w", err)
	}
	cp.state.active = true
	cp.state.frameMode = pausedMode()
	cp.ack.write("ready frame=0")
	return nil
}

// Shutdown implements the quit command's effect: a shutdown ack is emitted
// exactly once and active becomes false. Every open trace file is closed.
func (cp *ControlPlane) Shutdown() {
	if !cp.state.active {
		return
	}
	cp.pcTrace.disarm()
	cp.callTrc.disarm()
	cp.insnTrc.disarm()
	cp.unifiedTrc.disarm()
	cp.scdqTrc.disarm()
	cp.cdbTrc.disarm()
	cp.inputTrc.disarm()
	cp.watchpoint.clear()
	cp.state.active = false
}

// recomputeHook reapplies the invariant that the per-instruction hook is
// installed exactly when some armed feature needs it: an instruction-level
// pause condition (step countdown or run_to_cycle), a breakpoint, or any
// per-instruction trace.
func (cp *ControlPlane) recomputeHook() {
	want := cp.state.stepState.kind != stepDisarmed ||
		cp.state.runToCycleTarget != nil ||
		cp.state.breakpoints.total() > 0 ||
		cp.pcTrace.armed || cp.insnTrc.armed || cp.unifiedWin.armed
	cp.hookMgr.recompute(want, cp.OnInstruction)
}

// cancelInstructionPause releases any instruction-granularity pause
// condition (step countdown/pause, run_to_cycle) so a frame-granularity
// command issued while paused at instruction level actually takes effect
// instead of leaving the emulator stuck in the instruction spin-wait.
func (cp *ControlPlane) cancelInstructionPause() {
	cp.state.stepState = disarmedStep()
	cp.state.runToCycleTarget = nil
	cp.recomputeHook()
}

// pollAction reads the action file and dispatches every new command,
// exactly once per poll. It is the single entry point called from every
// spin-wait loop in the module.
func (cp *ControlPlane) pollAction() {
	if !cp.state.active {
		return
	}
	for _, line := range cp.watcher.poll() {
		cp.dispatchLine(line)
	}
}

// sleepPoll sleeps the configured poll interval then polls once — the
// shared body of the module's two suspension points (the frame tick's
// paused spin-wait and the instruction hook's paused spin-wait).
func (cp *ControlPlane) sleepPoll() {
	time.Sleep(cp.cfg.PollInterval)
	cp.pollAction()
}
