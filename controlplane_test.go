package debugplane

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// sendCommand writes a fresh header plus cmd to the action file, the same
// write-temp-then-rename discipline the real orchestrator uses. seq must
// increase on every call or the watcher will not see a new header.
func sendCommand(t *testing.T, baseDir string, seq int, cmd string) {
	t.Helper()
	path := filepath.Join(baseDir, "mednafen_action.txt")
	tmp := path + ".tmp"
	content := fmt.Sprintf("# %d\n%s\n", seq, cmd)
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		t.Fatalf("writing action file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("renaming action file: %v", err)
	}
}

func readAck(t *testing.T, baseDir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(baseDir, "mednafen_ack.txt"))
	if err != nil {
		t.Fatalf("reading ack file: %v", err)
	}
	return strings.TrimRight(string(data), "\n")
}

func newTestControlPlane(t *testing.T) (*ControlPlane, *fakeHooks, string) {
	t.Helper()
	dir := t.TempDir()
	hooks := newFakeHooks()
	cp := New(Config{BaseDir: dir, PollInterval: time.Millisecond}, hooks)
	if err := cp.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	return cp, hooks, dir
}

// Launching and advancing three frames should pause again and report the
// resulting frame count.
func TestScenarioLaunchAndAdvance(t *testing.T) {
	cp, hooks, dir := newTestControlPlane(t)

	ready := readAck(t, dir)
	if !strings.HasPrefix(ready, "ready frame=0") {
		t.Fatalf("initial ack = %q, want prefix %q", ready, "ready frame=0")
	}

	sendCommand(t, dir, 1, "frame_advance 3")

	// The third tick's decrement-to-zero transitions frame_mode to Paused
	// and OnFrameTick then spin-waits inside that same call until another
	// command arrives — send "run" once the done ack has been observed so
	// the test doesn't block forever.
	done := make(chan struct{})
	go func() {
		cp.OnFrameTick()
		cp.OnFrameTick()
		cp.OnFrameTick()
		close(done)
	}()

	var ack string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ack = readAck(t, dir)
		if strings.Contains(ack, "done frame_advance") {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !strings.Contains(ack, "done frame_advance frame=3") {
		t.Fatalf("ack = %q, want a done frame_advance line", ack)
	}
	sendCommand(t, dir, 2, "run")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("frame_advance did not unblock after run")
	}

	if cp.state.frameCounter != 3 {
		t.Fatalf("frame_counter = %d, want 3", cp.state.frameCounter)
	}
	_ = hooks
}

// Hitting an armed breakpoint should pause at instruction granularity and
// report register state once continued.
func TestScenarioBreakpointAndContinue(t *testing.T) {
	cp, hooks, dir := newTestControlPlane(t)

	sendCommand(t, dir, 1, "breakpoint 06004000")
	time.Sleep(20 * time.Millisecond)
	cp.pollAction()

	if !cp.state.breakpoints.has(0x06004000) {
		t.Fatal("breakpoint not registered")
	}
	if !cp.hookMgr.enabled {
		t.Fatal("hook should be enabled once a breakpoint is set")
	}

	sendCommand(t, dir, 2, "continue")
	time.Sleep(20 * time.Millisecond)
	cp.pollAction()

	done := make(chan struct{})
	go func() {
		hooks.step(0x06004000) // matches the breakpoint; enters the pause spin-wait
		close(done)
	}()

	// Give the instruction hook a moment to publish the break ack, then
	// release the pause.
	time.Sleep(30 * time.Millisecond)
	ack := readAck(t, dir)
	if !strings.Contains(ack, "break pc=0x06004000 addr=0x06004000") {
		t.Fatalf("ack = %q, want a break line", ack)
	}

	sendCommand(t, dir, 3, "continue")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("instruction pause did not release")
	}

	regsPath := filepath.Join(dir, "r.bin")
	sendCommand(t, dir, 4, "dump_regs_bin "+regsPath)
	time.Sleep(20 * time.Millisecond)
	cp.pollAction()

	info, err := os.Stat(regsPath)
	if err != nil {
		t.Fatalf("stat regs file: %v", err)
	}
	if info.Size() != 22*4 {
		t.Fatalf("regs file size = %d, want %d", info.Size(), 22*4)
	}
}

// Dispatching a frame-granularity command while paused at instruction
// granularity must cancel the instruction pause, not just the frame mode,
// or the emulator stays stuck inside the instruction spin-wait forever.
func TestFrameAdvanceCancelsInstructionPause(t *testing.T) {
	cp, hooks, dir := newTestControlPlane(t)

	sendCommand(t, dir, 1, "breakpoint 06004000")
	time.Sleep(20 * time.Millisecond)
	cp.pollAction()

	done := make(chan struct{})
	go func() {
		hooks.step(0x06004000) // hits the breakpoint; blocks in OnInstruction's spin-wait
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	var ack string
	for time.Now().Before(deadline) {
		ack = readAck(t, dir)
		if strings.Contains(ack, "break pc=0x06004000") {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !strings.Contains(ack, "break pc=0x06004000") {
		t.Fatalf("ack = %q, want a break line before issuing frame_advance", ack)
	}

	sendCommand(t, dir, 2, "frame_advance 1")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("frame_advance did not release the instruction pause")
	}
	if cp.state.stepState.kind != stepDisarmed {
		t.Fatalf("stepState = %v, want disarmed after frame_advance", cp.state.stepState.kind)
	}
}

// run_to_cycle must arm the instruction hook itself; otherwise, with no
// breakpoint/step/trace already active, OnInstruction is never invoked and
// the target cycle check never runs.
func TestRunToCycleArmsHook(t *testing.T) {
	cp, hooks, dir := newTestControlPlane(t)

	sendCommand(t, dir, 1, "run_to_cycle 3")
	time.Sleep(20 * time.Millisecond)
	cp.pollAction()

	if !cp.hookMgr.enabled {
		t.Fatal("hook should be enabled once run_to_cycle is armed")
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hooks.step(uint32(0x1000 + i*2))
		}
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	var ack string
	for time.Now().Before(deadline) {
		ack = readAck(t, dir)
		if strings.Contains(ack, "done run_to_cycle") {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !strings.Contains(ack, "done run_to_cycle") {
		t.Fatalf("ack = %q, want a done run_to_cycle line", ack)
	}
	sendCommand(t, dir, 2, "continue")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run_to_cycle did not release after continue")
	}
}

// An unrecognized command name should produce a plain error ack.
func TestScenarioUnknownCommand(t *testing.T) {
	cp, _, _ := newTestControlPlane(t)
	msg, _ := cp.dispatchLine("zorkmid 42")
	if msg != "error unknown command: zorkmid" {
		t.Fatalf("msg = %q", msg)
	}
}

// The instruction hook should be installed and removed exactly when some
// armed feature needs it.
func TestHookActivationInvariant(t *testing.T) {
	cp, _, _ := newTestControlPlane(t)

	if cp.hookMgr.enabled {
		t.Fatal("hook should start disabled")
	}

	cp.dispatchLine("breakpoint 1000")
	if !cp.hookMgr.enabled {
		t.Fatal("hook should enable once a breakpoint is armed")
	}

	cp.dispatchLine("breakpoint_clear")
	if cp.hookMgr.enabled {
		t.Fatal("hook should disable once breakpoints and traces are both empty")
	}

	cp.dispatchLine("step 5")
	if !cp.hookMgr.enabled {
		t.Fatal("hook should enable while a step countdown is armed")
	}
}

// ack seq must strictly increase across consecutive commands.
func TestAckSeqMonotone(t *testing.T) {
	cp, _, _ := newTestControlPlane(t)
	var last uint64
	for i := 0; i < 5; i++ {
		_, seq := cp.dispatchLine("status")
		if seq <= last {
			t.Fatalf("seq did not increase: last=%d seq=%d", last, seq)
		}
		last = seq
	}
}

// Re-sending an identical action-file header must not re-dispatch; a
// whitespace-only change to the header must.
func TestActionHeaderDedup(t *testing.T) {
	cp, _, dir := newTestControlPlane(t)

	sendCommand(t, dir, 1, "breakpoint 2000")
	time.Sleep(10 * time.Millisecond)
	cp.pollAction()
	if cp.state.breakpoints.total() != 1 {
		t.Fatalf("total = %d, want 1", cp.state.breakpoints.total())
	}

	// Re-sending the identical header (same seq, no padding change) must
	// not re-dispatch.
	path := filepath.Join(dir, "mednafen_action.txt")
	data, _ := os.ReadFile(path)
	os.WriteFile(path, data, 0644)
	cp.pollAction()
	if cp.state.breakpoints.total() != 1 {
		t.Fatalf("total = %d after re-send of identical header, want 1", cp.state.breakpoints.total())
	}

	// Padding-only change to the header still counts as new.
	sendCommand(t, dir, 1, "breakpoint 2000 ")
	time.Sleep(10 * time.Millisecond)
	cp.pollAction()
}

// A watchpoint must fire on both the CPU-side store path and the
// SCU-DMA write path.
func TestWatchpointCompleteness(t *testing.T) {
	cp, _, dir := newTestControlPlane(t)
	cp.dispatchLine("watchpoint 06010000")

	cp.OnCPUWrite(0x1000, 0x1004, 0x06010000, 0, 1, 1)
	cp.OnDMAWrite(0x2000, 0x2004, 0x06010000, 1, 2, 1)

	data, err := os.ReadFile(filepath.Join(dir, "watchpoint_hits.txt"))
	if err != nil {
		t.Fatalf("reading watchpoint_hits.txt: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d hit lines, want 2 (one per path): %q", len(lines), string(data))
	}
}
