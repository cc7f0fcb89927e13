package debugplane

// Hooks is the set of accessors and control points the host emulator must
// provide. The control plane never touches SH-2, VDP2, SCU-DMA or CD Block
// state directly; every read goes through here.
type Hooks interface {
	// MasterCycle returns the master CPU's monotonic cycle counter, reported
	// in every ack.
	MasterCycle() uint64

	// MasterPC returns the fetch PC — the address the fetch unit is reading,
	// as distinct from the decode PC passed into the instruction hook.
	MasterPC() uint32

	// MasterRegisters and SlaveRegisters return a snapshot of the 23 named
	// values backing dump_regs/dump_regs_bin.
	MasterRegisters() RegisterFile
	SlaveRegisters() RegisterFile

	// ReadByte is a cache-aware single-byte read: it must probe the SH-2
	// instruction cache before falling back to RAM, since code loaded from
	// optical media may exist only in cache. ReadBytes is the same, for a
	// run of addr..addr+n.
	ReadByte(addr uint32) byte
	ReadBytes(addr uint32, n int) []byte

	// Framebuffer returns the current frame's pixel view and whether one is
	// available yet.
	Framebuffer() (FramebufferView, bool)

	// VDP2Registers returns the raw register bytes backing dump_vdp2_regs;
	// layout is collaborator-defined.
	VDP2Registers() []byte

	// EnableInstructionHook installs fn as the per-instruction callback;
	// DisableInstructionHook removes it. The hook activation manager is the
	// sole caller of either. When disabled, the emulator must not indirect
	// into the control plane at all — a single flag check per instruction,
	// nothing more.
	EnableInstructionHook(fn InstructionHookFunc)
	DisableInstructionHook()

	// SeedDeterministicRNG installs a fixed PRNG seed; the control plane
	// only forwards the deterministic command.
	SeedDeterministicRNG()

	// ShowWindow/HideWindow toggle native window visibility and focus-raise
	// suppression. The control plane only requests these; it never touches
	// a window itself.
	ShowWindow()
	HideWindow()
}

// InstructionHookFunc is invoked by the emulator's CPU loop for every
// master-CPU instruction, with the decode PC, once EnableInstructionHook
// has been called.
type InstructionHookFunc func(decodePC uint32)

// ScreenshotEncoder is the PNG encoding boundary: the control plane only
// hands a framebuffer view to the encoder. Never implemented here.
type ScreenshotEncoder interface {
	EncodePNG(path string, fb FramebufferView) error
}

// hookActivation recomputes hook_enabled per the invariant: the
// per-instruction hook is installed exactly when some instruction-level
// pause condition, a breakpoint, or a per-instruction trace is armed.
// Watchpoints alone never arm the instruction hook.
type hookActivation struct {
	hooks   Hooks
	enabled bool
}

// recompute is the hook activation manager's one idempotent operation.
// Call it after any state change that could alter the invariant; it
// installs or removes the instruction hook via Hooks exactly when the
// desired state differs from the current one, so repeated calls with no
// change are free.
func (h *hookActivation) recompute(want bool, onInstruction InstructionHookFunc) {
	if want == h.enabled {
		return
	}
	if want {
		h.hooks.EnableInstructionHook(onInstruction)
	} else {
		h.hooks.DisableInstructionHook()
	}
	h.enabled = want
}
