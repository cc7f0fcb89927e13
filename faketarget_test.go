package debugplane

// fakeHooks is a minimal deterministic stand-in emulator implementing
// Hooks, used by every component test and the end-to-end scenario tests.
// It has one fake CPU, flat byte-slice memory, and no real cache —
// ReadByte/ReadBytes just index into mem.
type fakeHooks struct {
	cycle   uint64
	master  RegisterFile
	slave   RegisterFile
	mem     []byte
	vdp2    []byte
	fb      FramebufferView
	hasFB   bool
	hookFn  InstructionHookFunc
	seeded  bool
	shown   bool
	hidden  bool
}

func newFakeHooks() *fakeHooks {
	return &fakeHooks{
		mem:  make([]byte, 1<<20),
		vdp2: make([]byte, 256),
	}
}

func (f *fakeHooks) MasterCycle() uint64            { return f.cycle }
func (f *fakeHooks) MasterPC() uint32               { return f.master.PC }
func (f *fakeHooks) MasterRegisters() RegisterFile  { return f.master }
func (f *fakeHooks) SlaveRegisters() RegisterFile   { return f.slave }

func (f *fakeHooks) ReadByte(addr uint32) byte {
	if int(addr) >= len(f.mem) {
		return 0
	}
	return f.mem[addr]
}

func (f *fakeHooks) ReadBytes(addr uint32, n int) []byte {
	if n <= 0 {
		return nil
	}
	end := int(addr) + n
	if end > len(f.mem) {
		end = len(f.mem)
	}
	if int(addr) > end {
		return nil
	}
	out := make([]byte, end-int(addr))
	copy(out, f.mem[addr:end])
	return out
}

func (f *fakeHooks) Framebuffer() (FramebufferView, bool) { return f.fb, f.hasFB }
func (f *fakeHooks) VDP2Registers() []byte                { return f.vdp2 }

func (f *fakeHooks) EnableInstructionHook(fn InstructionHookFunc) { f.hookFn = fn }
func (f *fakeHooks) DisableInstructionHook()                      { f.hookFn = nil }

func (f *fakeHooks) SeedDeterministicRNG() { f.seeded = true }
func (f *fakeHooks) ShowWindow()           { f.shown = true }
func (f *fakeHooks) HideWindow()           { f.hidden = true }

// step executes one fake instruction at the given decode PC by calling the
// installed hook, if any, mimicking the emulator's CPU loop.
func (f *fakeHooks) step(decodePC uint32) {
	f.master.PC = decodePC + 2
	f.cycle++
	if f.hookFn != nil {
		f.hookFn(decodePC)
	}
}
