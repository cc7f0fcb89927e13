package debugplane

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// scriptEngine runs script <path> as a Lua file in a fresh *lua.LState with
// host functions that call back into the dispatcher, so an orchestrator can
// hand the emulator a whole scripted sequence in one filesystem round trip
// instead of one command per poll.
type scriptEngine struct {
	cp        *ControlPlane
	cancelled bool
}

func newScriptEngine(cp *ControlPlane) *scriptEngine {
	return &scriptEngine{cp: cp}
}

// stop cancels a running script. Every registered host function polls the
// action file and checks the cancelled flag before doing its work, so a
// script_stop command queued behind a long-running script's loop is picked
// up at the next host call and aborts the Lua state instead of waiting for
// the whole file to finish.
func (s *scriptEngine) stop() {
	s.cancelled = true
}

// checkCancelled polls for new commands (picking up a pending script_stop)
// and aborts the Lua call stack if one arrived.
func (s *scriptEngine) checkCancelled(L *lua.LState) {
	s.cp.pollAction()
	if s.cancelled {
		L.RaiseError("script stopped")
	}
}

// runFile executes path, returning an error wrapped for the
// "error script: <reason>" ack.
func (s *scriptEngine) runFile(path string) error {
	s.cancelled = false
	L := lua.NewState()
	defer L.Close()
	s.registerHostFuncs(L)

	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("%w: %s", ErrOpenFailed, err.Error())
	}
	return nil
}

// runExpr evaluates a single inline Lua expression (the lua <expr> command)
// and returns its string representation, for quick one-off automation
// without a script file.
func (s *scriptEngine) runExpr(expr string) (string, error) {
	L := lua.NewState()
	defer L.Close()
	s.registerHostFuncs(L)

	if err := L.DoString("return tostring(" + expr + ")"); err != nil {
		return "", fmt.Errorf("%w: %s", ErrOpenFailed, err.Error())
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret.String(), nil
}

func (s *scriptEngine) registerHostFuncs(L *lua.LState) {
	reg := func(name string, fn lua.LGFunction) { L.SetGlobal(name, L.NewFunction(fn)) }

	reg("breakpoint", func(L *lua.LState) int {
		s.checkCancelled(L)
		addr := uint32(L.CheckInt64(1))
		msg, _ := s.cp.dispatchLine(fmt.Sprintf("breakpoint %08X", addr))
		L.Push(lua.LString(msg))
		return 1
	})
	reg("step", func(L *lua.LState) int {
		s.checkCancelled(L)
		n := L.OptInt(1, 1)
		msg, _ := s.cp.dispatchLine(fmt.Sprintf("step %d", n))
		L.Push(lua.LString(msg))
		return 1
	})
	reg("frame_advance", func(L *lua.LState) int {
		s.checkCancelled(L)
		n := L.OptInt(1, 1)
		msg, _ := s.cp.dispatchLine(fmt.Sprintf("frame_advance %d", n))
		L.Push(lua.LString(msg))
		return 1
	})
	reg("watchpoint", func(L *lua.LState) int {
		s.checkCancelled(L)
		addr := uint32(L.CheckInt64(1))
		msg, _ := s.cp.dispatchLine(fmt.Sprintf("watchpoint %08X", addr))
		L.Push(lua.LString(msg))
		return 1
	})
	reg("dump_regs", func(L *lua.LState) int {
		s.checkCancelled(L)
		L.Push(lua.LString(formatRegs(s.cp.hooks.MasterRegisters())))
		return 1
	})
	reg("ack", func(L *lua.LState) int {
		s.checkCancelled(L)
		s.cp.ack.write(L.CheckString(1))
		return 0
	})
	reg("frame", func(L *lua.LState) int {
		s.checkCancelled(L)
		L.Push(lua.LNumber(s.cp.state.frameCounter))
		return 1
	})
	reg("paused", func(L *lua.LState) int {
		s.checkCancelled(L)
		L.Push(lua.LBool(s.cp.state.frameMode.kind == framePaused))
		return 1
	})
}
