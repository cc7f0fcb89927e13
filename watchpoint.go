package debugplane

import (
	"fmt"
	"os"

	"golang.org/x/sync/semaphore"
)

// watchHitBudget bounds how many watchpoint_hits.txt lines (and hit acks)
// are emitted per frame. A DMA storm can produce millions of writes to a
// watched address in one frame, and the formatting path must tolerate that
// without blocking or unbounded allocation. x/sync/semaphore gives a
// non-blocking TryAcquire gate without spawning a goroutine, so the
// single-thread discipline is preserved.
const watchHitBudget = 4096

// watchpointEngine holds Single and Range arming modes, fed by both the
// CPU store path and the SCU-DMA write path through the same onWrite
// entry point.
type watchpointEngine struct {
	mode WatchpointMode

	hitFile *os.File // watchpoint_hits.txt, opened lazily on first hit

	rangeFile lineTrace

	budget     *semaphore.Weighted
	suppressed uint64

	ack  *ackWriter
	base string
}

func newWatchpointEngine(base string, ack *ackWriter) *watchpointEngine {
	return &watchpointEngine{
		mode:   watchOffMode(),
		budget: semaphore.NewWeighted(watchHitBudget),
		ack:    ack,
		base:   base,
	}
}

func (w *watchpointEngine) armSingle(addr uint32) {
	w.clear()
	w.mode = watchSingleMode(addr)
}

func (w *watchpointEngine) armRange(lo, hi uint32, logPath string) error {
	w.clear()
	if err := w.rangeFile.arm(logPath); err != nil {
		return err
	}
	w.mode = watchRangeMode(lo, hi, logPath)
	return nil
}

func (w *watchpointEngine) clear() {
	if w.rangeFile.armed {
		w.rangeFile.disarm()
	}
	if w.hitFile != nil {
		w.hitFile.Close()
		w.hitFile = nil
	}
	w.mode = watchOffMode()
}

// resetFrameBudget is called once per frame tick so a quiet frame after a
// storm recovers full throughput immediately.
func (w *watchpointEngine) resetFrameBudget() {
	if w.suppressed > 0 {
		w.writeHitLine(fmt.Sprintf("suppressed=%d (storm budget exhausted)", w.suppressed))
		w.suppressed = 0
	}
	w.budget = semaphore.NewWeighted(watchHitBudget)
}

func (w *watchpointEngine) writeHitLine(line string) {
	if w.hitFile == nil {
		f, err := os.OpenFile(w.base+"/watchpoint_hits.txt", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		w.hitFile = f
	}
	fmt.Fprintln(w.hitFile, line)
}

// onWrite is invoked from both the CPU-side store path and the DMA
// engine's write path — different call sites that both forward to this
// same callback. Detection is non-blocking; the emulator never waits on it.
func (w *watchpointEngine) onWrite(pc, pr, addr, old, new uint32, frame uint64) {
	switch w.mode.kind {
	case watchSingle:
		if addr != w.mode.addr {
			return
		}
		if !w.budget.TryAcquire(1) {
			w.suppressed++
			return
		}
		w.writeHitLine(fmt.Sprintf("pc=0x%08X pr=0x%08X addr=0x%08X old=0x%08X new=0x%08X frame=%d",
			pc, pr, addr, old, new, frame))
		w.ack.write(fmt.Sprintf("hit watchpoint pc=0x%08X pr=0x%08X old=0x%08X new=0x%08X frame=%d",
			pc, pr, old, new, frame))

	case watchRange:
		if addr < w.mode.lo || addr > w.mode.hi {
			return
		}
		if !w.budget.TryAcquire(1) {
			w.suppressed++
			return
		}
		w.rangeFile.writeLine("pc=0x%08X pr=0x%08X addr=0x%08X old=0x%08X new=0x%08X frame=%d",
			pc, pr, addr, old, new, frame)
	}
}
