package debugplane

import "fmt"

// OnFrameTick is called once per emulated frame by the host. It drives all
// four frame modes and is one of the module's two suspension points.
func (cp *ControlPlane) OnFrameTick() {
	if !cp.state.active {
		return
	}
	s := cp.state

	// 1. Increment frame_counter.
	s.frameCounter++
	cp.watchpoint.resetFrameBudget()

	// 2. Consume a pending screenshot if one is queued.
	if s.pendingScreenshotPath != "" {
		path := s.pendingScreenshotPath
		s.pendingScreenshotPath = ""
		cp.emitScreenshot(path)
	}

	// Apply pending window visibility requests.
	if s.pendingWindowShow {
		cp.hooks.ShowWindow()
		s.pendingWindowShow = false
	}
	if s.pendingWindowHide {
		cp.hooks.HideWindow()
		s.pendingWindowHide = false
	}

	// 3. RunToFrame(t): transition to Paused once frame_counter >= t.
	if s.frameMode.kind == frameRunToFrame && s.frameCounter >= s.frameMode.target {
		s.frameMode = pausedMode()
		cp.ack.write(fmt.Sprintf("done run_to_frame frame=%d", s.frameCounter))
	}

	// 4. AdvanceRemaining(n): decrement; on reaching 0, pause and ack.
	if s.frameMode.kind == frameAdvanceRemaining {
		s.frameMode.n--
		if s.frameMode.n == 0 {
			wasPCTraceDriven := cp.pcTrace.armed
			s.frameMode = pausedMode()
			if wasPCTraceDriven {
				cp.pcTrace.disarm()
				cp.recomputeHook()
				cp.ack.write(fmt.Sprintf("done pc_trace_frame frame=%d", s.frameCounter))
			} else {
				cp.ack.write(fmt.Sprintf("done frame_advance frame=%d", s.frameCounter))
			}
		}
	}

	// 5. Poll the action file.
	cp.pollAction()

	// 6. Spin-wait while Paused.
	for s.frameMode.kind == framePaused && s.active {
		cp.sleepPoll()
	}
}

func (cp *ControlPlane) emitScreenshot(path string) {
	fb, ok := cp.hooks.Framebuffer()
	if !ok {
		cp.ack.write(formatError("screenshot", ErrNoFramebuffer))
		return
	}
	if cp.encoder == nil {
		cp.ack.write(formatError("screenshot", ErrEncodeFailed))
		return
	}
	if err := cp.encoder.EncodePNG(path, fb); err != nil {
		cp.ack.write(formatError("screenshot", fmt.Errorf("%w: %s", ErrEncodeFailed, err)))
		return
	}
	cp.ack.write(fmt.Sprintf("ok screenshot %s", path))
}
