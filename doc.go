// Package debugplane implements an out-of-band debug and automation control
// plane for a cycle-accurate Saturn emulator. It is bolted onto the
// emulator's SH-2 CPU loop, frame scheduler, memory bus and input pipeline
// through the Hooks interface; the emulator itself — SH-2, VDP2, SCU-DMA,
// CD Block, framebuffer, PNG encoding, window management — is never
// implemented here.
//
// An external orchestrator process drives the emulator by writing commands
// to a request file and reading responses from an ack file across a
// filesystem bridge. See ControlPlane for the entry points the host
// emulator calls, and Hooks for what the host emulator must provide.
package debugplane
