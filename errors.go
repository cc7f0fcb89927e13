package debugplane

import (
	"errors"
	"fmt"
)

// Sentinel errors for command validation and resource failures. Command
// handlers wrap these with fmt.Errorf("...: %w", ...) for context;
// formatError strips the wrapping back down to a single
// "error <cmd>: <reason>" ack.
var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
	ErrBadNumber       = errors.New("unparseable numeric argument")
	ErrUnknownButton   = errors.New("unknown button")

	ErrOpenFailed   = errors.New("cannot open file")
	ErrEncodeFailed = errors.New("encoding failure")

	ErrNoFramebuffer = errors.New("no framebuffer available")
)

// formatError turns a command name and an error into the wire-format ack
// message portion; the cycle=/seq= suffix is appended by the ack writer,
// not here.
func formatError(cmd string, err error) string {
	return fmt.Sprintf("error %s: %s", cmd, err.Error())
}
