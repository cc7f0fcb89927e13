package debugplane

import (
	"os"
	"strings"
)

// actionWatcher detects new commands written to the action file. stat(2)
// mtime has only second-level resolution over a filesystem bridge, so
// change detection is content-based instead: the first line is a required
// header of the form "# <seq>", compared byte-for-byte against the last
// accepted header. Do not replace this with an mtime check.
type actionWatcher struct {
	path       string
	lastHeader string
}

func newActionWatcher(path string) *actionWatcher {
	return &actionWatcher{path: path}
}

// poll reads the action file in full and returns the new commands to
// dispatch, or nil if the header is unchanged since the last poll. Lines
// are \r-stripped; blank lines and lines beginning with "#" (other than the
// header itself) are skipped.
func (w *actionWatcher) poll() []string {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return nil
	}
	header := lines[0]
	if !strings.HasPrefix(header, "#") {
		return nil
	}
	if header == w.lastHeader {
		return nil
	}
	w.lastHeader = header

	var commands []string
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		commands = append(commands, trimmed)
	}
	return commands
}
