package debugplane

import (
	"bufio"
	"encoding/binary"
	"os"
)

// pcFrameTrace is the PC trace recorder: a raw little-endian u32 sequence
// of decode PCs for exactly one frame, armed by pc_trace_frame and
// auto-disarmed at frame end. Buffered, since this is the one high-rate
// recorder in the module.
type pcFrameTrace struct {
	file  *os.File
	w     *bufio.Writer
	armed bool
}

func (t *pcFrameTrace) arm(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	t.file = f
	t.w = bufio.NewWriter(f)
	t.armed = true
	return nil
}

func (t *pcFrameTrace) record(decodePC uint32) {
	if !t.armed {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], decodePC)
	t.w.Write(buf[:])
}

// disarm flushes and closes the file, clearing arming.
func (t *pcFrameTrace) disarm() {
	if !t.armed {
		return
	}
	t.w.Flush()
	t.file.Close()
	t.file = nil
	t.w = nil
	t.armed = false
}
