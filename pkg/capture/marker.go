// Package capture decides what happens to buffered terminal output when a
// session lifecycle signal arrives, and watches the raw output stream for
// the in-band prompt-ready marker.
//
// Both pieces are called synchronously from the single capture loop that
// owns the terminal's I/O, so neither holds locks.
package capture

import "bytes"

// PromptReadyMarker is the control sequence (OSC 999, BEL-terminated)
// embedded at the end of the shell prompt. Seeing it in the output stream
// means the shell is ready for input injection.
var PromptReadyMarker = []byte("\x1b]999;scribe-prompt-ready\x07")

// markerWindow bounds the bytes the detector retains between chunks. It
// only needs to cover a marker split across a chunk boundary, so marker
// length plus slack is enough regardless of stream length.
const markerWindow = 256

// MarkerDetector scans a live byte stream for PromptReadyMarker. The
// marker may arrive split across any number of chunks.
type MarkerDetector struct {
	buf []byte
}

// NewMarkerDetector returns a detector with an empty window.
func NewMarkerDetector() *MarkerDetector {
	return &MarkerDetector{buf: make([]byte, 0, markerWindow)}
}

// Feed appends chunk to the retained window and reports whether the
// complete marker has just become assembled. On detection the window is
// cleared, so the same physical marker bytes are reported exactly once and
// a subsequent marker is detected from a clean slate.
func (d *MarkerDetector) Feed(chunk []byte) bool {
	d.buf = append(d.buf, chunk...)
	if len(d.buf) > markerWindow {
		d.buf = d.buf[len(d.buf)-markerWindow:]
	}
	if bytes.Contains(d.buf, PromptReadyMarker) {
		d.buf = d.buf[:0]
		return true
	}
	return false
}
