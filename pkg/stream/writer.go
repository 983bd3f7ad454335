// Package stream frames normalized events onto the wire. Each event is one
// "data:" record terminated by a blank line; a sentinel record follows the
// finish event.
package stream

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	// Packages
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Writer writes one frame per event and flushes it immediately
type Writer struct {
	sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ContentType = "text/event-stream"
	Done        = "[DONE]"
)

var (
	framePrefix = []byte("data: ")
	frameSuffix = []byte("\n\n")
)

var _ aitoolkit.Sink = (*Writer)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewWriter returns a writer for w. When w is an http.ResponseWriter the
// streaming headers are set, and each frame is flushed as it is written.
func NewWriter(w io.Writer) *Writer {
	writer := &Writer{w: w}
	if rw, ok := w.(http.ResponseWriter); ok {
		SetHeaders(rw.Header())
	}
	if flusher, ok := w.(http.Flusher); ok {
		writer.flusher = flusher
	}
	return writer
}

// SetHeaders sets the response headers of an event stream
func SetHeaders(h http.Header) {
	h.Set("Content-Type", ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Write frames one event. After a finish event the sentinel frame is
// written. Writing after a terminal event returns an error.
func (w *Writer) Write(event schema.Event) error {
	w.Lock()
	defer w.Unlock()

	if w.closed {
		return aitoolkit.ErrBadParameter.Withf("write %q after terminal event", event.Type)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := w.frame(data); err != nil {
		return err
	}
	if event.IsTerminal() {
		w.closed = true
		if event.Type == schema.EventFinish {
			return w.frame([]byte(Done))
		}
	}

	// Return success
	return nil
}

// Closed returns true once a terminal event has been written
func (w *Writer) Closed() bool {
	w.Lock()
	defer w.Unlock()
	return w.closed
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (w *Writer) frame(data []byte) error {
	buf := make([]byte, 0, len(framePrefix)+len(data)+len(frameSuffix))
	buf = append(buf, framePrefix...)
	buf = append(buf, data...)
	buf = append(buf, frameSuffix...)
	if _, err := w.w.Write(buf); err != nil {
		return err
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}
