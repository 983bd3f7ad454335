package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	// Packages
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	schema "github.com/ueberdosis/go-aitoolkit/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Reader decodes frames written by a Writer
type Reader struct {
	scanner *bufio.Scanner
	done    bool
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const maxFrameSize = 4 * 1024 * 1024

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return &Reader{scanner: scanner}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Next returns the next event. It returns io.EOF after the sentinel frame,
// or io.ErrUnexpectedEOF when the stream ends without one and the last
// event was not an error.
func (r *Reader) Next() (schema.Event, error) {
	var event schema.Event
	if r.done {
		return event, io.EOF
	}
	for r.scanner.Scan() {
		line := r.scanner.Bytes()
		data, ok := bytes.CutPrefix(line, framePrefix)
		if !ok {
			continue
		}
		if string(data) == Done {
			r.done = true
			return event, io.EOF
		}
		if err := json.Unmarshal(data, &event); err != nil {
			return event, aitoolkit.ErrBadParameter.Withf("frame: %v", err)
		}
		if event.Type == schema.EventError {
			r.done = true
		}
		return event, nil
	}
	if err := r.scanner.Err(); err != nil {
		return event, err
	}
	return event, io.ErrUnexpectedEOF
}

// ReadAll returns every event up to the end of the stream
func ReadAll(r io.Reader) ([]schema.Event, error) {
	reader := NewReader(r)
	var result []schema.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return result, nil
		} else if err != nil {
			return result, err
		}
		result = append(result, event)
	}
}
