package wire

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Document pairs an owning byte buffer with the view value parsed from it.
// The pair is relocatable as a single unit: assigning or passing a
// Document moves the slice header and the view together, never the backing
// array, so contained views stay valid. The view is not separable from its
// buffer - callers only ever see it through the Document.
//
// A published Document is immutable. Producing a modified message means
// building a new value; this is what makes the zero-copy representation
// safe to hand across goroutine boundaries without synchronization.
type Document[T any] struct {
	buf  []byte
	view T
}

// Bind parses one freshly allocated message buffer into a view value and
// returns the bound pair. The buffer must not be mutated or reused by the
// caller afterwards; the Document owns it from here on.
func Bind[T any](buf []byte) (*Document[T], error) {
	d := &Document[T]{buf: buf}

	if err := json.Unmarshal(buf, &d.view); err != nil {
		return nil, fmt.Errorf("wire: binding buffer: %w", err)
	}

	return d, nil
}

// View returns the parsed view value. The pointer is valid for the
// lifetime of the Document.
func (d *Document[T]) View() *T {
	return &d.view
}

// Buffer returns the backing buffer. Callers must treat it as read-only.
func (d *Document[T]) Buffer() []byte {
	return d.buf
}

// Len returns the length of the backing buffer in bytes.
func (d *Document[T]) Len() int {
	return len(d.buf)
}
