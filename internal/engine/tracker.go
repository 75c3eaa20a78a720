package engine

import "io"

// Tracker tells object keys apart from string values for decoders whose
// token stream reports both as plain strings.
type Tracker struct {
	stack []trackFrame
}

type trackFrame struct {
	object       bool
	expectingKey bool
}

// Open records the start of an object or array.
func (t *Tracker) Open(object bool) {
	t.stack = append(t.stack, trackFrame{object: object, expectingKey: object})
}

// Close records the end of the innermost container, which completes a value
// in its parent.
func (t *Tracker) Close() {
	if n := len(t.stack); n > 0 {
		t.stack = t.stack[:n-1]
	}
	t.Value()
}

// Value records a completed scalar value.
func (t *Tracker) Value() {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.object && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

// String classifies a string token as a key or a value.
func (t *Tracker) String() Kind {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return KindKey
		}
	}
	t.Value()
	return KindString
}

// CountingReader counts the bytes handed to a decoder. Decoders buffer ahead,
// so the count is an upper bound on the bytes actually tokenized.
type CountingReader struct {
	R io.Reader
	N int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}
