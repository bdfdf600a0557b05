// Package wire implements an append-only growable byte container used
// by the HTTP framing codec (internal/httpframe) to reassemble
// messages from bulk-transfer fragments.
package wire

import "bytes"

// Buffer is an ordered byte container supporting the small set of
// mutations the HTTP framing codec needs: append,
// erase, shrink, and substring search. It intentionally does not try
// to be a general-purpose io.Reader/Writer; callers that need one can
// wrap Bytes() themselves.
type Buffer struct {
	b []byte
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewFromBytes returns a Buffer whose contents are a copy of b.
func NewFromBytes(b []byte) *Buffer {
	buf := &Buffer{b: make([]byte, len(b))}
	copy(buf.b, b)
	return buf
}

// Append appends p to the buffer.
func (buf *Buffer) Append(p []byte) {
	buf.b = append(buf.b, p...)
}

// AppendByte appends a single byte.
func (buf *Buffer) AppendByte(c byte) {
	buf.b = append(buf.b, c)
}

// AppendString appends the bytes of s.
func (buf *Buffer) AppendString(s string) {
	buf.b = append(buf.b, s...)
}

// AppendBuffer appends the entire contents of other.
func (buf *Buffer) AppendBuffer(other *Buffer) {
	buf.b = append(buf.b, other.b...)
}

// AppendBufferRange appends length bytes from other starting at start.
// It is a no-op if the requested range falls outside other's bounds.
func (buf *Buffer) AppendBufferRange(other *Buffer, start, length int) {
	if start < 0 || length < 0 || start+length > len(other.b) {
		return
	}
	buf.b = append(buf.b, other.b[start:start+length]...)
}

// Erase removes the byte at index. It is a no-op if index is out of
// range.
func (buf *Buffer) Erase(index int) {
	buf.EraseRange(index, 1)
}

// EraseRange removes length bytes starting at start, stopping at the
// end of the buffer if the range runs past it. It is a no-op if start
// is out of range or length is not positive.
func (buf *Buffer) EraseRange(start, length int) {
	if start < 0 || length <= 0 || start >= len(buf.b) {
		return
	}
	end := start + length
	if end > len(buf.b) {
		end = len(buf.b)
	}
	buf.b = append(buf.b[:start], buf.b[end:]...)
}

// Shrink truncates the buffer to size bytes. It is a no-op if size is
// greater than or equal to the current length.
func (buf *Buffer) Shrink(size int) {
	if size < 0 {
		size = 0
	}
	if size >= len(buf.b) {
		return
	}
	buf.b = buf.b[:size]
}

// Index returns the offset of the first occurrence of target at or
// after start, or -1 if target does not occur.
func (buf *Buffer) Index(target []byte, start int) int {
	if start < 0 || start > len(buf.b) {
		return -1
	}
	i := bytes.Index(buf.b[start:], target)
	if i < 0 {
		return -1
	}
	return i + start
}

// Len returns the number of bytes currently held.
func (buf *Buffer) Len() int {
	return len(buf.b)
}

// Bytes returns the buffer's contents. The returned slice aliases the
// buffer's internal storage and must not be retained across further
// mutating calls.
func (buf *Buffer) Bytes() []byte {
	return buf.b
}

// Clone returns a Buffer holding an independent copy of buf's bytes.
func (buf *Buffer) Clone() *Buffer {
	return NewFromBytes(buf.b)
}
