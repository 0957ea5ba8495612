package s14e

import (
	"errors"
	"fmt"
)

// ErrRange is returned when a buffer or view does not fit its bounds.
var ErrRange = errors.New("s14e: out of range")

// ArrayBuffer is a JavaScript ArrayBuffer: a fixed-length byte store,
// optionally resizable up to a maximum length.
type ArrayBuffer struct {
	data          []byte
	maxByteLength int
	resizable     bool
}

// NewArrayBuffer returns a zero-filled buffer of n bytes.
func NewArrayBuffer(n int) *ArrayBuffer {
	return &ArrayBuffer{data: make([]byte, n), maxByteLength: n}
}

// NewResizableArrayBuffer returns a zero-filled resizable buffer of n bytes
// that may grow to limit bytes.
func NewResizableArrayBuffer(n, limit int) (*ArrayBuffer, error) {
	if n < 0 || limit < n {
		return nil, fmt.Errorf("%w: byteLength %d, maxByteLength %d", ErrRange, n, limit)
	}
	return &ArrayBuffer{data: make([]byte, n), maxByteLength: limit, resizable: true}, nil
}

// ArrayBufferOf returns a buffer backed by b. b is not copied.
func ArrayBufferOf(b []byte) *ArrayBuffer {
	if b == nil {
		b = []byte{}
	}
	return &ArrayBuffer{data: b, maxByteLength: len(b)}
}

// Value returns b as a Value.
func (b *ArrayBuffer) Value() Value {
	return Value{kind: KindArrayBuffer, data: b}
}

// Bytes returns the buffer contents. Writes through the slice are visible
// to every view over the buffer.
func (b *ArrayBuffer) Bytes() []byte {
	return b.data
}

// ByteLength returns the current length in bytes.
func (b *ArrayBuffer) ByteLength() int {
	return len(b.data)
}

// MaxByteLength returns the length limit of a resizable buffer, or the
// byte length of a fixed one.
func (b *ArrayBuffer) MaxByteLength() int {
	if !b.resizable {
		return len(b.data)
	}
	return b.maxByteLength
}

// Resizable reports whether the buffer can be resized.
func (b *ArrayBuffer) Resizable() bool {
	return b.resizable
}

// Resize changes the length of a resizable buffer. New bytes are zero.
func (b *ArrayBuffer) Resize(n int) error {
	if !b.resizable {
		return fmt.Errorf("%w: buffer is not resizable", ErrRange)
	}
	if n < 0 || n > b.maxByteLength {
		return fmt.Errorf("%w: length %d, maxByteLength %d", ErrRange, n, b.maxByteLength)
	}
	if n > len(b.data) {
		if n > cap(b.data) {
			grown := make([]byte, len(b.data), b.maxByteLength)
			copy(grown, b.data)
			b.data = grown
		}
		clear(b.data[len(b.data):n])
	}
	b.data = b.data[:n]
	return nil
}

// ArrayKind identifies a typed array constructor or DataView.
type ArrayKind uint8

const (
	Int8Array ArrayKind = iota
	Uint8Array
	Uint8ClampedArray
	Int16Array
	Uint16Array
	Int32Array
	Uint32Array
	Float32Array
	Float64Array
	DataView
)

var arrayKindNames = [...]string{
	Int8Array:         "Int8Array",
	Uint8Array:        "Uint8Array",
	Uint8ClampedArray: "Uint8ClampedArray",
	Int16Array:        "Int16Array",
	Uint16Array:       "Uint16Array",
	Int32Array:        "Int32Array",
	Uint32Array:       "Uint32Array",
	Float32Array:      "Float32Array",
	Float64Array:      "Float64Array",
	DataView:          "DataView",
}

// String returns the constructor name.
func (k ArrayKind) String() string {
	if int(k) < len(arrayKindNames) {
		return arrayKindNames[k]
	}
	return fmt.Sprintf("ArrayKind(%d)", k)
}

// ElementSize returns the size in bytes of one element. A DataView counts
// in bytes.
func (k ArrayKind) ElementSize() int {
	switch k {
	case Int16Array, Uint16Array:
		return 2
	case Int32Array, Uint32Array, Float32Array:
		return 4
	case Float64Array:
		return 8
	default:
		return 1
	}
}

func (k ArrayKind) tag() int {
	return tagInt8Array + int(k)
}

// TypedArray is a view over an ArrayBuffer: one of the typed array kinds
// or a DataView.
type TypedArray struct {
	kind   ArrayKind
	buf    *ArrayBuffer
	offset int
	length int
}

// NewTypedArray returns a view of kind over buf starting at byteOffset
// and holding length elements (bytes for a DataView). The offset must be
// a multiple of the element size and the view must fit in the buffer.
func NewTypedArray(kind ArrayKind, buf *ArrayBuffer, byteOffset, length int) (*TypedArray, error) {
	if kind > DataView {
		return nil, fmt.Errorf("%w: unknown array kind %d", ErrRange, kind)
	}
	if buf == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrRange)
	}
	size := kind.ElementSize()
	if byteOffset < 0 || length < 0 || byteOffset%size != 0 {
		return nil, fmt.Errorf("%w: %s offset %d, length %d", ErrRange, kind, byteOffset, length)
	}
	if byteOffset > buf.ByteLength() || length > (buf.ByteLength()-byteOffset)/size {
		return nil, fmt.Errorf("%w: %s of %d at %d exceeds buffer of %d bytes",
			ErrRange, kind, length, byteOffset, buf.ByteLength())
	}
	return &TypedArray{kind: kind, buf: buf, offset: byteOffset, length: length}, nil
}

// NewUint8Array returns a Uint8Array over a new buffer backed by b.
func NewUint8Array(b []byte) *TypedArray {
	return &TypedArray{kind: Uint8Array, buf: ArrayBufferOf(b), length: len(b)}
}

// Value returns t as a Value.
func (t *TypedArray) Value() Value {
	return Value{kind: KindTypedArray, data: t}
}

// Kind returns the view kind.
func (t *TypedArray) Kind() ArrayKind { return t.kind }

// Buffer returns the underlying buffer.
func (t *TypedArray) Buffer() *ArrayBuffer { return t.buf }

// ByteOffset returns the offset of the view in its buffer, or 0 if the
// buffer has shrunk below the view.
func (t *TypedArray) ByteOffset() int {
	if t.outOfBounds() {
		return 0
	}
	return t.offset
}

// Len returns the element count (the byte length for a DataView), or 0 if
// the buffer has shrunk below the view.
func (t *TypedArray) Len() int {
	if t.outOfBounds() {
		return 0
	}
	return t.length
}

// ByteLength returns the size of the view in bytes.
func (t *TypedArray) ByteLength() int {
	return t.Len() * t.kind.ElementSize()
}

// Bytes returns the bytes covered by the view, or nil if the buffer has
// shrunk below it.
func (t *TypedArray) Bytes() []byte {
	if t.outOfBounds() {
		return nil
	}
	return t.buf.data[t.offset : t.offset+t.ByteLength()]
}

func (t *TypedArray) outOfBounds() bool {
	return t.offset+t.length*t.kind.ElementSize() > t.buf.ByteLength()
}
