package wire

import (
	"math/big"
	"unicode/utf16"
)

var bigBase = big.NewInt(int64(Base))

// Writer accumulates serialized text.
type Writer struct {
	buf []byte
}

// NewWriter creates a new Writer with an initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// String returns the written text.
func (w *Writer) String() string {
	return string(w.buf)
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// WriteByte writes a single byte. Implements io.ByteWriter.
// Always returns nil error for in-memory buffer.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteString writes s verbatim.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

// WriteDigit writes the single alphabet character for n (0 <= n < Base).
func (w *Writer) WriteDigit(n int) {
	w.buf = append(w.buf, Alphabet[n])
}

// WriteUint writes n as a little-endian base-88 numeral followed by the
// separator. Zero is written as a single zero digit.
func (w *Writer) WriteUint(n uint64) {
	w.buf = AppendUint(w.buf, n)
	w.buf = append(w.buf, Separator)
}

// AppendUint appends the digits of n, least significant first, without a
// separator.
func AppendUint(dst []byte, n uint64) []byte {
	for {
		dst = append(dst, Alphabet[n%uint64(Base)])
		n /= uint64(Base)
		if n == 0 {
			return dst
		}
	}
}

// WriteBigUint writes the absolute value of n the same way WriteUint does,
// at arbitrary precision.
func (w *Writer) WriteBigUint(n *big.Int) {
	q := new(big.Int).Abs(n)
	r := new(big.Int)
	for {
		q.QuoRem(q, bigBase, r)
		w.buf = append(w.buf, Alphabet[r.Int64()])
		if q.Sign() == 0 {
			break
		}
	}
	w.buf = append(w.buf, Separator)
}

// UTF16Length returns the number of UTF-16 code units needed for a string.
// Bytes that are not valid UTF-8 count as one unit each, which is how the
// Reader consumes them back.
func UTF16Length(s string) int {
	count := 0
	for _, r := range s {
		if n := utf16.RuneLen(r); n > 0 {
			count += n
		} else {
			count++
		}
	}
	return count
}
