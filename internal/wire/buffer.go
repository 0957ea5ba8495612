package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BufferLayout describes how an ArrayBuffer payload will be written.
//
// Bytes at or after End are zero and are not written; the decoder's
// destination is zero-filled, so they come back for free.
type BufferLayout struct {
	End        int
	Dense      bool
	DenseSize  int
	SparseSize int
}

// Size returns the payload length of the chosen encoding.
func (l BufferLayout) Size() int {
	if l.Dense {
		return l.DenseSize
	}
	return l.SparseSize
}

// AnalyzeBuffer computes the content end of b and the cost of both
// encodings. Sparse wins ties.
func AnalyzeBuffer(b []byte) BufferLayout {
	words := len(b) >> 2
	used := 0
	for i := words - 1; i >= 0; i-- {
		if binary.LittleEndian.Uint32(b[i<<2:]) != 0 {
			used = i + 1
			break
		}
	}
	end := used << 2
	if used == words || !allZero(b[words<<2:]) {
		end = len(b)
	}

	endWords := end >> 2
	rem := end & 3
	l := BufferLayout{End: end, DenseSize: endWords * 5}
	if rem != 0 {
		l.DenseSize += rem + 1
	}
	for i := 0; i < endWords; i++ {
		l.SparseSize += sparseLen(uint64(binary.LittleEndian.Uint32(b[i<<2:])))
	}
	if rem != 0 {
		l.SparseSize++
		for _, c := range b[endWords<<2 : end] {
			l.SparseSize += sparseLen(uint64(c))
		}
	}
	l.Dense = l.SparseSize > l.DenseSize
	return l
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// EncodeBuffer writes b[:l.End] using the encoding l selected.
func EncodeBuffer(b []byte, l BufferLayout) string {
	if l.Dense {
		return string(appendDense(make([]byte, 0, l.DenseSize), b[:l.End]))
	}
	return string(appendSparse(make([]byte, 0, l.SparseSize), b[:l.End]))
}

// appendDense writes each 32-bit word as exactly five digits and a 1-3 byte
// tail as two to four digits.
func appendDense(dst, b []byte) []byte {
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		v := binary.LittleEndian.Uint32(b[i:])
		for k := 0; k < 4; k++ {
			dst = append(dst, Alphabet[v%uint32(Base)])
			v /= uint32(Base)
		}
		dst = append(dst, Alphabet[v])
	}
	tail := b[n:]
	if len(tail) == 0 {
		return dst
	}
	var v uint32
	for k, c := range tail {
		v |= uint32(c) << (8 * k)
	}
	for k := 0; k <= len(tail); k++ {
		dst = append(dst, Alphabet[v%uint32(Base)])
		v /= uint32(Base)
	}
	return dst
}

// appendSparse writes each word as a numeral, zero words as a bare
// separator. A partial tail is introduced by the sentinel and written one
// byte per numeral.
func appendSparse(dst, b []byte) []byte {
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		if v := binary.LittleEndian.Uint32(b[i:]); v != 0 {
			dst = AppendUint(dst, uint64(v))
		}
		dst = append(dst, Separator)
	}
	if n == len(b) {
		return dst
	}
	dst = append(dst, Sentinel)
	for _, c := range b[n:] {
		if c != 0 {
			dst = AppendUint(dst, uint64(c))
		}
		dst = append(dst, Separator)
	}
	return dst
}

// DecodeDense fills dst from a dense payload.
func DecodeDense(s string, dst []byte) error {
	rem := len(s) % 5
	if rem == 1 {
		return fmt.Errorf("%w: dense payload length %d", ErrBufferLayout, len(s))
	}
	n := len(s) - rem
	if n/5*4 > len(dst) {
		return fmt.Errorf("%w: %d dense words exceed %d bytes", ErrBufferLayout, n/5, len(dst))
	}
	j := 0
	for i := 0; i < n; i += 5 {
		v, err := denseGroup(s[i : i+5])
		if err != nil {
			return err
		}
		if v > math.MaxUint32 {
			return ErrOverflow
		}
		binary.LittleEndian.PutUint32(dst[j:], uint32(v))
		j += 4
	}
	if rem == 0 {
		return nil
	}
	v, err := denseGroup(s[n:])
	if err != nil {
		return err
	}
	for k := 0; v != 0; k++ {
		if k == 3 || j+k >= len(dst) {
			return ErrOverflow
		}
		dst[j+k] = byte(v)
		v >>= 8
	}
	return nil
}

func denseGroup(s string) (uint64, error) {
	var v uint64
	m := uint64(1)
	for i := 0; i < len(s); i++ {
		d, ok := DigitValue(s[i])
		if !ok {
			return 0, ErrInvalidDigit
		}
		v += uint64(d) * m
		m *= uint64(Base)
	}
	return v, nil
}

// DecodeSparse fills dst from a sparse payload. An empty numeral is a zero
// word.
func DecodeSparse(s string, dst []byte) error {
	words := len(dst) >> 2
	i, j := 0, 0
	tail := false
	for j < len(s) {
		c := s[j]
		if c == Separator {
			i++
			j++
			continue
		}
		if c == Sentinel {
			tail = true
			j++
			break
		}
		v, next, err := parseNumeral(s, j)
		if err != nil {
			return err
		}
		if i >= words {
			return fmt.Errorf("%w: word %d beyond %d bytes", ErrBufferLayout, i, len(dst))
		}
		if v > math.MaxUint32 {
			return ErrOverflow
		}
		binary.LittleEndian.PutUint32(dst[i<<2:], uint32(v))
		i++
		j = next
	}
	if !tail {
		return nil
	}
	for k := i << 2; j < len(s); k++ {
		if s[j] == Separator {
			j++
			continue
		}
		v, next, err := parseNumeral(s, j)
		if err != nil {
			return err
		}
		if k >= len(dst) {
			return fmt.Errorf("%w: tail byte %d beyond %d bytes", ErrBufferLayout, k, len(dst))
		}
		if v > math.MaxUint8 {
			return ErrOverflow
		}
		dst[k] = byte(v)
		j = next
	}
	return nil
}
