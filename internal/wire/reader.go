package wire

import (
	"math/big"
	"math/bits"
	"unicode/utf16"
	"unicode/utf8"
)

// Reader reads serialized text sequentially.
// The cursor is a byte offset; everything except string payloads is ASCII.
type Reader struct {
	data string
	pos  int
}

// NewReader creates a Reader over data.
func NewReader(data string) *Reader {
	return &Reader{data: data}
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the total length of the underlying data.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of bytes left to read.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// EOF returns true if all bytes have been consumed.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.data)
}

// Peek returns the next byte without advancing the position.
func (r *Reader) Peek() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	return r.data[r.pos], nil
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadDigit reads one alphabet character and returns its value.
func (r *Reader) ReadDigit() (int, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	d, ok := DigitValue(c)
	if !ok {
		return 0, ErrInvalidDigit
	}
	return d, nil
}

// ReadUint reads a separator-terminated numeral.
func (r *Reader) ReadUint() (uint64, error) {
	v, next, err := parseNumeral(r.data, r.pos)
	if err != nil {
		return 0, err
	}
	r.pos = next
	return v, nil
}

// parseNumeral decodes the numeral starting at s[i]. The first character is
// always a digit, even for zero.
func parseNumeral(s string, i int) (uint64, int, error) {
	if i >= len(s) {
		return 0, i, ErrUnexpectedEOF
	}
	d, ok := DigitValue(s[i])
	if !ok {
		return 0, i, ErrInvalidDigit
	}
	i++
	n := uint64(d)
	m := uint64(1)
	saturated := false
	for {
		if i >= len(s) {
			return 0, i, ErrUnexpectedEOF
		}
		c := s[i]
		i++
		if c == Separator {
			return n, i, nil
		}
		d, ok := DigitValue(c)
		if !ok {
			return 0, i, ErrInvalidDigit
		}
		if !saturated {
			hi, lo := bits.Mul64(m, uint64(Base))
			if hi != 0 {
				saturated = true
			} else {
				m = lo
			}
		}
		if d == 0 {
			continue
		}
		if saturated {
			return 0, i, ErrOverflow
		}
		hi, t := bits.Mul64(m, uint64(d))
		if hi != 0 {
			return 0, i, ErrOverflow
		}
		var carry uint64
		n, carry = bits.Add64(n, t, 0)
		if carry != 0 {
			return 0, i, ErrOverflow
		}
	}
}

// ReadBigUint reads a separator-terminated numeral at arbitrary precision.
func (r *Reader) ReadBigUint() (*big.Int, error) {
	var digits []int
	for {
		c, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if c == Separator && len(digits) > 0 {
			break
		}
		d, ok := DigitValue(c)
		if !ok {
			return nil, ErrInvalidDigit
		}
		digits = append(digits, d)
	}
	n := new(big.Int)
	for i := len(digits) - 1; i >= 0; i-- {
		n.Mul(n, bigBase)
		n.Add(n, big.NewInt(int64(digits[i])))
	}
	return n, nil
}

// ReadString reads a string that is units UTF-16 code units long.
// Invalid UTF-8 bytes count as one unit each, mirroring UTF16Length.
func (r *Reader) ReadString(units int) (string, error) {
	start := r.pos
	pos := r.pos
	for n := 0; n < units; {
		if pos >= len(r.data) {
			return "", ErrUnexpectedEOF
		}
		c := r.data[pos]
		if c < utf8.RuneSelf {
			pos++
			n++
			continue
		}
		ru, size := utf8.DecodeRuneInString(r.data[pos:])
		w := utf16.RuneLen(ru)
		if w < 1 {
			w = 1
		}
		if n+w > units {
			return "", ErrSplitRune
		}
		pos += size
		n += w
	}
	r.pos = pos
	return r.data[start:pos], nil
}

// Skip advances the position by n bytes without reading.
func (r *Reader) Skip(n int) error {
	if r.pos+n > len(r.data) {
		return ErrUnexpectedEOF
	}
	r.pos += n
	return nil
}

// Reset resets the reader to the beginning of the data.
func (r *Reader) Reset() {
	r.pos = 0
}

// Data returns the underlying text.
func (r *Reader) Data() string {
	return r.data
}
