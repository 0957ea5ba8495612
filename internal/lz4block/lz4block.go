// Package lz4block implements single-block LZ4 compression.
//
// Only the block layer is provided: no frame, no checksums, no
// dictionary. A block is a run of sequences, each a token byte
// (literal length << 4 | match length - 4), optional length extension
// bytes, the literals, and a 2-byte little-endian match offset. The last
// sequence carries literals only.
package lz4block

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	hashLog   = 16
	hashSize  = 1 << hashLog
	minMatch  = 4
	maxOffset = 1<<16 - 1

	// The last match must start at least mfLimit bytes before the end of
	// the block, and the last lastLiterals bytes are always literals.
	mfLimit      = 12
	lastLiterals = 5

	// MaxInputSize is the largest block Encode accepts.
	MaxInputSize = 0x7E000000
)

// Common errors.
var (
	ErrCorrupt  = errors.New("lz4block: corrupt input")
	ErrTooLarge = errors.New("lz4block: input too large")
)

// EncodeBound returns the worst-case encoded size of an n-byte input.
func EncodeBound(n int) int {
	if n > MaxInputSize {
		return 0
	}
	return n + n/255 + 16
}

// Encoder holds the match-finder state. The zero value is ready to use;
// an Encoder must not be used from several goroutines at once.
type Encoder struct {
	table [hashSize]int32
}

// Encode compresses src as a single block.
func Encode(src []byte) ([]byte, error) {
	return new(Encoder).Encode(nil, src)
}

func hash(seq uint32) uint32 {
	return ((seq*0x9E37)&0xFFFF + (seq*0x79B1)>>16) & 0xFFFF
}

// Encode appends the compressed block for src to dst.
func (e *Encoder) Encode(dst, src []byte) ([]byte, error) {
	n := len(src)
	if n >= MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
	}
	for i := range e.table {
		e.table[i] = -(maxOffset + 1)
	}
	if cap(dst)-len(dst) < EncodeBound(n) {
		grown := make([]byte, len(dst), len(dst)+EncodeBound(n))
		copy(grown, dst)
		dst = grown
	}

	lastMatchPos := n - mfLimit
	lastLiteralPos := n - lastLiterals
	pos, anchor := 0, 0
	for {
		ref := 0
		found := false
		for ; pos <= lastMatchPos; pos++ {
			seq := binary.LittleEndian.Uint32(src[pos:])
			h := hash(seq)
			ref = int(e.table[h])
			e.table[h] = int32(pos)
			if pos-ref <= maxOffset && binary.LittleEndian.Uint32(src[ref:]) == seq {
				found = true
				break
			}
		}
		if !found {
			break
		}

		litLen := pos - anchor
		offset := pos - ref
		start := pos
		pos += minMatch
		ref += minMatch
		for pos < lastLiteralPos && src[pos] == src[ref] {
			pos++
			ref++
		}
		matchLen := pos - start

		code := matchLen - minMatch
		if code > 15 {
			code = 15
		}
		dst = appendToken(dst, litLen, byte(code))
		dst = append(dst, src[anchor:anchor+litLen]...)
		dst = append(dst, byte(offset), byte(offset>>8))
		if code == 15 {
			dst = appendLength(dst, matchLen-minMatch-15)
		}
		anchor = pos
	}

	litLen := n - anchor
	dst = appendToken(dst, litLen, 0)
	dst = append(dst, src[anchor:]...)
	return dst, nil
}

func appendToken(dst []byte, litLen int, code byte) []byte {
	if litLen < 15 {
		return append(dst, byte(litLen)<<4|code)
	}
	dst = append(dst, 0xF0|code)
	return appendLength(dst, litLen-15)
}

// appendLength writes a length extension: 255-valued bytes followed by a
// terminal byte below 255.
func appendLength(dst []byte, l int) []byte {
	for l >= 255 {
		dst = append(dst, 255)
		l -= 255
	}
	return append(dst, byte(l))
}

// Decode decompresses a block whose decompressed length is size.
// A match offset of zero or one reaching before the start of the output is
// reported as ErrCorrupt, as is output that does not come out at exactly
// size bytes.
func Decode(src []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrCorrupt, size)
	}
	dst := make([]byte, size)
	i, o := 0, 0
	for i < len(src) {
		token := src[i]
		i++

		lit := int(token >> 4)
		if lit == 15 {
			var err error
			if lit, i, err = readLength(src, i, lit, size); err != nil {
				return nil, err
			}
		}
		if lit > len(src)-i || lit > size-o {
			return nil, fmt.Errorf("%w: literal run of %d overflows at input %d", ErrCorrupt, lit, i)
		}
		copy(dst[o:], src[i:i+lit])
		o += lit
		i += lit
		if i == len(src) {
			break
		}

		if len(src)-i < 2 {
			return nil, fmt.Errorf("%w: truncated match offset at input %d", ErrCorrupt, i)
		}
		offset := int(src[i]) | int(src[i+1])<<8
		i += 2
		if offset == 0 || offset > o {
			return nil, fmt.Errorf("%w: match offset %d with %d bytes produced", ErrCorrupt, offset, o)
		}

		ml := int(token&0x0F) + minMatch
		if ml == 15+minMatch {
			var err error
			if ml, i, err = readLength(src, i, ml, size); err != nil {
				return nil, err
			}
		}
		if ml > size-o {
			return nil, fmt.Errorf("%w: match of %d overflows output of %d", ErrCorrupt, ml, size)
		}
		// Byte by byte: the source may overlap the bytes being produced.
		m := o - offset
		for k := 0; k < ml; k++ {
			dst[o] = dst[m]
			o++
			m++
		}
	}
	if o != size {
		return nil, fmt.Errorf("%w: produced %d bytes, want %d", ErrCorrupt, o, size)
	}
	return dst, nil
}

func readLength(src []byte, i, n, limit int) (int, int, error) {
	for {
		if i >= len(src) {
			return 0, i, fmt.Errorf("%w: truncated length", ErrCorrupt)
		}
		b := src[i]
		i++
		n += int(b)
		if n > limit {
			return 0, i, fmt.Errorf("%w: length %d exceeds output of %d", ErrCorrupt, n, limit)
		}
		if b != 255 {
			return n, i, nil
		}
	}
}
