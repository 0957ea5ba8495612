// Package wire implements the low-level text primitives of the s14e format.
//
// Every numeral, tag and buffer payload is drawn from an 88-character
// alphabet that never needs escaping inside a JSON string. This package
// handles the mechanical parts: digits, separator-terminated numerals,
// UTF-16-counted strings and the dense/sparse ArrayBuffer payloads.
package wire

import "errors"

// Alphabet is the ordered set of safe characters. A character's index is
// its digit value.
const Alphabet = "&'()*+,-.$0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// Base is the numeral base, i.e. the alphabet size.
const Base = len(Alphabet)

const (
	// Separator terminates every variable-length numeral.
	Separator byte = ' '
	// Sentinel switches sparse buffer decoding from 32-bit words to tail bytes.
	Sentinel byte = '!'
)

// Common errors returned by Reader methods and buffer decoders.
var (
	ErrUnexpectedEOF = errors.New("wire: unexpected end of input")
	ErrInvalidDigit  = errors.New("wire: invalid digit")
	ErrOverflow      = errors.New("wire: numeral overflow")
	ErrSplitRune     = errors.New("wire: string length splits a surrogate pair")
	ErrBufferLayout  = errors.New("wire: malformed buffer payload")
)

// aliases maps decode-only characters to the alphabet member they stand for.
var aliases = [...][2]byte{
	{'/', '$'},
}

var digitValue [128]int8

func init() {
	for i := range digitValue {
		digitValue[i] = -1
	}
	for i := 0; i < Base; i++ {
		digitValue[Alphabet[i]] = int8(i)
	}
	for _, a := range aliases {
		digitValue[a[0]] = digitValue[a[1]]
	}
}

// Digit returns the alphabet character for n, which must be in [0, Base).
func Digit(n int) byte {
	return Alphabet[n]
}

// DigitValue returns the value of c, accepting aliases.
func DigitValue(c byte) (int, bool) {
	if c >= 128 {
		return 0, false
	}
	v := digitValue[c]
	if v < 0 {
		return 0, false
	}
	return int(v), true
}

// Canonical maps an alias to its alphabet member. Other characters are
// returned unchanged.
func Canonical(c byte) byte {
	for _, a := range aliases {
		if c == a[0] {
			return a[1]
		}
	}
	return c
}

// NumeralLen returns the encoded length of n as a separator-terminated
// numeral, separator included.
func NumeralLen(n uint64) int {
	size := 2
	for n >= uint64(Base) {
		n /= uint64(Base)
		size++
	}
	return size
}

// sparseLen is the cost of one sparse buffer entry: a zero entry is a bare
// separator.
func sparseLen(n uint64) int {
	if n == 0 {
		return 1
	}
	return NumeralLen(n)
}
