package s14e

import (
	"fmt"

	"github.com/gorhill/uBO-Scope/internal/wire"
)

// Type tags. Each tag is the alphabet digit at its index, starting at 1,
// so the table must never be reordered.
const (
	tagStringSmall   = iota + 1 // followed by a one-digit UTF-16 length, then the text
	tagStringLarge              // followed by a length numeral, then the text
	tagZero                     // the number 0 (and -0)
	tagIntSmallPos              // followed by one digit
	tagIntSmallNeg              // followed by one digit, negated
	tagIntLargePos              // followed by a numeral
	tagIntLargeNeg              // followed by a numeral, negated
	tagBigIntPos                // followed by a bigint numeral
	tagBigIntNeg                // followed by a bigint numeral, negated
	tagFalse
	tagTrue
	tagNull
	tagUndefined
	tagFloat                    // followed by a length numeral, then the decimal text
	tagNumberObj                // followed by the wrapped number
	tagBigIntObj                // followed by the wrapped bigint
	tagBoolObj                  // followed by the wrapped boolean
	tagStringObj                // followed by the wrapped string
	tagRegExp                   // followed by source and flags strings
	tagDate                     // followed by the time value as a number
	tagReference                // followed by a reference id numeral
	tagObjectSmall              // followed by a one-digit size, then key/value pairs
	tagObjectLarge              // followed by a size numeral, then key/value pairs
	tagArraySmall
	tagArrayLarge
	tagSetSmall
	tagSetLarge
	tagMapSmall
	tagMapLarge
	tagArrayBuffer              // byteLength numeral, maxByteLength, dense flag, payload string
	tagInt8Array                // byteOffset numeral, length numeral, then the buffer
	tagUint8Array
	tagUint8ClampedArray
	tagInt16Array
	tagUint16Array
	tagInt32Array
	tagUint32Array
	tagFloat32Array
	tagFloat64Array
	tagDataView                 // byteOffset numeral, byteLength numeral, then the buffer
	tagCount
)

var tagNames = [tagCount]string{
	tagStringSmall:       "StringSmall",
	tagStringLarge:       "StringLarge",
	tagZero:              "Zero",
	tagIntSmallPos:       "IntSmallPos",
	tagIntSmallNeg:       "IntSmallNeg",
	tagIntLargePos:       "IntLargePos",
	tagIntLargeNeg:       "IntLargeNeg",
	tagBigIntPos:         "BigIntPos",
	tagBigIntNeg:         "BigIntNeg",
	tagFalse:             "False",
	tagTrue:              "True",
	tagNull:              "Null",
	tagUndefined:         "Undefined",
	tagFloat:             "Float",
	tagNumberObj:         "NumberObject",
	tagBigIntObj:         "BigIntObject",
	tagBoolObj:           "BooleanObject",
	tagStringObj:         "StringObject",
	tagRegExp:            "RegExp",
	tagDate:              "Date",
	tagReference:         "Reference",
	tagObjectSmall:       "ObjectSmall",
	tagObjectLarge:       "ObjectLarge",
	tagArraySmall:        "ArraySmall",
	tagArrayLarge:        "ArrayLarge",
	tagSetSmall:          "SetSmall",
	tagSetLarge:          "SetLarge",
	tagMapSmall:          "MapSmall",
	tagMapLarge:          "MapLarge",
	tagArrayBuffer:       "ArrayBuffer",
	tagInt8Array:         "Int8Array",
	tagUint8Array:        "Uint8Array",
	tagUint8ClampedArray: "Uint8ClampedArray",
	tagInt16Array:        "Int16Array",
	tagUint16Array:       "Uint16Array",
	tagInt32Array:        "Int32Array",
	tagUint32Array:       "Uint32Array",
	tagFloat32Array:      "Float32Array",
	tagFloat64Array:      "Float64Array",
	tagDataView:          "DataView",
}

// tagChar returns the wire character of a tag.
func tagChar(tag int) byte {
	return wire.Digit(tag)
}

// tagOf maps a wire character back to its tag, 0 if it is not one.
func tagOf(c byte) int {
	d, ok := wire.DigitValue(wire.Canonical(c))
	if !ok || d == 0 || d >= tagCount {
		return 0
	}
	return d
}

// TagName returns a readable name for the tag written as c, for
// diagnostics.
func TagName(c byte) string {
	if tag := tagOf(c); tag != 0 {
		return tagNames[tag]
	}
	return fmt.Sprintf("Tag(%q)", c)
}
