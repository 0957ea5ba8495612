package s14e

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"
)

// Kind is the JavaScript kind of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindBigInt
	KindString
	KindDate
	KindRegExp
	KindBoxed // Number/Boolean/String/BigInt object wrappers
	KindObject
	KindArray
	KindSet
	KindMap
	KindArrayBuffer
	KindTypedArray // typed arrays and DataView
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindDate:
		return "Date"
	case KindRegExp:
		return "RegExp"
	case KindBoxed:
		return "BoxedPrimitive"
	case KindObject:
		return "object"
	case KindArray:
		return "Array"
	case KindSet:
		return "Set"
	case KindMap:
		return "Map"
	case KindArrayBuffer:
		return "ArrayBuffer"
	case KindTypedArray:
		return "TypedArray"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is a JavaScript value. The zero Value is undefined.
//
// Composite values (Object, Array, Set, Map, ArrayBuffer, TypedArray) hold
// a pointer, so copying a Value shares the container, and two Values built
// from the same container are the same JavaScript object.
type Value struct {
	kind Kind
	data any
}

// date is boxed so that every Date is a distinct object, as Map and Set
// keys compare Dates by identity.
type date struct {
	ms float64
}

// Undefined returns the JavaScript undefined.
func Undefined() Value {
	return Value{}
}

// Null returns the JavaScript null.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean.
func Bool(b bool) Value {
	return Value{kind: KindBool, data: b}
}

// Number returns a number.
func Number(f float64) Value {
	return Value{kind: KindNumber, data: f}
}

// Int returns a number holding n. Integers beyond 2^53 lose precision.
func Int(n int64) Value {
	return Value{kind: KindNumber, data: float64(n)}
}

// BigInt returns a bigint. A nil n is zero. n is not copied.
func BigInt(n *big.Int) Value {
	if n == nil {
		n = new(big.Int)
	}
	return Value{kind: KindBigInt, data: n}
}

// String returns a string.
func String(s string) Value {
	return Value{kind: KindString, data: s}
}

// Date returns a Date for t, truncated to the millisecond.
func Date(t time.Time) Value {
	return DateMillis(float64(t.UnixMilli()))
}

// DateMillis returns a Date from a time value in milliseconds since the
// Unix epoch. NaN makes an invalid date.
func DateMillis(ms float64) Value {
	return Value{kind: KindDate, data: &date{ms: ms}}
}

// NumberObject returns a wrapped number, as new Number(f).
func NumberObject(f float64) Value {
	return boxed(Number(f))
}

// BoolObject returns a wrapped boolean, as new Boolean(b).
func BoolObject(b bool) Value {
	return boxed(Bool(b))
}

// StringObject returns a wrapped string, as new String(s).
func StringObject(s string) Value {
	return boxed(String(s))
}

// BigIntObject returns a wrapped bigint, as Object(n).
func BigIntObject(n *big.Int) Value {
	return boxed(BigInt(n))
}

func boxed(v Value) Value {
	return Value{kind: KindBoxed, data: &Boxed{v: v}}
}

// Kind returns the JavaScript kind of this value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsUndefined reports whether v is undefined.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNullish reports whether v is null or undefined.
func (v Value) IsNullish() bool { return v.kind == KindNull || v.kind == KindUndefined }

// IsBool reports whether v is a boolean.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsNumber reports whether v is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsBigInt reports whether v is a bigint.
func (v Value) IsBigInt() bool { return v.kind == KindBigInt }

// IsString reports whether v is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsDate reports whether v is a Date.
func (v Value) IsDate() bool { return v.kind == KindDate }

// IsObject reports whether v is a plain object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsArray reports whether v is an Array.
func (v Value) IsArray() bool { return v.kind == KindArray }

// IsSet reports whether v is a Set.
func (v Value) IsSet() bool { return v.kind == KindSet }

// IsMap reports whether v is a Map.
func (v Value) IsMap() bool { return v.kind == KindMap }

// IsComposite reports whether v has identity on the wire, that is whether a
// second occurrence is written as a back-reference.
func (v Value) IsComposite() bool {
	switch v.kind {
	case KindObject, KindArray, KindSet, KindMap, KindArrayBuffer, KindTypedArray:
		return true
	}
	return false
}

func (v Value) must(k Kind, method string) {
	if v.kind != k {
		panic(fmt.Sprintf("Value.%s: expected %s, got %s", method, k, v.kind))
	}
}

// AsBool returns the boolean. Panics if v is not a boolean.
func (v Value) AsBool() bool {
	v.must(KindBool, "AsBool")
	return v.data.(bool)
}

// AsNumber returns the number. Panics if v is not a number.
func (v Value) AsNumber() float64 {
	v.must(KindNumber, "AsNumber")
	return v.data.(float64)
}

// AsBigInt returns the bigint. Panics if v is not a bigint.
func (v Value) AsBigInt() *big.Int {
	v.must(KindBigInt, "AsBigInt")
	return v.data.(*big.Int)
}

// AsString returns the string. Panics if v is not a string.
func (v Value) AsString() string {
	v.must(KindString, "AsString")
	return v.data.(string)
}

// AsDateMillis returns the time value of a Date in milliseconds.
// Panics if v is not a Date.
func (v Value) AsDateMillis() float64 {
	v.must(KindDate, "AsDateMillis")
	return v.data.(*date).ms
}

// AsDate returns a Date as a time.Time in UTC. An invalid date returns the
// zero time. Panics if v is not a Date.
func (v Value) AsDate() time.Time {
	ms := v.AsDateMillis()
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}

// AsRegExp returns the RegExp. Panics if v is not a RegExp.
func (v Value) AsRegExp() *RegExp {
	v.must(KindRegExp, "AsRegExp")
	return v.data.(*RegExp)
}

// AsBoxed returns the primitive wrapper. Panics if v is not one.
func (v Value) AsBoxed() *Boxed {
	v.must(KindBoxed, "AsBoxed")
	return v.data.(*Boxed)
}

// AsObject returns the plain object. Panics if v is not an object.
func (v Value) AsObject() *Object {
	v.must(KindObject, "AsObject")
	return v.data.(*Object)
}

// AsArray returns the Array. Panics if v is not an Array.
func (v Value) AsArray() *Array {
	v.must(KindArray, "AsArray")
	return v.data.(*Array)
}

// AsSet returns the Set. Panics if v is not a Set.
func (v Value) AsSet() *Set {
	v.must(KindSet, "AsSet")
	return v.data.(*Set)
}

// AsMap returns the Map. Panics if v is not a Map.
func (v Value) AsMap() *Map {
	v.must(KindMap, "AsMap")
	return v.data.(*Map)
}

// AsArrayBuffer returns the ArrayBuffer. Panics if v is not one.
func (v Value) AsArrayBuffer() *ArrayBuffer {
	v.must(KindArrayBuffer, "AsArrayBuffer")
	return v.data.(*ArrayBuffer)
}

// AsTypedArray returns the view. Panics if v is not a typed array or
// DataView.
func (v Value) AsTypedArray() *TypedArray {
	v.must(KindTypedArray, "AsTypedArray")
	return v.data.(*TypedArray)
}

// Interface returns the underlying Go value: nil for undefined and null,
// time.Time for a Date, and the held value or pointer otherwise.
func (v Value) Interface() any {
	switch v.kind {
	case KindUndefined, KindNull:
		return nil
	case KindDate:
		return v.AsDate()
	}
	return v.data
}

// GoString implements fmt.GoStringer for debugging.
func (v Value) GoString() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.data.(bool))
	case KindNumber:
		return formatNumber(v.data.(float64))
	case KindBigInt:
		return v.data.(*big.Int).String() + "n"
	case KindString:
		return strconv.Quote(v.data.(string))
	case KindDate:
		ms := v.data.(*date).ms
		if math.IsNaN(ms) {
			return "Date(Invalid)"
		}
		return fmt.Sprintf("Date(%s)", v.AsDate().Format(time.RFC3339Nano))
	case KindRegExp:
		r := v.data.(*RegExp)
		return "/" + r.Source + "/" + r.Flags
	case KindBoxed:
		return fmt.Sprintf("Object(%#v)", v.data.(*Boxed).v)
	case KindObject:
		return fmt.Sprintf("Object{%d properties}", v.data.(*Object).Len())
	case KindArray:
		return fmt.Sprintf("Array[%d]", v.data.(*Array).Len())
	case KindSet:
		return fmt.Sprintf("Set(%d)", v.data.(*Set).Len())
	case KindMap:
		return fmt.Sprintf("Map(%d)", v.data.(*Map).Len())
	case KindArrayBuffer:
		return fmt.Sprintf("ArrayBuffer(%d)", v.data.(*ArrayBuffer).ByteLength())
	case KindTypedArray:
		t := v.data.(*TypedArray)
		return fmt.Sprintf("%s(%d)", t.kind, t.Len())
	default:
		return fmt.Sprintf("%s(%v)", v.kind, v.data)
	}
}

// RegExp is a regular expression, kept as its source and flags. It is
// never compiled.
type RegExp struct {
	Source string
	Flags  string
}

// NewRegExp returns a RegExp value.
func NewRegExp(source, flags string) Value {
	return Value{kind: KindRegExp, data: &RegExp{Source: source, Flags: flags}}
}

// Boxed is a primitive wrapper object such as new Number(1).
type Boxed struct {
	v Value
}

// Primitive returns the wrapped primitive.
func (b *Boxed) Primitive() Value {
	return b.v
}
