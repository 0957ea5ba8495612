package s14e

import (
	"bytes"
	"math"
)

// Equal reports whether a and b are deeply equal. Containers compare
// element by element in insertion order; NaN equals NaN. Cycles are
// handled: a pair of containers already under comparison is assumed
// equal.
func Equal(a, b Value) bool {
	return (&equality{seen: make(map[[2]any]bool)}).equal(a, b)
}

type equality struct {
	seen map[[2]any]bool
}

func sameNumber(x, y float64) bool {
	return x == y || (math.IsNaN(x) && math.IsNaN(y))
}

func (e *equality) equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool, KindString:
		return a.data == b.data
	case KindNumber:
		return sameNumber(a.data.(float64), b.data.(float64))
	case KindBigInt:
		return a.AsBigInt().Cmp(b.AsBigInt()) == 0
	case KindDate:
		return sameNumber(a.data.(*date).ms, b.data.(*date).ms)
	case KindRegExp:
		return *a.AsRegExp() == *b.AsRegExp()
	case KindBoxed:
		return e.equal(a.AsBoxed().v, b.AsBoxed().v)
	}

	if a.data == b.data {
		return true
	}
	pair := [2]any{a.data, b.data}
	if e.seen[pair] {
		return true
	}
	e.seen[pair] = true

	switch x := a.data.(type) {
	case *Object:
		y := b.data.(*Object)
		if len(x.keys) != len(y.keys) {
			return false
		}
		for i, k := range x.keys {
			if y.keys[i] != k || !e.equal(x.props[k], y.props[k]) {
				return false
			}
		}
		return true
	case *Array:
		return e.equalSlices(x.elems, b.data.(*Array).elems)
	case *Set:
		return e.equalSlices(x.values, b.data.(*Set).values)
	case *Map:
		y := b.data.(*Map)
		if len(x.entries) != len(y.entries) {
			return false
		}
		for i, en := range x.entries {
			if !e.equal(en.Key, y.entries[i].Key) || !e.equal(en.Value, y.entries[i].Value) {
				return false
			}
		}
		return true
	case *ArrayBuffer:
		y := b.data.(*ArrayBuffer)
		return x.resizable == y.resizable && x.MaxByteLength() == y.MaxByteLength() &&
			bytes.Equal(x.data, y.data)
	case *TypedArray:
		y := b.data.(*TypedArray)
		return x.kind == y.kind && x.ByteOffset() == y.ByteOffset() && x.Len() == y.Len() &&
			e.equal(x.buf.Value(), y.buf.Value())
	}
	return false
}

func (e *equality) equalSlices(x, y []Value) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !e.equal(x[i], y[i]) {
			return false
		}
	}
	return true
}
