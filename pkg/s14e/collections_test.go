package s14e

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject(t *testing.T) {
	o := NewObject().Set("b", Int(1)).Set("a", Int(2)).Set("b", Int(3))
	assert.Equal(t, []string{"b", "a"}, o.Keys())
	v, ok := o.Get("b")
	require.True(t, ok)
	assert.Equal(t, 3.0, v.AsNumber())

	o.Delete("b")
	o.Delete("missing")
	assert.Equal(t, []string{"a"}, o.Keys())
	_, ok = o.Get("b")
	assert.False(t, ok)

	o.Set("c", Null()).Set("d", Null())
	var seen []string
	o.Range(func(k string, _ Value) bool {
		seen = append(seen, k)
		return k != "c"
	})
	assert.Equal(t, []string{"a", "c"}, seen)
}

func TestArray(t *testing.T) {
	a := NewArray(Int(1))
	a.Append(Int(2), Int(3))
	assert.Equal(t, 3, a.Len())
	assert.True(t, a.At(3).IsUndefined())
	assert.True(t, a.At(-1).IsUndefined())

	a.SetAt(5, String("x"))
	assert.Equal(t, 6, a.Len())
	assert.True(t, a.At(4).IsUndefined())
	assert.Equal(t, "x", a.At(5).AsString())
}

func TestMapKeySemantics(t *testing.T) {
	obj := NewObject()
	m := NewMap().
		Set(Number(math.NaN()), String("nan")).
		Set(Number(math.Copysign(0, -1)), String("zero")).
		Set(BigInt(big.NewInt(10)), String("big")).
		Set(obj.Value(), String("obj"))

	v, ok := m.Get(Number(math.NaN()))
	require.True(t, ok)
	assert.Equal(t, "nan", v.AsString())

	v, ok = m.Get(Int(0))
	require.True(t, ok)
	assert.Equal(t, "zero", v.AsString())

	assert.True(t, m.Has(BigInt(big.NewInt(10))), "bigints compare by value")
	assert.False(t, m.Has(Int(10)), "bigint and number keys differ")
	assert.True(t, m.Has(obj.Value()))
	assert.False(t, m.Has(NewObject().Value()), "objects compare by identity")

	when := time.Unix(1, 0)
	m.Set(Date(when), Null())
	assert.False(t, m.Has(Date(when)), "dates compare by identity")

	m.Set(Int(0), String("replaced"))
	assert.Equal(t, 5, m.Len())
	assert.Equal(t, "replaced", m.Entries()[1].Value.AsString())
	assert.True(t, math.Signbit(m.Entries()[1].Key.AsNumber()), "first key is kept")
}

func TestMapDelete(t *testing.T) {
	m := NewMap().Set(Int(1), Null()).Set(Int(2), Null()).Set(Int(3), Null())
	m.Delete(Int(2))
	m.Delete(Int(9))
	require.Equal(t, 2, m.Len())
	assert.True(t, m.Has(Int(3)))
	assert.False(t, m.Has(Int(2)))

	m.Set(Int(3), String("three"))
	assert.Equal(t, 2, m.Len())
	v, _ := m.Get(Int(3))
	assert.Equal(t, "three", v.AsString())

	var keys []float64
	m.Range(func(k, _ Value) bool {
		keys = append(keys, k.AsNumber())
		return true
	})
	assert.Equal(t, []float64{1, 3}, keys)
}

func TestSet(t *testing.T) {
	s := NewSet(Int(1), Number(math.NaN()), Number(math.NaN()), String("1"), Int(1))
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(Number(math.NaN())))

	s.Delete(Int(1))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(String("1")))
	s.Add(Int(1))
	assert.Equal(t, 1.0, s.Values()[2].AsNumber())
}

func TestTypedArrayBounds(t *testing.T) {
	buf := NewArrayBuffer(8)
	_, err := NewTypedArray(Uint32Array, buf, 2, 1)
	require.ErrorIs(t, err, ErrRange)
	_, err = NewTypedArray(Uint32Array, buf, 4, 2)
	require.ErrorIs(t, err, ErrRange)
	_, err = NewTypedArray(Int8Array, buf, -1, 1)
	require.ErrorIs(t, err, ErrRange)

	v, err := NewTypedArray(Uint32Array, buf, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, v.ByteLength())
	v.Bytes()[0] = 7
	assert.Equal(t, byte(7), buf.Bytes()[4])
}

func TestArrayKind(t *testing.T) {
	sizes := map[ArrayKind]int{
		Int8Array: 1, Uint8Array: 1, Uint8ClampedArray: 1, Int16Array: 2, Uint16Array: 2,
		Int32Array: 4, Uint32Array: 4, Float32Array: 4, Float64Array: 8, DataView: 1,
	}
	for k, size := range sizes {
		assert.Equal(t, size, k.ElementSize(), k.String())
	}
}

func TestValueAccessors(t *testing.T) {
	assert.True(t, Value{}.IsUndefined())
	assert.True(t, Null().IsNullish())
	assert.Equal(t, "-5n", BigInt(big.NewInt(-5)).GoString())
	assert.Equal(t, "0n", BigInt(nil).GoString())
	assert.Equal(t, `"a"`, String("a").GoString())
	assert.Equal(t, "/x/g", NewRegExp("x", "g").GoString())
	assert.Equal(t, "Date(Invalid)", DateMillis(math.NaN()).GoString())
	assert.True(t, DateMillis(math.NaN()).AsDate().IsZero())

	when := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	assert.Equal(t, 1700000000000.0, Date(when).AsDateMillis())
	assert.True(t, when.Equal(Date(when).AsDate()))

	assert.Equal(t, 2.5, NumberObject(2.5).AsBoxed().Primitive().AsNumber())
	assert.True(t, NewArray().Value().IsComposite())
	assert.False(t, String("x").IsComposite())

	assert.Panics(t, func() { String("x").AsNumber() })
	assert.Panics(t, func() { Null().AsObject() })
}
