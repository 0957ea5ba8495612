package s14e

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeEncoding(t *testing.T) {
	self := NewArray()
	self.Append(self.Value())

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"undefined", Undefined(), "3"},
		{"null", Null(), "2"},
		{"true", Bool(true), "1"},
		{"false", Bool(false), "0"},
		{"zero", Int(0), ")"},
		{"negative zero", Number(math.Copysign(0, -1)), ")"},
		{"one", Int(1), "*'"},
		{"87", Int(87), "*~"},
		{"88", Int(88), ",&' "},
		{"300", Int(300), ",J) "},
		{"-1", Int(-1), "+'"},
		{"-87", Int(-87), "+~"},
		{"-88", Int(-88), "-&' "},
		{"-300", Int(-300), "-J) "},
		{"max safe", Int(1<<53 - 1), ",-lG9U5IR( "},
		{"float", Number(1.5), "4) 1.5"},
		{"beyond safe", Number(1 << 53), "46 9007199254740992"},
		{"exponent", Number(1e21), "4+ 1e+21"},
		{"small exponent", Number(1e-7), "4* 1e-7"},
		{"nan", Number(math.NaN()), "4) NaN"},
		{"infinity", Number(math.Inf(1)), "4. Infinity"},
		{"-infinity", Number(math.Inf(-1)), "4$ -Infinity"},
		{"empty string", String(""), "'&"},
		{"string", String("hi"), "'(hi"},
		{"astral string", String("🌍"), "'(🌍"},
		{"bigint", BigInt(big.NewInt(5)), ".+ "},
		{"negative bigint", BigInt(big.NewInt(-5)), "$+ "},
		{"bigint zero", BigInt(new(big.Int)), ".& "},
		{"number object", NumberObject(1), "5*'"},
		{"bigint object", BigIntObject(big.NewInt(5)), "6.+ "},
		{"boolean object", BoolObject(true), "71"},
		{"string object", StringObject("a"), "8''a"},
		{"regexp", NewRegExp("a", "g"), "9''a''g"},
		{"date", DateMillis(1700000000000), ":,6Hxf1a) "},
		{"invalid date", DateMillis(math.NaN()), ":4) NaN"},
		{"empty object", NewObject().Value(), "<&"},
		{"object", NewObject().Set("a", Int(1)).Value(), "<'''a*'"},
		{"array", NewArray(Int(1), Int(2), Int(3)).Value(), ">)*'*(*)"},
		{"self cycle", self.Value(), ">';' "},
		{"empty set", NewSet().Value(), "@&"},
		{"set", NewSet(Int(1), Int(1), String("a")).Value(), "@(*'''a"},
		{"empty map", NewMap().Value(), "B&"},
		{"map", NewMap().Set(String("x"), Int(1)).Value(), "B'''x*'"},
		{"empty buffer", NewArrayBuffer(0).Value(), "D& )0'&"},
		{"zero buffer", NewArrayBuffer(4).Value(), "D* **0'&"},
		{"uint8array", NewUint8Array([]byte{1, 2}).Value(), "F& ( D( *(1')p+&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Serialize(tt.value)
			require.NoError(t, err)
			assert.Equal(t, MagicPrefix+tt.want, got)
		})
	}
}

func TestSerializeEndToEndExample(t *testing.T) {
	obj := NewObject().
		Set("a", Int(1)).
		Set("b", NewArray(Int(1), Int(2), Int(3)).Value()).
		Set("c", NewMap().Set(String("x"), Int(1)).Value())

	s, err := Serialize(obj.Value())
	require.NoError(t, err)
	assert.Equal(t, MagicPrefix+"<)''a*'''b>)*'*(*)''cB'''x*'", s)

	v, err := Deserialize(s)
	require.NoError(t, err)
	got := v.AsObject()
	a, _ := got.Get("a")
	assert.Equal(t, 1.0, a.AsNumber())
	b, _ := got.Get("b")
	require.Equal(t, 3, b.AsArray().Len())
	for i := 0; i < 3; i++ {
		assert.Equal(t, float64(i+1), b.AsArray().At(i).AsNumber())
	}
	c, _ := got.Get("c")
	x, ok := c.AsMap().Get(String("x"))
	require.True(t, ok)
	assert.Equal(t, 1.0, x.AsNumber())
}

func TestSerializeSizeBoundaries(t *testing.T) {
	small, err := Serialize(String(strings.Repeat("x", 87)))
	require.NoError(t, err)
	assert.Equal(t, "'~", small[len(MagicPrefix):len(MagicPrefix)+2])

	large, err := Serialize(String(strings.Repeat("x", 88)))
	require.NoError(t, err)
	assert.Equal(t, "(&' ", large[len(MagicPrefix):len(MagicPrefix)+4])

	elems := make([]Value, 88)
	for i := range elems {
		elems[i] = Null()
	}
	arr, err := Serialize(NewArray(elems...).Value())
	require.NoError(t, err)
	assert.Equal(t, "?&' ", arr[len(MagicPrefix):len(MagicPrefix)+4])

	for _, s := range []string{small, large, arr} {
		v, err := Deserialize(s)
		require.NoError(t, err)
		again, err := Serialize(v)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
}

func TestSerializeStringLengthCountsUTF16(t *testing.T) {
	// 44 astral characters are 88 UTF-16 code units.
	s, err := Serialize(String(strings.Repeat("🌍", 44)))
	require.NoError(t, err)
	assert.Equal(t, "(&' ", s[len(MagicPrefix):len(MagicPrefix)+4])
}

func TestSerializeSharedReferences(t *testing.T) {
	shared := NewObject().Set("k", String("v"))
	root := NewArray(shared.Value(), shared.Value())

	s, err := Serialize(root.Value())
	require.NoError(t, err)
	// The array is id 1 and the object id 2.
	assert.Equal(t, MagicPrefix+">(<'''k''v;( ", s)
}

func TestSerializeViewsShareBuffer(t *testing.T) {
	buf := NewArrayBuffer(8)
	a, err := NewTypedArray(Uint8Array, buf, 0, 4)
	require.NoError(t, err)
	b, err := NewTypedArray(Uint16Array, buf, 4, 2)
	require.NoError(t, err)

	s, err := Serialize(NewArray(a.Value(), b.Value()).Value())
	require.NoError(t, err)
	// array 1, first view 2, buffer 3, second view 4 pointing back at 3.
	assert.True(t, strings.HasSuffix(s, "I* ( ;) "), s)
}

func TestSerializeMaxDepth(t *testing.T) {
	v := Null()
	for i := 0; i < 20; i++ {
		v = NewArray(v).Value()
	}
	_, err := Serialize(v, WithMaxDepth(10))
	require.ErrorIs(t, err, ErrMaxDepthExceeded)

	_, err = Serialize(v, WithMaxDepth(21))
	require.NoError(t, err)

	_, err = Serialize(v, WithMaxDepth(0))
	require.NoError(t, err)
}

func TestSerializerReuse(t *testing.T) {
	s := NewSerializer()
	arr := NewArray(Int(1))
	first, err := s.Serialize(NewArray(arr.Value(), arr.Value()).Value())
	require.NoError(t, err)
	second, err := s.Serialize(NewArray(arr.Value(), arr.Value()).Value())
	require.NoError(t, err)
	assert.Equal(t, first, second, "reference ids restart for every call")
}

func TestSerializeConcurrent(t *testing.T) {
	shared := NewObject().Set("n", Int(42))
	values := make([]Value, 16)
	for i := range values {
		values[i] = NewArray(Int(int64(i)), shared.Value(), shared.Value()).Value()
	}
	want := make([]string, len(values))
	for i, v := range values {
		s, err := Serialize(v)
		require.NoError(t, err)
		want[i] = s
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(values)*20)
	for round := 0; round < 20; round++ {
		for i, v := range values {
			wg.Add(1)
			go func(i int, v Value) {
				defer wg.Done()
				s, err := Serialize(v)
				if err != nil {
					errs <- err
					return
				}
				if s != want[i] {
					errs <- errors.New("output differs under concurrency")
					return
				}
				back, err := Deserialize(s)
				if err != nil {
					errs <- err
					return
				}
				if !Equal(back, v) {
					errs <- errors.New("round trip differs under concurrency")
				}
			}(i, v)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestTagTable(t *testing.T) {
	assert.Equal(t, byte('\''), tagChar(tagStringSmall))
	assert.Equal(t, byte(';'), tagChar(tagReference))
	assert.Equal(t, byte('D'), tagChar(tagArrayBuffer))
	assert.Equal(t, byte('N'), tagChar(tagDataView))
	assert.Equal(t, tagBigIntNeg, tagOf('/'), "alias of '$'")
	assert.Equal(t, 0, tagOf('&'))
	assert.Equal(t, 0, tagOf('O'))
	assert.Equal(t, 0, tagOf('"'))
	assert.Equal(t, "DataView", TagName('N'))
	assert.Equal(t, "Tag('~')", TagName('~'))
	for k := Int8Array; k <= DataView; k++ {
		assert.Equal(t, k.String(), tagNames[k.tag()])
	}
}
