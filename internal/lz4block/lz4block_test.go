package lz4block

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, src []byte) []byte {
	t.Helper()
	block, err := Encode(src)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(block), EncodeBound(len(src)))

	got, err := Decode(block, len(src))
	require.NoError(t, err)
	require.True(t, bytes.Equal(src, got), "round trip mismatch for %d bytes", len(src))
	return block
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 70000)
	rng.Read(random)

	tests := []struct {
		name string
		src  []byte
	}{
		{"empty", nil},
		{"one byte", []byte{'x'}},
		{"below match limit", []byte("hello world")},
		{"short repeat", []byte("abcabcabcabcabcabc")},
		{"text", []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50))},
		{"zeros", make([]byte, 100000)},
		{"random", random},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, tt.src)
		})
	}
}

func TestEmptyBlock(t *testing.T) {
	block, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, block)

	got, err := Decode(block, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Decode(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompresses(t *testing.T) {
	src := []byte(strings.Repeat("abcd", 1000))
	block := roundTrip(t, src)
	assert.Less(t, len(block), 64)
}

func TestLongLiteralRun(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	src := make([]byte, 600)
	rng.Read(src)
	block := roundTrip(t, src)
	// 600 literals: token, two 255 extension bytes, then 75.
	assert.Equal(t, []byte{0xF0, 255, 255, 75}, block[:4])
}

func TestEncoderReuse(t *testing.T) {
	a := []byte(strings.Repeat("0123456789", 200))
	b := []byte(strings.Repeat("zyxwvu", 300))

	var enc Encoder
	first, err := enc.Encode(nil, a)
	require.NoError(t, err)
	second, err := enc.Encode(nil, b)
	require.NoError(t, err)

	freshA, _ := Encode(a)
	freshB, _ := Encode(b)
	assert.Equal(t, freshA, first)
	assert.Equal(t, freshB, second)
}

func TestEncodeAppends(t *testing.T) {
	prefix := []byte("hdr")
	out, err := new(Encoder).Encode(prefix, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "hdr", string(out[:3]))
	got, err := Decode(out[3:], 7)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestOverlappingMatch(t *testing.T) {
	// One literal, then a length-4 match at offset 1, then an empty tail.
	block := []byte{0x10, 'a', 0x01, 0x00, 0x00}
	got, err := Decode(block, 5)
	require.NoError(t, err)
	assert.Equal(t, "aaaaa", string(got))
}

func TestDecodeCorrupt(t *testing.T) {
	valid, err := Encode([]byte(strings.Repeat("abcdefgh", 64)))
	require.NoError(t, err)

	tests := []struct {
		name  string
		block []byte
		size  int
	}{
		{"zero offset", []byte{0x10, 'a', 0x00, 0x00, 0x00}, 5},
		{"offset before start", []byte{0x10, 'a', 0x02, 0x00, 0x00}, 5},
		{"truncated offset", []byte{0x10, 'a', 0x01}, 5},
		{"literals past input", []byte{0x50, 'a', 'b'}, 5},
		{"literals past output", []byte{0x30, 'a', 'b', 'c'}, 2},
		{"truncated length", []byte{0xF0, 255}, 1000},
		{"match past output", []byte{0x1F, 'a', 0x01, 0x00, 0x10, 0x00}, 10},
		{"short output", []byte{0x20, 'a', 'b'}, 3},
		{"negative size", []byte{0x00}, -1},
		{"truncated block", valid[:len(valid)/2], 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.block, tt.size)
			require.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecodeSizeMismatch(t *testing.T) {
	block, err := Encode([]byte("hello"))
	require.NoError(t, err)

	_, err = Decode(block, 4)
	require.ErrorIs(t, err, ErrCorrupt)
	_, err = Decode(block, 6)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestEncodeBound(t *testing.T) {
	assert.Equal(t, 16, EncodeBound(0))
	assert.Equal(t, 255+1+16, EncodeBound(255))
	assert.Equal(t, 0, EncodeBound(MaxInputSize+1))
}

func FuzzDecode(f *testing.F) {
	seed, _ := Encode([]byte(strings.Repeat("fuzz", 20)))
	f.Add(seed, 80)
	f.Add([]byte{0x10, 'a', 0x01, 0x00, 0x00}, 5)
	f.Add([]byte{}, 0)
	f.Fuzz(func(t *testing.T, block []byte, size int) {
		if size < 0 || size > 1<<20 {
			return
		}
		got, err := Decode(block, size)
		if err == nil && len(got) != size {
			t.Fatalf("decoded %d bytes, want %d", len(got), size)
		}
	})
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("hello hello hello hello"))
	f.Add(make([]byte, 64))
	f.Fuzz(func(t *testing.T, src []byte) {
		block, err := Encode(src)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Decode(block, len(src))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(src, got) {
			t.Fatal("round trip mismatch")
		}
	})
}
