package s14e

import (
	"testing"
)

func FuzzDeserialize(f *testing.F) {
	seeds := []Value{
		Null(),
		Int(300),
		Number(-1.5e-9),
		String("hello 🌍"),
		NewObject().Set("a", NewArray(Int(1), Bool(true)).Value()).Value(),
		NewMap().Set(String("k"), NewSet(Int(1)).Value()).Value(),
		NewUint8Array([]byte{0, 0, 0, 1, 2, 3}).Value(),
		repetitive(),
	}
	for _, v := range seeds {
		s, err := Serialize(v)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(s)
		if s, err = Serialize(v, WithCompress()); err == nil {
			f.Add(s)
		}
	}
	f.Add(MagicPrefix + ">';' ")
	f.Add(MagicLZ4Prefix + "2")

	f.Fuzz(func(t *testing.T, s string) {
		opts := []Option{WithMaxByteLength(1 << 16), WithMaxDepth(200)}
		v, err := Deserialize(s, opts...)
		if err != nil {
			return
		}
		again, err := Serialize(v, opts...)
		if err != nil {
			t.Fatalf("re-serialize: %v", err)
		}
		back, err := Deserialize(again, opts...)
		if err != nil {
			t.Fatalf("decode of re-serialized %q: %v", again, err)
		}
		if !Equal(v, back) {
			t.Fatalf("round trip mismatch for %q", s)
		}
	})
}

func FuzzRoundTripString(f *testing.F) {
	f.Add("")
	f.Add("plain")
	f.Add("\x00\xff")
	f.Add("日本語 and 🌍")
	f.Fuzz(func(t *testing.T, str string) {
		s, err := Serialize(NewArray(String(str), String(str)).Value(), WithCompress())
		if err != nil {
			t.Fatal(err)
		}
		v, err := Deserialize(s)
		if err != nil {
			t.Fatalf("deserialize %q: %v", s, err)
		}
		if got := v.AsArray().At(0).AsString(); got != str {
			t.Fatalf("got %q, want %q", got, str)
		}
	})
}

func FuzzRoundTripBuffer(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0, 1})
	f.Add([]byte{1, 2, 3, 4, 5, 6, 7})
	f.Fuzz(func(t *testing.T, b []byte) {
		s, err := Serialize(ArrayBufferOf(b).Value())
		if err != nil {
			t.Fatal(err)
		}
		v, err := Deserialize(s)
		if err != nil {
			t.Fatalf("deserialize %q: %v", s, err)
		}
		got := v.AsArrayBuffer().Bytes()
		if string(got) != string(b) {
			t.Fatalf("got %v, want %v", got, b)
		}
	})
}
