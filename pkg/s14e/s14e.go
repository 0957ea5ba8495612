// Package s14e serializes JavaScript-style value graphs to compact strings
// made only of printable ASCII, safe to keep in string-only storage.
//
// # Basic Usage
//
// Build a value and serialize it:
//
//	obj := s14e.NewObject().
//	    Set("a", s14e.Int(1)).
//	    Set("b", s14e.NewArray(s14e.Int(1), s14e.Int(2), s14e.Int(3)).Value())
//	s, err := s14e.Serialize(obj.Value(), s14e.WithCompress())
//
// Read it back:
//
//	v, err := s14e.Deserialize(s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(v.AsObject().Len()) // 2
//
// # Format
//
// Output starts with "S14EDATA_1 " (plain) or "S14EDATA/lz4_1 "
// (compressed). Every node is a tag character followed by its payload.
// Numbers are written as base-88 numerals over a fixed alphabet that
// avoids '"' and '\', so the output can be embedded in JSON unescaped.
//
// Objects, arrays, sets, maps, array buffers and views are written once;
// later occurrences of the same container are back-references, so shared
// substructure and cycles survive a round trip.
//
// The compressed form is the plain form run through LZ4 and wrapped in a
// small serialized envelope. Serialize only returns it when it is shorter.
//
// # Supported Types
//
//   - Primitives: undefined, null, boolean, number, bigint, string
//   - Wrappers: Number, Boolean, String and BigInt objects
//   - Date, RegExp (source and flags)
//   - Containers: plain objects, Array, Set, Map (insertion order kept)
//   - Binary: ArrayBuffer (fixed or resizable), typed arrays, DataView
package s14e

import (
	"fmt"
	"strings"

	"github.com/gorhill/uBO-Scope/internal/lz4block"
	"github.com/gorhill/uBO-Scope/internal/wire"
)

// Version is the format version written in both prefixes.
const Version = 1

// Format prefixes. Both embed Version and end with the numeral separator.
const (
	MagicPrefix    = "S14EDATA_1 "
	MagicLZ4Prefix = "S14EDATA/lz4_1 "
)

// Serialize returns the serialized form of v. With WithCompress, the
// compressed form is returned instead when it is shorter.
func Serialize(v Value, opts ...Option) (string, error) {
	cfg := newConfig(opts)
	plain, err := newSerializer(cfg).Serialize(v)
	if err != nil {
		return "", err
	}
	plainLen := wire.UTF16Length(plain)
	if !cfg.shouldCompress(plainLen) {
		return plain, nil
	}

	packed, err := compress(plain, cfg)
	if err != nil {
		return "", err
	}
	if len(packed) >= plainLen {
		cfg.logger.Debug("s14e: kept plain form", "plain", plainLen, "compressed", len(packed))
		return plain, nil
	}
	cfg.logger.Debug("s14e: chose compressed form", "plain", plainLen, "compressed", len(packed))
	return packed, nil
}

// compress wraps the LZ4 block of plain in an envelope object holding the
// uncompressed UTF-8 size and the block as a Uint8Array.
func compress(plain string, cfg *config) (string, error) {
	block, err := lz4block.Encode([]byte(plain))
	if err != nil {
		return "", fmt.Errorf("s14e: compress: %w", err)
	}
	envelope := NewObject().
		Set("size", Int(int64(len(plain)))).
		Set("data", NewUint8Array(block).Value())

	s, err := newSerializer(cfg).Serialize(envelope.Value())
	if err != nil {
		return "", err
	}
	return MagicLZ4Prefix + s[len(MagicPrefix):], nil
}

// Deserialize reads a value written by Serialize, compressed or not.
// Malformed input of any kind is reported as an error; Deserialize never
// panics.
func Deserialize(s string, opts ...Option) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = Value{}, fmt.Errorf("%w: %v", ErrMalformedData, r)
		}
	}()

	cfg := newConfig(opts)
	if strings.HasPrefix(s, MagicLZ4Prefix) {
		if s, err = decompress(s, cfg); err != nil {
			return Value{}, err
		}
	}
	if !strings.HasPrefix(s, MagicPrefix) {
		return Value{}, fmt.Errorf("%w: no format prefix", ErrInvalidHeader)
	}
	return newDeserializer(s, cfg).Deserialize()
}

// decompress unwraps the envelope of a compressed payload and returns the
// plain form inside.
func decompress(s string, cfg *config) (string, error) {
	env, err := newDeserializer(MagicPrefix+s[len(MagicLZ4Prefix):], cfg).Deserialize()
	if err != nil {
		return "", fmt.Errorf("s14e: compressed envelope: %w", err)
	}
	if !env.IsObject() {
		return "", fmt.Errorf("%w: compressed envelope is %s", ErrMalformedData, env.Kind())
	}
	sizeV, _ := env.AsObject().Get("size")
	dataV, _ := env.AsObject().Get("data")
	if !sizeV.IsNumber() || dataV.Kind() != KindTypedArray {
		return "", fmt.Errorf("%w: compressed envelope fields", ErrMalformedData)
	}
	size := sizeV.AsNumber()
	block := dataV.AsTypedArray().Bytes()
	if !isSafeInteger(size) || size < 0 {
		return "", fmt.Errorf("%w: compressed size %v", ErrMalformedData, size)
	}
	// Each block byte expands to at most 255 output bytes.
	if size > float64(len(block))*255 || (cfg.maxByteLength > 0 && size > float64(cfg.maxByteLength)) {
		return "", fmt.Errorf("%w: compressed size %v for a %d byte block", ErrMaxSizeExceeded, size, len(block))
	}
	out, err := lz4block.Decode(block, int(size))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedData, err)
	}
	return string(out), nil
}

// MustDeserialize is like Deserialize but panics on error. Use it only on
// data known to be valid.
func MustDeserialize(s string, opts ...Option) Value {
	v, err := Deserialize(s, opts...)
	if err != nil {
		panic(fmt.Sprintf("s14e.MustDeserialize: %v", err))
	}
	return v
}

// IsSerialized reports whether s starts with either format prefix. It does
// not validate the rest of s.
func IsSerialized(s string) bool {
	return strings.HasPrefix(s, MagicLZ4Prefix) || strings.HasPrefix(s, MagicPrefix)
}

// IsCompressed reports whether s starts with the compressed-format prefix.
func IsCompressed(s string) bool {
	return strings.HasPrefix(s, MagicLZ4Prefix)
}
