package s14e

import (
	"fmt"
	"math"

	"github.com/gorhill/uBO-Scope/internal/wire"
)

// Serializer writes a value graph in the plain format. Its state lives for
// a single Serialize call, so a Serializer must not be shared between
// goroutines; the package-level Serialize makes a fresh one per call.
type Serializer struct {
	w        *wire.Writer
	refs     *writeRefs
	depth    int
	maxDepth int
	logger   Logger
}

// NewSerializer creates a serializer.
func NewSerializer(opts ...Option) *Serializer {
	return newSerializer(newConfig(opts))
}

func newSerializer(cfg *config) *Serializer {
	return &Serializer{
		w:        wire.NewWriter(256),
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
	}
}

// Serialize returns v in the plain format, prefix included. Compression is
// applied by the package-level Serialize.
func (s *Serializer) Serialize(v Value) (string, error) {
	s.w.Reset()
	s.refs = newWriteRefs()
	s.depth = 0
	s.w.WriteString(MagicPrefix)
	if err := s.writeValue(v); err != nil {
		return "", err
	}
	return s.w.String(), nil
}

func (s *Serializer) writeValue(v Value) error {
	s.depth++
	defer func() { s.depth-- }()
	if s.maxDepth > 0 && s.depth > s.maxDepth {
		return fmt.Errorf("%w: %d", ErrMaxDepthExceeded, s.maxDepth)
	}

	switch v.kind {
	case KindUndefined:
		s.writeTag(tagUndefined)
	case KindNull:
		s.writeTag(tagNull)
	case KindBool:
		if v.data.(bool) {
			s.writeTag(tagTrue)
		} else {
			s.writeTag(tagFalse)
		}
	case KindNumber:
		s.writeNumber(v.data.(float64))
	case KindBigInt:
		n := v.AsBigInt()
		if n.Sign() < 0 {
			s.writeTag(tagBigIntNeg)
		} else {
			s.writeTag(tagBigIntPos)
		}
		s.w.WriteBigUint(n)
	case KindString:
		s.writeString(v.data.(string))
	case KindBoxed:
		return s.writeBoxed(v.data.(*Boxed).v)
	case KindRegExp:
		r := v.data.(*RegExp)
		s.writeTag(tagRegExp)
		s.writeString(r.Source)
		s.writeString(r.Flags)
	case KindDate:
		s.writeTag(tagDate)
		s.writeNumber(v.data.(*date).ms)
	case KindObject, KindArray, KindSet, KindMap, KindArrayBuffer, KindTypedArray:
		return s.writeComposite(v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.kind)
	}
	return nil
}

func (s *Serializer) writeTag(tag int) {
	_ = s.w.WriteByte(tagChar(tag))
}

// writeSized writes the small tag with a one-digit size, or the large tag
// with a size numeral.
func (s *Serializer) writeSized(small, large, n int) {
	if n < wire.Base {
		s.writeTag(small)
		s.w.WriteDigit(n)
		return
	}
	s.writeTag(large)
	s.w.WriteUint(uint64(n))
}

func (s *Serializer) writeString(str string) {
	s.writeSized(tagStringSmall, tagStringLarge, wire.UTF16Length(str))
	s.w.WriteString(str)
}

func (s *Serializer) writeNumber(f float64) {
	switch {
	case f == 0:
		s.writeTag(tagZero)
	case !isSafeInteger(f):
		text := formatNumber(f)
		s.writeTag(tagFloat)
		s.w.WriteUint(uint64(len(text)))
		s.w.WriteString(text)
	case f >= float64(wire.Base):
		s.writeTag(tagIntLargePos)
		s.w.WriteUint(uint64(f))
	case f > 0:
		s.writeTag(tagIntSmallPos)
		s.w.WriteDigit(int(f))
	case f > -float64(wire.Base):
		s.writeTag(tagIntSmallNeg)
		s.w.WriteDigit(int(-f))
	default:
		s.writeTag(tagIntLargeNeg)
		s.w.WriteUint(uint64(math.Abs(f)))
	}
}

func (s *Serializer) writeBoxed(inner Value) error {
	switch inner.kind {
	case KindNumber:
		s.writeTag(tagNumberObj)
	case KindBigInt:
		s.writeTag(tagBigIntObj)
	case KindBool:
		s.writeTag(tagBoolObj)
	case KindString:
		s.writeTag(tagStringObj)
	default:
		return fmt.Errorf("%w: boxed %s", ErrUnsupportedType, inner.kind)
	}
	return s.writeValue(inner)
}

func (s *Serializer) writeComposite(v Value) error {
	if id, seen := s.refs.assign(v); seen {
		s.writeTag(tagReference)
		s.w.WriteUint(id)
		return nil
	}

	switch c := v.data.(type) {
	case *Object:
		s.writeSized(tagObjectSmall, tagObjectLarge, c.Len())
		for _, k := range c.keys {
			s.writeString(k)
			if err := s.writeValue(c.props[k]); err != nil {
				return err
			}
		}
	case *Array:
		s.writeSized(tagArraySmall, tagArrayLarge, len(c.elems))
		for _, e := range c.elems {
			if err := s.writeValue(e); err != nil {
				return err
			}
		}
	case *Set:
		s.writeSized(tagSetSmall, tagSetLarge, len(c.values))
		for _, e := range c.values {
			if err := s.writeValue(e); err != nil {
				return err
			}
		}
	case *Map:
		s.writeSized(tagMapSmall, tagMapLarge, len(c.entries))
		for _, e := range c.entries {
			if err := s.writeValue(e.Key); err != nil {
				return err
			}
			if err := s.writeValue(e.Value); err != nil {
				return err
			}
		}
	case *ArrayBuffer:
		s.writeArrayBuffer(c)
	case *TypedArray:
		s.writeTag(c.kind.tag())
		s.w.WriteUint(uint64(c.ByteOffset()))
		s.w.WriteUint(uint64(c.Len()))
		return s.writeValue(c.buf.Value())
	}
	return nil
}

func (s *Serializer) writeArrayBuffer(b *ArrayBuffer) {
	layout := wire.AnalyzeBuffer(b.data)
	s.logger.Debug("s14e: array buffer",
		"byteLength", len(b.data), "end", layout.End, "dense", layout.Dense, "size", layout.Size())

	s.writeTag(tagArrayBuffer)
	s.w.WriteUint(uint64(len(b.data)))
	s.writeNumber(float64(b.MaxByteLength()))
	if layout.Dense {
		s.writeTag(tagTrue)
	} else {
		s.writeTag(tagFalse)
	}
	s.writeString(wire.EncodeBuffer(b.data, layout))
}
