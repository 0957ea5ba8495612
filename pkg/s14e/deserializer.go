package s14e

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gorhill/uBO-Scope/internal/wire"
)

// Common errors.
var (
	ErrInvalidHeader    = errors.New("s14e: invalid header")
	ErrUnexpectedTag    = errors.New("s14e: unexpected tag")
	ErrMalformedData    = errors.New("s14e: malformed data")
	ErrInvalidReference = errors.New("s14e: invalid object reference")
	ErrMaxDepthExceeded = errors.New("s14e: max depth exceeded")
	ErrMaxSizeExceeded  = errors.New("s14e: max size exceeded")
	ErrUnsupportedType  = errors.New("s14e: unsupported type")
)

// Deserializer reads one value in the plain format. Like Serializer, it
// holds per-call state and must not be shared between goroutines.
type Deserializer struct {
	r             *wire.Reader
	refs          *readRefs
	depth         int
	maxDepth      int
	maxByteLength int
}

// NewDeserializer creates a deserializer for s, which must start with
// MagicPrefix.
func NewDeserializer(s string, opts ...Option) *Deserializer {
	return newDeserializer(s, newConfig(opts))
}

func newDeserializer(s string, cfg *config) *Deserializer {
	return &Deserializer{
		r:             wire.NewReader(s),
		refs:          &readRefs{},
		maxDepth:      cfg.maxDepth,
		maxByteLength: cfg.maxByteLength,
	}
}

// Deserialize checks the prefix and reads the root value. Input after the
// root value is ignored.
func (d *Deserializer) Deserialize() (Value, error) {
	if !strings.HasPrefix(d.r.Data(), MagicPrefix) {
		return Value{}, fmt.Errorf("%w: missing %q", ErrInvalidHeader, MagicPrefix)
	}
	d.r.Reset()
	_ = d.r.Skip(len(MagicPrefix))
	d.refs = &readRefs{}
	d.depth = 0
	return d.readValue()
}

// Pos returns the read offset, which after Deserialize is the end of the
// root value.
func (d *Deserializer) Pos() int {
	return d.r.Pos()
}

// Done reports whether the input has been read to its end.
func (d *Deserializer) Done() bool {
	return d.r.EOF()
}

// RootTag returns the wire character of the root value's tag without
// reading the value.
func (d *Deserializer) RootTag() (byte, error) {
	if !strings.HasPrefix(d.r.Data(), MagicPrefix) {
		return 0, fmt.Errorf("%w: missing %q", ErrInvalidHeader, MagicPrefix)
	}
	d.r.Reset()
	_ = d.r.Skip(len(MagicPrefix))
	c, err := d.r.Peek()
	if err != nil {
		return 0, malformed(err)
	}
	return c, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedData, err)
}

func (d *Deserializer) readValue() (Value, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.maxDepth > 0 && d.depth > d.maxDepth {
		return Value{}, fmt.Errorf("%w: %d", ErrMaxDepthExceeded, d.maxDepth)
	}

	pos := d.r.Pos()
	c, err := d.r.ReadByte()
	if err != nil {
		return Value{}, malformed(err)
	}

	switch tag := tagOf(c); tag {
	case tagStringSmall, tagStringLarge:
		s, err := d.readString(tag == tagStringSmall)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil

	case tagZero:
		return Number(0), nil
	case tagIntSmallPos, tagIntSmallNeg:
		n, err := d.r.ReadDigit()
		if err != nil {
			return Value{}, malformed(err)
		}
		if tag == tagIntSmallNeg {
			return Number(-float64(n)), nil
		}
		return Number(float64(n)), nil
	case tagIntLargePos, tagIntLargeNeg:
		n, err := d.r.ReadUint()
		if err != nil {
			return Value{}, malformed(err)
		}
		if tag == tagIntLargeNeg {
			return Number(-float64(n)), nil
		}
		return Number(float64(n)), nil
	case tagFloat:
		return d.readFloat()
	case tagBigIntPos, tagBigIntNeg:
		n, err := d.r.ReadBigUint()
		if err != nil {
			return Value{}, malformed(err)
		}
		if tag == tagBigIntNeg {
			n.Neg(n)
		}
		return BigInt(n), nil

	case tagFalse:
		return Bool(false), nil
	case tagTrue:
		return Bool(true), nil
	case tagNull:
		return Null(), nil
	case tagUndefined:
		return Undefined(), nil

	case tagNumberObj:
		return d.readBoxed(KindNumber)
	case tagBigIntObj:
		return d.readBoxed(KindBigInt)
	case tagBoolObj:
		return d.readBoxed(KindBool)
	case tagStringObj:
		return d.readBoxed(KindString)
	case tagRegExp:
		source, err := d.readValueOf(KindString, "RegExp source")
		if err != nil {
			return Value{}, err
		}
		flags, err := d.readValueOf(KindString, "RegExp flags")
		if err != nil {
			return Value{}, err
		}
		return NewRegExp(source.AsString(), flags.AsString()), nil
	case tagDate:
		ms, err := d.readValueOf(KindNumber, "Date time value")
		if err != nil {
			return Value{}, err
		}
		return DateMillis(ms.AsNumber()), nil

	case tagReference:
		id, err := d.r.ReadUint()
		if err != nil {
			return Value{}, malformed(err)
		}
		return d.refs.resolve(id)

	case tagObjectSmall, tagObjectLarge:
		return d.readObject(tag == tagObjectSmall)
	case tagArraySmall, tagArrayLarge:
		return d.readArray(tag == tagArraySmall)
	case tagSetSmall, tagSetLarge:
		return d.readSet(tag == tagSetSmall)
	case tagMapSmall, tagMapLarge:
		return d.readMap(tag == tagMapSmall)
	case tagArrayBuffer:
		return d.readArrayBuffer()
	case tagInt8Array, tagUint8Array, tagUint8ClampedArray, tagInt16Array, tagUint16Array,
		tagInt32Array, tagUint32Array, tagFloat32Array, tagFloat64Array, tagDataView:
		return d.readTypedArray(ArrayKind(tag - tagInt8Array))
	}
	return Value{}, fmt.Errorf("%w: %q at offset %d", ErrUnexpectedTag, c, pos)
}

// readSize reads a one-digit or numeral size. Every counted item takes at
// least one character, so a size beyond the remaining input is malformed.
func (d *Deserializer) readSize(small bool) (int, error) {
	var n uint64
	if small {
		digit, err := d.r.ReadDigit()
		if err != nil {
			return 0, malformed(err)
		}
		n = uint64(digit)
	} else {
		var err error
		if n, err = d.r.ReadUint(); err != nil {
			return 0, malformed(err)
		}
	}
	if n > uint64(d.r.Remaining()) {
		return 0, fmt.Errorf("%w: size %d exceeds remaining input of %d", ErrMalformedData, n, d.r.Remaining())
	}
	return int(n), nil
}

func (d *Deserializer) readString(small bool) (string, error) {
	n, err := d.readSize(small)
	if err != nil {
		return "", err
	}
	s, err := d.r.ReadString(n)
	if err != nil {
		return "", malformed(err)
	}
	return s, nil
}

func (d *Deserializer) readFloat() (Value, error) {
	s, err := d.readString(false)
	if err != nil {
		return Value{}, err
	}
	f, err := parseNumber(s)
	if err != nil {
		return Value{}, malformed(err)
	}
	return Number(f), nil
}

// readValueOf reads a value that must be of kind k.
func (d *Deserializer) readValueOf(k Kind, what string) (Value, error) {
	v, err := d.readValue()
	if err != nil {
		return Value{}, err
	}
	if v.kind != k {
		return Value{}, fmt.Errorf("%w: %s is %s, want %s", ErrMalformedData, what, v.kind, k)
	}
	return v, nil
}

func (d *Deserializer) readBoxed(k Kind) (Value, error) {
	v, err := d.readValueOf(k, "boxed primitive")
	if err != nil {
		return Value{}, err
	}
	return boxed(v), nil
}

// objectKey turns a decoded key into a property name. Writers only emit
// strings; numbers are accepted and named the way JavaScript names them.
func objectKey(v Value) (string, error) {
	switch v.kind {
	case KindString:
		return v.data.(string), nil
	case KindNumber:
		return formatNumber(v.data.(float64)), nil
	}
	return "", fmt.Errorf("%w: object key is %s", ErrMalformedData, v.kind)
}

func (d *Deserializer) readObject(small bool) (Value, error) {
	o := NewObject()
	d.refs.add(o.Value())
	n, err := d.readSize(small)
	if err != nil {
		return Value{}, err
	}
	for i := 0; i < n; i++ {
		k, err := d.readValue()
		if err != nil {
			return Value{}, err
		}
		key, err := objectKey(k)
		if err != nil {
			return Value{}, err
		}
		v, err := d.readValue()
		if err != nil {
			return Value{}, err
		}
		o.Set(key, v)
	}
	return o.Value(), nil
}

func (d *Deserializer) readArray(small bool) (Value, error) {
	a := &Array{}
	d.refs.add(a.Value())
	n, err := d.readSize(small)
	if err != nil {
		return Value{}, err
	}
	a.elems = make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.readValue()
		if err != nil {
			return Value{}, err
		}
		a.elems = append(a.elems, v)
	}
	return a.Value(), nil
}

func (d *Deserializer) readSet(small bool) (Value, error) {
	s := NewSet()
	d.refs.add(s.Value())
	n, err := d.readSize(small)
	if err != nil {
		return Value{}, err
	}
	for i := 0; i < n; i++ {
		v, err := d.readValue()
		if err != nil {
			return Value{}, err
		}
		s.Add(v)
	}
	return s.Value(), nil
}

func (d *Deserializer) readMap(small bool) (Value, error) {
	m := NewMap()
	d.refs.add(m.Value())
	n, err := d.readSize(small)
	if err != nil {
		return Value{}, err
	}
	for i := 0; i < n; i++ {
		k, err := d.readValue()
		if err != nil {
			return Value{}, err
		}
		v, err := d.readValue()
		if err != nil {
			return Value{}, err
		}
		m.Set(k, v)
	}
	return m.Value(), nil
}

// readByteLength reads a length numeral bounded by maxByteLength.
func (d *Deserializer) readByteLength() (int, error) {
	n, err := d.r.ReadUint()
	if err != nil {
		return 0, malformed(err)
	}
	if d.maxByteLength > 0 && n > uint64(d.maxByteLength) {
		return 0, fmt.Errorf("%w: byte length %d exceeds limit %d", ErrMaxSizeExceeded, n, d.maxByteLength)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: byte length %d", ErrMaxSizeExceeded, n)
	}
	return int(n), nil
}

func (d *Deserializer) readArrayBuffer() (Value, error) {
	id := d.refs.allocate()
	n, err := d.readByteLength()
	if err != nil {
		return Value{}, err
	}
	maxV, err := d.readValueOf(KindNumber, "maxByteLength")
	if err != nil {
		return Value{}, err
	}
	dense, err := d.readValueOf(KindBool, "dense flag")
	if err != nil {
		return Value{}, err
	}
	payload, err := d.readValueOf(KindString, "buffer payload")
	if err != nil {
		return Value{}, err
	}

	var buf *ArrayBuffer
	if limit := maxV.AsNumber(); limit != 0 && limit != float64(n) {
		if !isSafeInteger(limit) || limit < float64(n) {
			return Value{}, fmt.Errorf("%w: maxByteLength %v for byteLength %d", ErrMalformedData, limit, n)
		}
		if d.maxByteLength > 0 && limit > float64(d.maxByteLength) {
			return Value{}, fmt.Errorf("%w: maxByteLength %v exceeds limit %d", ErrMaxSizeExceeded, limit, d.maxByteLength)
		}
		if buf, err = NewResizableArrayBuffer(n, int(limit)); err != nil {
			return Value{}, malformed(err)
		}
	} else {
		buf = NewArrayBuffer(n)
	}

	if dense.AsBool() {
		err = wire.DecodeDense(payload.AsString(), buf.data)
	} else {
		err = wire.DecodeSparse(payload.AsString(), buf.data)
	}
	if err != nil {
		return Value{}, malformed(err)
	}
	v := buf.Value()
	d.refs.register(id, v)
	return v, nil
}

func (d *Deserializer) readTypedArray(kind ArrayKind) (Value, error) {
	id := d.refs.allocate()
	offset, err := d.readByteLength()
	if err != nil {
		return Value{}, err
	}
	length, err := d.readByteLength()
	if err != nil {
		return Value{}, err
	}
	bv, err := d.readValueOf(KindArrayBuffer, kind.String()+" buffer")
	if err != nil {
		return Value{}, err
	}
	t, err := NewTypedArray(kind, bv.AsArrayBuffer(), offset, length)
	if err != nil {
		return Value{}, malformed(err)
	}
	v := t.Value()
	d.refs.register(id, v)
	return v, nil
}
