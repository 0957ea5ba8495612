package s14e

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strings"
	"time"
)

// ToGo converts a Value to its closest Go equivalent:
//   - undefined, null → nil
//   - boolean → bool
//   - number → float64
//   - bigint → *big.Int
//   - string → string
//   - Date → time.Time
//   - RegExp → *RegExp
//   - Number/Boolean/String/BigInt objects → the wrapped primitive
//   - object → map[string]any
//   - Array, Set → []any
//   - Map → map[any]any (keys that are not comparable in Go stay Values)
//   - ArrayBuffer → []byte (shared, not copied)
//   - typed array, DataView → *TypedArray
//
// Shared containers convert once, so cycles become cyclic Go values.
func ToGo(v Value) any {
	return toGo(v, make(map[any]any))
}

func toGo(v Value, seen map[any]any) any {
	switch v.kind {
	case KindUndefined, KindNull:
		return nil
	case KindBoxed:
		return toGo(v.AsBoxed().v, seen)
	case KindDate:
		return v.AsDate()
	case KindArrayBuffer:
		return v.AsArrayBuffer().data
	case KindObject, KindArray, KindSet, KindMap:
	default:
		return v.data
	}

	if out, ok := seen[v.data]; ok {
		return out
	}
	switch c := v.data.(type) {
	case *Object:
		out := make(map[string]any, len(c.keys))
		seen[c] = out
		for _, k := range c.keys {
			out[k] = toGo(c.props[k], seen)
		}
		return out
	case *Array:
		out := make([]any, len(c.elems))
		seen[c] = out
		for i, e := range c.elems {
			out[i] = toGo(e, seen)
		}
		return out
	case *Set:
		out := make([]any, len(c.values))
		seen[c] = out
		for i, e := range c.values {
			out[i] = toGo(e, seen)
		}
		return out
	case *Map:
		out := make(map[any]any, len(c.entries))
		seen[c] = out
		for _, e := range c.entries {
			k := toGo(e.Key, seen)
			if k != nil && !reflect.TypeOf(k).Comparable() {
				k = e.Key
			}
			out[k] = toGo(e.Value, seen)
		}
		return out
	}
	return nil
}

// FromGo converts a Go value to a Value:
//   - nil, nil pointers and nil maps → null
//   - bool → boolean
//   - integer and float kinds → number
//   - *big.Int, big.Int → bigint
//   - string → string
//   - time.Time → Date
//   - []byte → ArrayBuffer (shared, not copied)
//   - Value, *Object, *Array, *Set, *Map, *ArrayBuffer, *TypedArray, *RegExp → as is
//   - slices and arrays → Array
//   - maps with string keys → object, keys sorted
//   - other maps → Map, keys sorted by their formatted value
//   - structs → object of exported fields, named by their json tag if any
//   - pointers and interfaces → the value they hold
//
// A Go map, slice, or pointer to a struct or array reached twice converts
// to one shared container, so cyclic Go data becomes a cyclic graph. Channels, functions and complex
// numbers return ErrUnsupportedType.
func FromGo(v any) (Value, error) {
	c := &fromGo{seen: make(map[goRef]Value)}
	return c.convert(reflect.ValueOf(v))
}

type goRef struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type fromGo struct {
	seen map[goRef]Value
}

func (c *fromGo) convert(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}

	if rv.CanInterface() {
		if v, ok := known(rv.Interface()); ok {
			return v, nil
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		ref := goRef{typ: rv.Type(), ptr: rv.Pointer()}
		if v, ok := c.seen[ref]; ok {
			return v, nil
		}
		// Zero-sized values may share an address.
		switch e := rv.Elem(); e.Kind() {
		case reflect.Struct:
			if e.Type().Size() > 0 {
				return c.convertStruct(e, ref)
			}
		case reflect.Array:
			if e.Type().Size() > 0 {
				return c.convertList(e, ref)
			}
		}
		return c.convert(rv.Elem())
	case reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return c.convert(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Len() == 0 {
			return c.convertList(rv, goRef{})
		}
		return c.convertList(rv, goRef{typ: rv.Type(), ptr: uintptr(rv.UnsafePointer()), len: rv.Len()})
	case reflect.Array:
		return c.convertList(rv, goRef{})
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		return c.convertMap(rv)
	case reflect.Struct:
		return c.convertStruct(rv, goRef{})
	}
	return Value{}, fmt.Errorf("%w: Go type %s", ErrUnsupportedType, rv.Type())
}

// known converts the Go types with a direct Value counterpart.
func known(x any) (Value, bool) {
	switch x := x.(type) {
	case Value:
		return x, true
	case *Object:
		return orNull(x == nil, func() Value { return x.Value() }), true
	case *Array:
		return orNull(x == nil, func() Value { return x.Value() }), true
	case *Set:
		return orNull(x == nil, func() Value { return x.Value() }), true
	case *Map:
		return orNull(x == nil, func() Value { return x.Value() }), true
	case *ArrayBuffer:
		return orNull(x == nil, func() Value { return x.Value() }), true
	case *TypedArray:
		return orNull(x == nil, func() Value { return x.Value() }), true
	case *RegExp:
		return orNull(x == nil, func() Value { return NewRegExp(x.Source, x.Flags) }), true
	case *big.Int:
		return orNull(x == nil, func() Value { return BigInt(new(big.Int).Set(x)) }), true
	case big.Int:
		return BigInt(new(big.Int).Set(&x)), true
	case time.Time:
		return Date(x), true
	case []byte:
		return orNull(x == nil, func() Value { return ArrayBufferOf(x).Value() }), true
	}
	return Value{}, false
}

func orNull(isNil bool, fn func() Value) Value {
	if isNil {
		return Null()
	}
	return fn()
}

func (c *fromGo) convertList(rv reflect.Value, ref goRef) (Value, error) {
	if ref.typ != nil {
		if v, ok := c.seen[ref]; ok {
			return v, nil
		}
	}
	a := &Array{elems: make([]Value, 0, rv.Len())}
	if ref.typ != nil {
		c.seen[ref] = a.Value()
	}
	for i := 0; i < rv.Len(); i++ {
		e, err := c.convert(rv.Index(i))
		if err != nil {
			return Value{}, fmt.Errorf("[%d]: %w", i, err)
		}
		a.elems = append(a.elems, e)
	}
	return a.Value(), nil
}

func (c *fromGo) convertMap(rv reflect.Value) (Value, error) {
	ref := goRef{typ: rv.Type(), ptr: uintptr(rv.UnsafePointer())}
	if v, ok := c.seen[ref]; ok {
		return v, nil
	}

	keys := rv.MapKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = fmt.Sprint(k.Interface())
	}
	sort.Sort(byName{keys: keys, names: names})

	if rv.Type().Key().Kind() == reflect.String {
		o := NewObject()
		c.seen[ref] = o.Value()
		for i, k := range keys {
			e, err := c.convert(rv.MapIndex(k))
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", names[i], err)
			}
			o.Set(k.String(), e)
		}
		return o.Value(), nil
	}

	m := NewMap()
	c.seen[ref] = m.Value()
	for i, k := range keys {
		kv, err := c.convert(k)
		if err != nil {
			return Value{}, fmt.Errorf("key %s: %w", names[i], err)
		}
		e, err := c.convert(rv.MapIndex(k))
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", names[i], err)
		}
		m.Set(kv, e)
	}
	return m.Value(), nil
}

type byName struct {
	keys  []reflect.Value
	names []string
}

func (b byName) Len() int           { return len(b.keys) }
func (b byName) Less(i, j int) bool { return b.names[i] < b.names[j] }
func (b byName) Swap(i, j int) {
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
	b.names[i], b.names[j] = b.names[j], b.names[i]
}

func (c *fromGo) convertStruct(rv reflect.Value, ref goRef) (Value, error) {
	t := rv.Type()
	o := NewObject()
	if ref.typ != nil {
		c.seen[ref] = o.Value()
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		e, err := c.convert(rv.Field(i))
		if err != nil {
			return Value{}, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}
		o.Set(name, e)
	}
	return o.Value(), nil
}
