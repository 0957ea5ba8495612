package s14e

import (
	"math"
	"math/big"
)

// Object is a plain JavaScript object with string keys kept in insertion
// order.
type Object struct {
	keys  []string
	props map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]Value)}
}

// Value returns o as a Value.
func (o *Object) Value() Value {
	return Value{kind: KindObject, data: o}
}

// Set sets a property and returns o. A new key is appended to the key
// order; an existing key keeps its position.
func (o *Object) Set(key string, v Value) *Object {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
	return o
}

// Get returns a property and whether it exists.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.props[key]
	return v, ok
}

// Delete removes a property.
func (o *Object) Delete(key string) {
	if _, ok := o.props[key]; !ok {
		return
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Range calls fn for each property in insertion order until fn returns
// false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.props[k]) {
			return
		}
	}
}

// Array is a JavaScript array.
type Array struct {
	elems []Value
}

// NewArray returns an array holding elems.
func NewArray(elems ...Value) *Array {
	return &Array{elems: elems}
}

// Value returns a as a Value.
func (a *Array) Value() Value {
	return Value{kind: KindArray, data: a}
}

// Append adds elements at the end.
func (a *Array) Append(elems ...Value) *Array {
	a.elems = append(a.elems, elems...)
	return a
}

// Len returns the array length.
func (a *Array) Len() int {
	return len(a.elems)
}

// At returns element i, or undefined when i is out of range.
func (a *Array) At(i int) Value {
	if i < 0 || i >= len(a.elems) {
		return Undefined()
	}
	return a.elems[i]
}

// SetAt replaces element i, growing the array with undefined as needed.
func (a *Array) SetAt(i int, v Value) {
	for len(a.elems) <= i {
		a.elems = append(a.elems, Undefined())
	}
	a.elems[i] = v
}

// Elements returns the backing slice. Callers must not append to it.
func (a *Array) Elements() []Value {
	return a.elems
}

// mapKey gives Map and Set keys SameValueZero semantics: primitives
// compare by value (with -0 equal to 0 and NaN equal to itself), everything
// else by identity.
type mapKey struct {
	kind Kind
	prim any
}

type nanKey struct{}

func keyOf(v Value) mapKey {
	switch v.kind {
	case KindNumber:
		f := v.data.(float64)
		if math.IsNaN(f) {
			return mapKey{kind: KindNumber, prim: nanKey{}}
		}
		if f == 0 {
			f = 0
		}
		return mapKey{kind: KindNumber, prim: f}
	case KindBigInt:
		return mapKey{kind: KindBigInt, prim: v.data.(*big.Int).String()}
	case KindUndefined, KindNull:
		return mapKey{kind: v.kind}
	}
	return mapKey{kind: v.kind, prim: v.data}
}

// MapEntry is a key-value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is a JavaScript Map. Entries keep insertion order.
type Map struct {
	entries []MapEntry
	index   map[mapKey]int
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[mapKey]int)}
}

// Value returns m as a Value.
func (m *Map) Value() Value {
	return Value{kind: KindMap, data: m}
}

// Set adds or replaces an entry and returns m.
func (m *Map) Set(key, v Value) *Map {
	k := keyOf(key)
	if i, ok := m.index[k]; ok {
		m.entries[i].Value = v
		return m
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: key, Value: v})
	return m
}

// Get returns the value for key and whether it exists.
func (m *Map) Get(key Value) (Value, bool) {
	if i, ok := m.index[keyOf(key)]; ok {
		return m.entries[i].Value, true
	}
	return Value{}, false
}

// Has reports whether key is present.
func (m *Map) Has(key Value) bool {
	_, ok := m.index[keyOf(key)]
	return ok
}

// Delete removes key.
func (m *Map) Delete(key Value) {
	k := keyOf(key)
	i, ok := m.index[k]
	if !ok {
		return
	}
	delete(m.index, k)
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	for j := i; j < len(m.entries); j++ {
		m.index[keyOf(m.entries[j].Key)] = j
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []MapEntry {
	return append([]MapEntry(nil), m.entries...)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key, v Value) bool) {
	for _, e := range m.entries {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

// Set is a JavaScript Set. Values keep insertion order.
type Set struct {
	values []Value
	index  map[mapKey]int
}

// NewSet returns a Set holding values, without duplicates.
func NewSet(values ...Value) *Set {
	s := &Set{index: make(map[mapKey]int)}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Value returns s as a Value.
func (s *Set) Value() Value {
	return Value{kind: KindSet, data: s}
}

// Add inserts v if it is not present and returns s.
func (s *Set) Add(v Value) *Set {
	k := keyOf(v)
	if _, ok := s.index[k]; ok {
		return s
	}
	s.index[k] = len(s.values)
	s.values = append(s.values, v)
	return s
}

// Has reports whether v is present.
func (s *Set) Has(v Value) bool {
	_, ok := s.index[keyOf(v)]
	return ok
}

// Delete removes v.
func (s *Set) Delete(v Value) {
	k := keyOf(v)
	i, ok := s.index[k]
	if !ok {
		return
	}
	delete(s.index, k)
	s.values = append(s.values[:i], s.values[i+1:]...)
	for j := i; j < len(s.values); j++ {
		s.index[keyOf(s.values[j])] = j
	}
}

// Len returns the number of values.
func (s *Set) Len() int {
	return len(s.values)
}

// Values returns a copy of the values in insertion order.
func (s *Set) Values() []Value {
	return append([]Value(nil), s.values...)
}
