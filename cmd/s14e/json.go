package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gorhill/uBO-Scope/pkg/s14e"
)

var errCycle = errors.New("value graph has a cycle, which JSON cannot express")

// readJSON parses one JSON document into a Value. Object keys keep their
// document order.
func readJSON(r io.Reader) (s14e.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return s14e.Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return s14e.Value{}, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (s14e.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return s14e.Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return s14e.Null(), nil
	case bool:
		return s14e.Bool(t), nil
	case string:
		return s14e.String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return s14e.Value{}, fmt.Errorf("number %s: %w", t, err)
		}
		return s14e.Number(f), nil
	case json.Delim:
		switch t {
		case '{':
			o := s14e.NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return s14e.Value{}, err
				}
				v, err := readJSONValue(dec)
				if err != nil {
					return s14e.Value{}, err
				}
				o.Set(kt.(string), v)
			}
			_, err := dec.Token()
			return o.Value(), err
		case '[':
			a := s14e.NewArray()
			for dec.More() {
				v, err := readJSONValue(dec)
				if err != nil {
					return s14e.Value{}, err
				}
				a.Append(v)
			}
			_, err := dec.Token()
			return a.Value(), err
		}
	}
	return s14e.Value{}, fmt.Errorf("unexpected token %v", tok)
}

// writeJSON renders v as JSON. Types JSON lacks are mapped: undefined,
// NaN and infinities become null, bigints decimal strings, Dates RFC 3339
// strings, RegExps "/source/flags", Sets arrays, Maps arrays of [key, value]
// pairs, and binary data base64 strings.
func writeJSON(v s14e.Value, indent bool) ([]byte, error) {
	w := &jsonWriter{active: make(map[any]bool)}
	if err := w.value(v); err != nil {
		return nil, err
	}
	if !indent {
		return w.buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, w.buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

type jsonWriter struct {
	buf    bytes.Buffer
	active map[any]bool
}

func (w *jsonWriter) scalar(x any) error {
	b, err := json.Marshal(x)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

func (w *jsonWriter) value(v s14e.Value) error {
	switch v.Kind() {
	case s14e.KindUndefined, s14e.KindNull:
		w.buf.WriteString("null")
		return nil
	case s14e.KindBool:
		return w.scalar(v.AsBool())
	case s14e.KindNumber:
		f := v.AsNumber()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			w.buf.WriteString("null")
			return nil
		}
		return w.scalar(f)
	case s14e.KindBigInt:
		return w.scalar(v.AsBigInt().String())
	case s14e.KindString:
		return w.scalar(v.AsString())
	case s14e.KindDate:
		if ms := v.AsDateMillis(); math.IsNaN(ms) || math.IsInf(ms, 0) {
			w.buf.WriteString("null")
			return nil
		}
		return w.scalar(v.AsDate().Format(time.RFC3339Nano))
	case s14e.KindRegExp:
		re := v.AsRegExp()
		return w.scalar("/" + re.Source + "/" + re.Flags)
	case s14e.KindBoxed:
		return w.value(v.AsBoxed().Primitive())
	case s14e.KindArrayBuffer:
		return w.scalar(v.AsArrayBuffer().Bytes())
	case s14e.KindTypedArray:
		return w.scalar(v.AsTypedArray().Bytes())
	}

	id := v.Interface()
	if w.active[id] {
		return errCycle
	}
	w.active[id] = true
	defer delete(w.active, id)

	switch v.Kind() {
	case s14e.KindObject:
		w.buf.WriteByte('{')
		var err error
		first := true
		v.AsObject().Range(func(k string, e s14e.Value) bool {
			if !first {
				w.buf.WriteByte(',')
			}
			first = false
			if err = w.scalar(k); err != nil {
				return false
			}
			w.buf.WriteByte(':')
			err = w.value(e)
			return err == nil
		})
		if err != nil {
			return err
		}
		w.buf.WriteByte('}')
		return nil
	case s14e.KindArray:
		return w.list(v.AsArray().Elements())
	case s14e.KindSet:
		return w.list(v.AsSet().Values())
	case s14e.KindMap:
		w.buf.WriteByte('[')
		for i, e := range v.AsMap().Entries() {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.buf.WriteByte('[')
			if err := w.value(e.Key); err != nil {
				return err
			}
			w.buf.WriteByte(',')
			if err := w.value(e.Value); err != nil {
				return err
			}
			w.buf.WriteByte(']')
		}
		w.buf.WriteByte(']')
		return nil
	}
	return fmt.Errorf("cannot render %s as JSON", v.Kind())
}

func (w *jsonWriter) list(elems []s14e.Value) error {
	w.buf.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if err := w.value(e); err != nil {
			return err
		}
	}
	w.buf.WriteByte(']')
	return nil
}
