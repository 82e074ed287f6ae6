// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"bytes"
	"fmt"
)

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindI64
	KindU64
	KindF32
	KindF64
	KindBool
	KindText
	KindBytes
	KindArray
)

// Value is a tagged sum type: Null, signed/unsigned 64-bit integer,
// 32/64-bit float, boolean, UTF-8 text, opaque bytes, or a
// homogeneous-or-heterogeneous array of Value. Widths below i64/u64 are
// widened on construction (see the Int/Uint helpers); floats keep the
// width they were built with.
type Value struct {
	kind  Kind
	i64   int64
	u64   uint64
	f32   float32
	f64   float64
	b     bool
	text  string
	bytes []byte
	arr   []Value
}

func Null() Value                { return Value{kind: KindNull} }
func I64(v int64) Value          { return Value{kind: KindI64, i64: v} }
func U64(v uint64) Value         { return Value{kind: KindU64, u64: v} }
func F32(v float32) Value        { return Value{kind: KindF32, f32: v} }
func F64(v float64) Value        { return Value{kind: KindF64, f64: v} }
func Bool(v bool) Value          { return Value{kind: KindBool, b: v} }
func Text(v string) Value        { return Value{kind: KindText, text: v} }
func Bytes(v []byte) Value       { return Value{kind: KindBytes, bytes: append([]byte(nil), v...)} }
func Array(v ...Value) Value     { return Value{kind: KindArray, arr: v} }
func ArrayOf(v []Value) Value    { return Value{kind: KindArray, arr: v} }

// Int builds a Value from any signed integer width, widening to i64.
func Int(v int64) Value { return I64(v) }

// Uint builds a Value from any unsigned integer width, widening to u64.
func Uint(v uint64) Value { return U64(v) }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsI64() (int64, bool) {
	if v.kind != KindI64 {
		return 0, false
	}
	return v.i64, true
}

func (v Value) AsU64() (uint64, bool) {
	if v.kind != KindU64 {
		return 0, false
	}
	return v.u64, true
}

func (v Value) AsF32() (float32, bool) {
	if v.kind != KindF32 {
		return 0, false
	}
	return v.f32, true
}

func (v Value) AsF64() (float64, bool) {
	if v.kind != KindF64 {
		return 0, false
	}
	return v.f64, true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.bytes, true
}

func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// Equal reports structural equality, the comparison Record equality
// relies on.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindI64:
		return v.i64 == o.i64
	case KindU64:
		return v.u64 == o.u64
	case KindF32:
		return v.f32 == o.f32
	case KindF64:
		return v.f64 == o.f64
	case KindBool:
		return v.b == o.b
	case KindText:
		return v.text == o.text
	case KindBytes:
		return bytes.Equal(v.bytes, o.bytes)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a Value for the human-readable Record format.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindI64:
		return fmt.Sprintf("%d", v.i64)
	case KindU64:
		return fmt.Sprintf("%d", v.u64)
	case KindF32:
		return fmt.Sprintf("%.6f", v.f32)
	case KindF64:
		return fmt.Sprintf("%.6f", v.f64)
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindText:
		return fmt.Sprintf("%q", v.text)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bytes))
	case KindArray:
		return fmt.Sprintf("array(len=%d)", len(v.arr))
	default:
		return "?"
	}
}

// From widens a concrete Go scalar (any integer width, float32/64,
// bool, string, []byte, or a slice of one of those) into a Value, the
// Go equivalent of the original implementation's per-type `From<T>`
// impls (original_source/uplog/src/kv.rs).
func From(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case int8:
		return I64(int64(x))
	case int16:
		return I64(int64(x))
	case int32:
		return I64(int64(x))
	case int64:
		return I64(x)
	case int:
		return I64(int64(x))
	case uint8:
		return U64(uint64(x))
	case uint16:
		return U64(uint64(x))
	case uint32:
		return U64(uint64(x))
	case uint64:
		return U64(x)
	case uint:
		return U64(uint64(x))
	case float32:
		return F32(x)
	case float64:
		return F64(x)
	case bool:
		return Bool(x)
	case string:
		return Text(x)
	case []byte:
		return Bytes(x)
	case Value:
		return x
	case []Value:
		return ArrayOf(x)
	case []string:
		arr := make([]Value, len(x))
		for i, s := range x {
			arr[i] = Text(s)
		}
		return ArrayOf(arr)
	case []int:
		arr := make([]Value, len(x))
		for i, n := range x {
			arr[i] = I64(int64(n))
		}
		return ArrayOf(arr)
	case []uint64:
		arr := make([]Value, len(x))
		for i, n := range x {
			arr[i] = U64(n)
		}
		return ArrayOf(arr)
	case []float64:
		arr := make([]Value, len(x))
		for i, n := range x {
			arr[i] = F64(n)
		}
		return ArrayOf(arr)
	default:
		return Null()
	}
}
