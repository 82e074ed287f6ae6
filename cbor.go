// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"encoding/binary"
	"fmt"
	"math"
)

// This file implements a self-describing, CBOR-class binary wire
// format: a major type (3 bits) plus an argument (length/count/value,
// definite-length only — no indefinite-length items, no tags beyond
// the ones spelled out below). It is hand-rolled rather than built on
// a third-party CBOR library: the framed binary record format is the
// one codec uplog owns end to end.

const (
	majorUnsigned = 0
	majorNegative = 1
	majorBytes    = 2
	majorText     = 3
	majorArray    = 4
	majorMap      = 5
	majorSimple   = 7

	simpleFalse   = 20
	simpleTrue    = 21
	simpleNull    = 22
	simpleFloat32 = 26
	simpleFloat64 = 27
)

// encodeHeader appends a definite-length CBOR item header (major type
// + argument) to dst and returns the result.
func encodeHeader(dst []byte, major byte, n uint64) []byte {
	b := major << 5
	switch {
	case n < 24:
		return append(dst, b|byte(n))
	case n <= 0xff:
		return append(dst, b|24, byte(n))
	case n <= 0xffff:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(n))
		return append(append(dst, b|25), buf...)
	case n <= 0xffffffff:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(n))
		return append(append(dst, b|26), buf...)
	default:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, n)
		return append(append(dst, b|27), buf...)
	}
}

// Encode appends v's wire encoding to dst and returns the result.
// Encoding is total: every constructible Value has a representation.
func (v Value) Encode(dst []byte) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, majorSimple<<5|simpleNull)
	case KindI64:
		if v.i64 >= 0 {
			return encodeHeader(dst, majorUnsigned, uint64(v.i64))
		}
		return encodeHeader(dst, majorNegative, uint64(-1-v.i64))
	case KindU64:
		return encodeHeader(dst, majorUnsigned, v.u64)
	case KindF32:
		dst = append(dst, majorSimple<<5|simpleFloat32)
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(v.f32))
		return append(dst, buf...)
	case KindF64:
		dst = append(dst, majorSimple<<5|simpleFloat64)
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(v.f64))
		return append(dst, buf...)
	case KindBool:
		if v.b {
			return append(dst, majorSimple<<5|simpleTrue)
		}
		return append(dst, majorSimple<<5|simpleFalse)
	case KindText:
		dst = encodeHeader(dst, majorText, uint64(len(v.text)))
		return append(dst, v.text...)
	case KindBytes:
		dst = encodeHeader(dst, majorBytes, uint64(len(v.bytes)))
		return append(dst, v.bytes...)
	case KindArray:
		dst = encodeHeader(dst, majorArray, uint64(len(v.arr)))
		for _, e := range v.arr {
			dst = e.Encode(dst)
		}
		return dst
	default:
		return append(dst, majorSimple<<5|simpleNull)
	}
}

// EncodeValue is a convenience wrapper returning a freshly allocated
// encoding of v.
func EncodeValue(v Value) []byte {
	return v.Encode(nil)
}

// cursor is a small bounds-checked reader over an encoded byte slice,
// used so decode can report how many bytes it consumed, letting a
// caller walk a stream of concatenated encodings one item at a time.
type cursor struct {
	b   []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.b) - c.pos }

func (c *cursor) readByte() (byte, error) {
	if c.remaining() < 1 {
		return 0, ErrFormat
	}
	b := c.b[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) readN(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, ErrFormat
	}
	b := c.b[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// readArgument reads the argument that follows a header's additional
// info nibble (info < 24 means the argument is the nibble itself).
func (c *cursor) readArgument(info byte) (uint64, error) {
	switch {
	case info < 24:
		return uint64(info), nil
	case info == 24:
		b, err := c.readByte()
		return uint64(b), err
	case info == 25:
		b, err := c.readN(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(b)), nil
	case info == 26:
		b, err := c.readN(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint32(b)), nil
	case info == 27:
		b, err := c.readN(8)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(b), nil
	default:
		return 0, ErrFormat
	}
}

func (c *cursor) decodeValue() (Value, error) {
	first, err := c.readByte()
	if err != nil {
		return Value{}, err
	}
	major := first >> 5
	info := first & 0x1f

	switch major {
	case majorUnsigned:
		n, err := c.readArgument(info)
		if err != nil {
			return Value{}, err
		}
		return U64(n), nil
	case majorNegative:
		n, err := c.readArgument(info)
		if err != nil {
			return Value{}, err
		}
		return I64(-1 - int64(n)), nil
	case majorBytes:
		n, err := c.readArgument(info)
		if err != nil {
			return Value{}, err
		}
		b, err := c.readN(int(n))
		if err != nil {
			return Value{}, err
		}
		return Bytes(b), nil
	case majorText:
		n, err := c.readArgument(info)
		if err != nil {
			return Value{}, err
		}
		b, err := c.readN(int(n))
		if err != nil {
			return Value{}, err
		}
		return Text(string(b)), nil
	case majorArray:
		n, err := c.readArgument(info)
		if err != nil {
			return Value{}, err
		}
		arr := make([]Value, 0, n)
		for i := uint64(0); i < n; i++ {
			v, err := c.decodeValue()
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, v)
		}
		return ArrayOf(arr), nil
	case majorSimple:
		switch info {
		case simpleFalse:
			return Bool(false), nil
		case simpleTrue:
			return Bool(true), nil
		case simpleNull:
			return Null(), nil
		case simpleFloat32:
			b, err := c.readN(4)
			if err != nil {
				return Value{}, err
			}
			return F32(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
		case simpleFloat64:
			b, err := c.readN(8)
			if err != nil {
				return Value{}, err
			}
			return F64(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
		default:
			return Value{}, fmt.Errorf("%w: unsupported simple value %d", ErrFormat, info)
		}
	default:
		return Value{}, fmt.Errorf("%w: unsupported major type %d", ErrFormat, major)
	}
}

// DecodeValue decodes one Value from the front of b and reports how
// many bytes were consumed, so a caller can iterate a stream of
// concatenated encodings. A truncated item or an unrecognized major
// type/simple value is ErrFormat.
func DecodeValue(b []byte) (Value, int, error) {
	c := &cursor{b: b}
	v, err := c.decodeValue()
	if err != nil {
		return Value{}, 0, err
	}
	return v, c.pos, nil
}
