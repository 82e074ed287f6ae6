// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"fmt"
	"strings"
	"time"
)

// Metadata carries the filterable attributes of a Record: its severity
// and the producing module's opaque target path.
type Metadata struct {
	Level  Level
	Target string
}

// Record is the atomic, immutable unit of observation. Equality is
// structural over every field.
type Record struct {
	Metadata Metadata

	// Elapsed is the monotonic duration since session start, captured by
	// the facade at submission time.
	Elapsed time.Duration

	Category   string
	ModulePath string // empty means absent
	File       string // empty means absent
	Line       uint32
	HasLine    bool
	Message    string
	KV         *KV // nil means absent
}

// Equal reports structural equality across every field.
func (r Record) Equal(o Record) bool {
	if r.Metadata != o.Metadata {
		return false
	}
	if r.Elapsed != o.Elapsed {
		return false
	}
	if r.Category != o.Category || r.ModulePath != o.ModulePath ||
		r.File != o.File || r.Line != o.Line || r.HasLine != o.HasLine ||
		r.Message != o.Message {
		return false
	}
	if (r.KV == nil) != (o.KV == nil) {
		return false
	}
	if r.KV != nil && !r.KV.Equal(o.KV) {
		return false
	}
	return true
}

// String renders the record in the fixed human-readable format used by
// log-viewing tools:
//
//	[<Level>] <sec>.<frac> [<category>] <message> (<file>:L<line>) {k1 = v1, k2 = v2, …}
func (r Record) String() string {
	secs := r.Elapsed.Seconds()
	whole := int64(secs)
	frac := r.Elapsed - time.Duration(whole)*time.Second

	loc := ""
	if r.File != "" && r.HasLine {
		loc = fmt.Sprintf(" (%s:L%d)", r.File, r.Line)
	} else if r.File != "" {
		loc = fmt.Sprintf(" (%s)", r.File)
	}

	kvStr := ""
	if r.KV != nil && r.KV.Len() > 0 {
		parts := make([]string, 0, r.KV.Len())
		r.KV.Range(func(k string, v Value) bool {
			parts = append(parts, fmt.Sprintf("%s = %s", k, v.String()))
			return true
		})
		kvStr = " {" + strings.Join(parts, ", ") + "}"
	}

	return fmt.Sprintf("[%s] %d.%09d [%s] %s%s%s",
		r.Metadata.Level, whole, frac.Nanoseconds(), r.Category, r.Message, loc, kvStr)
}

// record field count for the fixed-shape array encoding below.
const recordFieldCount = 10

// Encode appends r's wire encoding (a definite-length array of fixed
// shape, so the hot path never pays for key text) to dst. Optional
// fields are encoded as Null when absent.
func (r Record) Encode(dst []byte) []byte {
	dst = encodeHeader(dst, majorArray, recordFieldCount)
	dst = U64(uint64(r.Metadata.Level)).Encode(dst)
	dst = Text(r.Metadata.Target).Encode(dst)
	dst = U64(uint64(r.Elapsed / time.Second)).Encode(dst)
	dst = U64(uint64(r.Elapsed % time.Second)).Encode(dst)
	dst = Text(r.Category).Encode(dst)
	dst = optionalText(r.ModulePath != "", r.ModulePath).Encode(dst)
	dst = optionalText(r.File != "", r.File).Encode(dst)
	if r.HasLine {
		dst = U64(uint64(r.Line)).Encode(dst)
	} else {
		dst = Null().Encode(dst)
	}
	dst = Text(r.Message).Encode(dst)
	if r.KV != nil {
		dst = r.KV.Encode(dst)
	} else {
		dst = Null().Encode(dst)
	}
	return dst
}

func optionalText(present bool, s string) Value {
	if !present {
		return Null()
	}
	return Text(s)
}

// EncodeRecord is a convenience wrapper returning a freshly allocated
// encoding of r.
func EncodeRecord(r Record) []byte {
	return r.Encode(nil)
}

// DecodeRecord decodes one Record from the front of b, reporting
// consumed bytes so a caller can decode a stream of concatenated
// records one at a time.
func DecodeRecord(b []byte) (Record, int, error) {
	c := &cursor{b: b}
	r, err := c.decodeRecord()
	if err != nil {
		return Record{}, 0, err
	}
	return r, c.pos, nil
}

func (c *cursor) decodeRecord() (Record, error) {
	first, err := c.readByte()
	if err != nil {
		return Record{}, err
	}
	if first>>5 != majorArray {
		return Record{}, ErrFormat
	}
	n, err := c.readArgument(first & 0x1f)
	if err != nil {
		return Record{}, err
	}
	if n != recordFieldCount {
		return Record{}, fmt.Errorf("%w: record array has %d fields, want %d", ErrFormat, n, recordFieldCount)
	}

	var r Record
	level, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	lvl, ok := level.AsU64()
	if !ok {
		return Record{}, ErrFormat
	}
	r.Metadata.Level = Level(lvl)

	target, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	r.Metadata.Target, _ = target.AsText()

	secs, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	secsN, _ := secs.AsU64()

	nanos, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	nanosN, _ := nanos.AsU64()
	r.Elapsed = time.Duration(secsN)*time.Second + time.Duration(nanosN)

	category, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	r.Category, _ = category.AsText()

	modPath, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	r.ModulePath, _ = modPath.AsText()

	file, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	r.File, _ = file.AsText()

	line, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	if lineN, ok := line.AsU64(); ok {
		r.Line = uint32(lineN)
		r.HasLine = true
	}

	message, err := c.decodeValue()
	if err != nil {
		return Record{}, err
	}
	r.Message, _ = message.AsText()

	// Peek the kv slot: either a map (major 5) or null.
	if c.remaining() < 1 {
		return Record{}, ErrFormat
	}
	if c.b[c.pos]>>5 == majorMap {
		kv, err := c.decodeKV()
		if err != nil {
			return Record{}, err
		}
		r.KV = kv
	} else {
		if _, err := c.decodeValue(); err != nil {
			return Record{}, err
		}
	}

	return r, nil
}
