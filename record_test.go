// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordRoundTripWithAllFieldsPresent(t *testing.T) {
	r := Record{
		Metadata:   Metadata{Level: LevelWarn, Target: "uplog.demo"},
		Elapsed:    1234567890 * time.Nanosecond,
		Category:   "startup",
		ModulePath: "uplog.demo::init",
		File:       "main.go",
		Line:       42,
		HasLine:    true,
		Message:    "booted",
		KV:         NewKV(Pair("attempt", U64(1)), Pair("ok", Bool(true))),
	}

	enc := r.Encode(nil)
	got, n, err := DecodeRecord(enc)
	assert.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.True(t, r.Equal(got))
}

func TestRecordRoundTripWithOptionalFieldsAbsent(t *testing.T) {
	r := Record{
		Metadata: Metadata{Level: LevelInfo, Target: "uplog.demo"},
		Elapsed:  0,
		Category: "default",
		Message:  "no kv, no location",
	}

	got, n, err := DecodeRecord(EncodeRecord(r))
	assert.NoError(t, err)
	assert.Equal(t, len(EncodeRecord(r)), n)
	assert.True(t, r.Equal(got))
	assert.False(t, got.HasLine)
	assert.Nil(t, got.KV)
}

func TestDecodeRecordRejectsWrongFieldCount(t *testing.T) {
	// A definite-length array header claiming 3 fields instead of the
	// fixed 10 must be rejected rather than silently misread.
	var enc []byte
	enc = encodeHeader(enc, majorArray, 3)
	enc = U64(uint64(LevelInfo)).Encode(enc)
	enc = Text("t").Encode(enc)
	enc = U64(0).Encode(enc)

	_, _, err := DecodeRecord(enc)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestRecordStringFormat(t *testing.T) {
	r := Record{
		Metadata: Metadata{Level: LevelError, Target: "uplog.demo"},
		Elapsed:  2*time.Second + 500*time.Millisecond,
		Category: "net",
		File:     "transport.go",
		Line:     87,
		HasLine:  true,
		Message:  "write failed",
		KV:       NewKV(Pair("code", I64(-1))),
	}

	s := r.String()
	assert.Contains(t, s, "[ERROR]")
	assert.Contains(t, s, "[net]")
	assert.Contains(t, s, "write failed")
	assert.Contains(t, s, "transport.go:L87")
	assert.Contains(t, s, "code = -1")
}

func TestStreamOfConcatenatedRecordsDecodesOneAtATime(t *testing.T) {
	a := Record{Metadata: Metadata{Level: LevelDebug, Target: "a"}, Category: "c", Message: "first"}
	b := Record{Metadata: Metadata{Level: LevelDebug, Target: "a"}, Category: "c", Message: "second"}

	buf := append(EncodeRecord(a), EncodeRecord(b)...)

	got1, n1, err := DecodeRecord(buf)
	assert.NoError(t, err)
	got2, n2, err := DecodeRecord(buf[n1:])
	assert.NoError(t, err)
	assert.Equal(t, len(buf), n1+n2)

	assert.True(t, a.Equal(got1))
	assert.True(t, b.Equal(got2))
}
