// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package collector

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uplog-go/uplog"
)

// memWriter is a storage.SessionWriter test double collecting whatever
// bytes decodeFrame appends.
type memWriter struct {
	bytes.Buffer
	flushes int
}

func (m *memWriter) Flush() error { m.flushes++; return nil }
func (m *memWriter) Close() error { return nil }

func sampleRecord(msg string) uplog.Record {
	return uplog.Record{Metadata: uplog.Metadata{Level: uplog.LevelInfo, Target: "t"}, Category: "c", Message: msg}
}

func TestDecodeFrameAppendsEveryWellFormedRecord(t *testing.T) {
	w := &memWriter{}
	a, b := sampleRecord("first"), sampleRecord("second")
	frame := append(a.Encode(nil), b.Encode(nil)...)

	decodeFrame("sess", w, frame)

	assert.Equal(t, 1, w.flushes)

	got1, n, err := uplog.DecodeRecord(w.Bytes())
	require.NoError(t, err)
	got2, _, err := uplog.DecodeRecord(w.Bytes()[n:])
	require.NoError(t, err)
	assert.True(t, a.Equal(got1))
	assert.True(t, b.Equal(got2))
}

func TestDecodeFrameStopsAtFirstCorruptRecordButKeepsEarlierOnes(t *testing.T) {
	w := &memWriter{}
	good := sampleRecord("ok")
	frame := append(good.Encode(nil), []byte{0xff, 0xff, 0xff}...)

	decodeFrame("sess", w, frame)

	got, n, err := uplog.DecodeRecord(w.Bytes())
	require.NoError(t, err)
	assert.True(t, good.Equal(got))
	assert.Equal(t, len(w.Bytes()), n, "nothing past the good record should have been appended")
}

func TestDecodeFrameOnEmptyFrameStillFlushes(t *testing.T) {
	w := &memWriter{}
	decodeFrame("sess", w, nil)
	assert.Equal(t, 1, w.flushes)
	assert.Equal(t, 0, w.Len())
}
