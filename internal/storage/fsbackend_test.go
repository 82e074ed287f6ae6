// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package storage

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uplog-go/uplog"
)

func writeRecords(t *testing.T, w SessionWriter, recs []uplog.Record) {
	t.Helper()
	for _, r := range recs {
		_, err := w.Write(r.Encode(nil))
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
}

func sampleRecords() []uplog.Record {
	return []uplog.Record{
		{Metadata: uplog.Metadata{Level: uplog.LevelInfo, Target: "t"}, Category: "c", Message: "first"},
		{Metadata: uplog.Metadata{Level: uplog.LevelWarn, Target: "t"}, Category: "c", Message: "second"},
		{Metadata: uplog.Metadata{Level: uplog.LevelError, Target: "t"}, Category: "c", Message: "third"},
	}
}

func TestFsBackendCreateWriteOpenRoundTrip(t *testing.T) {
	b, err := NewFsBackend(t.TempDir())
	require.NoError(t, err)

	w, err := b.CreateSession("session-a")
	require.NoError(t, err)

	recs := sampleRecords()
	writeRecords(t, w, recs)
	require.NoError(t, w.Close())

	rc, err := b.Open("session-a")
	require.NoError(t, err)
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	require.NoError(t, err)

	pos := 0
	for i, want := range recs {
		got, n, err := uplog.DecodeRecord(raw[pos:])
		require.NoError(t, err, "record %d", i)
		pos += n
		assert.True(t, want.Equal(got), "record %d mismatch", i)
	}
	assert.Equal(t, len(raw), pos)
}

func TestFsBackendRefusesConcurrentWriters(t *testing.T) {
	b, err := NewFsBackend(t.TempDir())
	require.NoError(t, err)

	w, err := b.CreateSession("busy")
	require.NoError(t, err)
	defer w.Close()

	_, err = b.CreateSession("busy")
	assert.Error(t, err)
}

func TestFsBackendAllowsReuseAfterClose(t *testing.T) {
	b, err := NewFsBackend(t.TempDir())
	require.NoError(t, err)

	w, err := b.CreateSession("reopen")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w2, err := b.CreateSession("reopen")
	require.NoError(t, err)
	require.NoError(t, w2.Close())
}

func TestFsBackendSessions(t *testing.T) {
	b, err := NewFsBackend(t.TempDir())
	require.NoError(t, err)

	w, err := b.CreateSession("listed")
	require.NoError(t, err)
	writeRecords(t, w, sampleRecords())
	require.NoError(t, w.Close())

	infos, err := b.Sessions()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "listed", infos[0].Name)
	assert.False(t, infos[0].CreatedAt.IsZero())
	assert.False(t, infos[0].UpdatedAt.IsZero())
}

func TestFsBackendReadAt(t *testing.T) {
	b, err := NewFsBackend(t.TempDir())
	require.NoError(t, err)

	w, err := b.CreateSession("paged")
	require.NoError(t, err)
	recs := sampleRecords()
	writeRecords(t, w, recs)
	require.NoError(t, w.Close())

	got, err := b.ReadAt("paged", 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, recs[1].Equal(got[0]))

	all, err := b.ReadAt("paged", 0, 100)
	require.NoError(t, err)
	require.Len(t, all, len(recs))

	none, err := b.ReadAt("paged", 100, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
