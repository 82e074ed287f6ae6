// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sessionwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openForAppend(t *testing.T) (*os.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seqdata")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	return f, path
}

func TestAppendIsBufferedUntilFlush(t *testing.T) {
	f, path := openForAppend(t)
	w := New("s", f)

	require.NoError(t, w.Append([]byte("hello")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw, "bufio.Writer should not have flushed to disk yet")

	require.NoError(t, w.Flush())
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	require.NoError(t, w.Finalize())
}

func TestFinalizeIsIdempotent(t *testing.T) {
	f, _ := openForAppend(t)
	w := New("s", f)

	require.NoError(t, w.Append([]byte("x")))
	require.NoError(t, w.Finalize())
	assert.NoError(t, w.Finalize())
	assert.NoError(t, w.Close())
}

func TestAppendAfterFinalizeFails(t *testing.T) {
	f, _ := openForAppend(t)
	w := New("s", f)
	require.NoError(t, w.Finalize())

	err := w.Append([]byte("too late"))
	assert.Error(t, err)
}

func TestWriteSatisfiesIoWriter(t *testing.T) {
	f, path := openForAppend(t)
	w := New("s", f)

	n, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, w.Finalize())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(raw))
}
