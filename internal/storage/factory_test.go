// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackendDefaultsToFile(t *testing.T) {
	root := t.TempDir()
	b, err := NewBackend(context.Background(), json.RawMessage(`{}`), root)
	require.NoError(t, err)
	_, ok := b.(*FsBackend)
	assert.True(t, ok)
}

func TestNewBackendFileWithExplicitPath(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBackend(context.Background(), json.RawMessage(`{"kind":"file","path":"`+dir+`"}`), "/unused")
	require.NoError(t, err)
	fsb, ok := b.(*FsBackend)
	require.True(t, ok)
	assert.Equal(t, dir, fsb.root)
}

func TestNewBackendRejectsUnknownKind(t *testing.T) {
	_, err := NewBackend(context.Background(), json.RawMessage(`{"kind":"tape"}`), "/unused")
	assert.Error(t, err)
}

func TestNewBackendRejectsMalformedJSON(t *testing.T) {
	_, err := NewBackend(context.Background(), json.RawMessage(`not json`), "/unused")
	assert.Error(t, err)
}
