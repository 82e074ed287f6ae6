// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetKeys() {
	Keys = ProgramConfig{
		ListenAddr:                  ":8040",
		StorageRoot:                 "./var/uplog-storage",
		Backend:                     []byte(`{"kind":"file"}`),
		HousekeepingIntervalSeconds: 300,
		LogLevel:                    "info",
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestInitWithNoConfigFileKeepsDefaults(t *testing.T) {
	resetKeys()
	t.Cleanup(resetKeys)

	require.NoError(t, Init(""))
	assert.Equal(t, ":8040", Keys.ListenAddr)
}

func TestInitOverlaysConfigFile(t *testing.T) {
	resetKeys()
	t.Cleanup(resetKeys)

	path := writeConfig(t, `{"listen-addr": ":9000", "backend": {"kind": "file", "path": "/tmp/uplog-test"}}`)

	require.NoError(t, Init(path))
	assert.Equal(t, ":9000", Keys.ListenAddr)
	assert.JSONEq(t, `{"kind": "file", "path": "/tmp/uplog-test"}`, string(Keys.Backend))
}

func TestInitRejectsUnknownFields(t *testing.T) {
	resetKeys()
	t.Cleanup(resetKeys)

	path := writeConfig(t, `{"totally-unknown-field": true}`)
	assert.Error(t, Init(path))
}

func TestInitRejectsInvalidBackendKind(t *testing.T) {
	resetKeys()
	t.Cleanup(resetKeys)

	path := writeConfig(t, `{"backend": {"kind": "ftp"}}`)
	assert.Error(t, Init(path))
}

func TestInitRejectsBackendMissingKind(t *testing.T) {
	resetKeys()
	t.Cleanup(resetKeys)

	path := writeConfig(t, `{"backend": {"path": "/tmp/x"}}`)
	assert.Error(t, Init(path))
}
