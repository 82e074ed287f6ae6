// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeSink is a minimal in-process Sink used to observe what the
// facade submits, without involving the network transport.
type fakeSink struct {
	threshold Level
	records   []Record
	flushed   int
}

func (f *fakeSink) Enabled(m Metadata) bool { return m.Level.Enabled(f.threshold) }
func (f *fakeSink) Log(r Record)            { f.records = append(f.records, r) }
func (f *fakeSink) Flush()                  { f.flushed++ }

func installFakeSink(t *testing.T, threshold Level) *fakeSink {
	t.Helper()
	resetFacadeForTest()
	initSessionClock()
	fs := &fakeSink{threshold: threshold}
	facadeMu.Lock()
	facadeSink = fs
	facadeMu.Unlock()
	t.Cleanup(resetFacadeForTest)
	return fs
}

func TestFacadeSubmitsAtEachLevel(t *testing.T) {
	fs := installFakeSink(t, LevelTrace)

	Trace("t", "cat", "trace msg")
	Debug("t", "cat", "debug msg")
	Info("t", "cat", "info msg")
	Warn("t", "cat", "warn msg")
	Error("t", "cat", "error msg")

	assert.Len(t, fs.records, 5)
	assert.Equal(t, LevelTrace, fs.records[0].Metadata.Level)
	assert.Equal(t, LevelError, fs.records[4].Metadata.Level)
}

func TestFacadeSkipsDisabledLevelsWithoutBuildingKV(t *testing.T) {
	fs := installFakeSink(t, LevelWarn)

	Debug("t", "cat", "dropped before KV allocation")
	Info("t", "cat", "also dropped")
	Error("t", "cat", "kept", Pair("n", I64(1)))

	assert.Len(t, fs.records, 1)
	assert.Equal(t, "kept", fs.records[0].Message)
	n, ok := fs.records[0].KV.Get("n")
	assert.True(t, ok)
	assert.True(t, n.Equal(I64(1)))
}

func TestFacadeRecordsCaptureCallerFileAndLine(t *testing.T) {
	fs := installFakeSink(t, LevelTrace)

	Info("t", "cat", "where am I")

	assert.Len(t, fs.records, 1)
	assert.True(t, fs.records[0].HasLine)
	assert.Contains(t, fs.records[0].File, "facade_test.go")
}

func TestFacadeSetsModulePathFromTarget(t *testing.T) {
	fs := installFakeSink(t, LevelTrace)

	Info("uplog.demo", "cat", "msg")

	assert.Len(t, fs.records, 1)
	assert.Equal(t, "uplog.demo", fs.records[0].ModulePath)
}

func TestInfoAtUsesSuppliedLocationInsteadOfCallStack(t *testing.T) {
	fs := installFakeSink(t, LevelTrace)

	InfoAt("shim.go", 17, "t", "cat", "relayed through a shim")

	assert.Len(t, fs.records, 1)
	assert.Equal(t, "shim.go", fs.records[0].File)
	assert.Equal(t, uint32(17), fs.records[0].Line)
	assert.True(t, fs.records[0].HasLine)
}

func TestCallerLocationReportsItsOwnCallSite(t *testing.T) {
	file, line, ok := CallerLocation()

	assert.True(t, ok)
	assert.Greater(t, line, uint32(0))
	assert.Contains(t, file, "facade_test.go")
}

func TestFlushDelegatesToInstalledSink(t *testing.T) {
	fs := installFakeSink(t, LevelTrace)

	Flush()
	Flush()

	assert.Equal(t, 2, fs.flushed)
}

func TestInitRejectsSecondCall(t *testing.T) {
	resetFacadeForTest()
	t.Cleanup(resetFacadeForTest)

	facadeMu.Lock()
	facadeInitialized = true
	facadeMu.Unlock()

	err := Init(NewBuilder("localhost"))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}
