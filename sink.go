// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

// Sink is the destination every submitted Record is handed to. It
// mirrors the original implementation's Log trait
// (original_source/uplog/src/logger.rs), renamed because this codebase
// also needs "logger" for the unrelated ambient operations logger in
// pkg/log.
type Sink interface {
	// Enabled reports whether a Record with the given Metadata should
	// be built and submitted at all; the facade checks this before
	// paying for KV allocation.
	Enabled(Metadata) bool
	// Log submits a fully built Record. Implementations must not block
	// the caller on network I/O.
	Log(Record)
	// Flush requests delivery of everything buffered so far and, for
	// sinks with a background worker, a graceful shutdown of it.
	Flush()
}

// noopSink is the zero-configuration default sink installed before
// Init is ever called, matching the original's NopLogger.
type noopSink struct{}

func (noopSink) Enabled(Metadata) bool { return false }
func (noopSink) Log(Record)            {}
func (noopSink) Flush()                {}
