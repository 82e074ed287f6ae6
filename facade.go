// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import "sync"

// facadeCallerSkip is the stack depth from a public logging function
// (e.g. Info) down through this package's internal log helper to the
// caller's own frame.
const facadeCallerSkip = 3

var (
	facadeMu          sync.Mutex
	facadeSink        Sink = noopSink{}
	facadeInitialized bool
)

// Init installs a network sink built from b and starts the process-wide
// session clock. It may be called at most once per process; a second
// call returns ErrAlreadyInitialized, matching the original
// implementation's set_boxed_logger semantics
// (original_source/uplog/src/logger.rs) but surfaced as a typed error
// instead of a dedicated error struct.
func Init(b *Builder) error {
	facadeMu.Lock()
	defer facadeMu.Unlock()
	if facadeInitialized {
		return ErrAlreadyInitialized
	}
	ns, err := newNetworkSink(b)
	if err != nil {
		return err
	}
	initSessionClock()
	facadeSink = ns
	facadeInitialized = true
	return nil
}

func currentSink() Sink {
	facadeMu.Lock()
	defer facadeMu.Unlock()
	return facadeSink
}

// Flush requests that the installed sink deliver everything buffered
// so far and blocks until it has. On the default no-op sink this
// returns immediately.
func Flush() {
	currentSink().Flush()
}

// resetFacadeForTest uninstalls any sink and rearms Init, for use by
// this package's own tests only.
func resetFacadeForTest() {
	facadeMu.Lock()
	facadeSink = noopSink{}
	facadeInitialized = false
	facadeMu.Unlock()
	resetSessionClockForTest()
}

// submit builds and dispatches a Record with the given call-site
// location; its callers have already checked the level filter. ModulePath is set to target: the
// original implementation's log! macro passed its caller's
// module_path!() as both the target and module_path argument to
// __log_api (original_source/uplog/src/macros.rs), so target is
// carried through as the module path here too rather than left empty.
func submit(s Sink, meta Metadata, category, message string, file string, line uint32, hasLine bool, kvs []kvPair) {
	var kv *KV
	if len(kvs) > 0 {
		kv = NewKV(kvs...)
	}

	s.Log(Record{
		Metadata:   meta,
		Elapsed:    sessionElapsed(),
		Category:   category,
		ModulePath: meta.Target,
		File:       file,
		Line:       line,
		HasLine:    hasLine,
		Message:    message,
		KV:         kv,
	})
}

// submitAuto is the common path for the per-level sugar functions: it
// checks the sink's level filter before paying for a runtime.Caller
// lookup or building the KV, so a disabled level never walks the stack.
func submitAuto(level Level, target, category, message string, kvs []kvPair) {
	s := currentSink()
	meta := Metadata{Level: level, Target: target}
	if !s.Enabled(meta) {
		return
	}
	file, line, ok := callerInfo(facadeCallerSkip)
	submit(s, meta, category, message, file, line, ok, kvs)
}

// submitAt is the *At family's common path: the caller already
// resolved its own location, so there is nothing to skip even when the
// level is enabled-checked lazily.
func submitAt(level Level, file string, line uint32, target, category, message string, kvs []kvPair) {
	s := currentSink()
	meta := Metadata{Level: level, Target: target}
	if !s.Enabled(meta) {
		return
	}
	submit(s, meta, category, message, file, line, true, kvs)
}

// Error, Warn, Info, Debug, and Trace submit a Record at the named
// severity, capturing the call site automatically via runtime.Caller.
// target identifies the producing module (the Go equivalent of the
// original's Rust module path; it also becomes the Record's
// ModulePath); category groups records within a target; kvs are
// optional structured fields built with Pair.
func Error(target, category, message string, kvs ...kvPair) {
	submitAuto(LevelError, target, category, message, kvs)
}

func Warn(target, category, message string, kvs ...kvPair) {
	submitAuto(LevelWarn, target, category, message, kvs)
}

func Info(target, category, message string, kvs ...kvPair) {
	submitAuto(LevelInfo, target, category, message, kvs)
}

func Debug(target, category, message string, kvs ...kvPair) {
	submitAuto(LevelDebug, target, category, message, kvs)
}

func Trace(target, category, message string, kvs ...kvPair) {
	submitAuto(LevelTrace, target, category, message, kvs)
}

// ErrorAt, WarnAt, InfoAt, DebugAt, and TraceAt submit a Record at the
// named severity using a location the caller already knows (typically
// captured upstream with CallerLocation by a wrapping logging shim)
// instead of inspecting the call stack themselves.
func ErrorAt(file string, line uint32, target, category, message string, kvs ...kvPair) {
	submitAt(LevelError, file, line, target, category, message, kvs)
}

func WarnAt(file string, line uint32, target, category, message string, kvs ...kvPair) {
	submitAt(LevelWarn, file, line, target, category, message, kvs)
}

func InfoAt(file string, line uint32, target, category, message string, kvs ...kvPair) {
	submitAt(LevelInfo, file, line, target, category, message, kvs)
}

func DebugAt(file string, line uint32, target, category, message string, kvs ...kvPair) {
	submitAt(LevelDebug, file, line, target, category, message, kvs)
}

func TraceAt(file string, line uint32, target, category, message string, kvs ...kvPair) {
	submitAt(LevelTrace, file, line, target, category, message, kvs)
}
