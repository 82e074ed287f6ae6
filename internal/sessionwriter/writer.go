// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sessionwriter implements the per-connection append-only
// writer: one open file handle per session, buffered internally,
// flushed on Finalize. Grounded on original_source/server/src/writer.rs's
// CBORSequenceWriter and original_source/server/src/lib.rs's Session
// (flush-on-Drop), translated to Go's explicit-Close idiom since Go has
// no destructors.
package sessionwriter

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/uplog-go/uplog/pkg/log"
)

// Writer owns one session's seqdata file handle. Only one Writer for a
// given file should exist at a time; callers (internal/storage) are
// responsible for that invariant — a session is owned by at most one
// live writer at a time.
type Writer struct {
	name string
	f    *os.File
	bw   *bufio.Writer

	mu       sync.Mutex
	finished bool
}

// New wraps f, an already-opened append-mode file, as a session
// Writer. name is used only for diagnostics.
func New(name string, f *os.File) *Writer {
	return &Writer{name: name, f: f, bw: bufio.NewWriter(f)}
}

// Append writes a buffered sequence of complete record encodings.
// Append never flushes by itself; call Flush or Finalize for
// durability.
func (w *Writer) Append(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return fmt.Errorf("sessionwriter: append to finalized session %q", w.name)
	}
	_, err := w.bw.Write(b)
	return err
}

// Write satisfies io.Writer so a Writer can be used anywhere a plain
// byte sink is expected (e.g. storage.SessionWriter).
func (w *Writer) Write(b []byte) (int, error) {
	if err := w.Append(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Flush requests durability of everything appended so far without
// closing the file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return nil
	}
	return w.bw.Flush()
}

// Finalize flushes outstanding bytes and closes the underlying file.
// It is idempotent. Matches the role the original implementation's
// Session::drop plays: the connection handler calls this when a
// session's connection closes, entering the Closing state.
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return nil
	}
	w.finished = true

	flushErr := w.bw.Flush()
	closeErr := w.f.Close()
	if flushErr != nil {
		log.Errorf("sessionwriter: flush session %q: %v", w.name, flushErr)
		return flushErr
	}
	if closeErr != nil {
		log.Errorf("sessionwriter: close session %q: %v", w.name, closeErr)
	}
	return closeErr
}

// Close is an alias for Finalize, so *Writer satisfies io.Closer (and
// storage.SessionWriter).
func (w *Writer) Close() error { return w.Finalize() }
