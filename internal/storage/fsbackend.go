// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/uplog-go/uplog"
	"github.com/uplog-go/uplog/internal/sessionwriter"
)

// FsBackend is the default Backend: one directory per session under
// root, each holding a single SeqDataFile. Grounded on
// pkg/archive/fsBackend.go's os.ReadDir-based enumeration and
// os.OpenFile append pattern, collapsed from cc-backend's 3-level
// job-ID sharded path down to uplog's flat root/<session>/seqdata
// layout, and on original_source/server/src/lib.rs's
// Storage::create_session.
type FsBackend struct {
	root string

	mu     sync.Mutex
	active map[string]bool
}

// NewFsBackend returns a Backend rooted at dir, creating dir if it
// does not already exist.
func NewFsBackend(dir string) (*FsBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FsBackend{root: dir, active: make(map[string]bool)}, nil
}

func (b *FsBackend) sessionDir(name string) string {
	return filepath.Join(b.root, name)
}

// CreateSession creates root/<name>/ idempotently and opens its
// seqdata file for appending through a sessionwriter.Writer. It
// refuses to hand out a second writer for a name already open in this
// process, enforcing that a session is owned by at most one live
// writer at a time.
func (b *FsBackend) CreateSession(name string) (SessionWriter, error) {
	b.mu.Lock()
	if b.active[name] {
		b.mu.Unlock()
		return nil, fmt.Errorf("storage: session %q already has a live writer", name)
	}
	b.active[name] = true
	b.mu.Unlock()

	dir := b.sessionDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.release(name)
		return nil, fmt.Errorf("storage: create session dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, SeqDataFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		b.release(name)
		return nil, fmt.Errorf("storage: open seqdata: %w", err)
	}

	return &releasingWriter{Writer: sessionwriter.New(name, f), backend: b, name: name}, nil
}

func (b *FsBackend) release(name string) {
	b.mu.Lock()
	delete(b.active, name)
	b.mu.Unlock()
}

// Sessions enumerates every immediate subdirectory of root that
// contains a seqdata file, reading filesystem metadata for timestamps.
func (b *FsBackend) Sessions() ([]SessionInfo, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("storage: read root: %w", err)
	}

	infos := make([]SessionInfo, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := b.sessionDir(e.Name())
		dataPath := filepath.Join(dir, SeqDataFile)
		st, err := os.Stat(dataPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("storage: stat %s: %w", dataPath, err)
		}
		dirSt, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", dir, err)
		}
		infos = append(infos, SessionInfo{
			Name:      e.Name(),
			CreatedAt: dirSt.ModTime(),
			UpdatedAt: st.ModTime(),
			Path:      dir,
		})
	}
	return infos, nil
}

// Open opens a session's seqdata file for sequential reading from the
// beginning.
func (b *FsBackend) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(b.sessionDir(name), SeqDataFile))
	if err != nil {
		return nil, fmt.Errorf("storage: open session %q: %w", name, err)
	}
	return f, nil
}

// ReadAt decodes up to length records starting at the index'th record
// of the named session.
func (b *FsBackend) ReadAt(name string, index, length int) ([]uplog.Record, error) {
	rc, err := b.Open(name)
	if err != nil {
		return nil, err
	}
	return decodeReadAt(rc, index, length)
}

// releasingWriter adapts a sessionwriter.Writer to also free the
// session name from the backend's active set on Close, so a later
// connection may reuse it.
type releasingWriter struct {
	*sessionwriter.Writer
	backend *FsBackend
	name    string
}

func (w *releasingWriter) Close() error {
	err := w.Writer.Finalize()
	w.backend.release(w.name)
	return err
}
