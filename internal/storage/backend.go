// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package storage manages where per-session append-only record data
// lives. A Backend is a pluggable directory manager, the role
// pkg/archive plays for job archives in cc-backend: the filesystem
// backend is the default, with an object-store backend available for
// collectors that should not depend on local disk.
package storage

import (
	"io"
	"time"

	"github.com/uplog-go/uplog"
)

// SeqDataFile is the name of the single append-only file a session's
// bytes are written to, inherited from the original implementation's
// CBORSequenceWriter (original_source/server/src/writer.rs).
const SeqDataFile = "seqdata"

// SessionWriter accumulates one session's bytes. Flush requests
// durability without closing; Close flushes and releases any
// underlying resource.
type SessionWriter interface {
	io.Writer
	Flush() error
	io.Closer
}

// SessionInfo describes one stored session. CreatedAt and UpdatedAt
// come from filesystem (or equivalent object-store) metadata, not
// from any record inside the session.
type SessionInfo struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Path      string
}

// Backend is the directory manager a collector is configured with.
// The filesystem implementation (fsBackend) is the default; s3Backend
// is an optional object-store alternative. Both
// satisfy the same contract so a collector can switch backends purely
// through configuration (mirroring pkg/archive's ArchiveBackend split
// between FsArchive and S3Archive in cc-backend).
type Backend interface {
	// CreateSession opens a new, previously-unseen session for
	// appending. The storage manager enforces at-most-one live writer
	// per session by construction: callers (internal/collector) always
	// pass a freshly minted session identifier.
	CreateSession(name string) (SessionWriter, error)
	// Sessions enumerates every known session.
	Sessions() ([]SessionInfo, error)
	// Open opens a previously created session for sequential reading
	// of its complete, raw byte stream from the beginning.
	Open(name string) (io.ReadCloser, error)
	// ReadAt decodes up to length records starting at the index'th
	// record of the named session, matching the original
	// implementation's bounded read-at-offset helper. It is a
	// convenience built on top of Open's sequential stream, not an
	// index: every call re-scans from the start.
	ReadAt(name string, index, length int) ([]uplog.Record, error)
}
