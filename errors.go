// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import "errors"

// Error taxonomy shared by the client library and the collector.
var (
	// ErrBufferFull is returned internally when the write side of a
	// DoubleBuffer has no spare capacity for an append. The facade
	// never surfaces it to callers: it drops the record and counts it.
	ErrBufferFull = errors.New("uplog: buffer full")

	// ErrFormat marks malformed encoded bytes: truncation or an
	// unrecognized major type on decode.
	ErrFormat = errors.New("uplog: malformed record encoding")

	// ErrAlreadyInitialized is returned by Init when a sink has already
	// been installed for this process.
	ErrAlreadyInitialized = errors.New("uplog: logger already initialized")

	// ErrTransport marks a fatal network send or handshake failure in
	// the background transport worker.
	ErrTransport = errors.New("uplog: transport error")

	// ErrIO marks a filesystem failure on the collector side, fatal to
	// the owning session.
	ErrIO = errors.New("uplog: io error")
)
