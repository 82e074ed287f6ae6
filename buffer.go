// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import "sync"

// DoubleBuffer separates the thread appending encoded records from the
// thread draining them to the transport, so the hot logging path never
// blocks on network I/O. Grounded directly on
// original_source/uplog/src/buffer.rs's SwapBuffer/SwapBufReader/
// SwapBufWriter, reworked around Go slices and mutexes instead of the
// original's unsafe pointer swap.
type DoubleBuffer struct {
	capacity int

	writeMu sync.Mutex
	write   []byte

	readMu sync.Mutex
	read   []byte
}

// NewDoubleBuffer allocates a DoubleBuffer whose write side holds up to
// capacity bytes before Write starts reporting ErrBufferFull.
func NewDoubleBuffer(capacity int) *DoubleBuffer {
	return &DoubleBuffer{
		capacity: capacity,
		write:    make([]byte, 0, capacity),
		read:     make([]byte, 0, capacity),
	}
}

// Capacity returns the configured per-side capacity.
func (d *DoubleBuffer) Capacity() int { return d.capacity }

// Write appends b to the write-side buffer. It returns ErrBufferFull,
// never blocking or growing past capacity, when b would overflow the
// spare capacity — callers (the facade) drop the record and count it
// rather than retry.
func (d *DoubleBuffer) Write(b []byte) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if len(d.write)+len(b) > d.capacity {
		return ErrBufferFull
	}
	d.write = append(d.write, b...)
	return nil
}

// Swap exchanges the read and write buffers and resets the write side
// to empty, returning the number of bytes now available to Read. Swap
// is safe to call concurrently with Write and Read: it takes both
// locks in a fixed order (write, then read) to avoid deadlock with any
// future caller that might need the reverse order.
func (d *DoubleBuffer) Swap() int {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	d.readMu.Lock()
	defer d.readMu.Unlock()

	d.read, d.write = d.write, d.read
	d.write = d.write[:0]
	return len(d.read)
}

// Read returns the current read-side contents and clears it. The
// returned slice is owned by the caller; a subsequent Swap will not
// alias it.
func (d *DoubleBuffer) Read() []byte {
	d.readMu.Lock()
	defer d.readMu.Unlock()
	if len(d.read) == 0 {
		return nil
	}
	out := make([]byte, len(d.read))
	copy(out, d.read)
	d.read = d.read[:0]
	return out
}
