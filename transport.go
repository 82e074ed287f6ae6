// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/uplog-go/uplog/pkg/log"
)

// dropLogLimit bounds how often the "buffer full" warning is emitted;
// a stuck connection can drop thousands of records a second and
// logging every one of them would itself become the bottleneck.
const dropLogLimit = rate.Limit(1) // at most once per second

// networkSink is the background transport worker: a DoubleBuffer
// absorbs Log calls from arbitrary goroutines while a single owned
// goroutine ticks, swaps, and writes one binary websocket frame per
// tick. Grounded on the original implementation's WebsocketClient::run
// (original_source/uplog/src/client.rs), reworked onto
// gorilla/websocket and a ticker instead of tungstenite and
// recv_timeout.
type networkSink struct {
	conn *websocket.Conn
	buf  *DoubleBuffer
	tick time.Duration

	dropLog *rate.Limiter

	shutdown  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newNetworkSink(b *Builder) (*networkSink, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(b.url(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	ns := &networkSink{
		conn:     conn,
		buf:      NewDoubleBuffer(b.BufferSize),
		tick:     b.SwapDuration,
		dropLog:  rate.NewLimiter(dropLogLimit, 1),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go ns.run()
	return ns, nil
}

// Enabled is unconditional: this sink applies no level threshold, so
// while it is installed the facade submits records at every level.
func (ns *networkSink) Enabled(Metadata) bool { return true }

// Log encodes r and appends it to the staging buffer. A full buffer
// drops the record rather than blocking the caller.
func (ns *networkSink) Log(r Record) {
	enc := r.Encode(nil)
	if err := ns.buf.Write(enc); err != nil {
		recordsDroppedTotal.Inc()
		if ns.dropLog.Allow() {
			log.Warnf("uplog: staging buffer full, dropping record: %v", err)
		}
	}
}

// Flush signals the worker to drain and close, and waits for it.
func (ns *networkSink) Flush() {
	ns.closeOnce.Do(func() { close(ns.shutdown) })
	<-ns.done
}

func (ns *networkSink) run() {
	defer close(ns.done)
	ticker := time.NewTicker(ns.tick)
	defer ticker.Stop()

	for {
		finishing := false
		select {
		case <-ns.shutdown:
			finishing = true
		case <-ticker.C:
		}

		ns.buf.Swap()
		data := ns.buf.Read()
		if len(data) > 0 {
			if err := ns.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				transportErrorsTotal.Inc()
				log.Warnf("uplog: transport send failed, worker exiting: %v", err)
				ns.conn.Close()
				return
			}
			bytesSentTotal.Add(float64(len(data)))
		}

		if finishing {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := ns.conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
				log.Warnf("uplog: sending close frame failed: %v", err)
			}
			ns.conn.Close()
			return
		}
	}
}
