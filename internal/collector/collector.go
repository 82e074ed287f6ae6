// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package collector implements the server-side connection handler:
// one goroutine pair per inbound websocket connection, a finite state
// machine (Opening/Registering/Serving/Closing), decoding a stream of
// framed Records and dispatching them to a per-session writer.
// Grounded on original_source/server/src/bin/server.rs's
// ws_index/WsConn (an actix actor per connection), translated to Go's
// goroutine-per-connection idiom with golang.org/x/sync/errgroup
// coordinating the network-read task and the file-write task.
package collector

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/uplog-go/uplog"
	"github.com/uplog-go/uplog/internal/storage"
	"github.com/uplog-go/uplog/pkg/log"
)

// inboundQueueDepth bounds how many undecoded frames the network task
// may get ahead of the file-write task by before it blocks.
const inboundQueueDepth = 8

// Server accepts websocket connections and fans each one out to its
// own session in backend.
type Server struct {
	backend  storage.Backend
	upgrader websocket.Upgrader
}

// New returns a Server that registers a new session in backend for
// every accepted connection.
func New(backend storage.Backend) *Server {
	return &Server{
		backend: backend,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  2 * 1024 * 1024,
			WriteBufferSize: 2 * 1024 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP is the Opening state: it performs the websocket upgrade
// handshake and, on success, hands the connection to Serve.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("collector: handshake failed: %v", err)
		return
	}
	s.Serve(r.Context(), conn)
}

// Serve drives one connection through Registering, Serving, and
// Closing. It blocks until the connection ends.
func (s *Server) Serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	sessionID := uuid.New().String()
	writer, err := s.backend.CreateSession(sessionID)
	if err != nil {
		log.Errorf("collector: register session %s: %v", sessionID, err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "registration failed"))
		return
	}
	connectionsOpenTotal.Inc()
	log.Infof("collector: session %s opened", sessionID)

	g, gctx := errgroup.WithContext(ctx)
	frames := make(chan []byte, inboundQueueDepth)

	// Network-I/O task: read frames off the wire and hand them to the
	// file-I/O task. Never touches the session writer directly.
	g.Go(func() error {
		defer close(frames)
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return err
				}
				return nil
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			select {
			case frames <- data:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	// File-I/O task: decode each frame's concatenated records and
	// append them to the session file. This is the Serving state.
	g.Go(func() error {
		for data := range frames {
			decodeFrame(sessionID, writer, data)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Warnf("collector: session %s: %v", sessionID, err)
	}

	// Closing: flush and drop the writer regardless of how Serving
	// ended (peer close, transport error, or our own shutdown).
	if err := writer.Close(); err != nil {
		log.Errorf("collector: finalize session %s: %v", sessionID, err)
	}
	connectionsOpenTotal.Dec()
	log.Infof("collector: session %s closed", sessionID)
}

// decodeFrame walks the self-delimiting records packed into one
// websocket message and appends each successfully decoded one's raw
// bytes to w. A decode error on one record (typically a truncated
// trailing item) is logged and the rest of this frame is abandoned;
// it never tears down the connection, only a framing-layer error from
// ReadMessage itself does that.
func decodeFrame(sessionID string, w storage.SessionWriter, data []byte) {
	pos := 0
	for pos < len(data) {
		_, n, err := uplog.DecodeRecord(data[pos:])
		if err != nil {
			log.Warnf("collector: session %s: %v", sessionID, err)
			recordDecodeErrorsTotal.Inc()
			break
		}
		if _, err := w.Write(data[pos : pos+n]); err != nil {
			log.Errorf("collector: session %s: append: %v", sessionID, err)
			return
		}
		pos += n
		recordsReceivedTotal.Inc()
	}
	if err := w.Flush(); err != nil {
		log.Errorf("collector: session %s: flush: %v", sessionID, err)
	}
}
