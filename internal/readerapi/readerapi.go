// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package readerapi is a narrow, read-only HTTP surface over stored
// sessions: enumerate them, or open one for sequential decoding, and
// nothing more — no GraphQL, no auth, no mutation. Grounded on
// original_source/tools/src/webapi.rs's storages/storage_read_at
// queries, reworked onto plain JSON/NDJSON over gorilla/mux +
// gorilla/handlers instead of async-graphql, matching server.go's
// router wiring style.
package readerapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/uplog-go/uplog"
	"github.com/uplog-go/uplog/internal/storage"
	"github.com/uplog-go/uplog/pkg/log"
)

// maxSessionBytes bounds a single full-scan read of a session file;
// larger sessions must be paged through ?start=&length= instead.
const maxSessionBytes = 256 << 20

func readAllLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxSessionBytes+1))
}

// sessionView is the JSON shape returned by GET /sessions, renaming
// storage.SessionInfo's fields the way the original implementation's
// SessionViewInfo renamed Storage's SessionInfo for its GraphQL
// schema.
type sessionView struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Server wraps a storage.Backend with a read-only HTTP API.
type Server struct {
	backend storage.Backend
	router  *mux.Router
}

// New builds a Server serving reads from backend.
func New(backend storage.Backend) *Server {
	s := &Server{backend: backend, router: mux.NewRouter()}
	s.router.HandleFunc("/sessions", s.listSessions).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions/{name}", s.streamSession).Methods(http.MethodGet)
	return s
}

// Handler returns the server's http.Handler, wrapped with access
// logging the way server.go wraps its own router with
// handlers.CustomLoggingHandler.
func (s *Server) Handler() http.Handler {
	return handlers.CombinedLoggingHandler(logWriter{}, s.router)
}

// logWriter adapts pkg/log's leveled output into the io.Writer
// gorilla/handlers' logging middleware expects.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	log.Debugf("readerapi: %s", p)
	return len(p), nil
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	infos, err := s.backend.Sessions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]sessionView, 0, len(infos))
	for _, info := range infos {
		views = append(views, sessionView{Name: info.Name, CreatedAt: info.CreatedAt, UpdatedAt: info.UpdatedAt})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		log.Errorf("readerapi: encode sessions: %v", err)
	}
}

// streamSession streams a session's records as newline-delimited
// JSON. With no query parameters it performs a full sequential scan.
// ?start=&length= route through the bounded Backend.ReadAt instead,
// still a from-the-beginning scan under the hood — never an index.
func (s *Server) streamSession(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)

	if start := q.Get("start"); start != "" || q.Get("length") != "" {
		index, _ := strconv.Atoi(start)
		length, err := strconv.Atoi(q.Get("length"))
		if err != nil || length <= 0 {
			length = 100
		}
		records, err := s.backend.ReadAt(name, index, length)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		for _, rec := range records {
			if err := enc.Encode(recordView(rec)); err != nil {
				log.Errorf("readerapi: encode record: %v", err)
				return
			}
		}
		return
	}

	rc, err := s.backend.Open(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer rc.Close()

	buf, err := readAllLimited(rc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	pos := 0
	for pos < len(buf) {
		rec, n, err := uplog.DecodeRecord(buf[pos:])
		if err != nil {
			break
		}
		pos += n
		if err := enc.Encode(recordView(rec)); err != nil {
			log.Errorf("readerapi: encode record: %v", err)
			return
		}
	}
}

// recordView is the JSON projection of a uplog.Record served to
// readers; kv is rendered as a JSON object from a map, and
// encoding/json writes map keys in sorted order, matching the KV's
// deterministic key sort.
type recordView struct {
	Level      string         `json:"level"`
	Target     string         `json:"target"`
	ElapsedSec float64        `json:"elapsed_seconds"`
	Category   string         `json:"category"`
	ModulePath string         `json:"module_path,omitempty"`
	File       string         `json:"file,omitempty"`
	Line       uint32         `json:"line,omitempty"`
	Message    string         `json:"message"`
	KV         map[string]any `json:"kv,omitempty"`
}

func recordView(r uplog.Record) recordView {
	view := recordView{
		Level:      r.Metadata.Level.String(),
		Target:     r.Metadata.Target,
		ElapsedSec: r.Elapsed.Seconds(),
		Category:   r.Category,
		ModulePath: r.ModulePath,
		File:       r.File,
		Message:    r.Message,
	}
	if r.HasLine {
		view.Line = r.Line
	}
	if r.KV != nil && r.KV.Len() > 0 {
		view.KV = make(map[string]any, r.KV.Len())
		r.KV.Range(func(k string, v uplog.Value) bool {
			view.KV[k] = valueView(v)
			return true
		})
	}
	return view
}

func valueView(v uplog.Value) any {
	switch v.Kind() {
	case uplog.KindI64:
		n, _ := v.AsI64()
		return n
	case uplog.KindU64:
		n, _ := v.AsU64()
		return n
	case uplog.KindF32:
		n, _ := v.AsF32()
		return n
	case uplog.KindF64:
		n, _ := v.AsF64()
		return n
	case uplog.KindBool:
		b, _ := v.AsBool()
		return b
	case uplog.KindText:
		t, _ := v.AsText()
		return t
	case uplog.KindBytes:
		b, _ := v.AsBytes()
		return b
	case uplog.KindArray:
		arr, _ := v.AsArray()
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = valueView(e)
		}
		return out
	default:
		return nil
	}
}
