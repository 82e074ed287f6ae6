// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config holds the collector binary's ProgramConfig: listen
// address, storage root/backend selection, housekeeping interval, TLS
// files and log level. Grounded on server.go's
// ProgramConfig/flag.StringVar/loadEnv/json.Unmarshal sequence, with
// .env loading delegated to cc-backend's own direct dependency
// github.com/joho/godotenv instead of the hand-rolled loadEnv helper.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ProgramConfig is the collector's top-level configuration, loaded
// from JSON and overridable by flags (see cmd/uplog-collectord).
type ProgramConfig struct {
	// ListenAddr is the collector's websocket listen address, e.g.
	// ":8040", matching the client library's default port.
	ListenAddr string `json:"listen-addr"`

	// ReaderAddr is internal/readerapi's separate HTTP listen address.
	// Empty disables the reader API.
	ReaderAddr string `json:"reader-addr"`

	// StorageRoot is the filesystem backend's root directory. Ignored
	// if Backend selects a non-file kind.
	StorageRoot string `json:"storage-root"`

	// Backend is a raw {"kind": "file"|"s3", ...} blob, validated
	// against backendSchema and handed to storage.NewBackend.
	Backend json.RawMessage `json:"backend"`

	// HousekeepingInterval, in seconds, between storage statistics log
	// lines (internal/housekeeping). Zero disables housekeeping.
	HousekeepingIntervalSeconds int `json:"housekeeping-interval-seconds"`

	// TLS certificate/key pair for wss://. Both empty means plain ws://.
	TLSCertFile string `json:"tls-cert-file"`
	TLSKeyFile  string `json:"tls-key-file"`

	// GopsAddr, if non-empty, starts a google/gops agent listening here.
	GopsAddr string `json:"gops-addr"`

	LogLevel string `json:"log-level"`
}

// Keys holds the process-wide configuration, mutated once by Init.
var Keys = ProgramConfig{
	ListenAddr:                  ":8040",
	ReaderAddr:                  "",
	StorageRoot:                 "./var/uplog-storage",
	Backend:                     json.RawMessage(`{"kind":"file"}`),
	HousekeepingIntervalSeconds: 300,
	LogLevel:                    "info",
}

const backendSchemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["kind"],
  "properties": {
    "kind": {"type": "string", "enum": ["file", "s3"]},
    "path": {"type": "string"},
    "endpoint": {"type": "string"},
    "region": {"type": "string"},
    "bucket": {"type": "string"},
    "prefix": {"type": "string"},
    "accessKeyID": {"type": "string"},
    "secretAccessKey": {"type": "string"},
    "usePathStyle": {"type": "boolean"}
  }
}`

var backendSchema *jsonschema.Schema

func init() {
	s, err := jsonschema.CompileString("uplog-backend.json", backendSchemaText)
	if err != nil {
		panic(fmt.Sprintf("config: invalid builtin backend schema: %v", err))
	}
	backendSchema = s
}

// Init loads .env (if present) then, if configFile is non-empty,
// overlays its JSON contents onto Keys after validating the Backend
// blob against backendSchema. Following server.go's own loadEnv-then-
// flag-overlay sequence. godotenv.Load reports a missing .env as an
// error; that not-exist error is ignored here, so an absent .env is a
// no-op.
func Init(configFile string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: load .env: %w", err)
	}

	if configFile == "" {
		return nil
	}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", configFile, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return fmt.Errorf("config: parse %s: %w", configFile, err)
	}

	var backendDoc any
	if err := json.Unmarshal(Keys.Backend, &backendDoc); err != nil {
		return fmt.Errorf("config: backend block is not valid JSON: %w", err)
	}
	if err := backendSchema.Validate(backendDoc); err != nil {
		return fmt.Errorf("config: invalid backend block: %w", err)
	}

	return nil
}
