// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Defaults mirrored from the original implementation's LogClient
// constants (original_source/uplog/src/client.rs).
const (
	DefaultBufferSize   = 2 * 1024 * 1024
	DefaultSwapDuration = 500 * time.Millisecond
	DefaultPort         = 8040
)

const builderSchemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["host", "port", "buffer_size", "swap_duration_ms"],
  "properties": {
    "host": {"type": "string", "minLength": 1},
    "port": {"type": "integer", "minimum": 1, "maximum": 65535},
    "buffer_size": {"type": "integer", "minimum": 1024},
    "swap_duration_ms": {"type": "integer", "minimum": 1}
  }
}`

var builderSchema *jsonschema.Schema

func init() {
	s, err := jsonschema.CompileString("uplog-builder.json", builderSchemaText)
	if err != nil {
		panic(fmt.Sprintf("uplog: invalid builtin builder schema: %v", err))
	}
	builderSchema = s
}

// Builder configures the network sink installed by Init. Construct one
// with NewBuilder and chain the With* setters.
type Builder struct {
	Host         string
	Port         uint16
	Secure       bool
	BufferSize   int
	SwapDuration time.Duration
}

// NewBuilder returns a Builder targeting host with every other field at
// its default.
func NewBuilder(host string) *Builder {
	return &Builder{
		Host:         host,
		Port:         DefaultPort,
		BufferSize:   DefaultBufferSize,
		SwapDuration: DefaultSwapDuration,
	}
}

func (b *Builder) WithPort(port uint16) *Builder {
	b.Port = port
	return b
}

func (b *Builder) WithSecure(secure bool) *Builder {
	b.Secure = secure
	return b
}

func (b *Builder) WithBufferSize(n int) *Builder {
	b.BufferSize = n
	return b
}

func (b *Builder) WithSwapDuration(d time.Duration) *Builder {
	b.SwapDuration = d
	return b
}

// validate checks b against builderSchema, going through a JSON
// round trip so the schema sees plain JSON types.
func (b *Builder) validate() error {
	doc := map[string]any{
		"host":             b.Host,
		"port":             int(b.Port),
		"buffer_size":      b.BufferSize,
		"swap_duration_ms": int(b.SwapDuration / time.Millisecond),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if err := builderSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return nil
}

// url renders the websocket endpoint this Builder connects to.
func (b *Builder) url() string {
	scheme := "ws"
	if b.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/", scheme, b.Host, b.Port)
}
