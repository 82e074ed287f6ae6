// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// backendSelector is the minimal shape every backend config blob
// shares: a "kind" discriminator. Grounded on pkg/archive/archive.go's
// Init, which unmarshals the same kind of minimal struct before
// switching on it to pick FsArchive vs (stubbed) S3Archive.
type backendSelector struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// NewBackend constructs a Backend from a raw {"kind": "file"|"s3", ...}
// configuration blob. root is used as the filesystem backend's
// directory when the blob omits "path".
func NewBackend(ctx context.Context, raw json.RawMessage, root string) (Backend, error) {
	var sel backendSelector
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("storage: parse backend config: %w", err)
	}

	switch sel.Kind {
	case "", "file":
		dir := sel.Path
		if dir == "" {
			dir = root
		}
		return NewFsBackend(dir)
	case "s3":
		var cfg S3BackendConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("storage: parse s3 backend config: %w", err)
		}
		return NewS3Backend(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown backend kind %q", sel.Kind)
	}
}
