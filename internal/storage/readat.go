// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package storage

import (
	"io"

	"github.com/uplog-go/uplog"
)

// decodeReadAt implements the Backend.ReadAt contract on top of any
// sequential byte stream: skip index decoded records, then decode up
// to length more. Grounded on original_source/tools/src/reader.rs's
// CBORSequenceReader::read_at, which does the same full-rescan-from-
// start rather than maintaining an index.
func decodeReadAt(rc io.ReadCloser, index, length int) ([]uplog.Record, error) {
	defer rc.Close()
	if length <= 0 {
		return nil, nil
	}

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	out := make([]uplog.Record, 0, length)
	pos := 0
	seen := 0
	for pos < len(raw) {
		r, n, err := uplog.DecodeRecord(raw[pos:])
		if err != nil {
			break
		}
		pos += n
		if seen >= index {
			out = append(out, r)
			if len(out) >= length {
				break
			}
		}
		seen++
	}
	return out, nil
}
