// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import "runtime"

// callerInfo captures the file/line of the call into the logging API,
// the Go substitute for the original implementation's call-site macros
// (original_source/uplog/src/macros.rs), which spliced __FILE__/__LINE__
// in at compile time. skip is handed straight to runtime.Caller, so 0
// is callerInfo's own frame.
func callerInfo(skip int) (file string, line uint32, ok bool) {
	_, f, l, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, false
	}
	return f, uint32(l), true
}

// CallerLocation reports the file and line of its own call site. It is
// exported so a wrapping logging shim (one extra frame above the
// actual producer) can capture the producer's location itself and
// hand it to the *At family below instead of getting the shim's own
// frame back.
func CallerLocation() (file string, line uint32, ok bool) {
	return callerInfo(2)
}
