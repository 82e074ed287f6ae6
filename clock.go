// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"sync"
	"time"
)

// sessionClock records the two timestamps every Record's Elapsed field
// is measured against: a wall-clock start (for correlating against
// collector-side timestamps) and a monotonic start (so Elapsed never
// goes backwards under a clock step). Grounded on
// original_source/uplog/src/session.rs.
type sessionClock struct {
	startedAt time.Time
	mono      time.Time
}

var (
	clockOnce sync.Once
	clock     sessionClock
)

// initSessionClock starts the process-wide session clock on first call;
// subsequent calls are no-ops. The facade calls this once during Init.
func initSessionClock() {
	clockOnce.Do(func() {
		now := time.Now()
		clock = sessionClock{startedAt: now, mono: now}
	})
}

// sessionStartedAt returns the wall-clock time the session began.
func sessionStartedAt() time.Time {
	return clock.startedAt
}

// sessionElapsed returns the monotonic duration since session start.
// Call initSessionClock first; before that it reports a zero duration.
func sessionElapsed() time.Duration {
	if clock.mono.IsZero() {
		return 0
	}
	return time.Since(clock.mono)
}

// resetSessionClockForTest rearms the once-guard so tests can exercise
// session start independently of process-wide state.
func resetSessionClockForTest() {
	clockOnce = sync.Once{}
	clock = sessionClock{}
}
