// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package housekeeping runs the collector's periodic storage-statistics
// job: it reports how many sessions are stored on a schedule, and
// deliberately stops short of any retention or compression policy.
// Grounded on
// internal/taskmanager's gocron.Scheduler-backed service registration
// pattern (taskManager.go's Start/Shutdown, compressionService.go's
// s.NewJob/gocron.NewTask shape), reusing cc-backend's scheduler
// library rather than a hand-rolled ticker loop.
package housekeeping

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/uplog-go/uplog/internal/storage"
	"github.com/uplog-go/uplog/pkg/log"
)

var s gocron.Scheduler

// Start registers and runs the storage-stats job on the given
// interval, reporting the session count and the oldest creation and
// newest update times via pkg/log; stored byte sizes are not reported. A non-positive interval disables housekeeping entirely, the
// scheduler is never created.
func Start(backend storage.Backend, interval time.Duration) error {
	if interval <= 0 {
		log.Info("housekeeping: disabled (interval <= 0)")
		return nil
	}

	var err error
	s, err = gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("housekeeping: create scheduler: %w", err)
	}

	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { reportStorageStats(backend) }),
	); err != nil {
		return fmt.Errorf("housekeeping: register job: %w", err)
	}

	s.Start()
	log.Infof("housekeeping: storage stats job registered, interval=%s", interval)
	return nil
}

// Shutdown stops the scheduler, if one was started.
func Shutdown() {
	if s != nil {
		if err := s.Shutdown(); err != nil {
			log.Warnf("housekeeping: shutdown: %v", err)
		}
	}
}

func reportStorageStats(backend storage.Backend) {
	infos, err := backend.Sessions()
	if err != nil {
		log.Warnf("housekeeping: list sessions: %v", err)
		return
	}

	var oldest, newest time.Time
	for i, info := range infos {
		if i == 0 || info.CreatedAt.Before(oldest) {
			oldest = info.CreatedAt
		}
		if i == 0 || info.UpdatedAt.After(newest) {
			newest = info.UpdatedAt
		}
	}

	log.Infof("housekeeping: %d session(s) on record, oldest=%s most-recently-updated=%s",
		len(infos), oldest.Format(time.RFC3339), newest.Format(time.RFC3339))
}
