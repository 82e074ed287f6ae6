// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package log is the ambient operations logger for the collector and
// its supporting binaries: startup diagnostics, connection lifecycle,
// storage backend errors. It is deliberately separate from the root
// uplog package's Record/Sink machinery, which carries application log
// data rather than the collector's own operational messages.
//
// Time/Date are not logged because systemd adds them for us (default,
// can be changed by SetLogDateTime(true)).
//
// Uses these prefixes: https://www.freedesktop.org/software/systemd/man/sd-daemon.html
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelNote
	levelWarn
	levelErr
	levelCrit
)

var logDateTime bool

var writers = [...]io.Writer{
	levelDebug: os.Stderr,
	levelInfo:  os.Stderr,
	levelNote:  os.Stderr,
	levelWarn:  os.Stderr,
	levelErr:   os.Stderr,
	levelCrit:  os.Stderr,
}

var prefixes = [...]string{
	levelDebug: "<7>[DEBUG]    ",
	levelInfo:  "<6>[INFO]     ",
	levelNote:  "<5>[NOTICE]   ",
	levelWarn:  "<4>[WARNING]  ",
	levelErr:   "<3>[ERROR]    ",
	levelCrit:  "<2>[CRITICAL] ",
}

// flags per level, matching the original per-variable log.Logger
// construction (short file for notice/warn, long file for err/crit).
var flags = [...]int{
	levelDebug: 0,
	levelInfo:  0,
	levelNote:  log.Lshortfile,
	levelWarn:  log.Lshortfile,
	levelErr:   log.Llongfile,
	levelCrit:  log.Llongfile,
}

var loggers [len(writers)]*log.Logger
var timeLoggers [len(writers)]*log.Logger

func init() {
	rebuildLoggers()
}

func rebuildLoggers() {
	for l := range writers {
		loggers[l] = log.New(writers[l], prefixes[l], flags[l])
		timeLoggers[l] = log.New(writers[l], prefixes[l], flags[l]|log.LstdFlags)
	}
}

/* CONFIG */

// SetLogLevel discards output below lvl ("debug", "info", "notice",
// "warn", "err"/"fatal", "crit"). An unrecognized value falls back to
// "debug".
func SetLogLevel(lvl string) {
	discard := func(upTo level) {
		for l := levelDebug; l <= upTo; l++ {
			writers[l] = io.Discard
		}
	}
	switch lvl {
	case "crit":
		discard(levelErr)
	case "err", "fatal":
		discard(levelWarn)
	case "warn":
		discard(levelNote)
	case "notice":
		discard(levelInfo)
	case "info":
		discard(levelDebug)
	case "debug":
		// nothing discarded
	default:
		fmt.Printf("pkg/log: Flag 'loglevel' has invalid value %#v\npkg/log: Will use default loglevel 'debug'\n", lvl)
		SetLogLevel("debug")
		return
	}
	rebuildLoggers()
}

func SetLogDateTime(logdate bool) {
	logDateTime = logdate
}

func output(l level, s string) {
	if writers[l] == io.Discard {
		return
	}
	lg := loggers[l]
	if logDateTime {
		lg = timeLoggers[l]
	}
	lg.Output(3, s)
}

/* PRINT */

func Print(v ...interface{}) { Info(v...) }

func Debug(v ...interface{}) { output(levelDebug, fmt.Sprint(v...)) }
func Info(v ...interface{})  { output(levelInfo, fmt.Sprint(v...)) }
func Note(v ...interface{})  { output(levelNote, fmt.Sprint(v...)) }
func Warn(v ...interface{})  { output(levelWarn, fmt.Sprint(v...)) }
func Error(v ...interface{}) { output(levelErr, fmt.Sprint(v...)) }
func Crit(v ...interface{})  { output(levelCrit, fmt.Sprint(v...)) }

// Panic writes an error log and then panics.
func Panic(v ...interface{}) {
	Error(v...)
	panic("Panic triggered ...")
}

// Fatal writes an error log and stops the application.
func Fatal(v ...interface{}) {
	Error(v...)
	os.Exit(1)
}

/* PRINT FORMAT */

func Printf(format string, v ...interface{}) { Infof(format, v...) }

func Debugf(format string, v ...interface{}) { output(levelDebug, fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { output(levelInfo, fmt.Sprintf(format, v...)) }
func Notef(format string, v ...interface{})  { output(levelNote, fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { output(levelWarn, fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { output(levelErr, fmt.Sprintf(format, v...)) }
func Critf(format string, v ...interface{})  { output(levelCrit, fmt.Sprintf(format, v...)) }

func Panicf(format string, v ...interface{}) {
	Errorf(format, v...)
	panic("Panic triggered ...")
}

func Fatalf(format string, v ...interface{}) {
	Errorf(format, v...)
	os.Exit(1)
}
