// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// uplog-democlient is a minimal exerciser of the root uplog package,
// useful for smoke-testing a running uplog-collectord by hand. It
// mirrors the shape of a small integration-style main used to poke at
// a server binary rather than any one teacher file.
package main

import (
	"flag"
	"time"

	"github.com/uplog-go/uplog"
	"github.com/uplog-go/uplog/pkg/log"
)

func main() {
	var host string
	var port uint
	var target string
	var count int
	flag.StringVar(&host, "host", "localhost", "collector host")
	flag.UintVar(&port, "port", uplog.DefaultPort, "collector port")
	flag.StringVar(&target, "target", "uplog-democlient", "module path reported in records")
	flag.IntVar(&count, "count", 10, "number of tick records to emit before the closing warning, flush and exit")
	flag.Parse()

	b := uplog.NewBuilder(host).WithPort(uint16(port))
	if err := uplog.Init(b); err != nil {
		log.Fatalf("uplog.Init: %v", err)
	}

	for i := 0; i < count; i++ {
		uplog.Info(target, "demo", "tick",
			uplog.Pair("i", uplog.Int(int64(i))),
			uplog.Pair("elapsed", uplog.Text(time.Now().Format(time.RFC3339Nano))))
	}
	uplog.Warn(target, "demo", "about to flush and exit")

	uplog.Flush()
	log.Infof("uplog-democlient: sent %d records to %s:%d", count+1, host, port)
}
