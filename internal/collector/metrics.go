// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package collector

import "github.com/prometheus/client_golang/prometheus"

var (
	connectionsOpenTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uplog_collector_connections_open",
		Help: "Client connections currently being served.",
	})
	recordsReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uplog_collector_records_received_total",
		Help: "Records successfully decoded and appended to a session file.",
	})
	recordDecodeErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uplog_collector_record_decode_errors_total",
		Help: "Records that failed to decode within an otherwise valid frame.",
	})
)

func init() {
	prometheus.MustRegister(connectionsOpenTotal, recordsReceivedTotal, recordDecodeErrorsTotal)
}
