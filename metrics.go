// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import "github.com/prometheus/client_golang/prometheus"

// Process-wide counters exposed under the default prometheus registry.
// A full staging buffer drops the record and counts it rather than
// blocking the caller or growing without bound.
var (
	recordsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uplog_records_dropped_total",
		Help: "Records dropped by the client facade because the staging buffer was full.",
	})
	bytesSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uplog_bytes_sent_total",
		Help: "Bytes flushed to the transport, counted per buffer swap.",
	})
	transportErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uplog_transport_errors_total",
		Help: "Failures observed by the background transport worker.",
	})
)

func init() {
	prometheus.MustRegister(recordsDroppedTotal, bytesSentTotal, transportErrorsTotal)
}
