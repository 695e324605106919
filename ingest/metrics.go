package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	msgsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobin_ingest_messages_received_total",
		Help: "Total number of payloads received from the device.",
	}, []string{"source"})
	msgsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobin_ingest_messages_rejected_total",
		Help: "Total number of payloads discarded as malformed.",
	}, []string{"source"})
	pollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecobin_ingest_poll_failures_total",
		Help: "Total number of HTTP polls that failed or returned a non-200 status.",
	})
)
