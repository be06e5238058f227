package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    // Protocol client round trips by method (submit|set_configuration) and
    // outcome (ok|rejected|not_leader|transport_error|malformed_reply).
    Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "raftclient",
        Name:      "requests_total",
        Help:      "Total protocol round trips by method and outcome",
    }, []string{"method", "outcome"})

    RequestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
        Namespace: "raftclient",
        Name:      "request_duration_seconds",
        Help:      "Round trip latency by method",
        Buckets:   prometheus.DefBuckets,
    }, []string{"method"})

    // Session-level redirect handling.
    Redirects = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "raftclient",
        Subsystem: "session",
        Name:      "redirects_total",
        Help:      "Total NotLeader redirects observed, by whether a leader was suggested",
    }, []string{"suggested"})
    SessionAttempts = prometheus.NewCounter(prometheus.CounterOpts{
        Namespace: "raftclient",
        Subsystem: "session",
        Name:      "attempts_total",
        Help:      "Total per-target attempts made by sessions",
    })
    SessionExhausted = prometheus.NewCounter(prometheus.CounterOpts{
        Namespace: "raftclient",
        Subsystem: "session",
        Name:      "exhausted_total",
        Help:      "Total session calls that ran out of retry attempts",
    })
    KnownPeers = prometheus.NewGauge(prometheus.GaugeOpts{
        Namespace: "raftclient",
        Subsystem: "session",
        Name:      "known_peers",
        Help:      "Size of the session's current known peer set",
    })

    GRPCConnDials = prometheus.NewCounter(prometheus.CounterOpts{
        Namespace: "raftclient",
        Subsystem: "grpc_conn",
        Name:      "dials_total",
        Help:      "Total number of new gRPC connections dialed",
    })
    GRPCConnReuse = prometheus.NewCounter(prometheus.CounterOpts{
        Namespace: "raftclient",
        Subsystem: "grpc_conn",
        Name:      "reuse_total",
        Help:      "Total number of gRPC connection reuses from cache",
    })
    GRPCConnEvictions = prometheus.NewCounter(prometheus.CounterOpts{
        Namespace: "raftclient",
        Subsystem: "grpc_conn",
        Name:      "evictions_total",
        Help:      "Total number of cached gRPC connections evicted",
    })
    GRPCConnActive = prometheus.NewGauge(prometheus.GaugeOpts{
        Namespace: "raftclient",
        Subsystem: "grpc_conn",
        Name:      "active",
        Help:      "Number of active cached gRPC connections",
    })
)

// Register registers metrics into the default Prometheus registry (idempotent).
func Register() {
    once.Do(func() {
        prometheus.MustRegister(Requests)
        prometheus.MustRegister(RequestSeconds)
        prometheus.MustRegister(Redirects)
        prometheus.MustRegister(SessionAttempts)
        prometheus.MustRegister(SessionExhausted)
        prometheus.MustRegister(KnownPeers)
        prometheus.MustRegister(GRPCConnDials)
        prometheus.MustRegister(GRPCConnReuse)
        prometheus.MustRegister(GRPCConnEvictions)
        prometheus.MustRegister(GRPCConnActive)
    })
}
