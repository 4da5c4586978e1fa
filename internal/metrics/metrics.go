// Copyright 2026 The CDRL Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes the Prometheus instrumentation for the
// digester, the execution-time event engine, and the reader pool. It is
// an internal package:
// the engine's own packages call the Record* functions directly, and a
// host process mounts Handler on its own mux.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DigestDuration observes how long a full digestion (root config plus
	// every recursively-resolved import and extension) takes.
	DigestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cdrl",
			Name:      "digest_duration_seconds",
			Help:      "Time to digest a CDRL configuration tree, including imports and extensions.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// VisitorFiringsTotal counts Before/Child/After callbacks by dispatch
	// key, so a hot selector is visible without re-running the digest.
	VisitorFiringsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cdrl",
			Name:      "visitor_firings_total",
			Help:      "Visitor callbacks fired by dispatch stage and key.",
		},
		[]string{"stage", "key"},
	)

	// ReaderAcquireWait observes how long a Runtime caller blocked in
	// ReaderPool.Acquire before getting a reader or timing out.
	ReaderAcquireWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cdrl",
			Name:      "reader_acquire_wait_seconds",
			Help:      "Time spent waiting to acquire a pooled reader.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// ReaderPoolInUse gauges how many pooled readers are currently
	// checked out of a given profile's pool.
	ReaderPoolInUse = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cdrl",
			Name:      "reader_pool_in_use",
			Help:      "Readers currently checked out of the pool.",
		},
		[]string{"profile"},
	)
)

func init() {
	prometheus.MustRegister(DigestDuration, VisitorFiringsTotal, ReaderAcquireWait, ReaderPoolInUse)
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDigest observes a completed digestion's wall-clock duration under
// outcome ("ok" or "error").
func RecordDigest(outcome string, d time.Duration) {
	DigestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordVisitorFiring increments the firing counter for stage
// ("before", "child", "after") and dispatch key.
func RecordVisitorFiring(stage, key string) {
	VisitorFiringsTotal.WithLabelValues(stage, key).Inc()
}

// RecordReaderAcquireWait observes an Acquire call's wait time under
// outcome ("ok" or "timeout").
func RecordReaderAcquireWait(outcome string, d time.Duration) {
	ReaderAcquireWait.WithLabelValues(outcome).Observe(d.Seconds())
}

// SetReaderPoolInUse sets the in-use gauge for profile.
func SetReaderPoolInUse(profile string, n int) {
	ReaderPoolInUse.WithLabelValues(profile).Set(float64(n))
}
