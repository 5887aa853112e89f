/*
 * metrics.go, part of goifp.
 *
 * Copyright 2024 The goifp authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package fingerprint

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of a Pipeline. They are not registered
// anywhere until Register is called.
type Metrics struct {
	FramesProcessed prometheus.Counter
	FramesFailed    prometheus.Counter
	Hits            *prometheus.CounterVec
	Columns         prometheus.Gauge
	FrameDuration   prometheus.Histogram
}

// FrameDurationBuckets are the buckets, in seconds, of the frame latency histogram.
var FrameDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// NewMetrics returns collectors with names prefixed by namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "frames_processed_total", Help: "Frames fingerprinted.",
		}),
		FramesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "frames_failed_total", Help: "Frames that could not be fingerprinted.",
		}),
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "hits_total", Help: "Interaction hits, by rule.",
		}, []string{"rule"}),
		Columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "columns", Help: "Columns in the fingerprint.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "frame_duration_seconds", Help: "Time to fingerprint a frame.",
			Buckets: FrameDurationBuckets,
		}),
	}
}

// Register registers all the collectors with r.
func (M *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{M.FramesProcessed, M.FramesFailed, M.Hits, M.Columns, M.FrameDuration} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (M *Metrics) frameDone(res *FrameResult, took time.Duration) {
	if M == nil {
		return
	}
	M.FramesProcessed.Inc()
	M.FrameDuration.Observe(took.Seconds())
	for col, hits := range res.Hits {
		M.Hits.WithLabelValues(col.Rule).Add(float64(len(hits)))
	}
}

func (M *Metrics) frameFailed() {
	if M == nil {
		return
	}
	M.FramesFailed.Inc()
}

func (M *Metrics) columns(n int) {
	if M == nil {
		return
	}
	M.Columns.Set(float64(n))
}
