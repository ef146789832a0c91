// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "priority_queue"

type metrics struct {
	head prometheus.Gauge
	tail prometheus.Gauge
	size prometheus.Gauge

	pushes      prometheus.Counter
	pops        prometheus.Counter
	emptyErrors prometheus.Counter
	failures    prometheus.Counter

	commitLatency metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	commitLatency, err := metric.NewAverager(
		"",
		namespace+"_commit_latency",
		"time spent committing a push or pop to the database",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		commitLatency: commitLatency,
		head: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "head",
			Help:      "number of operations ever pushed",
		}),
		tail: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tail",
			Help:      "number of operations ever popped",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "size",
			Help:      "number of unprocessed operations",
		}),
		pushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pushes",
			Help:      "number of committed pushes",
		}),
		pops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pops",
			Help:      "number of committed pops",
		}),
		emptyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_errors",
			Help:      "number of front or pop calls on an empty queue",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures",
			Help:      "number of mutations that failed and were discarded",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.head),
		r.Register(m.tail),
		r.Register(m.size),
		r.Register(m.pushes),
		r.Register(m.pops),
		r.Register(m.emptyErrors),
		r.Register(m.failures),
	)
	return m, errs.Err
}

func (m *metrics) setCursors(c Cursors) {
	m.head.Set(float64(c.Head))
	m.tail.Set(float64(c.Tail))
	m.size.Set(float64(c.Size()))
}
