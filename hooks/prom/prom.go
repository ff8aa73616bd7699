// Package promhook exports callcache.Hooks events as Prometheus counters.
package promhook

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/callcache"
)

type Hooks struct {
	Calls      *prometheus.CounterVec
	TxFailures *prometheus.CounterVec
	Misses     prometheus.Counter
	Flushes    prometheus.Counter
}

var _ callcache.Hooks = (*Hooks)(nil)

// New registers the counters on reg. Pass prometheus.DefaultRegisterer for
// the global registry.
func New(reg prometheus.Registerer) (*Hooks, error) {
	h := &Hooks{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callcache_calls_total",
				Help: "Committed instrumented calls",
			},
			[]string{"op"},
		),
		TxFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callcache_tx_failures_total",
				Help: "Instrumented calls whose write batch failed",
			},
			[]string{"op"},
		),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callcache_misses_total",
			Help: "Reads that found no value",
		}),
		Flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callcache_flushes_total",
			Help: "Database flushes issued on construction",
		}),
	}
	for _, c := range []prometheus.Collector{h.Calls, h.TxFailures, h.Misses, h.Flushes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Flushed(int)                 { h.Flushes.Inc() }
func (h *Hooks) Called(op, _ string)         { h.Calls.WithLabelValues(op).Inc() }
func (h *Hooks) Miss(string)                 { h.Misses.Inc() }
func (h *Hooks) TxFailed(op string, _ error) { h.TxFailures.WithLabelValues(op).Inc() }
