// Package metrics is the ambient instrumentation surface SPEC_FULL.md's
// domain-stack section adds around components E and F: counters for
// SNI resolution outcomes and OCSP fetch outcomes, plus a gauge vector
// tracking each context's current OCSP state. Grounded in
// caddyserver-caddy/metrics.go's promauto-based CounterVec registration
// pattern, adapted from a single package-level registry to an
// injectable one so tests don't collide on the global
// prometheus.DefaultRegisterer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bud"

// Registry implements sni.Recorder and stapling.Recorder, and exposes
// its collectors for an admin/metrics HTTP surface to serve.
type Registry struct {
	sniResolutions *prometheus.CounterVec
	ocspFetches    *prometheus.CounterVec
	ocspState      *prometheus.GaugeVec
}

// New registers bud's collectors against reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the process-global
// DefaultRegisterer; production wiring (cmd/bud) uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		sniResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sni",
			Name:      "resolutions_total",
			Help:      "Count of SNI resolution outcomes by result.",
		}, []string{"result"}),
		ocspFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ocsp",
			Name:      "fetch_total",
			Help:      "Count of OCSP helper fetch outcomes.",
		}, []string{"outcome"}),
		ocspState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ocsp",
			Name:      "staple_state",
			Help:      "Current OCSP entry state per context (1 for the active state, 0 otherwise).",
		}, []string{"context", "state"}),
	}
}

// RecordSNI implements sni.Recorder.
func (r *Registry) RecordSNI(result string) {
	r.sniResolutions.WithLabelValues(result).Inc()
}

// RecordOCSP implements stapling.Recorder.
func (r *Registry) RecordOCSP(outcome string) {
	r.ocspFetches.WithLabelValues(outcome).Inc()
}

// SetOCSPState records contextName's current OCSP state, clearing the
// gauge for every other known state label so exactly one is 1 at a
// time.
func (r *Registry) SetOCSPState(contextName string, states []string, current string) {
	for _, s := range states {
		v := 0.0
		if s == current {
			v = 1.0
		}
		r.ocspState.WithLabelValues(contextName, s).Set(v)
	}
}
