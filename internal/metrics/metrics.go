// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions counts successful workflow status changes.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stagebook",
		Name:      "workflow_transitions_total",
		Help:      "Status changes applied by the workflow, by entity and target status.",
	}, []string{"entity", "to"})

	// Rejections counts workflow calls refused by a state or ownership gate.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stagebook",
		Name:      "workflow_rejections_total",
		Help:      "Workflow calls refused without mutation, by operation.",
	}, []string{"operation"})

	// ConflictChecks counts scheduling checks by outcome.
	ConflictChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stagebook",
		Name:      "conflict_checks_total",
		Help:      "Scheduling conflict checks, by result (conflict or clear).",
	}, []string{"result"})

	// SideEffects counts background jobs by kind and outcome.
	SideEffects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stagebook",
		Name:      "side_effects_total",
		Help:      "Best-effort side effects, by job kind and outcome (ok, failed, dropped).",
	}, []string{"kind", "outcome"})

	// FanoutBookings counts bookings created or cancelled by event fan-out.
	FanoutBookings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stagebook",
		Name:      "fanout_bookings_total",
		Help:      "Bookings touched by event publishing fan-out, by action and outcome.",
	}, []string{"action", "outcome"})

	// RateLimited counts requests rejected by the auth rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stagebook",
		Name:      "rate_limited_total",
		Help:      "Requests rejected with 429 by the rate limiter.",
	})
)
