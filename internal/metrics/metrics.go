// Package metrics exposes Prometheus collectors for the plan server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tableplanner_mutations_total",
		Help: "Committed document changes by operation",
	}, []string{"op"})

	historyDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tableplanner_history_depth",
		Help: "Undo and redo stack depth per plan",
	}, []string{"plan", "stack"})

	saveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tableplanner_save_duration_seconds",
		Help:    "Duration of document saves",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	saveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tableplanner_save_failures_total",
		Help: "Document saves that returned an error",
	})

	loadFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tableplanner_load_fallbacks_total",
		Help: "Loads that fell back to a default document",
	}, []string{"reason"})

	openPlans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tableplanner_open_plans",
		Help: "Plans currently held in memory",
	})
)

// Mutation counts one committed change.
func Mutation(op string) {
	mutationsTotal.WithLabelValues(op).Inc()
}

// HistoryDepth records the stack sizes of one plan.
func HistoryDepth(plan string, past, future int) {
	historyDepth.WithLabelValues(plan, "undo").Set(float64(past))
	historyDepth.WithLabelValues(plan, "redo").Set(float64(future))
}

// ForgetPlan drops the per-plan series of a closed plan.
func ForgetPlan(plan string) {
	historyDepth.DeleteLabelValues(plan, "undo")
	historyDepth.DeleteLabelValues(plan, "redo")
}

// SaveTimer starts timing a save; call ObserveDuration when it returns.
func SaveTimer() *prometheus.Timer {
	return prometheus.NewTimer(saveDuration)
}

// SaveFailed counts a failed save.
func SaveFailed() {
	saveFailures.Inc()
}

// LoadFallback counts a load that returned defaults instead of stored data.
func LoadFallback(reason string) {
	loadFallbacks.WithLabelValues(reason).Inc()
}

// OpenPlans sets the number of plans in memory.
func OpenPlans(n int) {
	openPlans.Set(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
