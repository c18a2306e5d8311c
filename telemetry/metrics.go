package telemetry

import (
	"fmt"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics wraps a VictoriaMetrics metric set scoped to one driver instance,
// so counters from multiple Drivers in the same process don't collide.
type Metrics struct {
	set *metrics.Set

	opsTotal      *metrics.Counter
	opsFailed     *metrics.Counter
	evictedItems  *metrics.Counter
	evictedBytes  *metrics.Counter
	guardRetries  *metrics.Counter
	scriptReloads *metrics.Counter
}

// New creates a Metrics instance registered under the given namespace
// label, e.g. `capcol_ops_total{driver="rdriver"}`.
func New(namespace string) *Metrics {
	set := metrics.NewSet()
	m := &Metrics{
		set:           set,
		opsTotal:      set.NewCounter(fmt.Sprintf(`capcol_ops_total{driver=%q}`, namespace)),
		opsFailed:     set.NewCounter(fmt.Sprintf(`capcol_ops_failed_total{driver=%q}`, namespace)),
		evictedItems:  set.NewCounter(fmt.Sprintf(`capcol_evicted_items_total{driver=%q}`, namespace)),
		evictedBytes:  set.NewCounter(fmt.Sprintf(`capcol_evicted_bytes_total{driver=%q}`, namespace)),
		guardRetries:  set.NewCounter(fmt.Sprintf(`capcol_guard_retries_total{driver=%q}`, namespace)),
		scriptReloads: set.NewCounter(fmt.Sprintf(`capcol_script_reloads_total{driver=%q}`, namespace)),
	}
	metrics.RegisterSet(set)
	return m
}

func (m *Metrics) RecordOp(failed bool) {
	m.opsTotal.Inc()
	if failed {
		m.opsFailed.Inc()
	}
}

func (m *Metrics) RecordEviction(items, bytes int64) {
	m.evictedItems.Add(int(items))
	m.evictedBytes.Add(int(bytes))
}

func (m *Metrics) RecordGuardRetry() {
	m.guardRetries.Inc()
}

func (m *Metrics) RecordScriptReload() {
	m.scriptReloads.Inc()
}

// Handler returns an http.Handler exposing this metric set in the
// Prometheus exposition format, mounted by cmd/capcol's serve command.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.set.WritePrometheus(w)
	})
}

// Unregister removes this instance's metric set from the default registry,
// used when a Driver is closed so repeated test setup doesn't panic on
// duplicate registration.
func (m *Metrics) Unregister() {
	metrics.UnregisterSet(m.set)
}
