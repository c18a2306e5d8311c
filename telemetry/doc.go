// Package telemetry collects counters and eviction events emitted by the
// drivers, off the hot path of the algorithm itself.
package telemetry
