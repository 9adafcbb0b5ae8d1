// Package metrics exposes Prometheus instrumentation for the simulator:
// tick throughput and latency, streaming session lifecycle and the
// currently active scenario.
package metrics
