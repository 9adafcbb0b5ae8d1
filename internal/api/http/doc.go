// Package httpapi exposes the simulator over HTTP: tag and scenario
// introspection, scenario control, custom scenario creation, the
// WebSocket streaming endpoint and Prometheus metrics.
package httpapi
