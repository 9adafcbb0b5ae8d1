// Package stream maintains one WebSocket session per connected
// subscriber. Each session owns its subscription set, an independent
// update cadence and a liveness heartbeat; sessions are fully isolated
// from one another and never outlive their connection.
package stream
