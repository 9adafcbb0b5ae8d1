// Package simulator assembles and runs the process: it loads definitions
// from the store, builds the simulation core, drives the shared tick loop
// and serves the HTTP surface until shutdown.
package simulator
