// Package definitions persists tag and scenario definitions to YAML files
// on disk.
//
// The Repository interface is the simulator's boundary to its definition
// store; the file implementation is an explicitly constructed handle with no
// ambient global state. Definitions are re-validated on load.
package definitions
