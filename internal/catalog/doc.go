// Package catalog maintains the registry of simulated tags.
//
// Each catalogued tag pairs its definition with a stable external identifier
// and a hierarchical asset path. The simulation core addresses tags by name;
// streaming subscribers address them by identifier.
package catalog
