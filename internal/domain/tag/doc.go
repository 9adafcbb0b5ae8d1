// Package tag contains core domain types for simulated process variables.
//
// It defines Profile (how a value evolves), Definition (the plain-data shape
// exchanged with the definition store) and Sample (one computed value) with
// validation and Clone helpers to avoid leaking internal references.
package tag
