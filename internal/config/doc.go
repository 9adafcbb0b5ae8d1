// Package config defines runtime settings for the simulator process and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the HTTP listen address, the simulation tick period,
// the paths of the tag and scenario definition files, and per-session
// streaming defaults. Every field has a default so the simulator runs
// without any configuration file at all.
package config
