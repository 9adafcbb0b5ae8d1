// Package scenario implements time-bounded fault scenarios and the state
// machine that runs them.
//
// A Scenario installs per-tag value modifiers on the generator when
// activated and clears exactly those tags when deactivated. The Engine
// enforces that at most one fault scenario is live at any instant and
// auto-reverts to the normal baseline on expiry. Scenarios are built from
// declarative definitions (the custom-scenario factory) and a set of
// built-in BOP fault drills ships with the simulator.
package scenario
