// Package generator computes the live value of every catalogued tag on a
// shared clock tick.
//
// The generator is the exclusive owner of current values and of the active
// modifier table. Scenarios install and clear modifiers through the
// SetModifier/ClearModifier contract; streaming sessions and the HTTP API
// read copies through CurrentValue and never mutate generator state.
package generator
