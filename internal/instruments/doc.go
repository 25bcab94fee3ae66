// Package instruments wires the fds engine into playable patches.
//
// A patch owns one or more engine models and performs the per-sample call
// sequence for them: prepare boundaries, add forces, compute, read the
// output. Patches expose a flat set of named float parameters so that
// configs and the CLI can tune them without knowing the concrete type.
//
// Patches are not safe for concurrent use.
package instruments
