// Package fds provides finite-difference time-domain models of vibrating
// objects for sample-by-sample sound synthesis.
//
// The package is built around a discretized form of Newton's second law:
//
//   - [Field]: a 1-D grid with two halo points on each side and the
//     difference operators used by the update schemes
//   - [PointModel]: a single lumped mass with an implicit update
//   - [FieldModel]: N coupled points built from three rotating [Field] buffers
//   - [Mallet]: a lumped striker with a power-law contact force
//   - [Finger]: a stopping finger coupled to a string at a fractional position
//   - [Reed]: a reed collaborator for [FieldModel.AddReedForce]
//
// # Per-sample contract
//
// Every sample the host prepares the boundaries of the current field, adds
// forces and then calls Compute, which commits the accumulated forces and
// resets the accumulators:
//
//	s.U().PrepareClampedBoundaryLeft()
//	s.U().PrepareClampedBoundaryRight()
//	s.AddTensionFreq(220)
//	s.AddDamping(1)
//	s.Compute()
//	y := s.U().At(30)
//
// # Thread Safety
//
// Models are NOT thread-safe. Field buffers and force accumulators must only
// be touched from the goroutine driving the model.
package fds
