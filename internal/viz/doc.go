// Package viz provides the terminal live view of a running patch.
//
//   - [App]: patch picker that opens a live view
//   - [Model]: Bubble Tea model stepping a patch one frame per tick
//   - [Canvas]: Braille dot raster used for the string shape
//
// # Key Bindings
//
//	Enter  - Trigger a note
//	R      - Release the note
//	0      - Reset the patch to rest
//	Space  - Pause/Resume
//	Tab    - Select parameter
//	Up/Dn  - Scale parameter by 5%
//	T      - Cycle color themes
//	Esc    - Back to the patch list
package viz
