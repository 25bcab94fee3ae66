// Package audio plays rendered patches on the host's default output device
// through PortAudio. A [Queue] decouples the renderer from the device
// callback and a [Meter] reports band levels of what was played.
package audio
