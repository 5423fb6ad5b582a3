// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the fundamental audio types shared by the decoders,
// the output backends and the player.
//
// A Buffer holds a whole decoded file as interleaved float32 frames. The
// conversion helpers map 16-bit, 24-bit and arbitrary-depth integer samples
// into the [-1, 1] float range used everywhere else.
//
// Example:
//
//	buf := audio.NewBuffer(audio.Format{SampleRate: 48000, Channels: 2}, 480)
//	left := buf.Frame(0)[0]
package audio
