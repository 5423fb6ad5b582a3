// ABOUTME: Audio encoder package
// ABOUTME: Writes decoded buffers back to files, currently WAV via beep
// Package encode writes audio.Buffer values to audio files.
//
// Supports: WAV (8, 16 or 24-bit PCM)
//
// Example:
//
//	f, err := os.Create("tone.wav")
//	err = encode.WAV(f, buf, 16)
package encode
