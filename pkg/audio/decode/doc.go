// ABOUTME: Audio decoder package for multiple file format support
// ABOUTME: Provides Decoder interface and implementations for WAV, MP3, FLAC, Ogg Vorbis
// Package decode turns audio files into in-memory audio.Buffer values.
//
// Supports: WAV (8/16/24/32-bit PCM, any channel count), MP3, FLAC, Ogg Vorbis
//
// All decoders implement the Decoder interface and produce interleaved
// float32 samples in [-1, 1] at the file's native sample rate.
//
// Example:
//
//	buf, err := decode.DecodeFile("/path/to/track.flac")
//	fmt.Println(buf.Frames(), buf.Format.SampleRate)
package decode
