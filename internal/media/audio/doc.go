// Package audio shells out to ffmpeg to extract short mono 16kHz WAV
// segments used as transcription input. Failures carry a Kind so the
// identification loop can distinguish timeouts from missing streams and
// undecodable content.
package audio
