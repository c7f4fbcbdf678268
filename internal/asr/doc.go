// Package asr wraps external speech-to-text tooling behind a Backend
// interface and a fallback Chain. WhisperX (launched through uvx) is the
// primary backend with whisper.cpp as an optional lighter-weight fallback.
// Model processes are expensive, so the chain initializes lazily and
// serializes transcriptions.
package asr
