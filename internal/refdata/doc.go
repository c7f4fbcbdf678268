// Package refdata loads and normalizes per-episode reference dialogue. SRT
// files come from a local cache directory or a remote provider, get cleaned
// of markup and release junk, and are grouped into overlapping time windows
// that checkpoint transcripts are scored against.
package refdata
