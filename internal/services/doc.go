// Package services holds the shared error taxonomy and context annotations
// used by the identification stages. Stage failures are wrapped with a
// sentinel marker so callers can classify them without string matching, and
// per-item metadata travels through context for structured logging.
package services
