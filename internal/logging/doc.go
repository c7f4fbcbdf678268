// Package logging centralizes slog construction and the structured field
// vocabulary used across the identification pipeline. Components obtain
// child loggers via NewComponentLogger and attach per-item context with
// WithContext so that every record carries the item, stage, and correlation
// identifiers needed to follow a single file through a batch run.
package logging
