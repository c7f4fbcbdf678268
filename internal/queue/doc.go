// Package queue persists identification work items in SQLite. Each item
// tracks one media file from pending through identifying to a terminal
// matched, inconclusive, failed, or review status, along with the result
// fields the CLI reports.
package queue
