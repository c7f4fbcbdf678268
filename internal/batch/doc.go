// Package batch drains the identification queue through a bounded worker
// pool: one worker per file, checkpoints within a file sequential, results
// and failures collected per run without one file aborting its siblings.
package batch
