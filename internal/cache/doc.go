// Package cache provides the bounded in-process LRU used to avoid repeated
// audio extraction, transcription, and subtitle parsing within a run.
package cache
