// Package identify contains the episode identification engine: checkpoint
// planning over a file's runtime, fuzzy scoring of ASR transcripts against a
// season's reference dialogue, and the per-file state machine that aggregates
// checkpoint votes into a single confidence-scored decision.
package identify
