// Package textutil provides the text processing primitives behind dialogue
// matching: tokenization, term-frequency fingerprints with cosine similarity,
// word-order-insensitive and alignment-seeking edit ratios, and filename
// sanitization for proposed episode names.
//
// The edit ratios mirror the token_sort/partial pairing commonly used for
// noisy speech-to-text comparison: TokenSortRatio absorbs word order drift
// between a transcript and reference dialogue, while PartialRatio lets a
// short snippet score against the best-aligned region of a longer text.
package textutil
