// Package fuzzy ranks candidates against a typed query with
// subsequence matching.
//
// A match requires every query character to appear in the candidate
// in order; scoring then rewards consecutive runs, word boundary
// hits, and prefix alignment while penalizing gaps. Weights are
// additive and swappable, with presets for generic completion lists
// (DefaultScorer) and short snippet triggers (PrefixScorer).
package fuzzy
