// Package bm25 provides an in-memory BM25F keyword index over recordings.
//
// Each recording is indexed as five weighted fields (title, tags, summary,
// context and transcript). A query term's frequency is length-normalised
// per field, combined with the field weights and saturated once, so a
// match in a heavily weighted field outranks the same match density in a
// lightly weighted one.
package bm25
