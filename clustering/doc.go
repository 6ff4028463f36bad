// Package clustering implements the manual-curation state machine over a
// spike-to-cluster assignment.
//
// A Clustering owns the assignment loaded from a dataset and exposes the two
// structural mutations of manual curation, merge and split. Both mint fresh
// cluster ids from a monotonic allocator (retired ids are never reissued) and
// report their net effect as a model.UpdateDescriptor. Mutations are atomic:
// a rejected operation leaves the assignment untouched.
//
// Per-cluster spike membership is kept in Roaring bitmaps, so merges, splits
// and selector queries touch only the clusters involved rather than the full
// assignment.
//
// Capture/Restore pack the whole assignment into a compressed block for the
// undo history; see Snapshot.
package clustering
