package model

import (
	"fmt"

	"github.com/ZhixiaoSu/phy/core"
)

// UpdateKind tags the operation that produced an UpdateDescriptor.
type UpdateKind string

const (
	// UpdateMerge combined several clusters into a fresh one.
	UpdateMerge UpdateKind = "merge"
	// UpdateSplit peeled spikes out of their clusters into fresh ones.
	UpdateSplit UpdateKind = "split"
	// UpdateMove relabeled the curation group of clusters.
	UpdateMove UpdateKind = "move"
	// UpdateUndo restored the state preceding the last recorded mutation.
	UpdateUndo UpdateKind = "undo"
	// UpdateRedo re-applied the last undone mutation.
	UpdateRedo UpdateKind = "redo"
)

// UpdateDescriptor describes the net effect of one mutation on the cluster
// set. It is produced by every mutating operation and consumed by observers
// and by history replay.
//
// The zero value is the "nothing happened" sentinel returned by undo/redo
// when the history has nothing left to replay.
type UpdateDescriptor struct {
	// Kind tags the operation that produced this update.
	Kind UpdateKind

	// Removed holds the cluster ids retired by the operation, sorted.
	Removed []core.ClusterID

	// Added holds the freshly minted (or reinstated) cluster ids, sorted.
	Added []core.ClusterID

	// Selected holds the subset of Added that a view should select next.
	Selected []core.ClusterID

	// Moved and Group are set for metadata moves only: the clusters whose
	// curation group changed and the group they were moved to. Moves do not
	// touch the spike assignment, so Removed/Added stay empty.
	Moved []core.ClusterID
	Group core.Group
}

// Empty reports whether the descriptor is the no-op sentinel.
func (u UpdateDescriptor) Empty() bool {
	return u.Kind == ""
}

// String returns a compact representation for logs.
func (u UpdateDescriptor) String() string {
	if u.Empty() {
		return "Update(none)"
	}
	if u.Kind == UpdateMove {
		return fmt.Sprintf("Update(%s: %d clusters -> %s)", u.Kind, len(u.Moved), u.Group)
	}
	return fmt.Sprintf("Update(%s: -%v +%v)", u.Kind, u.Removed, u.Added)
}
