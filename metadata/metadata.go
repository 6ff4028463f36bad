// Package metadata tracks per-cluster curation metadata. The only metadata
// the core owns is the curation group (noise, mua, good, unsorted) mutated
// by the session's move operation; acoustic statistics, colors and other
// view concerns live outside the core.
package metadata

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/model"
)

// ErrNoClusters is returned by SetGroup when no clusters are given.
var ErrNoClusters = errors.New("no clusters to move")

// ErrInvalidGroup indicates a move to a group the core does not know.
type ErrInvalidGroup struct {
	Group core.Group
}

func (e *ErrInvalidGroup) Error() string {
	return fmt.Sprintf("invalid group: %q", e.Group)
}

// ClusterMetadata is a total function from cluster id to curation group:
// clusters never moved report GroupUnsorted. Ids are not validated against
// the live cluster set, because groups are meaningful for ids minted later
// (a merge inherits no group and starts unsorted) and for ids stored in a
// dataset whose assignment has since changed.
//
// Not safe for concurrent use.
type ClusterMetadata struct {
	groups map[core.ClusterID]core.Group
}

// New creates an empty ClusterMetadata; every cluster starts unsorted.
func New() *ClusterMetadata {
	return &ClusterMetadata{
		groups: make(map[core.ClusterID]core.Group),
	}
}

// NewWithGroups creates a ClusterMetadata seeded with stored groups, e.g.
// from a loaded dataset. The map is copied; unsorted entries are dropped
// since they equal the default.
func NewWithGroups(groups map[core.ClusterID]core.Group) *ClusterMetadata {
	m := New()
	for id, g := range groups {
		if g != core.GroupUnsorted && g != "" {
			m.groups[id] = g
		}
	}
	return m
}

// Group returns the curation group of a cluster.
func (m *ClusterMetadata) Group(id core.ClusterID) core.Group {
	if g, ok := m.groups[id]; ok {
		return g
	}
	return core.GroupUnsorted
}

// Groups returns a copy of all non-default group assignments.
func (m *ClusterMetadata) Groups() map[core.ClusterID]core.Group {
	return maps.Clone(m.groups)
}

// SetGroup moves the given clusters to a curation group and reports the
// change. It requires a non-empty cluster set and a known group, and rejects
// without mutating otherwise.
func (m *ClusterMetadata) SetGroup(ids []core.ClusterID, group core.Group) (model.UpdateDescriptor, error) {
	if len(ids) == 0 {
		return model.UpdateDescriptor{}, ErrNoClusters
	}
	if !group.Valid() {
		return model.UpdateDescriptor{}, &ErrInvalidGroup{Group: group}
	}

	moved := slices.Clone(ids)
	slices.Sort(moved)
	moved = slices.Compact(moved)

	for _, id := range moved {
		if group == core.GroupUnsorted {
			delete(m.groups, id)
		} else {
			m.groups[id] = group
		}
	}

	return model.UpdateDescriptor{
		Kind:     model.UpdateMove,
		Moved:    moved,
		Group:    group,
		Selected: slices.Clone(moved),
	}, nil
}
