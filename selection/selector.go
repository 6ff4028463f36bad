// Package selection derives bounded, reproducible spike selections from the
// currently selected clusters. Views render waveforms for at most a few
// hundred spikes at a time, so the selector subsamples large clusters with a
// deterministic rule: identical state always yields identical selections.
package selection

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ZhixiaoSu/phy/core"
)

// DefaultMaxSpikes is the default cap on a derived spike selection.
const DefaultMaxSpikes = 100

// Membership is the read side of a clustering consumed by the Selector.
// The returned bitmap must not be modified.
type Membership interface {
	Members(id core.ClusterID) (*roaring.Bitmap, bool)
}

// Selector holds the set of selected cluster ids and derives the matching
// spike ids on demand. Not safe for concurrent use.
type Selector struct {
	membership Membership
	maxSpikes  int
	selected   []core.ClusterID
}

// New creates a Selector over the given membership view. maxSpikes <= 0
// selects DefaultMaxSpikes.
func New(membership Membership, maxSpikes int) *Selector {
	if maxSpikes <= 0 {
		maxSpikes = DefaultMaxSpikes
	}
	return &Selector{
		membership: membership,
		maxSpikes:  maxSpikes,
	}
}

// MaxSpikes returns the cap on derived spike selections.
func (s *Selector) MaxSpikes() int {
	return s.maxSpikes
}

// Select replaces the selected cluster set. Ids are deduplicated and stored
// sorted so derived selections do not depend on argument order.
func (s *Selector) Select(ids []core.ClusterID) {
	out := slices.Clone(ids)
	slices.Sort(out)
	s.selected = slices.Compact(out)
}

// Selected returns the currently selected cluster ids, sorted.
func (s *Selector) Selected() []core.ClusterID {
	return slices.Clone(s.selected)
}

// SelectedSpikes returns the spikes belonging to the selected clusters,
// subsampled with a uniform stride to at most MaxSpikes ids. Cluster ids not
// currently in use are skipped: a view may hold a selection across a merge
// that retired some of its clusters. An empty selection, or a selection with
// no matching spikes, yields an empty result.
func (s *Selector) SelectedSpikes() []core.SpikeID {
	if len(s.selected) == 0 {
		return nil
	}

	union := roaring.New()
	for _, id := range s.selected {
		if bm, ok := s.membership.Members(id); ok {
			union.Or(bm)
		}
	}

	n := int(union.GetCardinality())
	if n == 0 {
		return nil
	}

	all := union.ToArray()
	if n <= s.maxSpikes {
		out := make([]core.SpikeID, n)
		for i, v := range all {
			out[i] = core.SpikeID(v)
		}
		return out
	}

	// Uniform stride over the sorted union: index i picks element
	// floor(i*n/max). Pure integer arithmetic, so repeated reads against
	// unchanged state return identical sequences.
	out := make([]core.SpikeID, s.maxSpikes)
	for i := range out {
		out[i] = core.SpikeID(all[i*n/s.maxSpikes])
	}
	return out
}
