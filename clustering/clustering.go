package clustering

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ZhixiaoSu/phy/codec"
	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/model"
)

// Clustering maintains a total assignment from SpikeID to ClusterID and the
// derived per-cluster membership bitmaps. Not safe for concurrent use.
type Clustering struct {
	// spikeClusters is the ordered view of the assignment, indexed by SpikeID.
	spikeClusters []core.ClusterID

	// members holds the spike set of each cluster currently in use.
	// Invariant: the bitmaps partition [0, len(spikeClusters)).
	members map[core.ClusterID]*roaring.Bitmap

	// nextID is the monotonic id allocator. It never rewinds, not even when
	// an older snapshot is restored, so retired ids are never reissued.
	nextID core.ClusterID

	compression codec.CompressionType
}

// Option configures a Clustering.
type Option func(*Clustering)

// WithSnapshotCompression selects the block compression used by Capture.
// Default: LZ4 (snapshots are taken on every mutation, so speed wins over
// ratio).
func WithSnapshotCompression(t codec.CompressionType) Option {
	return func(c *Clustering) {
		c.compression = t
	}
}

// New creates a Clustering from an initial assignment, indexed by SpikeID.
// The slice is copied. The id allocator starts above the largest initial id.
func New(spikeClusters []core.ClusterID, opts ...Option) *Clustering {
	c := &Clustering{
		spikeClusters: slices.Clone(spikeClusters),
		members:       make(map[core.ClusterID]*roaring.Bitmap),
		compression:   codec.CompressionLZ4,
	}

	for _, fn := range opts {
		fn(c)
	}

	for spike, id := range c.spikeClusters {
		bm, ok := c.members[id]
		if !ok {
			bm = roaring.New()
			c.members[id] = bm
		}
		bm.Add(uint32(spike))
		if id >= c.nextID {
			c.nextID = id + 1
		}
	}

	return c
}

// NumSpikes returns the number of spikes in the loaded assignment.
func (c *Clustering) NumSpikes() int {
	return len(c.spikeClusters)
}

// NumClusters returns the number of clusters currently in use.
func (c *Clustering) NumClusters() int {
	return len(c.members)
}

// ClusterIDs returns the sorted set of cluster ids currently in use.
func (c *Clustering) ClusterIDs() []core.ClusterID {
	ids := make([]core.ClusterID, 0, len(c.members))
	for id := range c.members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SpikeClusters returns a copy of the assignment, indexed by SpikeID.
func (c *Clustering) SpikeClusters() []core.ClusterID {
	return slices.Clone(c.spikeClusters)
}

// Members returns the spike set of a cluster. The bitmap is a live view and
// must not be modified by the caller.
func (c *Clustering) Members(id core.ClusterID) (*roaring.Bitmap, bool) {
	bm, ok := c.members[id]
	return bm, ok
}

// Merge reassigns all spikes of the given clusters to one freshly minted
// cluster. It requires at least two distinct ids, all currently in use, and
// rejects without mutating otherwise. The descriptor reports the merged-away
// ids as removed and the new id as added and selected.
func (c *Clustering) Merge(ids []core.ClusterID) (model.UpdateDescriptor, error) {
	distinct := dedupeSorted(ids)
	if len(distinct) < 2 {
		return model.UpdateDescriptor{}, &ErrTooFewClusters{Count: len(distinct)}
	}
	for _, id := range distinct {
		if _, ok := c.members[id]; !ok {
			return model.UpdateDescriptor{}, &ErrUnknownCluster{ID: id}
		}
	}

	merged := roaring.New()
	for _, id := range distinct {
		merged.Or(c.members[id])
		delete(c.members, id)
	}

	newID := c.mint()
	c.members[newID] = merged
	for it := merged.Iterator(); it.HasNext(); {
		c.spikeClusters[it.Next()] = newID
	}

	return model.UpdateDescriptor{
		Kind:     model.UpdateMerge,
		Removed:  distinct,
		Added:    []core.ClusterID{newID},
		Selected: []core.ClusterID{newID},
	}, nil
}

// Split peels the given spikes out of their current clusters into one freshly
// minted cluster. Every donor cluster that changed membership is retired; a
// donor that retains spikes gets another fresh id for its remainder, so the
// resulting ids never alias a pre-split state. It requires a non-empty spike
// set within the loaded dataset and rejects without mutating otherwise.
//
// The descriptor reports the changed donors as removed and the peel id plus
// any remainder ids as added and selected (peel id first).
func (c *Clustering) Split(spikes []core.SpikeID) (model.UpdateDescriptor, error) {
	if len(spikes) == 0 {
		return model.UpdateDescriptor{}, ErrEmptySpikeSet
	}

	peel := roaring.New()
	for _, s := range spikes {
		if int(s) >= len(c.spikeClusters) {
			return model.UpdateDescriptor{}, &ErrUnknownSpike{ID: s}
		}
		peel.Add(uint32(s))
	}

	donorSet := make(map[core.ClusterID]struct{})
	for it := peel.Iterator(); it.HasNext(); {
		donorSet[c.spikeClusters[it.Next()]] = struct{}{}
	}
	donors := make([]core.ClusterID, 0, len(donorSet))
	for id := range donorSet {
		donors = append(donors, id)
	}
	slices.Sort(donors)

	peelID := c.mint()
	added := []core.ClusterID{peelID}

	for _, donor := range donors {
		remainder := roaring.AndNot(c.members[donor], peel)
		delete(c.members, donor)
		if remainder.IsEmpty() {
			continue
		}
		remID := c.mint()
		c.members[remID] = remainder
		for it := remainder.Iterator(); it.HasNext(); {
			c.spikeClusters[it.Next()] = remID
		}
		added = append(added, remID)
	}

	c.members[peelID] = peel
	for it := peel.Iterator(); it.HasNext(); {
		c.spikeClusters[it.Next()] = peelID
	}

	return model.UpdateDescriptor{
		Kind:     model.UpdateSplit,
		Removed:  donors,
		Added:    added,
		Selected: slices.Clone(added),
	}, nil
}

func (c *Clustering) mint() core.ClusterID {
	id := c.nextID
	c.nextID++
	return id
}

func dedupeSorted(ids []core.ClusterID) []core.ClusterID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
