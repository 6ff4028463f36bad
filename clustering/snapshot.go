package clustering

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ZhixiaoSu/phy/codec"
	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/model"
)

// Snapshot is an opaque capture of the full assignment, packed into a
// compressed block. Storing whole-state snapshots keeps the undo contract
// trivially correct; compression keeps them from dominating memory on large
// datasets.
//
// Snapshots are only ever produced by Capture and consumed by Restore on the
// same Clustering.
type Snapshot struct {
	packed []byte
}

// Capture packs the current assignment into a Snapshot.
//
// Implements the capture side of history.Checkpointable.
func (c *Clustering) Capture() Snapshot {
	buf := make([]byte, 8*len(c.spikeClusters))
	for spike, id := range c.spikeClusters {
		binary.LittleEndian.PutUint64(buf[8*spike:], uint64(id))
	}
	return Snapshot{packed: codec.CompressBlock(c.compression, buf)}
}

// Restore replaces the assignment with a previously captured Snapshot and
// returns the net difference between the two states: ids present before and
// absent after as removed, ids absent before and present after as added.
//
// The id allocator is left untouched, so ids minted after the snapshot was
// taken stay retired forever. A corrupt snapshot panics; snapshots never
// leave the owning history, so that can only indicate memory corruption.
//
// Implements the restore side of history.Checkpointable.
func (c *Clustering) Restore(s Snapshot) model.UpdateDescriptor {
	buf, err := codec.DecompressBlock(s.packed)
	if err != nil {
		panic(fmt.Errorf("clustering: corrupt snapshot: %w", err))
	}
	if len(buf) != 8*len(c.spikeClusters) {
		panic(fmt.Errorf("clustering: snapshot covers %d spikes, assignment has %d", len(buf)/8, len(c.spikeClusters)))
	}

	before := c.ClusterIDs()

	members := make(map[core.ClusterID]*roaring.Bitmap)
	for spike := range c.spikeClusters {
		id := core.ClusterID(binary.LittleEndian.Uint64(buf[8*spike:]))
		c.spikeClusters[spike] = id
		bm, ok := members[id]
		if !ok {
			bm = roaring.New()
			members[id] = bm
		}
		bm.Add(uint32(spike))
	}
	c.members = members

	after := c.ClusterIDs()

	added := diffSorted(after, before)
	return model.UpdateDescriptor{
		Removed:  diffSorted(before, after),
		Added:    added,
		Selected: slices.Clone(added),
	}
}

// diffSorted returns the elements of a not present in b. Both inputs are
// sorted; the result is sorted.
func diffSorted(a, b []core.ClusterID) []core.ClusterID {
	var out []core.ClusterID
	i, j := 0, 0
	for i < len(a) {
		switch {
		case j >= len(b) || a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] == b[j]:
			i++
			j++
		default:
			j++
		}
	}
	return out
}
