package core

// SpikeID is a dense identifier for a single detected spike within a loaded
// dataset. It is strictly 32-bit, allowing for max 4 Billion spikes per
// dataset. Used for all hot-path structures (membership bitmaps, selections).
//
// Spikes are never deleted or reordered once a dataset is loaded; curation
// only relabels them into clusters.
type SpikeID uint32

// MaxSpikeID is the maximum possible value for a SpikeID.
const MaxSpikeID = ^SpikeID(0)

// ClusterID labels a group of spikes believed to originate from the same
// neuron. Cluster ids are minted monotonically per clustering instance and
// never reissued, so ids referenced by earlier history entries stay
// unambiguous for the lifetime of the instance.
type ClusterID uint64
