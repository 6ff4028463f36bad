package core

// Group is the curation judgement attached to a cluster.
type Group string

const (
	// GroupUnsorted marks a cluster that has not been reviewed yet.
	GroupUnsorted Group = "unsorted"
	// GroupNoise marks a cluster of artifacts rather than neural events.
	GroupNoise Group = "noise"
	// GroupMUA marks multi-unit activity that cannot be attributed to a
	// single neuron.
	GroupMUA Group = "mua"
	// GroupGood marks a well-isolated single unit.
	GroupGood Group = "good"
)

// Valid reports whether g is one of the known curation groups.
func (g Group) Valid() bool {
	switch g {
	case GroupUnsorted, GroupNoise, GroupMUA, GroupGood:
		return true
	default:
		return false
	}
}
