package model

import "github.com/ZhixiaoSu/phy/core"

// Model is the data-source collaborator consumed once per Session.Open.
// It supplies the initial spike-to-cluster assignment and the stored
// curation groups; everything else about the underlying recording
// (waveforms, probe geometry, raw traces) is outside the core.
type Model interface {
	// SpikeClusters returns the initial assignment, indexed by SpikeID.
	// The session copies the slice on open; implementations may return an
	// internal reference.
	SpikeClusters() []core.ClusterID

	// ClusterGroups returns the stored curation groups keyed by cluster id.
	// Clusters absent from the map default to GroupUnsorted.
	ClusterGroups() map[core.ClusterID]core.Group
}

// StaticModel is an in-memory Model, useful for tests and for datasets
// assembled by external loaders.
type StaticModel struct {
	Spikes []core.ClusterID
	Groups map[core.ClusterID]core.Group
}

// SpikeClusters returns the initial assignment, indexed by SpikeID.
func (m *StaticModel) SpikeClusters() []core.ClusterID { return m.Spikes }

// ClusterGroups returns the stored curation groups keyed by cluster id.
func (m *StaticModel) ClusterGroups() map[core.ClusterID]core.Group { return m.Groups }
