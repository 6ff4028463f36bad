package phy

import (
	"slices"

	"github.com/ZhixiaoSu/phy/clustering"
	"github.com/ZhixiaoSu/phy/codec"
	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/history"
	"github.com/ZhixiaoSu/phy/metadata"
	"github.com/ZhixiaoSu/phy/model"
	"github.com/ZhixiaoSu/phy/selection"
)

// Session coordinates one dataset's curation state: the clustering, its undo
// history, the cluster metadata and the current selection. Opening a new
// dataset replaces all of it.
//
// A Session is a synchronous state machine; see the package documentation
// for the concurrency contract.
type Session struct {
	maxSpikes   int
	compression codec.CompressionType
	logger      *Logger
	observers   []*observerEntry
	commands    map[string]Command

	model      model.Model
	clustering *clustering.Clustering
	meta       *metadata.ClusterMetadata
	selector   *selection.Selector
	history    *history.Log[clustering.Snapshot, model.UpdateDescriptor]
}

type observerEntry struct {
	obs Observer
}

// New creates a Session in the unopened state.
func New(opts ...Option) *Session {
	o := options{
		maxSpikes:   selection.DefaultMaxSpikes,
		compression: defaultSnapshotCompression,
		logger:      NoopLogger(),
	}
	for _, fn := range opts {
		fn(&o)
	}

	s := &Session{
		maxSpikes:   o.maxSpikes,
		compression: o.compression,
		logger:      o.logger,
	}
	for _, obs := range o.observers {
		s.observers = append(s.observers, &observerEntry{obs: obs})
	}
	s.commands = buildCommands(s)
	return s
}

// Connect registers an observer and returns a function that unregisters it.
// Views connect when they come up and unsubscribe when they close, which may
// happen from inside one of their own callbacks.
func (s *Session) Connect(obs Observer) (unsubscribe func()) {
	e := &observerEntry{obs: obs}
	s.observers = append(s.observers, e)
	return func() {
		for i, cur := range s.observers {
			if cur == e {
				s.observers = slices.Delete(s.observers, i, i+1)
				return
			}
		}
	}
}

// IsOpen reports whether a dataset is open.
func (s *Session) IsOpen() bool {
	return s.model != nil
}

// Open loads a dataset from the model and replaces all prior session state:
// a fresh clustering, selector, metadata and an empty history. Observers
// receive OnOpen.
func (s *Session) Open(m model.Model) error {
	if m == nil {
		return ErrNilModel
	}

	s.model = m
	s.clustering = clustering.New(m.SpikeClusters(), clustering.WithSnapshotCompression(s.compression))
	s.meta = metadata.NewWithGroups(m.ClusterGroups())
	s.selector = selection.New(s.clustering, s.maxSpikes)
	s.history = history.New[clustering.Snapshot, model.UpdateDescriptor](s.clustering)

	s.logger.LogOpen(s.clustering.NumSpikes(), s.clustering.NumClusters())
	return s.notifyOpen()
}

// Select replaces the selected cluster set and notifies observers.
// Selecting clusters no longer in use is allowed; the derived spike
// selection skips them.
func (s *Session) Select(ids []core.ClusterID) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	s.selector.Select(ids)
	s.logger.LogSelect(s.selector.Selected())
	return s.notifySelect()
}

// Merge combines the given clusters into one freshly minted cluster. The
// mutation is recorded into the undo history and observers receive OnCluster
// with recordable=true.
func (s *Session) Merge(ids []core.ClusterID) (model.UpdateDescriptor, error) {
	if err := s.ensureOpen(); err != nil {
		return model.UpdateDescriptor{}, err
	}
	up, err := s.clustering.Merge(ids)
	if err != nil {
		return model.UpdateDescriptor{}, translateError(err)
	}
	s.history.Record()
	s.logger.LogUpdate(up)
	return up, s.notifyCluster(up, true)
}

// Split peels the given spikes out of their clusters into a freshly minted
// cluster. The mutation is recorded into the undo history and observers
// receive OnCluster with recordable=true.
func (s *Session) Split(spikes []core.SpikeID) (model.UpdateDescriptor, error) {
	if err := s.ensureOpen(); err != nil {
		return model.UpdateDescriptor{}, err
	}
	up, err := s.clustering.Split(spikes)
	if err != nil {
		return model.UpdateDescriptor{}, translateError(err)
	}
	s.history.Record()
	s.logger.LogUpdate(up)
	return up, s.notifyCluster(up, true)
}

// Move relabels the curation group of the given clusters. Metadata is not
// covered by the undo history; observers still receive OnCluster with
// recordable=true since the move is a fresh user action, not a replay.
func (s *Session) Move(ids []core.ClusterID, group core.Group) (model.UpdateDescriptor, error) {
	if err := s.ensureOpen(); err != nil {
		return model.UpdateDescriptor{}, err
	}
	up, err := s.meta.SetGroup(ids, group)
	if err != nil {
		return model.UpdateDescriptor{}, translateError(err)
	}
	s.logger.LogUpdate(up)
	return up, s.notifyCluster(up, true)
}

// Undo restores the clustering state preceding the last recorded mutation.
// With nothing to undo it is a silent no-op returning an empty descriptor.
// Observers receive OnCluster with recordable=false.
func (s *Session) Undo() (model.UpdateDescriptor, error) {
	if err := s.ensureOpen(); err != nil {
		return model.UpdateDescriptor{}, err
	}
	up, ok := s.history.Undo()
	if !ok {
		s.logger.Debug("nothing to undo")
		return model.UpdateDescriptor{}, nil
	}
	up.Kind = model.UpdateUndo
	s.logger.LogUpdate(up)
	return up, s.notifyCluster(up, false)
}

// Redo re-applies the last undone mutation. With nothing to redo it is a
// silent no-op returning an empty descriptor. Observers receive OnCluster
// with recordable=false.
func (s *Session) Redo() (model.UpdateDescriptor, error) {
	if err := s.ensureOpen(); err != nil {
		return model.UpdateDescriptor{}, err
	}
	up, ok := s.history.Redo()
	if !ok {
		s.logger.Debug("nothing to redo")
		return model.UpdateDescriptor{}, nil
	}
	up.Kind = model.UpdateRedo
	s.logger.LogUpdate(up)
	return up, s.notifyCluster(up, false)
}

// Read accessors. These are the snapshots handed to presentation
// collaborators; none of them mutate session state.

// ClusterIDs returns the sorted set of cluster ids currently in use.
func (s *Session) ClusterIDs() []core.ClusterID {
	if !s.IsOpen() {
		return nil
	}
	return s.clustering.ClusterIDs()
}

// SpikeClusters returns a copy of the assignment, indexed by SpikeID.
func (s *Session) SpikeClusters() []core.ClusterID {
	if !s.IsOpen() {
		return nil
	}
	return s.clustering.SpikeClusters()
}

// NumSpikes returns the number of spikes in the open dataset, 0 if none.
func (s *Session) NumSpikes() int {
	if !s.IsOpen() {
		return 0
	}
	return s.clustering.NumSpikes()
}

// SelectedClusters returns the currently selected cluster ids.
func (s *Session) SelectedClusters() []core.ClusterID {
	if !s.IsOpen() {
		return nil
	}
	return s.selector.Selected()
}

// SelectedSpikes returns the deterministic, capped spike selection derived
// from the selected clusters.
func (s *Session) SelectedSpikes() []core.SpikeID {
	if !s.IsOpen() {
		return nil
	}
	return s.selector.SelectedSpikes()
}

// Group returns the curation group of a cluster.
func (s *Session) Group(id core.ClusterID) core.Group {
	if !s.IsOpen() {
		return core.GroupUnsorted
	}
	return s.meta.Group(id)
}

// Groups returns a copy of all non-default group assignments, in the shape
// dataset.Store.Save expects.
func (s *Session) Groups() map[core.ClusterID]core.Group {
	if !s.IsOpen() {
		return nil
	}
	return s.meta.Groups()
}

// UndoCount returns the number of recorded mutations that can be undone.
func (s *Session) UndoCount() int {
	if !s.IsOpen() {
		return 0
	}
	return s.history.UndoCount()
}

// RedoCount returns the number of undone mutations that can be re-applied.
func (s *Session) RedoCount() int {
	if !s.IsOpen() {
		return 0
	}
	return s.history.RedoCount()
}

func (s *Session) ensureOpen() error {
	if s.model == nil {
		return ErrNotOpen
	}
	return nil
}

// The notify loops range over a snapshot of the observer list: a callback may
// unsubscribe (itself included) without invalidating the delivery in flight.
// Observers removed mid-delivery still receive the current notification.

func (s *Session) notifyOpen() error {
	for _, e := range slices.Clone(s.observers) {
		if err := e.obs.OnOpen(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) notifyCluster(up model.UpdateDescriptor, recordable bool) error {
	for _, e := range slices.Clone(s.observers) {
		if err := e.obs.OnCluster(up, recordable); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) notifySelect() error {
	for _, e := range slices.Clone(s.observers) {
		if err := e.obs.OnSelect(); err != nil {
			return err
		}
	}
	return nil
}
