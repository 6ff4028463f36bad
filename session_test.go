package phy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhixiaoSu/phy/clustering"
	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/metadata"
	"github.com/ZhixiaoSu/phy/model"
)

func openSession(t *testing.T, spikes []core.ClusterID, opts ...Option) *Session {
	t.Helper()
	s := New(opts...)
	require.NoError(t, s.Open(&model.StaticModel{Spikes: spikes}))
	return s
}

func TestSessionNotOpen(t *testing.T) {
	s := New()
	assert.False(t, s.IsOpen())

	require.ErrorIs(t, s.Select([]core.ClusterID{1}), ErrNotOpen)
	_, err := s.Merge([]core.ClusterID{1, 2})
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.Split([]core.SpikeID{0})
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.Move([]core.ClusterID{1}, core.GroupGood)
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.Undo()
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.Redo()
	require.ErrorIs(t, err, ErrNotOpen)

	// Read accessors stay usable in the unopened state.
	assert.Nil(t, s.ClusterIDs())
	assert.Nil(t, s.SpikeClusters())
	assert.Zero(t, s.NumSpikes())
	assert.Nil(t, s.SelectedClusters())
	assert.Nil(t, s.SelectedSpikes())
	assert.Equal(t, core.GroupUnsorted, s.Group(1))
	assert.Nil(t, s.Groups())
	assert.Zero(t, s.UndoCount())
	assert.Zero(t, s.RedoCount())
}

func TestOpenNilModel(t *testing.T) {
	s := New()
	require.ErrorIs(t, s.Open(nil), ErrNilModel)
	assert.False(t, s.IsOpen())
}

func TestOpen(t *testing.T) {
	s := New()
	m := &model.StaticModel{
		Spikes: []core.ClusterID{1, 1, 2},
		Groups: map[core.ClusterID]core.Group{2: core.GroupGood},
	}
	require.NoError(t, s.Open(m))

	assert.True(t, s.IsOpen())
	assert.Equal(t, 3, s.NumSpikes())
	assert.Equal(t, []core.ClusterID{1, 2}, s.ClusterIDs())
	assert.Equal(t, core.GroupGood, s.Group(2))
	assert.Equal(t, core.GroupUnsorted, s.Group(1))
}

func TestMergeUndoRedo(t *testing.T) {
	// Assignment {0:1, 1:1, 2:2, 3:2}: merge {1,2}, undo, redo.
	s := openSession(t, []core.ClusterID{1, 1, 2, 2})

	up, err := s.Merge([]core.ClusterID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, model.UpdateMerge, up.Kind)
	assert.Equal(t, []core.ClusterID{3}, s.ClusterIDs())
	assert.Equal(t, 1, s.UndoCount())

	up, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, model.UpdateUndo, up.Kind)
	assert.Equal(t, []core.ClusterID{3}, up.Removed)
	assert.Equal(t, []core.ClusterID{1, 2}, up.Added)
	assert.Equal(t, []core.ClusterID{1, 2}, s.ClusterIDs())
	assert.Equal(t, 0, s.UndoCount())
	assert.Equal(t, 1, s.RedoCount())

	up, err = s.Redo()
	require.NoError(t, err)
	assert.Equal(t, model.UpdateRedo, up.Kind)
	assert.Equal(t, []core.ClusterID{1, 2}, up.Removed)
	assert.Equal(t, []core.ClusterID{3}, up.Added)
	assert.Equal(t, []core.ClusterID{3}, s.ClusterIDs())
}

func TestUndoRedoSilentNoop(t *testing.T) {
	s := openSession(t, []core.ClusterID{1, 2})

	up, err := s.Undo()
	require.NoError(t, err)
	assert.True(t, up.Empty())

	up, err = s.Redo()
	require.NoError(t, err)
	assert.True(t, up.Empty())
}

func TestSplitThenMergeClearsRedo(t *testing.T) {
	s := openSession(t, []core.ClusterID{1, 1, 1, 2})

	_, err := s.Split([]core.SpikeID{0})
	require.NoError(t, err)
	_, err = s.Undo()
	require.NoError(t, err)
	require.Equal(t, 1, s.RedoCount())

	_, err = s.Merge([]core.ClusterID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0, s.RedoCount())
	assert.Equal(t, 1, s.UndoCount())
}

func TestInvalidOperationsLeaveStateUntouched(t *testing.T) {
	s := openSession(t, []core.ClusterID{1, 1, 2})
	before := s.SpikeClusters()

	_, err := s.Merge([]core.ClusterID{1})
	require.ErrorIs(t, err, ErrInvalidOperation)
	var tooFew *clustering.ErrTooFewClusters
	assert.ErrorAs(t, err, &tooFew)

	_, err = s.Merge([]core.ClusterID{1, 99})
	require.ErrorIs(t, err, ErrInvalidOperation)

	_, err = s.Split(nil)
	require.ErrorIs(t, err, ErrInvalidOperation)
	assert.ErrorIs(t, err, clustering.ErrEmptySpikeSet)

	_, err = s.Split([]core.SpikeID{99})
	require.ErrorIs(t, err, ErrInvalidOperation)

	_, err = s.Move([]core.ClusterID{1}, "excellent")
	require.ErrorIs(t, err, ErrInvalidOperation)
	var invalid *metadata.ErrInvalidGroup
	assert.ErrorAs(t, err, &invalid)

	_, err = s.Move(nil, core.GroupGood)
	require.ErrorIs(t, err, ErrInvalidOperation)

	assert.Equal(t, before, s.SpikeClusters())
	assert.Equal(t, 0, s.UndoCount())
	assert.Empty(t, s.Groups())
}

func TestMoveNotUndoable(t *testing.T) {
	s := openSession(t, []core.ClusterID{1, 2})

	up, err := s.Move([]core.ClusterID{2}, core.GroupNoise)
	require.NoError(t, err)
	assert.Equal(t, model.UpdateMove, up.Kind)
	assert.Equal(t, core.GroupNoise, s.Group(2))

	// Metadata moves do not enter the undo history.
	assert.Equal(t, 0, s.UndoCount())
	noop, err := s.Undo()
	require.NoError(t, err)
	assert.True(t, noop.Empty())
	assert.Equal(t, core.GroupNoise, s.Group(2))
}

func TestSelect(t *testing.T) {
	s := openSession(t, []core.ClusterID{1, 1, 2, 3})

	require.NoError(t, s.Select([]core.ClusterID{2, 1}))
	assert.Equal(t, []core.ClusterID{1, 2}, s.SelectedClusters())
	assert.Equal(t, []core.SpikeID{0, 1, 2}, s.SelectedSpikes())

	// Selecting retired ids is allowed; they just match nothing.
	_, err := s.Merge([]core.ClusterID{1, 2})
	require.NoError(t, err)
	assert.Empty(t, s.SelectedSpikes())
}

func TestObserverNotifications(t *testing.T) {
	type event struct {
		name       string
		kind       model.UpdateKind
		recordable bool
	}
	var events []event

	s := New(WithObserver(ObserverFuncs{
		Open: func() error {
			events = append(events, event{name: "open"})
			return nil
		},
		Cluster: func(up model.UpdateDescriptor, recordable bool) error {
			events = append(events, event{name: "cluster", kind: up.Kind, recordable: recordable})
			return nil
		},
		Select: func() error {
			events = append(events, event{name: "select"})
			return nil
		},
	}))

	require.NoError(t, s.Open(&model.StaticModel{Spikes: []core.ClusterID{1, 1, 2}}))
	require.NoError(t, s.Select([]core.ClusterID{1}))
	_, err := s.Merge([]core.ClusterID{1, 2})
	require.NoError(t, err)
	_, err = s.Move([]core.ClusterID{3}, core.GroupGood)
	require.NoError(t, err)
	_, err = s.Undo()
	require.NoError(t, err)
	_, err = s.Redo()
	require.NoError(t, err)

	// Silent no-op: nothing left to redo, no notification fires.
	_, err = s.Redo()
	require.NoError(t, err)

	assert.Equal(t, []event{
		{name: "open"},
		{name: "select"},
		{name: "cluster", kind: model.UpdateMerge, recordable: true},
		{name: "cluster", kind: model.UpdateMove, recordable: true},
		{name: "cluster", kind: model.UpdateUndo, recordable: false},
		{name: "cluster", kind: model.UpdateRedo, recordable: false},
	}, events)
}

func TestObserverErrorAbortsDelivery(t *testing.T) {
	boom := errors.New("boom")
	var secondCalled bool

	s := New(
		WithObserver(ObserverFuncs{
			Cluster: func(model.UpdateDescriptor, bool) error { return boom },
		}),
		WithObserver(ObserverFuncs{
			Cluster: func(model.UpdateDescriptor, bool) error {
				secondCalled = true
				return nil
			},
		}),
	)
	require.NoError(t, s.Open(&model.StaticModel{Spikes: []core.ClusterID{1, 2}}))

	_, err := s.Merge([]core.ClusterID{1, 2})
	require.ErrorIs(t, err, boom)
	assert.False(t, secondCalled)

	// The mutation itself still happened and is undoable.
	assert.Equal(t, []core.ClusterID{3}, s.ClusterIDs())
	assert.Equal(t, 1, s.UndoCount())
}

func TestConnectUnsubscribe(t *testing.T) {
	var calls int
	s := openSession(t, []core.ClusterID{1, 2, 3})

	unsubscribe := s.Connect(ObserverFuncs{
		Select: func() error {
			calls++
			return nil
		},
	})

	require.NoError(t, s.Select([]core.ClusterID{1}))
	assert.Equal(t, 1, calls)

	unsubscribe()
	require.NoError(t, s.Select([]core.ClusterID{2}))
	assert.Equal(t, 1, calls)

	// Unsubscribing twice is harmless.
	unsubscribe()
}

func TestUnsubscribeFromOwnCallback(t *testing.T) {
	// A view closing in reaction to a clustering change unsubscribes from
	// inside its own callback while later observers are still pending.
	s := openSession(t, []core.ClusterID{1, 1, 2})

	var firstCalls, secondCalls int
	var unsubscribe func()
	unsubscribe = s.Connect(ObserverFuncs{
		Cluster: func(model.UpdateDescriptor, bool) error {
			firstCalls++
			unsubscribe()
			return nil
		},
	})
	s.Connect(ObserverFuncs{
		Cluster: func(model.UpdateDescriptor, bool) error {
			secondCalls++
			return nil
		},
	})

	_, err := s.Merge([]core.ClusterID{1, 2})
	require.NoError(t, err)

	// Delivery in flight completes for both observers.
	assert.Equal(t, 1, firstCalls)
	assert.Equal(t, 1, secondCalls)

	// The unsubscribed observer is gone from the next delivery.
	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, 1, firstCalls)
	assert.Equal(t, 2, secondCalls)
}

func TestSelectFromObserverCallback(t *testing.T) {
	// A view reacting to a merge by selecting the freshly minted cluster.
	s := New()
	s.Connect(ObserverFuncs{
		Cluster: func(up model.UpdateDescriptor, _ bool) error {
			return s.Select(up.Selected)
		},
	})
	require.NoError(t, s.Open(&model.StaticModel{Spikes: []core.ClusterID{1, 1, 2}}))

	_, err := s.Merge([]core.ClusterID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []core.ClusterID{3}, s.SelectedClusters())
	assert.Equal(t, []core.SpikeID{0, 1, 2}, s.SelectedSpikes())
}

func TestReopenResetsState(t *testing.T) {
	s := openSession(t, []core.ClusterID{1, 1, 2})

	_, err := s.Merge([]core.ClusterID{1, 2})
	require.NoError(t, err)
	require.NoError(t, s.Select([]core.ClusterID{3}))
	_, err = s.Move([]core.ClusterID{3}, core.GroupGood)
	require.NoError(t, err)
	require.Equal(t, 1, s.UndoCount())

	require.NoError(t, s.Open(&model.StaticModel{Spikes: []core.ClusterID{5, 5, 6}}))

	assert.Equal(t, []core.ClusterID{5, 6}, s.ClusterIDs())
	assert.Empty(t, s.SelectedClusters())
	assert.Equal(t, core.GroupUnsorted, s.Group(3))
	assert.Equal(t, 0, s.UndoCount())
	assert.Equal(t, 0, s.RedoCount())
}

func TestCommands(t *testing.T) {
	s := New()

	cmds := s.Commands()
	names := make([]string, len(cmds))
	for i, cmd := range cmds {
		names[i] = cmd.Name
		assert.NotEmpty(t, cmd.Title)
		assert.NotNil(t, cmd.Run)
	}
	assert.Equal(t, []string{"merge", "move", "open", "redo", "select", "split", "undo"}, names)

	_, err := s.Command("rename")
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCommandsDriveSession(t *testing.T) {
	s := New()

	open, err := s.Command("open")
	require.NoError(t, err)
	_, err = open.Run(CommandArgs{Model: &model.StaticModel{Spikes: []core.ClusterID{1, 1, 2}}})
	require.NoError(t, err)

	merge, err := s.Command("merge")
	require.NoError(t, err)
	up, err := merge.Run(CommandArgs{Clusters: []core.ClusterID{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, model.UpdateMerge, up.Kind)

	move, err := s.Command("move")
	require.NoError(t, err)
	_, err = move.Run(CommandArgs{Clusters: up.Added, Group: core.GroupGood})
	require.NoError(t, err)
	assert.Equal(t, core.GroupGood, s.Group(up.Added[0]))

	undo, err := s.Command("undo")
	require.NoError(t, err)
	up, err = undo.Run(CommandArgs{})
	require.NoError(t, err)
	assert.Equal(t, model.UpdateUndo, up.Kind)
	assert.Equal(t, []core.ClusterID{1, 2}, s.ClusterIDs())
}

func TestWithMaxSpikes(t *testing.T) {
	assignment := make([]core.ClusterID, 50)
	s := openSession(t, assignment, WithMaxSpikes(10))

	require.NoError(t, s.Select([]core.ClusterID{0}))
	assert.Len(t, s.SelectedSpikes(), 10)
}
