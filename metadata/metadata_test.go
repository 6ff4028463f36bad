package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/model"
)

func TestGroupDefaultsToUnsorted(t *testing.T) {
	m := New()

	assert.Equal(t, core.GroupUnsorted, m.Group(1))
	assert.Empty(t, m.Groups())
}

func TestSetGroup(t *testing.T) {
	m := New()

	up, err := m.SetGroup([]core.ClusterID{3, 1, 3}, core.GroupGood)
	require.NoError(t, err)

	assert.Equal(t, model.UpdateMove, up.Kind)
	assert.Equal(t, []core.ClusterID{1, 3}, up.Moved)
	assert.Equal(t, core.GroupGood, up.Group)
	assert.Equal(t, []core.ClusterID{1, 3}, up.Selected)

	assert.Equal(t, core.GroupGood, m.Group(1))
	assert.Equal(t, core.GroupGood, m.Group(3))
	assert.Equal(t, core.GroupUnsorted, m.Group(2))
}

func TestSetGroupBackToUnsorted(t *testing.T) {
	m := New()

	_, err := m.SetGroup([]core.ClusterID{1}, core.GroupNoise)
	require.NoError(t, err)
	require.Len(t, m.Groups(), 1)

	// Moving back to unsorted clears the stored entry rather than keeping
	// a redundant one.
	up, err := m.SetGroup([]core.ClusterID{1}, core.GroupUnsorted)
	require.NoError(t, err)
	assert.Equal(t, core.GroupUnsorted, up.Group)
	assert.Empty(t, m.Groups())
	assert.Equal(t, core.GroupUnsorted, m.Group(1))
}

func TestSetGroupErrors(t *testing.T) {
	m := New()

	_, err := m.SetGroup(nil, core.GroupGood)
	require.ErrorIs(t, err, ErrNoClusters)

	_, err = m.SetGroup([]core.ClusterID{1}, "excellent")
	var invalid *ErrInvalidGroup
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, core.Group("excellent"), invalid.Group)

	_, err = m.SetGroup([]core.ClusterID{1}, "")
	require.ErrorAs(t, err, &invalid)

	assert.Empty(t, m.Groups())
}

func TestNewWithGroups(t *testing.T) {
	stored := map[core.ClusterID]core.Group{
		1: core.GroupGood,
		2: core.GroupUnsorted,
		3: "",
		4: core.GroupMUA,
	}
	m := NewWithGroups(stored)

	assert.Equal(t, core.GroupGood, m.Group(1))
	assert.Equal(t, core.GroupUnsorted, m.Group(2))
	assert.Equal(t, core.GroupMUA, m.Group(4))
	assert.Len(t, m.Groups(), 2)

	// The input map was copied.
	stored[1] = core.GroupNoise
	assert.Equal(t, core.GroupGood, m.Group(1))
}

func TestGroupsReturnsCopy(t *testing.T) {
	m := New()
	_, err := m.SetGroup([]core.ClusterID{1}, core.GroupGood)
	require.NoError(t, err)

	got := m.Groups()
	got[1] = core.GroupNoise
	assert.Equal(t, core.GroupGood, m.Group(1))
}
