package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhixiaoSu/phy/blobstore"
	"github.com/ZhixiaoSu/phy/codec"
	"github.com/ZhixiaoSu/phy/core"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blobstore.NewMemoryStore())

	spikeClusters := []core.ClusterID{1, 1, 2, 2, 3}
	groups := map[core.ClusterID]core.Group{
		2: core.GroupGood,
		3: core.GroupNoise,
	}

	version, err := store.Save(ctx, spikeClusters, groups)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	m, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Version())
	assert.Equal(t, spikeClusters, m.SpikeClusters())
	assert.Equal(t, groups, m.ClusterGroups())
}

func TestSaveIncrementsVersion(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blobstore.NewMemoryStore())

	v1, err := store.Save(ctx, []core.ClusterID{1, 2}, nil)
	require.NoError(t, err)
	v2, err := store.Save(ctx, []core.ClusterID{3, 3}, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), v1)
	assert.Equal(t, uint64(2), v2)

	// Load resolves CURRENT to the newest commit.
	m, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), m.Version())
	assert.Equal(t, []core.ClusterID{3, 3}, m.SpikeClusters())

	// Older commits stay readable by name: append-only layout.
	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), latest)
}

func TestLatestEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blobstore.NewMemoryStore())

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), latest)

	_, err = store.Load(ctx)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestSaveBlobLayout(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	store := NewStore(blobs)

	_, err := store.Save(ctx, []core.ClusterID{1}, nil)
	require.NoError(t, err)

	names, err := blobs.List(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"CURRENT",
		"manifest-00000001.json",
		"spikes-00000001.blk",
		"groups-00000001.json",
	}, names)

	cur, err := blobs.Open(ctx, CurrentPointer)
	require.NoError(t, err)
	data, err := blobstore.ReadAll(ctx, cur)
	require.NoError(t, err)
	assert.Equal(t, "manifest-00000001.json", string(data))
}

func TestStoreOptions(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blobstore.NewMemoryStore(),
		WithCodec(codec.JSON{}),
		WithCompression(codec.CompressionLZ4),
		WithWriteLimit(1<<20),
	)

	spikeClusters := make([]core.ClusterID, 500)
	for i := range spikeClusters {
		spikeClusters[i] = core.ClusterID(i % 3)
	}

	_, err := store.Save(ctx, spikeClusters, map[core.ClusterID]core.Group{0: core.GroupMUA})
	require.NoError(t, err)

	m, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, spikeClusters, m.SpikeClusters())
	assert.Equal(t, core.GroupMUA, m.ClusterGroups()[0])
}

func TestLoadOnLocalStore(t *testing.T) {
	ctx := context.Background()
	blobs, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	store := NewStore(blobs)

	spikeClusters := []core.ClusterID{7, 7, 9}
	_, err = store.Save(ctx, spikeClusters, nil)
	require.NoError(t, err)

	m, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, spikeClusters, m.SpikeClusters())
	assert.Empty(t, m.ClusterGroups())
}
