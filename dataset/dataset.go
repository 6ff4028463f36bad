// Package dataset persists curated spike-sorting state as versioned commits
// in a blobstore.
//
// # Layout
//
//	CURRENT                 name of the live manifest
//	manifest-%08d.json      codec-encoded Manifest
//	spikes-%08d.blk         assignment: little-endian u64 per spike, in a
//	                        compressed block
//	groups-%08d.json        codec-encoded cluster group table
//
// Commits are append-only: a save writes fresh blobs under the next version
// number and re-points CURRENT. With a plain S3 or local store the CURRENT
// update is last-writer-wins; wrap the store in s3.DDBCommitStore when
// concurrent curators need compare-and-swap commits.
//
// This is the core's own persistence format for curation results. Parsing
// experimental recording formats (kwik, raw traces) is out of scope; loaders
// for those live outside the core and hand the session a model.Model.
package dataset

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ZhixiaoSu/phy/blobstore"
	"github.com/ZhixiaoSu/phy/codec"
	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/model"
)

// CurrentPointer is the blob naming the live manifest.
const CurrentPointer = "CURRENT"

// Manifest describes one committed version of a curated dataset.
type Manifest struct {
	Version    uint64    `json:"version"`
	NumSpikes  int       `json:"num_spikes"`
	Codec      string    `json:"codec"`
	SpikesBlob string    `json:"spikes_blob"`
	GroupsBlob string    `json:"groups_blob"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store reads and writes versioned dataset commits on a blobstore.
type Store struct {
	blobs       blobstore.BlobStore
	codec       codec.Codec
	compression codec.CompressionType
	limiter     *rate.Limiter
}

// Option configures a Store.
type Option func(*Store)

// WithCodec selects the codec for manifests and group tables.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c == nil {
			c = codec.Default
		}
		s.codec = c
	}
}

// WithCompression selects the block compression for assignment blobs.
// Default: ZSTD (persisted blobs are written once and read many times, so
// ratio wins over speed).
func WithCompression(t codec.CompressionType) Option {
	return func(s *Store) {
		s.compression = t
	}
}

// WithWriteLimit throttles save uploads to at most bytesPerSec. Saves run
// while a curator keeps working against shared lab storage; the throttle
// keeps them from starving readers. 0 disables the limit.
func WithWriteLimit(bytesPerSec int) Option {
	return func(s *Store) {
		if bytesPerSec > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
		} else {
			s.limiter = nil
		}
	}
}

// NewStore creates a dataset store on top of a blobstore.
func NewStore(blobs blobstore.BlobStore, opts ...Option) *Store {
	s := &Store{
		blobs:       blobs,
		codec:       codec.Default,
		compression: codec.CompressionZSTD,
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

func manifestName(version uint64) string {
	return fmt.Sprintf("manifest-%08d.json", version)
}

func spikesName(version uint64) string {
	return fmt.Sprintf("spikes-%08d.blk", version)
}

func groupsName(version uint64) string {
	return fmt.Sprintf("groups-%08d.json", version)
}

// Save commits the given assignment and group table as the next version and
// re-points CURRENT at it. It returns the committed version number.
func (s *Store) Save(ctx context.Context, spikeClusters []core.ClusterID, groups map[core.ClusterID]core.Group) (uint64, error) {
	latest, err := s.Latest(ctx)
	if err != nil {
		return 0, err
	}
	version := latest + 1

	buf := make([]byte, 8*len(spikeClusters))
	for spike, id := range spikeClusters {
		binary.LittleEndian.PutUint64(buf[8*spike:], uint64(id))
	}
	spikesData := codec.CompressBlock(s.compression, buf)

	groupsData, err := s.codec.Marshal(groups)
	if err != nil {
		return 0, fmt.Errorf("dataset: encode groups: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.throttle(gctx, len(spikesData)); err != nil {
			return err
		}
		return s.blobs.Put(gctx, spikesName(version), spikesData)
	})
	g.Go(func() error {
		if err := s.throttle(gctx, len(groupsData)); err != nil {
			return err
		}
		return s.blobs.Put(gctx, groupsName(version), groupsData)
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("dataset: write blobs for version %d: %w", version, err)
	}

	manifest := Manifest{
		Version:    version,
		NumSpikes:  len(spikeClusters),
		Codec:      s.codec.Name(),
		SpikesBlob: spikesName(version),
		GroupsBlob: groupsName(version),
		CreatedAt:  time.Now().UTC(),
	}
	manifestData, err := s.codec.Marshal(manifest)
	if err != nil {
		return 0, fmt.Errorf("dataset: encode manifest: %w", err)
	}
	if err := s.blobs.Put(ctx, manifestName(version), manifestData); err != nil {
		return 0, fmt.Errorf("dataset: write manifest for version %d: %w", version, err)
	}

	// The commit point. On a DDBCommitStore this is a conditional write and
	// may fail with ErrConcurrentModification.
	if err := s.blobs.Put(ctx, CurrentPointer, []byte(manifestName(version))); err != nil {
		return 0, fmt.Errorf("dataset: commit version %d: %w", version, err)
	}
	return version, nil
}

// Latest returns the version CURRENT points at, or 0 when nothing has been
// committed yet.
func (s *Store) Latest(ctx context.Context) (uint64, error) {
	m, err := s.loadManifest(ctx)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return m.Version, nil
}

// Load reads the version CURRENT points at and returns it as a model.Model
// ready for Session.Open.
func (s *Store) Load(ctx context.Context) (*Model, error) {
	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return nil, err
	}

	groupCodec, ok := codec.ByName(manifest.Codec)
	if !ok {
		return nil, fmt.Errorf("dataset: manifest names unknown codec %q", manifest.Codec)
	}

	var spikesData, groupsData []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spikesData, err = s.readBlob(gctx, manifest.SpikesBlob)
		return err
	})
	g.Go(func() error {
		var err error
		groupsData, err = s.readBlob(gctx, manifest.GroupsBlob)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dataset: read version %d: %w", manifest.Version, err)
	}

	buf, err := codec.DecompressBlock(spikesData)
	if err != nil {
		return nil, fmt.Errorf("dataset: assignment blob %s: %w", manifest.SpikesBlob, err)
	}
	if len(buf) != 8*manifest.NumSpikes {
		return nil, fmt.Errorf("dataset: assignment blob %s holds %d spikes, manifest says %d",
			manifest.SpikesBlob, len(buf)/8, manifest.NumSpikes)
	}

	spikeClusters := make([]core.ClusterID, manifest.NumSpikes)
	for spike := range spikeClusters {
		spikeClusters[spike] = core.ClusterID(binary.LittleEndian.Uint64(buf[8*spike:]))
	}

	groups := make(map[core.ClusterID]core.Group)
	if len(groupsData) > 0 {
		if err := groupCodec.Unmarshal(groupsData, &groups); err != nil {
			return nil, fmt.Errorf("dataset: group table %s: %w", manifest.GroupsBlob, err)
		}
	}

	return &Model{
		version:       manifest.Version,
		spikeClusters: spikeClusters,
		groups:        groups,
	}, nil
}

func (s *Store) loadManifest(ctx context.Context) (Manifest, error) {
	cur, err := s.readBlob(ctx, CurrentPointer)
	if err != nil {
		return Manifest{}, err
	}
	name := strings.TrimSpace(string(cur))

	data, err := s.readBlob(ctx, name)
	if err != nil {
		return Manifest{}, fmt.Errorf("dataset: read manifest %s: %w", name, err)
	}

	var m Manifest
	if err := s.codec.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("dataset: decode manifest %s: %w", name, err)
	}
	return m, nil
}

func (s *Store) readBlob(ctx context.Context, name string) ([]byte, error) {
	b, err := s.blobs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return blobstore.ReadAll(ctx, b)
}

// throttle waits for write budget in burst-sized chunks, so blobs larger
// than the limiter burst still pass.
func (s *Store) throttle(ctx context.Context, n int) error {
	if s.limiter == nil {
		return nil
	}
	burst := s.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, blobstore.ErrNotFound)
}

// Model is a loaded dataset version. It implements model.Model.
type Model struct {
	version       uint64
	spikeClusters []core.ClusterID
	groups        map[core.ClusterID]core.Group
}

var _ model.Model = (*Model)(nil)

// Version returns the committed version this model was loaded from.
func (m *Model) Version() uint64 { return m.version }

// SpikeClusters returns the assignment, indexed by SpikeID.
func (m *Model) SpikeClusters() []core.ClusterID { return m.spikeClusters }

// ClusterGroups returns the stored curation groups.
func (m *Model) ClusterGroups() map[core.ClusterID]core.Group { return m.groups }
