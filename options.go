package phy

import "github.com/ZhixiaoSu/phy/codec"

// defaultSnapshotCompression balances capture speed against snapshot size;
// snapshots are taken on every mutation.
const defaultSnapshotCompression = codec.CompressionLZ4

type options struct {
	maxSpikes   int
	compression codec.CompressionType
	logger      *Logger
	observers   []Observer
}

// Option configures Session constructor behavior.
type Option func(*options)

// WithMaxSpikes caps the number of spikes a derived selection may contain.
// Views render waveforms for every selected spike, so this bounds render
// cost. Default: selection.DefaultMaxSpikes.
func WithMaxSpikes(n int) Option {
	return func(o *options) {
		o.maxSpikes = n
	}
}

// WithSnapshotCompression selects the block compression for undo-history
// snapshots. Each mutation captures the full assignment, so on large
// datasets this is the session's dominant memory cost. Default: LZ4.
func WithSnapshotCompression(t codec.CompressionType) Option {
	return func(o *options) {
		o.compression = t
	}
}

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithObserver registers an observer at construction time, before any
// notification can fire. Equivalent to calling Connect on the new session.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}
