package phy

import (
	"errors"
	"fmt"

	"github.com/ZhixiaoSu/phy/clustering"
	"github.com/ZhixiaoSu/phy/metadata"
)

var (
	// ErrInvalidOperation is the umbrella for malformed merge/split/move
	// arguments: unknown or degenerate cluster and spike sets. The specific
	// cause can be retrieved with errors.As (clustering.ErrUnknownCluster,
	// clustering.ErrTooFewClusters, clustering.ErrUnknownSpike,
	// metadata.ErrInvalidGroup) or errors.Is (clustering.ErrEmptySpikeSet,
	// metadata.ErrNoClusters). Rejected operations leave the session state
	// unchanged.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNotOpen is returned when an operation requires an open dataset.
	ErrNotOpen = errors.New("no dataset open")

	// ErrNilModel is returned by Open when no model is supplied.
	ErrNilModel = errors.New("nil model")

	// ErrUnknownCommand is returned when looking up a command name that is
	// not in the session's operation table.
	ErrUnknownCommand = errors.New("unknown command")
)

// translateError unifies leaf-package errors under the session's taxonomy at
// the API boundary, so callers match on the root sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var uc *clustering.ErrUnknownCluster
	if errors.As(err, &uc) {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	var tf *clustering.ErrTooFewClusters
	if errors.As(err, &tf) {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	var us *clustering.ErrUnknownSpike
	if errors.As(err, &us) {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	if errors.Is(err, clustering.ErrEmptySpikeSet) {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}

	var ig *metadata.ErrInvalidGroup
	if errors.As(err, &ig) {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	if errors.Is(err, metadata.ErrNoClusters) {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}

	return err
}
