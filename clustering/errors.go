package clustering

import (
	"errors"
	"fmt"

	"github.com/ZhixiaoSu/phy/core"
)

// ErrEmptySpikeSet is returned by Split when no spikes are given.
var ErrEmptySpikeSet = errors.New("empty spike set")

// ErrUnknownCluster indicates an operation referencing a cluster id that is
// not currently in use.
type ErrUnknownCluster struct {
	ID core.ClusterID
}

func (e *ErrUnknownCluster) Error() string {
	return fmt.Sprintf("unknown cluster: %d", e.ID)
}

// ErrTooFewClusters indicates a merge with fewer than two distinct clusters.
type ErrTooFewClusters struct {
	Count int
}

func (e *ErrTooFewClusters) Error() string {
	return fmt.Sprintf("merge requires at least 2 distinct clusters, got %d", e.Count)
}

// ErrUnknownSpike indicates an operation referencing a spike id outside the
// loaded dataset.
type ErrUnknownSpike struct {
	ID core.SpikeID
}

func (e *ErrUnknownSpike) Error() string {
	return fmt.Sprintf("unknown spike: %d", e.ID)
}
