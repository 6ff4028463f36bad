package phy

import "github.com/ZhixiaoSu/phy/model"

// Observer receives synchronous session notifications. Delivery order is
// registration order; a callback returning an error aborts delivery to later
// observers, and the error surfaces to the caller of the operation that
// triggered it. Recovery and display of such errors is the front end's
// responsibility, not the core's.
//
// Callbacks run on the session's goroutine. They may call Select and the
// session's read accessors, but must not re-enter a mutating operation.
type Observer interface {
	// OnOpen is called after a dataset has been (re)opened. Observers
	// re-read the session state they care about.
	OnOpen() error

	// OnCluster is called after the clustering or cluster metadata changed.
	// recordable is false when the update replays history (undo/redo), so
	// observers keeping their own logs know not to re-record it.
	OnCluster(up model.UpdateDescriptor, recordable bool) error

	// OnSelect is called after the selection changed. Observers re-read
	// SelectedClusters/SelectedSpikes themselves.
	OnSelect() error
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are no-ops.
type ObserverFuncs struct {
	Open    func() error
	Cluster func(up model.UpdateDescriptor, recordable bool) error
	Select  func() error
}

// OnOpen implements Observer.
func (o ObserverFuncs) OnOpen() error {
	if o.Open == nil {
		return nil
	}
	return o.Open()
}

// OnCluster implements Observer.
func (o ObserverFuncs) OnCluster(up model.UpdateDescriptor, recordable bool) error {
	if o.Cluster == nil {
		return nil
	}
	return o.Cluster(up, recordable)
}

// OnSelect implements Observer.
func (o ObserverFuncs) OnSelect() error {
	if o.Select == nil {
		return nil
	}
	return o.Select()
}
