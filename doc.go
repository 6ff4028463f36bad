// Package phy provides a headless manual-clustering core for electrophysiology
// spike sorting: merge, split and group-move operations over a spike-to-cluster
// assignment, a two-stack undo/redo history, a deterministic spike subsampler
// for views, and synchronous typed notifications.
//
// # Quick Start
//
//	session := phy.New(phy.WithMaxSpikes(100))
//
//	err := session.Open(&model.StaticModel{
//	    Spikes: []core.ClusterID{0, 0, 1, 1, 2},
//	})
//
//	up, _ := session.Merge([]core.ClusterID{0, 1})  // -> fresh cluster 3
//	session.Undo()                                  // -> clusters 0, 1 restored
//	session.Redo()                                  // -> cluster 3 again
//
// # Observers
//
// Views register typed observers and are notified synchronously, in
// registration order:
//
//	unsubscribe := session.Connect(phy.ObserverFuncs{
//	    Cluster: func(up model.UpdateDescriptor, recordable bool) error {
//	        render(session.ClusterIDs())
//	        return nil
//	    },
//	})
//	defer unsubscribe()
//
// The recordable flag is false for undo/redo replays, so bookkeeping
// observers know not to re-record them.
//
// # Persistence
//
// Curated results are saved as versioned commits through the dataset package
// on any blobstore backend (local filesystem, S3, MinIO, in-memory):
//
//	store := dataset.NewStore(blobs)
//	version, err := store.Save(ctx, session.SpikeClusters(), session.Groups())
//
// # Concurrency
//
// A Session is a synchronous, single-goroutine state machine, matching the
// cooperative model of the GUI and notebook front ends it is built for. All
// methods, including observer callbacks they trigger, must run on one
// goroutine. Observer callbacks may call Select and the read accessors;
// re-entering a mutating operation from a callback is not supported.
package phy
