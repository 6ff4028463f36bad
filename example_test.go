package phy_test

import (
	"context"
	"fmt"
	"log"

	"github.com/ZhixiaoSu/phy"
	"github.com/ZhixiaoSu/phy/blobstore"
	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/dataset"
	"github.com/ZhixiaoSu/phy/model"
)

func Example() {
	session := phy.New()

	// Watch clustering changes the way a view would.
	session.Connect(phy.ObserverFuncs{
		Cluster: func(up model.UpdateDescriptor, recordable bool) error {
			fmt.Printf("%s recordable=%v\n", up, recordable)
			return nil
		},
	})

	err := session.Open(&model.StaticModel{
		Spikes: []core.ClusterID{1, 1, 2, 2},
	})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := session.Merge([]core.ClusterID{1, 2}); err != nil {
		log.Fatal(err)
	}
	if _, err := session.Undo(); err != nil {
		log.Fatal(err)
	}
	if _, err := session.Redo(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("clusters:", session.ClusterIDs())

	// Output:
	// Update(merge: -[1 2] +[3]) recordable=true
	// Update(undo: -[3] +[1 2]) recordable=false
	// Update(redo: -[1 2] +[3]) recordable=false
	// clusters: [3]
}

func Example_persistence() {
	ctx := context.Background()
	session := phy.New()

	if err := session.Open(&model.StaticModel{
		Spikes: []core.ClusterID{1, 1, 2, 2},
	}); err != nil {
		log.Fatal(err)
	}
	if _, err := session.Merge([]core.ClusterID{1, 2}); err != nil {
		log.Fatal(err)
	}
	if _, err := session.Move([]core.ClusterID{3}, core.GroupGood); err != nil {
		log.Fatal(err)
	}

	// Commit the curated state; use a LocalStore or s3.Store outside tests.
	store := dataset.NewStore(blobstore.NewMemoryStore())
	version, err := store.Save(ctx, session.SpikeClusters(), session.Groups())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("committed version", version)

	// A later session resumes from the commit.
	loaded, err := store.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}
	resumed := phy.New()
	if err := resumed.Open(loaded); err != nil {
		log.Fatal(err)
	}
	fmt.Println("clusters:", resumed.ClusterIDs())
	fmt.Println("group of 3:", resumed.Group(3))

	// Output:
	// committed version 1
	// clusters: [3]
	// group of 3: good
}
