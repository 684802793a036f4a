package testsupport

import (
	"context"
	"testing"

	"gtreg/internal/config"
	"gtreg/internal/registry"
	"gtreg/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedManufacturer inserts a manufacturer directly and returns it.
func SeedManufacturer(t testing.TB, st *store.Store, name string) *registry.Manufacturer {
	t.Helper()

	m := &registry.Manufacturer{Name: name}
	m.CreatedBy = "seed"
	mustTx(t, st, func(tx *store.Tx) error { return tx.InsertManufacturer(context.Background(), m) })
	return m
}

// SeedModel inserts a model under manufacturerID and returns it.
func SeedModel(t testing.TB, st *store.Store, manufacturerID, name string, year int) *registry.Model {
	t.Helper()

	m := &registry.Model{ManufacturerID: manufacturerID, Name: name, Year: year}
	m.CreatedBy = "seed"
	mustTx(t, st, func(tx *store.Tx) error { return tx.InsertModel(context.Background(), m) })
	return m
}

// SeedImage inserts an originating image row for owner and returns it.
func SeedImage(t testing.TB, st *store.Store, owner registry.EntityRef, storageKey string, primary bool) *registry.Image {
	t.Helper()

	img := &registry.Image{Owner: owner, IsPrimary: primary}
	img.Asset.StorageKey = storageKey
	mustTx(t, st, func(tx *store.Tx) error {
		ctx := context.Background()
		order, err := tx.NextDisplayOrder(ctx, owner)
		if err != nil {
			return err
		}
		img.DisplayOrder = order
		return tx.InsertImage(ctx, img)
	})
	return img
}

func mustTx(t testing.TB, st *store.Store, fn func(*store.Tx) error) {
	t.Helper()
	if err := st.WithTx(context.Background(), fn); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
