package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gtreg/internal/registry"
	"gtreg/internal/resolve"
	"gtreg/internal/services"
	"gtreg/internal/store"
	"gtreg/internal/testsupport"
)

var _ resolve.Source = (*store.Tx)(nil)

func ptr[T any](v T) *T { return &v }

func TestOpenCreatesSchemaOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedManufacturer(t, first, "Gibson")
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpenStore(t, cfg)
	counts, err := second.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts["manufacturers"] != 1 {
		t.Fatalf("expected reopened store to keep data, got %v", counts)
	}

	health, err := second.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || health.SchemaVersion != 1 {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestManufacturerNameKeyIsCaseInsensitiveAndUnique(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	seeded := testsupport.SeedManufacturer(t, st, "Gretsch")

	err := st.WithTx(ctx, func(tx *store.Tx) error {
		found, err := tx.FindManufacturer(ctx, string(resolve.NewNameKey("GRETSCH")))
		if err != nil {
			return err
		}
		if found == nil || found.ID != seeded.ID {
			t.Fatalf("expected folded lookup to find %s, got %+v", seeded.ID, found)
		}
		if found.Status == nil || *found.Status != registry.StatusActive {
			t.Fatalf("expected default status, got %v", found.Status)
		}
		return tx.InsertManufacturer(ctx, &registry.Manufacturer{Name: "gretsch"})
	})
	if !errors.Is(err, store.ErrUniqueViolation) || !errors.Is(err, services.ErrUniquenessViolation) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertManufacturer(ctx, &registry.Manufacturer{Name: "Rickenbacker"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	counts, err := st.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["manufacturers"] != 0 {
		t.Fatalf("rolled back insert must not persist, got %v", counts)
	}
}

func TestWithTxRejectsCancelledContext(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := st.WithTx(ctx, func(*store.Tx) error { called = true; return nil })
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before begin, got %v (called=%v)", err, called)
	}
}

func TestModelRoundTripAndUpdateKeepsAttestation(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	maker := testsupport.SeedManufacturer(t, st, "Fender")
	model := testsupport.SeedModel(t, st, maker.ID, "Stratocaster", 1954)

	err := st.WithTx(ctx, func(tx *store.Tx) error {
		got, err := tx.FindModel(ctx, maker.ID, string(resolve.NewNameKey("STRATOCASTER")), 1954)
		if err != nil {
			return err
		}
		if got == nil || got.ID != model.ID {
			t.Fatalf("expected model %s, got %+v", model.ID, got)
		}
		if *got.Currency != "USD" || *got.ProductionType != registry.ProductionMass {
			t.Fatalf("expected insert defaults, got %v %v", *got.Currency, *got.ProductionType)
		}
		if other, err := tx.FindModel(ctx, maker.ID, string(resolve.NewNameKey("Stratocaster")), 1955); err != nil || other != nil {
			t.Fatalf("year must match exactly, got %+v %v", other, err)
		}
		got.ModelAttrs = got.ModelAttrs.Merge(registry.ModelAttrs{MSRPOriginal: ptr(249.5)})
		return tx.UpdateModel(ctx, got)
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	_ = st.WithTx(ctx, func(tx *store.Tx) error {
		got, err := tx.GetModel(ctx, model.ID)
		if err != nil {
			t.Fatalf("GetModel: %v", err)
		}
		if got.MSRPOriginal == nil || *got.MSRPOriginal != 249.5 {
			t.Fatalf("expected msrp update, got %v", got.MSRPOriginal)
		}
		if got.Attestation.Status != nil || got.Attestation.UID != nil {
			t.Fatalf("attestation must stay untouched, got %+v", got.Attestation)
		}
		return nil
	})
}

func TestGuitarSerialUniqueIgnoresCase(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	insert := func(serial *string) error {
		return st.WithTx(ctx, func(tx *store.Tx) error {
			g := &registry.Guitar{SerialNumber: serial}
			g.Fallback.ManufacturerName = ptr("Unknown")
			return tx.InsertGuitar(ctx, g)
		})
	}
	if err := insert(ptr("ab-123")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := insert(ptr("AB-123")); !errors.Is(err, store.ErrUniqueViolation) {
		t.Fatalf("expected case-insensitive serial collision, got %v", err)
	}
	for range 2 {
		if err := insert(nil); err != nil {
			t.Fatalf("guitars without serial must not collide: %v", err)
		}
	}

	_ = st.WithTx(ctx, func(tx *store.Tx) error {
		g, err := tx.FindGuitarBySerial(ctx, string(resolve.NewSerialKey("AB-123")))
		if err != nil || g == nil {
			t.Fatalf("FindGuitarBySerial: %+v %v", g, err)
		}
		if *g.SignificanceLevel != registry.SignificanceNotable {
			t.Fatalf("expected default significance, got %v", *g.SignificanceLevel)
		}
		return nil
	})
}

func TestSpecificationOwnership(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	maker := testsupport.SeedManufacturer(t, st, "Martin")
	model := testsupport.SeedModel(t, st, maker.ID, "D-28", 1937)
	owner := registry.EntityRef{Kind: registry.KindModel, ID: model.ID}

	err := st.WithTx(ctx, func(tx *store.Tx) error {
		spec := &registry.Specification{Owner: owner}
		spec.BodyWood = ptr("Brazilian Rosewood")
		spec.CaseIncluded = ptr(true)
		if err := tx.InsertSpecification(ctx, spec); err != nil {
			return err
		}
		specs, err := tx.ListSpecifications(ctx, owner)
		if err != nil {
			return err
		}
		if len(specs) != 1 || *specs[0].BodyWood != "Brazilian Rosewood" || !*specs[0].CaseIncluded {
			t.Fatalf("unexpected specifications %+v", specs)
		}
		if specs[0].Owner != owner {
			t.Fatalf("unexpected owner %v", specs[0].Owner)
		}
		return tx.InsertSpecification(ctx, &registry.Specification{Owner: registry.EntityRef{Kind: registry.KindManufacturer, ID: maker.ID}})
	})
	if err == nil {
		t.Fatal("specification owned by a manufacturer must be rejected")
	}
}

func TestImagesSinglePrimaryAndOrdering(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	maker := testsupport.SeedManufacturer(t, st, "PRS")
	owner := registry.EntityRef{Kind: registry.KindManufacturer, ID: maker.ID}

	first := testsupport.SeedImage(t, st, owner, "logo.png", true)
	second := testsupport.SeedImage(t, st, owner, "factory.jpg", false)
	if first.DisplayOrder != 0 || second.DisplayOrder != 1 {
		t.Fatalf("unexpected display orders %d %d", first.DisplayOrder, second.DisplayOrder)
	}
	if first.Asset.StorageProvider != registry.DefaultStorageProvider || first.ImageType != registry.DefaultImageType {
		t.Fatalf("expected image defaults, got %q %q", first.Asset.StorageProvider, first.ImageType)
	}

	err := st.WithTx(ctx, func(tx *store.Tx) error {
		img := &registry.Image{Owner: owner, IsPrimary: true, DisplayOrder: 2}
		img.Asset.StorageKey = "second-primary.jpg"
		return tx.InsertImage(ctx, img)
	})
	if !errors.Is(err, store.ErrUniqueViolation) {
		t.Fatalf("second primary must violate the single-primary index, got %v", err)
	}

	images, err := st.ListImages(ctx, owner)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(images) != 2 || images[0].ID != first.ID || images[1].ID != second.ID {
		t.Fatalf("unexpected listing %+v", images)
	}

	_ = st.WithTx(ctx, func(tx *store.Tx) error {
		original, err := tx.FindOriginalByStorageKey(ctx, "factory.jpg")
		if err != nil || original == nil || original.ID != second.ID {
			t.Fatalf("FindOriginalByStorageKey: %+v %v", original, err)
		}
		exists, err := tx.EntityExists(ctx, registry.EntityRef{Kind: registry.KindModel, ID: maker.ID})
		if err != nil || exists {
			t.Fatalf("EntityExists on wrong kind: %v %v", exists, err)
		}
		return nil
	})
}

func TestConcurrentWritersSeeCommittedRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	second := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	key := string(resolve.NewNameKey("Gibson"))

	secondErr := make(chan error, 1)
	err := first.WithTx(ctx, func(tx *store.Tx) error {
		found, err := tx.FindManufacturer(ctx, key)
		if err != nil {
			return err
		}
		if found != nil {
			t.Fatalf("expected empty registry, got %+v", found)
		}

		go func() {
			secondErr <- second.WithTx(ctx, func(tx *store.Tx) error {
				existing, err := tx.FindManufacturer(ctx, key)
				if err != nil {
					return err
				}
				if existing != nil {
					return errors.New("row already visible")
				}
				return tx.InsertManufacturer(ctx, &registry.Manufacturer{Name: "Gibson"})
			})
		}()
		time.Sleep(100 * time.Millisecond)

		return tx.InsertManufacturer(ctx, &registry.Manufacturer{Name: "Gibson"})
	})
	if err != nil {
		t.Fatalf("first writer: %v", err)
	}

	select {
	case err := <-secondErr:
		if err == nil || err.Error() != "row already visible" {
			t.Fatalf("second writer should start after the first commits, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("second writer did not finish")
	}

	counts, err := first.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts["manufacturers"] != 1 {
		t.Fatalf("expected one manufacturer, got %v", counts)
	}
}
