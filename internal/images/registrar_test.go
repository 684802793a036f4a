package images_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gtreg/internal/images"
	"gtreg/internal/logging"
	"gtreg/internal/registry"
	"gtreg/internal/services"
	"gtreg/internal/store"
	"gtreg/internal/submission"
	"gtreg/internal/testsupport"
)

type fixture struct {
	store     *store.Store
	registrar *images.Registrar
	maker     registry.EntityRef
	model     registry.EntityRef
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	maker := testsupport.SeedManufacturer(t, st, "Gibson")
	model := testsupport.SeedModel(t, st, maker.ID, "Les Paul Standard", 1959)
	return fixture{
		store:     st,
		registrar: images.NewRegistrar(st, 1, logging.NewNop()),
		maker:     registry.EntityRef{Kind: registry.KindManufacturer, ID: maker.ID},
		model:     registry.EntityRef{Kind: registry.KindModel, ID: model.ID},
	}
}

func primaries(t *testing.T, st *store.Store, owner registry.EntityRef) []registry.Image {
	t.Helper()
	list, err := st.ListImages(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	var out []registry.Image
	for _, img := range list {
		if img.IsPrimary {
			out = append(out, img)
		}
	}
	return out
}

func TestRegisterDuplicatePrimaryDemotesPrior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	logo := testsupport.SeedImage(t, f.store, f.maker, "gibson/logo.png", true)
	prior := testsupport.SeedImage(t, f.store, f.model, "lp/front.jpg", true)

	caption := "Gibson headstock logo"
	id, err := f.registrar.RegisterDuplicate(ctx, logo.ID, f.model, images.Options{IsPrimary: true, Caption: &caption, Reason: "brand logo"})
	if err != nil {
		t.Fatalf("RegisterDuplicate: %v", err)
	}

	prim := primaries(t, f.store, f.model)
	if len(prim) != 1 || prim[0].ID != id {
		t.Fatalf("expected only the duplicate to be primary, got %+v", prim)
	}

	list, _ := f.store.ListImages(ctx, f.model)
	if len(list) != 2 || list[0].ID != prior.ID || list[1].ID != id {
		t.Fatalf("unexpected listing %+v", list)
	}
	dup := list[1]
	if !dup.IsDuplicate || dup.OriginalImageID == nil || *dup.OriginalImageID != logo.ID {
		t.Fatalf("duplicate must reference the original, got %+v", dup)
	}
	if dup.DisplayOrder != prior.DisplayOrder+1 {
		t.Fatalf("expected display order %d, got %d", prior.DisplayOrder+1, dup.DisplayOrder)
	}
	if dup.Asset != logo.Asset {
		t.Fatalf("asset fields must be copied, got %+v want %+v", dup.Asset, logo.Asset)
	}
	if *dup.Caption != caption || *dup.DuplicateReason != "brand logo" {
		t.Fatalf("unexpected caption/reason %v %v", *dup.Caption, *dup.DuplicateReason)
	}

	if prim := primaries(t, f.store, f.maker); len(prim) != 1 || prim[0].ID != logo.ID {
		t.Fatalf("source entity primary must be untouched, got %+v", prim)
	}
}

func TestRegisterDuplicateFlattensChains(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original := testsupport.SeedImage(t, f.store, f.maker, "shared.jpg", false)

	first, err := f.registrar.RegisterDuplicate(ctx, original.ID, f.model, images.Options{})
	if err != nil {
		t.Fatalf("first duplicate: %v", err)
	}
	other := testsupport.SeedModel(t, f.store, f.maker.ID, "SG", 1961)
	target := registry.EntityRef{Kind: registry.KindModel, ID: other.ID}
	if _, err := f.registrar.RegisterDuplicate(ctx, first, target, images.Options{}); err != nil {
		t.Fatalf("second duplicate: %v", err)
	}

	list, _ := f.store.ListImages(ctx, target)
	if len(list) != 1 || *list[0].OriginalImageID != original.ID {
		t.Fatalf("duplicate of a duplicate must point at the original, got %+v", list)
	}
	if *list[0].DuplicateReason != images.ManualReason {
		t.Fatalf("expected default reason, got %q", *list[0].DuplicateReason)
	}
}

func TestRegisterDuplicateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	img := testsupport.SeedImage(t, f.store, f.maker, "a.jpg", false)

	tests := []struct {
		name   string
		source string
		target registry.EntityRef
		want   error
	}{
		{"self reference", img.ID, f.maker, services.ErrSelfReference},
		{"missing source", "no-such-image", f.model, services.ErrNotFound},
		{"missing target", img.ID, registry.EntityRef{Kind: registry.KindGuitar, ID: "ghost"}, services.ErrNotFound},
		{"bad kind", img.ID, registry.EntityRef{Kind: registry.KindSpecification, ID: "x"}, services.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.registrar.RegisterDuplicate(ctx, tt.source, tt.target, images.Options{}); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := f.registrar.RegisterDuplicate(ctx, img.ID, f.model, images.Options{}); err != nil {
		t.Fatalf("first association: %v", err)
	}
	if _, err := f.registrar.RegisterDuplicate(ctx, img.ID, f.model, images.Options{}); !errors.Is(err, services.ErrUniquenessViolation) {
		t.Fatalf("repeat association should be rejected, got %v", err)
	}
	if list, _ := f.store.ListImages(ctx, f.model); len(list) != 1 {
		t.Fatalf("rejected registrations must not write rows, got %d", len(list))
	}
}

func TestConcurrentPrimaryRegistrationsKeepOnePrimary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 8
	sources := make([]string, n)
	for i := range n {
		sources[i] = testsupport.SeedImage(t, f.store, f.maker, fmt.Sprintf("asset-%d.jpg", i), i == 0).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, src := range sources {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			if _, err := f.registrar.RegisterDuplicate(ctx, src, f.model, images.Options{IsPrimary: true}); err != nil {
				errs <- err
			}
		}(src)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent registration failed: %v", err)
	}

	list, _ := f.store.ListImages(ctx, f.model)
	if len(list) != n {
		t.Fatalf("expected %d rows, got %d", n, len(list))
	}
	seen := map[int]bool{}
	for _, img := range list {
		if seen[img.DisplayOrder] {
			t.Fatalf("display order %d assigned twice", img.DisplayOrder)
		}
		seen[img.DisplayOrder] = true
	}
	if prim := primaries(t, f.store, f.model); len(prim) != 1 {
		t.Fatalf("expected exactly one primary, got %d", len(prim))
	}
}

func TestAttachPhotoSharesKnownAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original := testsupport.SeedImage(t, f.store, f.maker, "press/lp.jpg", false)

	var first, again images.Attachment
	err := f.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		photo := submission.Photo{}
		photo.StorageKey = "press/lp.jpg"
		if first, err = images.AttachPhoto(ctx, tx, f.model, photo, true); err != nil {
			return err
		}
		again, err = images.AttachPhoto(ctx, tx, f.model, photo, false)
		return err
	})
	if err != nil {
		t.Fatalf("AttachPhoto: %v", err)
	}
	if !first.Created || !first.Image.IsDuplicate || *first.Image.OriginalImageID != original.ID {
		t.Fatalf("known asset should attach as duplicate, got %+v", first.Image)
	}
	if *first.Image.DuplicateReason != images.SharedAssetReason {
		t.Fatalf("unexpected reason %q", *first.Image.DuplicateReason)
	}
	if again.Created || again.Image.ID != first.Image.ID {
		t.Fatalf("re-attaching a held asset must be a no-op, got %+v", again)
	}

	err = f.store.WithTx(ctx, func(tx *store.Tx) error {
		photo := submission.Photo{ImageType: "detail"}
		photo.StorageKey = "new/asset.jpg"
		att, err := images.AttachPhoto(ctx, tx, f.model, photo, false)
		if err != nil {
			return err
		}
		if att.Image.IsDuplicate || att.Image.DisplayOrder != 1 || att.Image.ImageType != "detail" {
			t.Fatalf("new asset should insert an original row, got %+v", att.Image)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPrimacy(t *testing.T) {
	photos := func(flags ...bool) []submission.Photo {
		out := make([]submission.Photo, len(flags))
		for i, f := range flags {
			out[i].IsPrimary = f
		}
		return out
	}
	tests := []struct {
		name    string
		photos  []submission.Photo
		hasPrim bool
		want    []bool
	}{
		{"first by default", photos(false, false), false, []bool{true, false}},
		{"explicit wins", photos(false, true, true), false, []bool{false, true, false}},
		{"keep existing primary", photos(false, false), true, []bool{false, false}},
		{"explicit over existing", photos(false, true), true, []bool{false, true}},
		{"none", nil, false, []bool{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := images.Primacy(tt.photos, tt.hasPrim)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v want %v", got, tt.want)
				}
			}
		})
	}
}
