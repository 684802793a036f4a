package registry_test

import (
	"testing"

	"gtreg/internal/registry"
)

func ptr[T any](v T) *T { return &v }

func TestManufacturerMergeKeepsUnsetFields(t *testing.T) {
	status := registry.StatusActive
	current := registry.ManufacturerAttrs{
		DisplayName: ptr("Gibson"),
		Country:     ptr("USA"),
		FoundedYear: ptr(1902),
		Status:      &status,
	}
	defunct := registry.StatusDefunct
	merged := current.Merge(registry.ManufacturerAttrs{Country: ptr("United States"), Status: &defunct})

	if *merged.DisplayName != "Gibson" {
		t.Fatalf("display name should be kept, got %q", *merged.DisplayName)
	}
	if *merged.Country != "United States" {
		t.Fatalf("country should be updated, got %q", *merged.Country)
	}
	if *merged.FoundedYear != 1902 {
		t.Fatalf("founded year should be kept, got %d", *merged.FoundedYear)
	}
	if *merged.Status != registry.StatusDefunct {
		t.Fatalf("status should be updated, got %q", *merged.Status)
	}
	if *current.Country != "USA" {
		t.Fatal("merge must not mutate the receiver's pointees")
	}
}

func TestModelMergeEmptyUpdateIsNoop(t *testing.T) {
	current := registry.ModelAttrs{Currency: ptr("USD"), MSRPOriginal: ptr(299.0)}
	merged := current.Merge(registry.ModelAttrs{})
	if merged != current {
		t.Fatalf("expected unchanged attrs, got %+v", merged)
	}
	if !(registry.ModelAttrs{}).Empty() || current.Empty() {
		t.Fatal("Empty reports wrong result")
	}
}

func TestCanOwnImages(t *testing.T) {
	for _, kind := range []registry.EntityKind{registry.KindManufacturer, registry.KindModel, registry.KindGuitar, registry.KindProductLine} {
		if !kind.CanOwnImages() {
			t.Fatalf("%s should own images", kind)
		}
	}
	if registry.KindSpecification.CanOwnImages() || registry.EntityKind("dealer").CanOwnImages() {
		t.Fatal("unexpected image owner kind")
	}
}
