package resolve_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gtreg/internal/logging"
	"gtreg/internal/registry"
	"gtreg/internal/resolve"
	"gtreg/internal/services"
	"gtreg/internal/submission"
	"gtreg/internal/textutil"
)

type fakeSource struct {
	manufacturers []registry.Manufacturer
	productLines  []registry.ProductLine
	models        []registry.Model
	guitars       []registry.Guitar
	listErr       error
}

func (f *fakeSource) FindManufacturer(_ context.Context, key string) (*registry.Manufacturer, error) {
	for i := range f.manufacturers {
		if textutil.FoldKey(f.manufacturers[i].Name) == key {
			return &f.manufacturers[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ListManufacturers(context.Context) ([]registry.Manufacturer, error) {
	return append([]registry.Manufacturer(nil), f.manufacturers...), f.listErr
}

func (f *fakeSource) FindProductLine(_ context.Context, manufacturerID, key string) (*registry.ProductLine, error) {
	for i := range f.productLines {
		if f.productLines[i].ManufacturerID == manufacturerID && textutil.FoldKey(f.productLines[i].Name) == key {
			return &f.productLines[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ListProductLines(_ context.Context, manufacturerID string) ([]registry.ProductLine, error) {
	var out []registry.ProductLine
	for _, pl := range f.productLines {
		if pl.ManufacturerID == manufacturerID {
			out = append(out, pl)
		}
	}
	return out, nil
}

func (f *fakeSource) FindModel(_ context.Context, manufacturerID, key string, year int) (*registry.Model, error) {
	for i := range f.models {
		m := f.models[i]
		if m.ManufacturerID == manufacturerID && textutil.FoldKey(m.Name) == key && m.Year == year {
			return &f.models[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ListModels(_ context.Context, manufacturerID string, year int) ([]registry.Model, error) {
	var out []registry.Model
	for _, m := range f.models {
		if m.ManufacturerID == manufacturerID && m.Year == year {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeSource) FindGuitarBySerial(_ context.Context, key string) (*registry.Guitar, error) {
	for i := range f.guitars {
		if s := f.guitars[i].SerialNumber; s != nil && textutil.FoldKey(*s) == key {
			return &f.guitars[i], nil
		}
	}
	return nil, nil
}

func manufacturer(id, name string, resolvedAt time.Time) registry.Manufacturer {
	m := registry.Manufacturer{ID: id, Name: name}
	m.LastResolvedAt = resolvedAt
	return m
}

func newResolver() *resolve.Resolver {
	return resolve.New(resolve.DefaultThresholds(), logging.NewNop())
}

func TestResolveManufacturerExactIgnoresCase(t *testing.T) {
	src := &fakeSource{manufacturers: []registry.Manufacturer{manufacturer("m1", "Gibson", time.Time{})}}
	sess := resolve.NewOverlay().Begin()

	for _, name := range []string{"Gibson", "GIBSON", "  gibson "} {
		out, err := newResolver().ResolveManufacturer(context.Background(), src, sess, name)
		if err != nil {
			t.Fatalf("ResolveManufacturer(%q): %v", name, err)
		}
		if out.Kind != resolve.Matched || out.ID != "m1" || out.Reason != resolve.ReasonExact {
			t.Fatalf("ResolveManufacturer(%q) = %v", name, out)
		}
	}
}

func TestResolveManufacturerFuzzyBands(t *testing.T) {
	src := &fakeSource{manufacturers: []registry.Manufacturer{
		manufacturer("m1", "Gibson Guitar Corporation", time.Time{}),
		manufacturer("m2", "Fender Musical", time.Time{}),
	}}
	sess := resolve.NewOverlay().Begin()
	r := newResolver()
	ctx := context.Background()

	out, err := r.ResolveManufacturer(ctx, src, sess, "Gibson Guitar Corporatio")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != resolve.Matched || out.ID != "m1" || out.Reason != resolve.ReasonAutoMerge {
		t.Fatalf("expected auto-merge, got %v", out)
	}

	out, err = r.ResolveManufacturer(ctx, src, sess, "Fender Musicals")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != resolve.NeedsReview {
		t.Fatalf("expected review band for 0.93 score, got %v", out)
	}
	if len(out.Candidates) != 1 || out.Candidates[0].ID != "m2" {
		t.Fatalf("unexpected candidates: %+v", out.Candidates)
	}

	out, err = r.ResolveManufacturer(ctx, src, sess, "Rickenbacker")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != resolve.Created {
		t.Fatalf("expected create, got %v", out)
	}
}

func TestResolveFuzzyTieBreak(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	src := &fakeSource{manufacturers: []registry.Manufacturer{
		manufacturer("b", "Guild Guitarz", older),
		manufacturer("c", "Guild Guitarx", newer),
		manufacturer("a", "Guild Guitary", older),
	}}
	out, err := newResolver().ResolveManufacturer(context.Background(), src, resolve.NewOverlay().Begin(), "Guild Guitars")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != resolve.NeedsReview {
		t.Fatalf("expected review band, got %v", out)
	}
	got := []string{out.Candidates[0].ID, out.Candidates[1].ID, out.Candidates[2].ID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", got, want)
		}
	}
}

func TestResolveModelYearIsExact(t *testing.T) {
	model := registry.Model{ID: "md1", ManufacturerID: "m1", Name: "Les Paul Standard", Year: 1959}
	src := &fakeSource{models: []registry.Model{model}}
	r := newResolver()
	sess := resolve.NewOverlay().Begin()
	ctx := context.Background()

	out, err := r.ResolveModel(ctx, src, sess, "m1", "les paul standard", 1959)
	if err != nil || out.Kind != resolve.Matched {
		t.Fatalf("expected exact match, got %v %v", out, err)
	}
	out, err = r.ResolveModel(ctx, src, sess, "m1", "Les Paul Standard", 1960)
	if err != nil || out.Kind != resolve.Created {
		t.Fatalf("different year must not match, got %v %v", out, err)
	}
	out, err = r.ResolveModel(ctx, src, sess, "m2", "Les Paul Standard", 1959)
	if err != nil || out.Kind != resolve.Created {
		t.Fatalf("different manufacturer must not match, got %v %v", out, err)
	}
}

func TestLookupModelRejectsStringYear(t *testing.T) {
	model := registry.Model{ID: "md1", ManufacturerID: "m1", Name: "SG", Year: 1961}
	src := &fakeSource{models: []registry.Model{model}}
	r := newResolver()
	sess := resolve.NewOverlay().Begin()

	key := resolve.ModelKey{ManufacturerID: "m1", Name: resolve.NewNameKey("SG"), Year: resolve.YearKeyFrom(submission.LiteralYear("1961"))}
	if _, ok, err := r.LookupModel(context.Background(), src, sess, key); err != nil || ok {
		t.Fatalf("string year must never resolve: ok=%v err=%v", ok, err)
	}
	key.Year = resolve.YearKeyFrom(submission.IntYear(1961))
	id, ok, err := r.LookupModel(context.Background(), src, sess, key)
	if err != nil || !ok || id != "md1" {
		t.Fatalf("expected integer year to resolve, got %q %v %v", id, ok, err)
	}
}

func TestSessionVisibility(t *testing.T) {
	overlay := resolve.NewOverlay()
	src := &fakeSource{}
	r := newResolver()
	ctx := context.Background()

	first := overlay.Begin()
	first.RecordManufacturer("PRS Guitars", resolve.Entry{ID: "m9", Name: "PRS Guitars"})
	if id, ok, _ := r.LookupManufacturer(ctx, src, first, "prs guitars"); !ok || id != "m9" {
		t.Fatalf("pending entry should be visible within its session, got %q %v", id, ok)
	}

	second := overlay.Begin()
	if _, ok, _ := r.LookupManufacturer(ctx, src, second, "PRS Guitars"); ok {
		t.Fatal("uncommitted entry must not be visible to other sessions")
	}

	first.Commit()
	third := overlay.Begin()
	if id, ok, _ := r.LookupManufacturer(ctx, src, third, "PRS GUITARS"); !ok || id != "m9" {
		t.Fatalf("committed entry should be visible to later sessions, got %q %v", id, ok)
	}

	discarded := overlay.Begin()
	discarded.RecordManufacturer("Gretsch", resolve.Entry{ID: "m10"})
	discarded.Discard()
	if _, ok, _ := r.LookupManufacturer(ctx, src, overlay.Begin(), "Gretsch"); ok {
		t.Fatal("discarded entry must not reach the overlay")
	}
}

func TestResolveGuitarBySerial(t *testing.T) {
	serial := "9-0824"
	src := &fakeSource{guitars: []registry.Guitar{{ID: "g1", SerialNumber: &serial}}}
	r := newResolver()
	sess := resolve.NewOverlay().Begin()

	upper := "9-0824"
	out, err := r.ResolveGuitar(context.Background(), src, sess, &upper)
	if err != nil || out.Kind != resolve.Matched || out.ID != "g1" {
		t.Fatalf("expected serial match, got %v %v", out, err)
	}
	out, err = r.ResolveGuitar(context.Background(), src, sess, nil)
	if err != nil || out.Kind != resolve.Created || out.Reason != resolve.ReasonNoKey {
		t.Fatalf("expected create without serial, got %v %v", out, err)
	}
}

func TestResolveDispatchRejectsStringModelYear(t *testing.T) {
	_, err := newResolver().Resolve(context.Background(), &fakeSource{}, resolve.NewOverlay().Begin(), resolve.Proposal{
		Kind:           registry.KindModel,
		Name:           "SG",
		ManufacturerID: "m1",
		Year:           resolve.YearKeyFrom(submission.LiteralYear("1961")),
	})
	if !errors.Is(err, services.ErrResolutionConflict) {
		t.Fatalf("expected resolution conflict, got %v", err)
	}
}

func TestResolveStorageErrorsAreWrapped(t *testing.T) {
	src := &fakeSource{listErr: errors.New("disk gone")}
	_, err := newResolver().ResolveManufacturer(context.Background(), src, resolve.NewOverlay().Begin(), "Ibanez")
	if !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage marker, got %v", err)
	}
}

func TestThresholdsClassify(t *testing.T) {
	th := resolve.DefaultThresholds()
	tests := []struct {
		score float64
		want  resolve.OutcomeKind
	}{
		{1, resolve.Matched},
		{0.95, resolve.Matched},
		{0.9499, resolve.NeedsReview},
		{0.85, resolve.NeedsReview},
		{0.8499, resolve.Created},
		{0, resolve.Created},
	}
	for _, tt := range tests {
		if got := th.Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
