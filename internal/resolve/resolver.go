package resolve

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gtreg/internal/logging"
	"gtreg/internal/registry"
	"gtreg/internal/services"
	"gtreg/internal/textutil"
)

// Source is the committed store as seen from the current transaction. Key
// arguments are already folded with NewNameKey / NewSerialKey. Find methods
// return nil, nil when nothing matches.
type Source interface {
	FindManufacturer(ctx context.Context, key string) (*registry.Manufacturer, error)
	ListManufacturers(ctx context.Context) ([]registry.Manufacturer, error)
	FindProductLine(ctx context.Context, manufacturerID, key string) (*registry.ProductLine, error)
	ListProductLines(ctx context.Context, manufacturerID string) ([]registry.ProductLine, error)
	FindModel(ctx context.Context, manufacturerID, key string, year int) (*registry.Model, error)
	ListModels(ctx context.Context, manufacturerID string, year int) ([]registry.Model, error)
	FindGuitarBySerial(ctx context.Context, key string) (*registry.Guitar, error)
}

// Proposal describes an entity to resolve.
type Proposal struct {
	Kind registry.EntityKind
	Name string
	// ManufacturerID scopes product lines and models.
	ManufacturerID string
	// Year scopes models; compared as an integer only.
	Year YearKey
	// Serial identifies individual guitars.
	Serial *string
}

// Resolver classifies proposals against the store and the batch overlay.
type Resolver struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// New builds a resolver with the given decision bands.
func New(thresholds Thresholds, logger *slog.Logger) *Resolver {
	return &Resolver{thresholds: thresholds, logger: logging.NewComponentLogger(logger, "resolver")}
}

// Thresholds returns the resolver's decision bands.
func (r *Resolver) Thresholds() Thresholds {
	return r.thresholds
}

// Resolve dispatches a proposal to the resolution rules of its kind.
func (r *Resolver) Resolve(ctx context.Context, src Source, sess *Session, p Proposal) (Outcome, error) {
	switch p.Kind {
	case registry.KindManufacturer:
		return r.ResolveManufacturer(ctx, src, sess, p.Name)
	case registry.KindProductLine:
		return r.ResolveProductLine(ctx, src, sess, p.ManufacturerID, p.Name)
	case registry.KindModel:
		year, ok := p.Year.Int()
		if !ok {
			return Outcome{}, services.Wrap(services.ErrResolutionConflict, "resolver", "resolve model", "model year must be an integer", nil)
		}
		return r.ResolveModel(ctx, src, sess, p.ManufacturerID, p.Name, year)
	case registry.KindGuitar:
		return r.ResolveGuitar(ctx, src, sess, p.Serial)
	default:
		return Outcome{}, fmt.Errorf("resolve: unsupported entity kind %q", p.Kind)
	}
}

// ResolveManufacturer matches a manufacturer by name across the whole registry.
func (r *Resolver) ResolveManufacturer(ctx context.Context, src Source, sess *Session, name string) (Outcome, error) {
	key := NewNameKey(name)
	if e, ok := sess.manufacturer(key); ok {
		return r.decide(ctx, registry.KindManufacturer, name, matched(e.ID, 1, ReasonExact)), nil
	}
	existing, err := src.FindManufacturer(ctx, string(key))
	if err != nil {
		return Outcome{}, storageErr("find manufacturer", err)
	}
	if existing != nil {
		return r.decide(ctx, registry.KindManufacturer, name, matched(existing.ID, 1, ReasonExact)), nil
	}
	all, err := src.ListManufacturers(ctx)
	if err != nil {
		return Outcome{}, storageErr("list manufacturers", err)
	}
	candidates := make([]Candidate, 0, len(all))
	for _, m := range all {
		candidates = append(candidates, Candidate{ID: m.ID, Kind: registry.KindManufacturer, Name: m.Name, LastResolvedAt: m.LastResolvedAt})
	}
	return r.decide(ctx, registry.KindManufacturer, name, r.fuzzy(name, candidates)), nil
}

// ResolveProductLine matches a product line within one manufacturer.
func (r *Resolver) ResolveProductLine(ctx context.Context, src Source, sess *Session, manufacturerID, name string) (Outcome, error) {
	key := ProductLineKey{ManufacturerID: manufacturerID, Name: NewNameKey(name)}
	if e, ok := sess.productLine(key); ok {
		return r.decide(ctx, registry.KindProductLine, name, matched(e.ID, 1, ReasonExact)), nil
	}
	existing, err := src.FindProductLine(ctx, manufacturerID, string(key.Name))
	if err != nil {
		return Outcome{}, storageErr("find product line", err)
	}
	if existing != nil {
		return r.decide(ctx, registry.KindProductLine, name, matched(existing.ID, 1, ReasonExact)), nil
	}
	lines, err := src.ListProductLines(ctx, manufacturerID)
	if err != nil {
		return Outcome{}, storageErr("list product lines", err)
	}
	candidates := make([]Candidate, 0, len(lines))
	for _, pl := range lines {
		candidates = append(candidates, Candidate{ID: pl.ID, Kind: registry.KindProductLine, Name: pl.Name, LastResolvedAt: pl.LastResolvedAt})
	}
	return r.decide(ctx, registry.KindProductLine, name, r.fuzzy(name, candidates)), nil
}

// ResolveModel matches a model by (manufacturer, name, year). Fuzzy candidates
// share the manufacturer and the exact year.
func (r *Resolver) ResolveModel(ctx context.Context, src Source, sess *Session, manufacturerID, name string, year int) (Outcome, error) {
	key := ModelKey{ManufacturerID: manufacturerID, Name: NewNameKey(name), Year: IntYearKey(year)}
	if e, ok := sess.model(key); ok {
		return r.decide(ctx, registry.KindModel, name, matched(e.ID, 1, ReasonExact)), nil
	}
	existing, err := src.FindModel(ctx, manufacturerID, string(key.Name), year)
	if err != nil {
		return Outcome{}, storageErr("find model", err)
	}
	if existing != nil {
		return r.decide(ctx, registry.KindModel, name, matched(existing.ID, 1, ReasonExact)), nil
	}
	models, err := src.ListModels(ctx, manufacturerID, year)
	if err != nil {
		return Outcome{}, storageErr("list models", err)
	}
	candidates := make([]Candidate, 0, len(models))
	for _, m := range models {
		candidates = append(candidates, Candidate{ID: m.ID, Kind: registry.KindModel, Name: m.Name, LastResolvedAt: m.LastResolvedAt})
	}
	return r.decide(ctx, registry.KindModel, name, r.fuzzy(name, candidates)), nil
}

// ResolveGuitar matches an individual guitar by serial number. Guitars without
// a serial number have no natural key and are always new.
func (r *Resolver) ResolveGuitar(ctx context.Context, src Source, sess *Session, serial *string) (Outcome, error) {
	if serial == nil || strings.TrimSpace(*serial) == "" {
		return r.decide(ctx, registry.KindGuitar, "", created(ReasonNoKey)), nil
	}
	key := NewSerialKey(*serial)
	if e, ok := sess.serial(key); ok {
		return r.decide(ctx, registry.KindGuitar, *serial, matched(e.ID, 1, ReasonExact)), nil
	}
	existing, err := src.FindGuitarBySerial(ctx, string(key))
	if err != nil {
		return Outcome{}, storageErr("find guitar", err)
	}
	if existing != nil {
		return r.decide(ctx, registry.KindGuitar, *serial, matched(existing.ID, 1, ReasonExact)), nil
	}
	return r.decide(ctx, registry.KindGuitar, *serial, created(ReasonNoMatch)), nil
}

// LookupManufacturer resolves a manufacturer reference by exact name only.
func (r *Resolver) LookupManufacturer(ctx context.Context, src Source, sess *Session, name string) (string, bool, error) {
	key := NewNameKey(name)
	if e, ok := sess.manufacturer(key); ok {
		return e.ID, true, nil
	}
	existing, err := src.FindManufacturer(ctx, string(key))
	if err != nil {
		return "", false, storageErr("find manufacturer", err)
	}
	if existing == nil {
		return "", false, nil
	}
	return existing.ID, true, nil
}

// LookupModel resolves a model reference by exact natural key only. A key
// whose year is not an integer never resolves.
func (r *Resolver) LookupModel(ctx context.Context, src Source, sess *Session, key ModelKey) (string, bool, error) {
	year, ok := key.Year.Int()
	if !ok {
		return "", false, nil
	}
	if e, ok := sess.model(key); ok {
		return e.ID, true, nil
	}
	existing, err := src.FindModel(ctx, key.ManufacturerID, string(key.Name), year)
	if err != nil {
		return "", false, storageErr("find model", err)
	}
	if existing == nil {
		return "", false, nil
	}
	return existing.ID, true, nil
}

// fuzzy scores name against candidates and classifies the best score.
func (r *Resolver) fuzzy(name string, candidates []Candidate) Outcome {
	if len(candidates) == 0 {
		return created(ReasonNoMatch)
	}
	scorer := textutil.NewScorer(name)
	for i := range candidates {
		candidates[i].Score = scorer.Score(candidates[i].Name)
	}
	Rank(candidates)

	best := candidates[0]
	switch r.thresholds.Classify(best.Score) {
	case Matched:
		return matched(best.ID, best.Score, ReasonAutoMerge)
	case NeedsReview:
		var band []Candidate
		for _, c := range candidates {
			if c.Score < r.thresholds.Review {
				break
			}
			band = append(band, c)
		}
		return Outcome{Kind: NeedsReview, Score: best.Score, Reason: ReasonReview, Candidates: band}
	default:
		out := created(ReasonNoMatch)
		out.Score = best.Score
		return out
	}
}

// Rank orders candidates by score descending, then most recent resolution,
// then id.
func Rank(candidates []Candidate) {
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := b.LastResolvedAt.Compare(a.LastResolvedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func (r *Resolver) decide(ctx context.Context, kind registry.EntityKind, name string, out Outcome) Outcome {
	logger := logging.WithContext(services.WithEntityKind(ctx, string(kind)), r.logger)
	attrs := logging.DecisionAttrsWithScore(string(kind)+"_resolution", out.Kind.String(), string(out.Reason), out.Score)
	attrs = append(attrs, logging.String("name", name))
	if out.ID != "" {
		attrs = append(attrs, logging.String("entity_id", out.ID))
	}
	if out.Kind == NeedsReview {
		attrs = append(attrs, logging.Int("candidate_count", len(out.Candidates)))
		logging.WarnWithContext(logger, "resolution needs manual review", "resolution_ambiguous",
			append(attrs, logging.String(logging.FieldErrorHint, "confirm or reject the candidate match and resubmit"))...)
		return out
	}
	logger.Debug("resolution decided", logging.Args(attrs...)...)
	return out
}

func storageErr(operation string, err error) error {
	return services.Wrap(services.ErrStorage, "resolver", operation, "", err)
}
