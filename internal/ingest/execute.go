package ingest

import (
	"context"
	"fmt"
	"reflect"

	"gtreg/internal/images"
	"gtreg/internal/logging"
	"gtreg/internal/plan"
	"gtreg/internal/registry"
	"gtreg/internal/resolve"
	"gtreg/internal/services"
	"gtreg/internal/store"
	"gtreg/internal/submission"
	"gtreg/internal/textutil"
)

// reviewError stops a submission whose resolution landed in the review band.
type reviewError struct {
	step       string
	kind       registry.EntityKind
	name       string
	candidates []resolve.Candidate
}

func (e *reviewError) Error() string {
	return fmt.Sprintf("%s: %s %q has %d candidate(s) in the review band", services.ErrResolutionAmbiguous, e.kind, e.name, len(e.candidates))
}

func (e *reviewError) Unwrap() error { return services.ErrResolutionAmbiguous }

// execution runs one plan inside one transaction.
type execution struct {
	coordinator *Coordinator
	plan        *plan.Plan
	tx          *store.Tx
	source      resolve.Source
	session     *resolve.Session
	ids         map[string]string
	primacy     map[string][]bool
	entities    []EntityResult
	counters    Counters
}

func (e *execution) execute(ctx context.Context) error {
	for _, step := range e.plan.Steps {
		ctx := services.WithEntityKind(ctx, string(step.Entity))
		var err error
		switch step.Kind {
		case plan.ResolveManufacturer:
			err = e.resolveManufacturer(ctx, step)
		case plan.LookupManufacturer:
			err = e.lookupManufacturer(ctx, step)
		case plan.ResolveProductLine:
			err = e.resolveProductLine(ctx, step)
		case plan.ResolveModel:
			err = e.resolveModel(ctx, step)
		case plan.LookupModel:
			err = e.lookupModel(ctx, step)
		case plan.ResolveGuitar:
			err = e.resolveGuitar(ctx, step)
		case plan.AttachSpecification:
			err = e.attachSpecification(ctx, step)
		case plan.AttachPhoto:
			err = e.attachPhoto(ctx, step)
		default:
			err = fmt.Errorf("ingest: unknown step kind %q", step.Kind)
		}
		if err != nil {
			return err
		}
		if n := len(e.entities); n > 0 && e.entities[n-1].Step == step.ID {
			last := e.entities[n-1]
			logging.WithContext(ctx, e.coordinator.logger).Debug("step applied",
				logging.String("step", step.ID),
				logging.String("action", string(last.Action)),
				logging.String("entity_id", last.ID),
			)
		}
	}
	return nil
}

func (e *execution) record(step plan.Step, id string, action Action, out *resolve.Outcome) {
	e.ids[step.ID] = id
	res := EntityResult{Step: step.ID, Kind: step.Entity, ID: id, Action: action}
	if out != nil {
		res.Score = out.Score
		res.Reason = string(out.Reason)
	}
	e.entities = append(e.entities, res)
}

func review(step plan.Step, name string, out resolve.Outcome) error {
	return &reviewError{step: step.ID, kind: step.Entity, name: name, candidates: out.Candidates}
}

func (e *execution) resolveManufacturer(ctx context.Context, step plan.Step) error {
	in := e.plan.Submission.Manufacturer
	out, err := e.coordinator.resolver.ResolveManufacturer(ctx, e.source, e.session, in.Name)
	if err != nil {
		return err
	}
	switch out.Kind {
	case resolve.NeedsReview:
		return review(step, in.Name, out)
	case resolve.Matched:
		existing, err := e.tx.GetManufacturer(ctx, out.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return vanished(step, out.ID)
		}
		existing.ManufacturerAttrs = existing.ManufacturerAttrs.Merge(in.ManufacturerAttrs)
		if err := e.tx.UpdateManufacturer(ctx, existing); err != nil {
			return err
		}
		e.counters.ManufacturersUpdated++
		e.session.RecordManufacturer(existing.Name, resolve.Entry{ID: existing.ID, Name: existing.Name, ResolvedAt: e.tx.Now()})
		e.record(step, existing.ID, ActionMatched, &out)
	default:
		m := &registry.Manufacturer{Name: in.Name, ManufacturerAttrs: in.ManufacturerAttrs}
		m.CreatedBy = e.coordinator.createdBy
		if err := e.tx.InsertManufacturer(ctx, m); err != nil {
			return err
		}
		e.counters.ManufacturersInserted++
		e.session.RecordManufacturer(m.Name, resolve.Entry{ID: m.ID, Name: m.Name, ResolvedAt: e.tx.Now()})
		e.record(step, m.ID, ActionCreated, &out)
	}
	return nil
}

func (e *execution) lookupManufacturer(ctx context.Context, step plan.Step) error {
	id, ok, err := e.coordinator.resolver.LookupManufacturer(ctx, e.source, e.session, step.Name)
	if err != nil {
		return err
	}
	if !ok {
		return services.Wrap(services.ErrMissingDependency, "ingest", step.ID,
			fmt.Sprintf("manufacturer %q is not registered; include a manufacturer block or register it first", step.Name), nil)
	}
	if err := e.tx.TouchManufacturer(ctx, id); err != nil {
		return err
	}
	e.record(step, id, ActionReferenced, nil)
	return nil
}

func (e *execution) resolveProductLine(ctx context.Context, step plan.Step) error {
	manufacturerID := e.ids[step.Scope]
	out, err := e.coordinator.resolver.ResolveProductLine(ctx, e.source, e.session, manufacturerID, step.Name)
	if err != nil {
		return err
	}
	switch out.Kind {
	case resolve.NeedsReview:
		return review(step, step.Name, out)
	case resolve.Matched:
		if err := e.tx.TouchProductLine(ctx, out.ID); err != nil {
			return err
		}
		e.counters.ProductLinesMatched++
		e.session.RecordProductLine(manufacturerID, step.Name, resolve.Entry{ID: out.ID, Name: step.Name, ResolvedAt: e.tx.Now()})
		e.record(step, out.ID, ActionMatched, &out)
	default:
		pl := &registry.ProductLine{ManufacturerID: manufacturerID, Name: step.Name}
		pl.CreatedBy = e.coordinator.createdBy
		if err := e.tx.InsertProductLine(ctx, pl); err != nil {
			return err
		}
		e.counters.ProductLinesInserted++
		e.session.RecordProductLine(manufacturerID, pl.Name, resolve.Entry{ID: pl.ID, Name: pl.Name, ResolvedAt: e.tx.Now()})
		e.record(step, pl.ID, ActionCreated, &out)
	}
	return nil
}

func (e *execution) resolveModel(ctx context.Context, step plan.Step) error {
	in := e.plan.Submission.Model
	manufacturerID := e.ids[step.Scope]
	var productLineID *string
	if step.ProductLine != "" {
		id := e.ids[step.ProductLine]
		productLineID = &id
	}

	out, err := e.coordinator.resolver.ResolveModel(ctx, e.source, e.session, manufacturerID, in.Name, in.Year)
	if err != nil {
		return err
	}
	switch out.Kind {
	case resolve.NeedsReview:
		return review(step, in.Name, out)
	case resolve.Matched:
		existing, err := e.tx.GetModel(ctx, out.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return vanished(step, out.ID)
		}
		existing.ModelAttrs = existing.ModelAttrs.Merge(in.ModelAttrs)
		if productLineID != nil {
			existing.ProductLineID = productLineID
		}
		if err := e.tx.UpdateModel(ctx, existing); err != nil {
			return err
		}
		e.counters.ModelsUpdated++
		e.session.RecordModel(manufacturerID, existing.Name, existing.Year, resolve.Entry{ID: existing.ID, Name: existing.Name, ResolvedAt: e.tx.Now()})
		e.record(step, existing.ID, ActionMatched, &out)
	default:
		m := &registry.Model{
			ManufacturerID: manufacturerID,
			ProductLineID:  productLineID,
			Name:           in.Name,
			Year:           in.Year,
			ModelAttrs:     in.ModelAttrs,
		}
		m.CreatedBy = e.coordinator.createdBy
		if err := e.tx.InsertModel(ctx, m); err != nil {
			return err
		}
		e.counters.ModelsInserted++
		e.session.RecordModel(manufacturerID, m.Name, m.Year, resolve.Entry{ID: m.ID, Name: m.Name, ResolvedAt: e.tx.Now()})
		e.record(step, m.ID, ActionCreated, &out)
	}
	return nil
}

func (e *execution) lookupModel(ctx context.Context, step plan.Step) error {
	ref := e.plan.Submission.Guitar.Reference
	if _, ok := step.Year.Int(); !ok {
		return services.Wrap(services.ErrResolutionConflict, "ingest", step.ID,
			fmt.Sprintf("model_reference year %s is not an integer and cannot match a model year", ref.Year), nil)
	}
	key := resolve.ModelKey{ManufacturerID: e.ids[step.Scope], Name: resolve.NewNameKey(step.Name), Year: step.Year}
	id, ok, err := e.coordinator.resolver.LookupModel(ctx, e.source, e.session, key)
	if err != nil {
		return err
	}
	if !ok {
		return services.Wrap(services.ErrResolutionConflict, "ingest", step.ID,
			fmt.Sprintf("model_reference %s / %s / %s does not match a registered model", ref.ManufacturerName, ref.ModelName, ref.Year), nil)
	}
	if err := e.tx.TouchModel(ctx, id); err != nil {
		return err
	}
	e.record(step, id, ActionReferenced, nil)
	return nil
}

func (e *execution) resolveGuitar(ctx context.Context, step plan.Step) error {
	in := e.plan.Submission.Guitar
	var modelID *string
	if step.Scope != "" {
		id := e.ids[step.Scope]
		modelID = &id
	}

	out, err := e.coordinator.resolver.ResolveGuitar(ctx, e.source, e.session, in.SerialNumber)
	if err != nil {
		return err
	}
	switch out.Kind {
	case resolve.NeedsReview:
		return review(step, step.Name, out)
	case resolve.Matched:
		existing, err := e.tx.GetGuitar(ctx, out.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return vanished(step, out.ID)
		}
		if !sameInstrument(existing, modelID, in) {
			return services.Wrap(services.ErrUniquenessViolation, "ingest", step.ID,
				fmt.Sprintf("serial number %q already belongs to guitar %s with a different identity", *in.SerialNumber, existing.ID), nil)
		}
		existing.GuitarAttrs = existing.GuitarAttrs.Merge(in.GuitarAttrs)
		if in.Fallback != nil {
			existing.Fallback = existing.Fallback.Merge(*in.Fallback)
		}
		if err := e.tx.UpdateGuitar(ctx, existing); err != nil {
			return err
		}
		e.counters.GuitarsUpdated++
		e.session.RecordSerial(*existing.SerialNumber, resolve.Entry{ID: existing.ID, Name: *existing.SerialNumber, ResolvedAt: e.tx.Now()})
		e.record(step, existing.ID, ActionMatched, &out)
	default:
		g := &registry.Guitar{ModelID: modelID, SerialNumber: in.SerialNumber, GuitarAttrs: in.GuitarAttrs}
		if in.Fallback != nil {
			g.Fallback = *in.Fallback
		}
		g.CreatedBy = e.coordinator.createdBy
		if err := e.tx.InsertGuitar(ctx, g); err != nil {
			return err
		}
		e.counters.GuitarsInserted++
		if g.SerialNumber != nil {
			e.session.RecordSerial(*g.SerialNumber, resolve.Entry{ID: g.ID, Name: *g.SerialNumber, ResolvedAt: e.tx.Now()})
		}
		e.record(step, g.ID, ActionCreated, &out)
	}
	return nil
}

// sameInstrument reports whether a stored guitar and a submission describe
// the same instrument: the same resolved model, or in fallback mode no model
// and the same fallback manufacturer.
func sameInstrument(existing *registry.Guitar, modelID *string, in *submission.Guitar) bool {
	if modelID != nil {
		return existing.ModelID != nil && *existing.ModelID == *modelID
	}
	if existing.ModelID != nil || in.Fallback == nil {
		return false
	}
	stored, submitted := existing.Fallback.ManufacturerName, in.Fallback.ManufacturerName
	return stored != nil && submitted != nil && textutil.FoldKey(*stored) == textutil.FoldKey(*submitted)
}

func (e *execution) owner(step plan.Step) registry.EntityRef {
	kind := registry.KindModel
	if step.Scope == plan.StepGuitar {
		kind = registry.KindGuitar
	}
	return registry.EntityRef{Kind: kind, ID: e.ids[step.Scope]}
}

func (e *execution) attachSpecification(ctx context.Context, step plan.Step) error {
	owner := e.owner(step)
	var attrs registry.SpecAttrs
	if owner.Kind == registry.KindModel {
		attrs = e.plan.Submission.Model.Specifications[step.Index]
	} else {
		attrs = *e.plan.Submission.Guitar.Specifications
	}

	existing, err := e.tx.ListSpecifications(ctx, owner)
	if err != nil {
		return err
	}
	for _, spec := range existing {
		if reflect.DeepEqual(spec.SpecAttrs, attrs) {
			e.record(step, spec.ID, ActionUnchanged, nil)
			return nil
		}
	}

	spec := &registry.Specification{Owner: owner, SpecAttrs: attrs}
	if err := e.tx.InsertSpecification(ctx, spec); err != nil {
		return err
	}
	e.counters.SpecificationsInserted++
	e.record(step, spec.ID, ActionCreated, nil)
	return nil
}

func (e *execution) attachPhoto(ctx context.Context, step plan.Step) error {
	owner := e.owner(step)
	photos := e.plan.Submission.Model.Photos
	if owner.Kind == registry.KindGuitar {
		photos = e.plan.Submission.Guitar.Photos
	}

	flags, ok := e.primacy[step.Scope]
	if !ok {
		hasPrimary, err := e.tx.HasPrimary(ctx, owner)
		if err != nil {
			return err
		}
		flags = images.Primacy(photos, hasPrimary)
		e.primacy[step.Scope] = flags
	}

	att, err := images.AttachPhoto(ctx, e.tx, owner, photos[step.Index], flags[step.Index])
	if err != nil {
		return err
	}
	if !att.Created {
		e.record(step, att.Image.ID, ActionUnchanged, nil)
		return nil
	}
	e.counters.ImagesAttached++
	e.record(step, att.Image.ID, ActionAttached, nil)
	return nil
}

func vanished(step plan.Step, id string) error {
	return services.Wrap(services.ErrResolutionConflict, "ingest", step.ID,
		fmt.Sprintf("resolved %s %s is no longer stored", step.Entity, id), nil)
}
