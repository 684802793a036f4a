package plan

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"

	"gtreg/internal/registry"
	"gtreg/internal/resolve"
	"gtreg/internal/services"
	"gtreg/internal/submission"
)

// StepKind is the action a step performs.
type StepKind string

const (
	// ResolveManufacturer resolves or creates the submission's manufacturer block.
	ResolveManufacturer StepKind = "resolve_manufacturer"
	// LookupManufacturer binds a manufacturer named by reference; never creates.
	LookupManufacturer  StepKind = "lookup_manufacturer"
	ResolveProductLine  StepKind = "resolve_product_line"
	ResolveModel        StepKind = "resolve_model"
	// LookupModel binds a guitar's model_reference; never creates.
	LookupModel         StepKind = "lookup_model"
	ResolveGuitar       StepKind = "resolve_guitar"
	AttachSpecification StepKind = "attach_specification"
	AttachPhoto         StepKind = "attach_photo"
)

// Step IDs for the singular blocks of a submission.
const (
	StepManufacturer       = "manufacturer"
	StepModelManufacturer  = "model.manufacturer_ref"
	StepProductLine        = "model.product_line"
	StepModel              = "model"
	StepGuitarManufacturer = "individual_guitar.manufacturer_ref"
	StepGuitarModel        = "individual_guitar.model_ref"
	StepGuitar             = "individual_guitar"
)

// Step is one node of the dependency graph.
type Step struct {
	ID   string
	Kind StepKind
	// Entity is the kind of entity the step yields.
	Entity registry.EntityKind
	// Name is the natural-key name the step resolves or looks up.
	Name string
	// Year is set for model steps.
	Year resolve.YearKey
	// Scope is the step whose entity scopes this one: the manufacturer step
	// for product lines and models, the model step for guitars, the owning
	// entity step for specifications and photos.
	Scope string
	// ProductLine is the product line step of a model, if any.
	ProductLine string
	// Index is the position of a specification or photo within its owner.
	Index int

	tier int
	seq  int
}

// Plan is a submission together with its ordered steps.
type Plan struct {
	Submission *submission.Submission
	Steps      []Step
}

type builder struct {
	g     graph.Graph[string, Step]
	steps []Step
}

func stepHash(s Step) string { return s.ID }

// Build constructs the dependency graph of sub and returns its steps in
// execution order.
func Build(sub *submission.Submission) (*Plan, error) {
	if sub == nil {
		return nil, services.Wrap(services.ErrValidation, "planner", "build", "nil submission", nil)
	}
	b := &builder{g: graph.New(stepHash, graph.Directed(), graph.PreventCycles())}

	if m := sub.Manufacturer; m != nil {
		if err := b.add(Step{ID: StepManufacturer, Kind: ResolveManufacturer, Entity: registry.KindManufacturer, Name: m.Name, tier: 0}); err != nil {
			return nil, err
		}
	}

	if md := sub.Model; md != nil {
		manufacturerStep, err := b.manufacturerFor(sub, md.ManufacturerName, StepModelManufacturer)
		if err != nil {
			return nil, err
		}
		model := Step{ID: StepModel, Kind: ResolveModel, Entity: registry.KindModel, Name: md.Name, Year: resolve.IntYearKey(md.Year), Scope: manufacturerStep, tier: 2}
		if md.ProductLineName != nil {
			if err := b.add(Step{ID: StepProductLine, Kind: ResolveProductLine, Entity: registry.KindProductLine, Name: *md.ProductLineName, Scope: manufacturerStep, tier: 1}, manufacturerStep); err != nil {
				return nil, err
			}
			model.ProductLine = StepProductLine
		}
		deps := []string{manufacturerStep}
		if model.ProductLine != "" {
			deps = append(deps, model.ProductLine)
		}
		if err := b.add(model, deps...); err != nil {
			return nil, err
		}
		if err := b.attachments(StepModel, len(md.Specifications), len(md.Photos)); err != nil {
			return nil, err
		}
	}

	if g := sub.Guitar; g != nil {
		guitar := Step{ID: StepGuitar, Kind: ResolveGuitar, Entity: registry.KindGuitar, tier: 3}
		if g.SerialNumber != nil {
			guitar.Name = *g.SerialNumber
		}
		var deps []string
		if ref := g.Reference; ref != nil {
			modelStep, err := b.modelFor(sub, ref)
			if err != nil {
				return nil, err
			}
			guitar.Scope = modelStep
			deps = append(deps, modelStep)
		}
		if err := b.add(guitar, deps...); err != nil {
			return nil, err
		}
		specs := 0
		if g.Specifications != nil {
			specs = 1
		}
		if err := b.attachments(StepGuitar, specs, len(g.Photos)); err != nil {
			return nil, err
		}
	}

	order, err := graph.StableTopologicalSort(b.g, b.less)
	if err != nil {
		return nil, fmt.Errorf("plan: order steps: %w", err)
	}
	steps := make([]Step, 0, len(order))
	for _, id := range order {
		step, err := b.g.Vertex(id)
		if err != nil {
			return nil, fmt.Errorf("plan: load step %s: %w", id, err)
		}
		steps = append(steps, step)
	}
	return &Plan{Submission: sub, Steps: steps}, nil
}

// manufacturerFor returns the step supplying the manufacturer named by a
// reference, adding a lookup step when the submission has no matching block.
func (b *builder) manufacturerFor(sub *submission.Submission, name, refStepID string) (string, error) {
	key := resolve.NewNameKey(name)
	if sub.Manufacturer != nil && resolve.NewNameKey(sub.Manufacturer.Name) == key {
		return StepManufacturer, nil
	}
	if sub.Model != nil && refStepID != StepModelManufacturer && resolve.NewNameKey(sub.Model.ManufacturerName) == key {
		if _, err := b.g.Vertex(StepModelManufacturer); err == nil {
			return StepModelManufacturer, nil
		}
	}
	if err := b.add(Step{ID: refStepID, Kind: LookupManufacturer, Entity: registry.KindManufacturer, Name: name, tier: 0}); err != nil {
		return "", err
	}
	return refStepID, nil
}

// modelFor binds a model_reference to the submission's model block or to a
// lookup step.
func (b *builder) modelFor(sub *submission.Submission, ref *submission.ModelReference) (string, error) {
	year := resolve.YearKeyFrom(ref.Year)
	if md := sub.Model; md != nil &&
		resolve.NewNameKey(md.ManufacturerName) == resolve.NewNameKey(ref.ManufacturerName) &&
		resolve.NewNameKey(md.Name) == resolve.NewNameKey(ref.ModelName) &&
		year.Equal(resolve.IntYearKey(md.Year)) {
		return StepModel, nil
	}
	manufacturerStep, err := b.manufacturerFor(sub, ref.ManufacturerName, StepGuitarManufacturer)
	if err != nil {
		return "", err
	}
	lookup := Step{ID: StepGuitarModel, Kind: LookupModel, Entity: registry.KindModel, Name: ref.ModelName, Year: year, Scope: manufacturerStep, tier: 2}
	if err := b.add(lookup, manufacturerStep); err != nil {
		return "", err
	}
	return StepGuitarModel, nil
}

func (b *builder) attachments(owner string, specs, photos int) error {
	for i := 0; i < specs; i++ {
		id := fmt.Sprintf("%s.specifications[%d]", owner, i)
		if err := b.add(Step{ID: id, Kind: AttachSpecification, Entity: registry.KindSpecification, Scope: owner, Index: i, tier: 4}, owner); err != nil {
			return err
		}
	}
	for i := 0; i < photos; i++ {
		id := fmt.Sprintf("%s.photos[%d]", owner, i)
		if err := b.add(Step{ID: id, Kind: AttachPhoto, Entity: registry.KindImage, Scope: owner, Index: i, tier: 4}, owner); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) add(step Step, deps ...string) error {
	step.seq = len(b.steps)
	if err := b.g.AddVertex(step); err != nil {
		return fmt.Errorf("plan: add step %s: %w", step.ID, err)
	}
	b.steps = append(b.steps, step)
	for _, dep := range deps {
		if err := b.g.AddEdge(dep, step.ID); err != nil {
			if errors.Is(err, graph.ErrEdgeCreatesCycle) {
				return services.Wrap(services.ErrResolutionConflict, "planner", "build", "circular reference between "+dep+" and "+step.ID, err)
			}
			return fmt.Errorf("plan: link %s -> %s: %w", dep, step.ID, err)
		}
	}
	return nil
}

// less orders ready steps by tier, then by declaration order.
func (b *builder) less(a, c string) bool {
	sa, errA := b.g.Vertex(a)
	sc, errC := b.g.Vertex(c)
	if errA != nil || errC != nil {
		return a < c
	}
	if sa.tier != sc.tier {
		return sa.tier < sc.tier
	}
	return sa.seq < sc.seq
}

// IDs returns the step IDs in execution order.
func (p *Plan) IDs() []string {
	ids := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		ids[i] = s.ID
	}
	return ids
}
