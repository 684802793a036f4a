package ingest

import (
	"time"

	"gtreg/internal/registry"
	"gtreg/internal/resolve"
	"gtreg/internal/submission"
)

// Action records what happened to one entity of a submission.
type Action string

const (
	ActionCreated    Action = "created"
	ActionMatched    Action = "matched"
	ActionReferenced Action = "referenced"
	ActionAttached   Action = "attached"
	ActionUnchanged  Action = "unchanged"
)

// EntityResult describes one executed step.
type EntityResult struct {
	Step   string              `json:"step"`
	Kind   registry.EntityKind `json:"entity_type"`
	ID     string              `json:"id"`
	Action Action              `json:"action"`
	Score  float64             `json:"score,omitempty"`
	Reason string              `json:"reason,omitempty"`
}

// Counters tally the writes made by committed submissions.
type Counters struct {
	ManufacturersInserted  int `json:"manufacturers_inserted"`
	ManufacturersUpdated   int `json:"manufacturers_updated"`
	ProductLinesInserted   int `json:"product_lines_inserted"`
	ProductLinesMatched    int `json:"product_lines_matched"`
	ModelsInserted         int `json:"models_inserted"`
	ModelsUpdated          int `json:"models_updated"`
	GuitarsInserted        int `json:"guitars_inserted"`
	GuitarsUpdated         int `json:"guitars_updated"`
	SpecificationsInserted int `json:"specifications_inserted"`
	ImagesAttached         int `json:"images_attached"`
}

// Add accumulates other into c.
func (c *Counters) Add(other Counters) {
	c.ManufacturersInserted += other.ManufacturersInserted
	c.ManufacturersUpdated += other.ManufacturersUpdated
	c.ProductLinesInserted += other.ProductLinesInserted
	c.ProductLinesMatched += other.ProductLinesMatched
	c.ModelsInserted += other.ModelsInserted
	c.ModelsUpdated += other.ModelsUpdated
	c.GuitarsInserted += other.GuitarsInserted
	c.GuitarsUpdated += other.GuitarsUpdated
	c.SpecificationsInserted += other.SpecificationsInserted
	c.ImagesAttached += other.ImagesAttached
}

// Review identifies the entity that held a submission for review.
type Review struct {
	Step       string              `json:"step"`
	Kind       registry.EntityKind `json:"entity_type"`
	Name       string              `json:"name"`
	Candidates []resolve.Candidate `json:"candidates"`
}

// SubmissionResult is the outcome of one submission.
type SubmissionResult struct {
	Index       int                     `json:"index"`
	Status      string                  `json:"status"`
	Reason      string                  `json:"reason,omitempty"`
	Error       string                  `json:"error,omitempty"`
	FieldErrors []submission.FieldError `json:"field_errors,omitempty"`
	Description string                  `json:"description,omitempty"`
	Entities    []EntityResult          `json:"entities,omitempty"`
	Review      *Review                 `json:"review,omitempty"`
	Counters    Counters                `json:"counters"`
	Attempts    int                     `json:"attempts"`
}

// Totals count submissions by outcome.
type Totals struct {
	Submitted   int `json:"submitted"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	NeedsReview int `json:"needs_review"`
}

// BatchResult enumerates every submission of a batch.
type BatchResult struct {
	BatchID     string             `json:"batch_id"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Submissions []SubmissionResult `json:"submissions"`
	Totals      Totals             `json:"totals"`
	Counters    Counters           `json:"counters"`
}

func (b *BatchResult) record(res SubmissionResult) {
	b.Submissions = append(b.Submissions, res)
	b.Totals.Submitted++
	switch res.Status {
	case statusSucceeded:
		b.Totals.Succeeded++
		b.Counters.Add(res.Counters)
	case statusNeedsReview:
		b.Totals.NeedsReview++
	default:
		b.Totals.Failed++
	}
}
