package resolve

import (
	"fmt"
	"time"

	"gtreg/internal/config"
	"gtreg/internal/registry"
)

// OutcomeKind tags the result of resolving one proposed entity.
type OutcomeKind int

const (
	// Created means no existing entity matched; the caller creates one.
	Created OutcomeKind = iota
	// Matched means the proposal resolved to an existing entity.
	Matched
	// NeedsReview means the best candidates fall in the manual review band.
	NeedsReview
)

func (k OutcomeKind) String() string {
	switch k {
	case Matched:
		return "matched"
	case NeedsReview:
		return "needs_review"
	default:
		return "created"
	}
}

// Reason explains how an outcome was reached.
type Reason string

const (
	ReasonExact     Reason = "exact"
	ReasonAutoMerge Reason = "auto_merge"
	ReasonReview    Reason = "review_band"
	ReasonNoMatch   Reason = "no_match"
	ReasonNoKey     Reason = "no_natural_key"
)

// Candidate is one existing entity scored against a proposal.
type Candidate struct {
	ID             string              `json:"id"`
	Kind           registry.EntityKind `json:"entity_type"`
	Name           string              `json:"name"`
	Score          float64             `json:"score"`
	LastResolvedAt time.Time           `json:"last_resolved_at"`
}

// Outcome is the tagged result of a resolution.
type Outcome struct {
	Kind       OutcomeKind
	ID         string
	Score      float64
	Reason     Reason
	Candidates []Candidate
}

func matched(id string, score float64, reason Reason) Outcome {
	return Outcome{Kind: Matched, ID: id, Score: score, Reason: reason}
}

func created(reason Reason) Outcome {
	return Outcome{Kind: Created, Reason: reason}
}

func (o Outcome) String() string {
	switch o.Kind {
	case Matched:
		return fmt.Sprintf("matched %s (%s, %.3f)", o.ID, o.Reason, o.Score)
	case NeedsReview:
		return fmt.Sprintf("needs review (%d candidates)", len(o.Candidates))
	default:
		return fmt.Sprintf("created (%s)", o.Reason)
	}
}

// Thresholds are the fuzzy-match decision bands. Scores at or above AutoMerge
// resolve to the candidate; scores in [Review, AutoMerge) need review.
type Thresholds struct {
	AutoMerge float64
	Review    float64
}

// ThresholdsFrom reads the decision bands from configuration.
func ThresholdsFrom(cfg config.Resolution) Thresholds {
	return Thresholds{AutoMerge: cfg.AutoMergeThreshold, Review: cfg.ReviewThreshold}
}

// DefaultThresholds returns the configured default decision bands.
func DefaultThresholds() Thresholds {
	return ThresholdsFrom(config.Default().Resolution)
}

// Classify maps a similarity score to its outcome kind.
func (t Thresholds) Classify(score float64) OutcomeKind {
	switch {
	case score >= t.AutoMerge:
		return Matched
	case score >= t.Review:
		return NeedsReview
	default:
		return Created
	}
}
