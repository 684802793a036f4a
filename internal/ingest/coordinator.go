package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gtreg/internal/config"
	"gtreg/internal/logging"
	"gtreg/internal/plan"
	"gtreg/internal/resolve"
	"gtreg/internal/services"
	"gtreg/internal/store"
	"gtreg/internal/submission"
)

const (
	statusSucceeded   = services.OutcomeSucceeded
	statusFailed      = services.OutcomeFailed
	statusNeedsReview = services.OutcomeNeedsReview
)

// resolutionSource picks what the resolver reads during one attempt.
var resolutionSource = func(tx *store.Tx, _ int) resolve.Source { return tx }

// Coordinator processes batches of submissions against one store.
type Coordinator struct {
	store     *store.Store
	resolver  *resolve.Resolver
	logger    *slog.Logger
	createdBy string
	retries   int
	now       func() time.Time
}

// New builds a coordinator using the resolution and ingest settings of cfg.
func New(st *store.Store, cfg *config.Config, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:     st,
		resolver:  resolve.New(resolve.ThresholdsFrom(cfg.Resolution), logger),
		logger:    logging.NewComponentLogger(logger, "ingest"),
		createdBy: cfg.Ingest.CreatedBy,
		retries:   max(cfg.Resolution.MaxUniquenessRetries, 0),
		now:       time.Now,
	}
}

// ProcessDocument splits an ingestion document (one submission object or an
// array of them) and processes it as one batch.
func (c *Coordinator) ProcessDocument(ctx context.Context, data []byte) (*BatchResult, error) {
	items, err := submission.Split(data)
	if err != nil {
		return nil, err
	}
	return c.Process(ctx, items), nil
}

// Process runs each submission in order and reports every one of them.
func (c *Coordinator) Process(ctx context.Context, items []json.RawMessage) *BatchResult {
	batch := &BatchResult{
		BatchID:     uuid.NewString(),
		StartedAt:   c.now().UTC(),
		Submissions: make([]SubmissionResult, 0, len(items)),
	}
	ctx = services.WithBatchID(ctx, batch.BatchID)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("batch started", logging.Int("submission_count", len(items)))

	overlay := resolve.NewOverlay()
	for i, raw := range items {
		if err := ctx.Err(); err != nil {
			batch.record(cancelled(i, err))
			continue
		}
		batch.record(c.processOne(services.WithSubmissionIndex(ctx, i), overlay, i, raw))
	}

	batch.FinishedAt = c.now().UTC()
	logger.Info("batch finished",
		logging.Int("submitted", batch.Totals.Submitted),
		logging.Int("succeeded", batch.Totals.Succeeded),
		logging.Int("failed", batch.Totals.Failed),
		logging.Int("needs_review", batch.Totals.NeedsReview),
		logging.Int("overlay_entries", overlay.Len()),
		logging.Duration("elapsed", batch.FinishedAt.Sub(batch.StartedAt)),
	)
	return batch
}

func cancelled(index int, err error) SubmissionResult {
	wrapped := services.Wrap(services.ErrCancelled, "ingest", "process", "batch cancelled before submission started", err)
	return SubmissionResult{
		Index:  index,
		Status: statusFailed,
		Reason: services.ReasonCode(wrapped),
		Error:  wrapped.Error(),
	}
}

// processOne validates, plans, and executes one submission. Once started, a
// submission runs to commit or rollback regardless of cancellation.
func (c *Coordinator) processOne(ctx context.Context, overlay *resolve.Overlay, index int, raw json.RawMessage) SubmissionResult {
	ctx = context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, c.logger)
	res := SubmissionResult{Index: index}

	sub, err := submission.Validate(raw)
	if err != nil {
		if verrs, ok := submission.AsValidationErrors(err); ok {
			res.FieldErrors = verrs
		}
		return c.fail(logger, res, err)
	}
	res.Description = sub.Describe()

	p, err := plan.Build(sub)
	if err != nil {
		return c.fail(logger, res, err)
	}

	for attempt := 0; ; attempt++ {
		res.Attempts = attempt + 1
		sess := overlay.Begin()
		run := &execution{
			coordinator: c,
			plan:        p,
			session:     sess,
			ids:         make(map[string]string, len(p.Steps)),
			primacy:     map[string][]bool{},
		}
		err = c.store.WithTx(ctx, func(tx *store.Tx) error {
			run.tx = tx
			run.source = resolutionSource(tx, attempt)
			return run.execute(ctx)
		})
		if err == nil {
			sess.Commit()
			res.Status = statusSucceeded
			res.Entities = run.entities
			res.Counters = run.counters
			logger.Info("submission committed",
				logging.String("submission", res.Description),
				logging.Int("entities", len(run.entities)),
				logging.Int("attempts", res.Attempts),
			)
			return res
		}
		sess.Discard()

		if errors.Is(err, store.ErrUniqueViolation) && attempt < c.retries {
			logger.Debug("uniqueness violation; re-resolving submission",
				logging.Int("attempt", res.Attempts),
				logging.Error(err),
			)
			continue
		}

		var review *reviewError
		if errors.As(err, &review) {
			res.Status = statusNeedsReview
			res.Reason = services.ReasonCode(err)
			res.Error = err.Error()
			res.Review = &Review{
				Step:       review.step,
				Kind:       review.kind,
				Name:       review.name,
				Candidates: review.candidates,
			}
			logger.Info("submission held for review",
				logging.String("submission", res.Description),
				logging.String("step", review.step),
				logging.Int("candidate_count", len(review.candidates)),
			)
			return res
		}
		return c.fail(logger, res, err)
	}
}

func (c *Coordinator) fail(logger *slog.Logger, res SubmissionResult, err error) SubmissionResult {
	res.Status = services.OutcomeFor(err)
	res.Reason = services.ReasonCode(err)
	res.Error = err.Error()
	attrs := []logging.Attr{
		logging.String("reason_code", res.Reason),
		logging.String("submission", res.Description),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintFor(res.Reason)),
	}
	if errors.Is(err, services.ErrStorage) {
		logging.ErrorWithContext(logger, "submission failed", "submission_storage_failed", attrs...)
		return res
	}
	logging.WarnWithContext(logger, "submission failed", "submission_failed", attrs...)
	return res
}

func hintFor(reason string) string {
	switch reason {
	case "validation_error":
		return "fix the listed fields and resubmit"
	case "missing_dependency":
		return "register the referenced manufacturer first or include it in the submission"
	case "resolution_conflict":
		return "check that model_reference matches a registered model with an integer year"
	case "uniqueness_violation":
		return "the serial number or natural key already belongs to a different entity"
	default:
		return "check the registry database and logs"
	}
}
