package images

import (
	"context"
	"errors"
	"log/slog"

	"gtreg/internal/logging"
	"gtreg/internal/registry"
	"gtreg/internal/services"
	"gtreg/internal/store"
)

// SharedAssetReason marks duplicates created because a submitted photo's
// storage key was already stored for another entity.
const SharedAssetReason = "shared asset"

// ManualReason is the duplicate reason used when none is supplied.
const ManualReason = "manual duplicate"

// Options control a duplicate registration. Zero values inherit from the
// source image.
type Options struct {
	IsPrimary bool
	Caption   *string
	ImageType string
	Reason    string
}

// Registrar registers duplicate image associations in their own transaction.
type Registrar struct {
	store   *store.Store
	logger  *slog.Logger
	retries int
}

// NewRegistrar builds a registrar. retries bounds how many times a
// registration that lost a unique-index race is re-attempted.
func NewRegistrar(st *store.Store, retries int, logger *slog.Logger) *Registrar {
	return &Registrar{
		store:   st,
		logger:  logging.NewComponentLogger(logger, "images"),
		retries: max(retries, 0),
	}
}

// RegisterDuplicate associates the asset of image sourceID with target and
// returns the new image id.
func (r *Registrar) RegisterDuplicate(ctx context.Context, sourceID string, target registry.EntityRef, opts Options) (string, error) {
	var created *registry.Image
	var err error
	for attempt := 0; attempt <= r.retries; attempt++ {
		err = r.store.WithTx(ctx, func(tx *store.Tx) error {
			img, dupErr := Duplicate(ctx, tx, sourceID, target, opts)
			created = img
			return dupErr
		})
		if !errors.Is(err, store.ErrUniqueViolation) {
			break
		}
		r.logger.Debug("duplicate registration lost a uniqueness race; retrying",
			logging.String("source_image_id", sourceID),
			logging.String("target", target.String()),
			logging.Int("attempt", attempt+1),
		)
	}
	if err != nil {
		logging.WarnWithContext(r.logger, "duplicate image registration failed", "image_duplicate_failed",
			logging.String("source_image_id", sourceID),
			logging.String("target", target.String()),
			logging.String("reason_code", services.ReasonCode(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the source image and target entity exist"),
			logging.String(logging.FieldImpact, "no image association was written"),
		)
		return "", err
	}

	attrs := logging.DecisionAttrs("image_association", "duplicated", reasonOr(opts.Reason, ManualReason))
	attrs = append(attrs,
		logging.String("image_id", created.ID),
		logging.String("source_image_id", sourceID),
		logging.String("target", target.String()),
		logging.Bool("is_primary", created.IsPrimary),
		logging.Int("display_order", created.DisplayOrder),
	)
	r.logger.Info("duplicate image registered", logging.Args(attrs...)...)
	return created.ID, nil
}

// List returns the images of owner ordered by display order.
func (r *Registrar) List(ctx context.Context, owner registry.EntityRef) ([]registry.Image, error) {
	if !owner.Kind.CanOwnImages() {
		return nil, services.Wrap(services.ErrValidation, "images", "list", "entity type "+string(owner.Kind)+" cannot own images", nil)
	}
	return r.store.ListImages(ctx, owner)
}

// Duplicate creates a duplicate row for target inside tx. The new row copies
// the source's asset fields, references the originating row, and takes the
// next display order of target.
func Duplicate(ctx context.Context, tx *store.Tx, sourceID string, target registry.EntityRef, opts Options) (*registry.Image, error) {
	if !target.Kind.CanOwnImages() {
		return nil, services.Wrap(services.ErrValidation, "images", "duplicate", "entity type "+string(target.Kind)+" cannot own images", nil)
	}
	source, err := tx.GetImage(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, services.Wrap(services.ErrNotFound, "images", "duplicate", "source image "+sourceID+" does not exist", nil)
	}
	if source.Owner == target {
		return nil, services.Wrap(services.ErrSelfReference, "images", "duplicate", "image "+sourceID+" already belongs to "+target.String(), nil)
	}
	exists, err := tx.EntityExists(ctx, target)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, services.Wrap(services.ErrNotFound, "images", "duplicate", "target "+target.String()+" does not exist", nil)
	}
	if held, err := tx.FindOwnedImage(ctx, target, source.Asset.StorageKey); err != nil {
		return nil, err
	} else if held != nil {
		return nil, services.Wrap(services.ErrUniquenessViolation, "images", "duplicate",
			"asset "+source.Asset.StorageKey+" is already associated with "+target.String(), nil)
	}

	originID := source.ID
	if source.IsDuplicate && source.OriginalImageID != nil {
		originID = *source.OriginalImageID
	}

	img := &registry.Image{
		Owner:           target,
		ImageType:       source.ImageType,
		IsPrimary:       opts.IsPrimary,
		Caption:         source.Caption,
		Asset:           source.Asset,
		IsDuplicate:     true,
		OriginalImageID: &originID,
	}
	if opts.ImageType != "" {
		img.ImageType = opts.ImageType
	}
	if opts.Caption != nil {
		img.Caption = opts.Caption
	}
	reason := reasonOr(opts.Reason, ManualReason)
	img.DuplicateReason = &reason

	if err := place(ctx, tx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// place assigns the next display order, demotes the current primary when img
// is primary, and inserts img.
func place(ctx context.Context, tx *store.Tx, img *registry.Image) error {
	order, err := tx.NextDisplayOrder(ctx, img.Owner)
	if err != nil {
		return err
	}
	img.DisplayOrder = order
	if img.IsPrimary {
		if _, err := tx.DemotePrimary(ctx, img.Owner); err != nil {
			return err
		}
	}
	return tx.InsertImage(ctx, img)
}

func reasonOr(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}
