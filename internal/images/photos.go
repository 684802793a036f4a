package images

import (
	"context"

	"gtreg/internal/registry"
	"gtreg/internal/store"
	"gtreg/internal/submission"
)

// Attachment is the result of attaching one submitted photo.
type Attachment struct {
	Image *registry.Image
	// Created is false when the owner already held the asset.
	Created bool
}

// Primacy decides which of one owner's submitted photos becomes primary: the
// first photo flagged is_primary, or else the first photo when the owner has
// no primary image yet.
func Primacy(photos []submission.Photo, ownerHasPrimary bool) []bool {
	flags := make([]bool, len(photos))
	for i, p := range photos {
		if p.IsPrimary {
			flags[i] = true
			return flags
		}
	}
	if len(photos) > 0 && !ownerHasPrimary {
		flags[0] = true
	}
	return flags
}

// AttachPhoto associates a submitted photo with owner inside tx. An asset the
// owner already holds is left as is. An asset stored for another entity is
// attached as a duplicate of its original row; otherwise a new original row
// is inserted.
func AttachPhoto(ctx context.Context, tx *store.Tx, owner registry.EntityRef, photo submission.Photo, primary bool) (Attachment, error) {
	held, err := tx.FindOwnedImage(ctx, owner, photo.StorageKey)
	if err != nil {
		return Attachment{}, err
	}
	if held != nil {
		return Attachment{Image: held}, nil
	}

	original, err := tx.FindOriginalByStorageKey(ctx, photo.StorageKey)
	if err != nil {
		return Attachment{}, err
	}
	if original != nil {
		img, err := Duplicate(ctx, tx, original.ID, owner, Options{
			IsPrimary: primary,
			Caption:   photo.Caption,
			ImageType: photo.ImageType,
			Reason:    SharedAssetReason,
		})
		if err != nil {
			return Attachment{}, err
		}
		return Attachment{Image: img, Created: true}, nil
	}

	img := &registry.Image{
		Owner:     owner,
		ImageType: photo.ImageType,
		IsPrimary: primary,
		Caption:   photo.Caption,
		Asset:     photo.ImageAsset,
	}
	if err := place(ctx, tx, img); err != nil {
		return Attachment{}, err
	}
	return Attachment{Image: img, Created: true}, nil
}
