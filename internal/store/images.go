package store

import (
	"context"
	"database/sql"
	"fmt"

	"gtreg/internal/registry"
)

const imageColumns = "id, entity_type, entity_id, image_type, is_primary, display_order, caption, storage_provider, storage_key, original_url, thumbnail_url, small_url, medium_url, large_url, xlarge_url, original_filename, mime_type, file_size_bytes, width, height, aspect_ratio, dominant_color, is_duplicate, original_image_id, duplicate_reason, created_at"

func scanImage(scanner rowScanner) (*registry.Image, error) {
	var (
		img          registry.Image
		entityType   string
		isPrimary    int64
		caption      sql.NullString
		originalURL  sql.NullString
		thumbnailURL sql.NullString
		smallURL     sql.NullString
		mediumURL    sql.NullString
		largeURL     sql.NullString
		xlargeURL    sql.NullString
		filename     sql.NullString
		mimeType     sql.NullString
		fileSize     sql.NullInt64
		width        sql.NullInt64
		height       sql.NullInt64
		aspect       sql.NullFloat64
		color        sql.NullString
		isDuplicate  int64
		originalID   sql.NullString
		reason       sql.NullString
		createdRaw   sql.NullString
	)
	if err := scanner.Scan(
		&img.ID,
		&entityType,
		&img.Owner.ID,
		&img.ImageType,
		&isPrimary,
		&img.DisplayOrder,
		&caption,
		&img.Asset.StorageProvider,
		&img.Asset.StorageKey,
		&originalURL,
		&thumbnailURL,
		&smallURL,
		&mediumURL,
		&largeURL,
		&xlargeURL,
		&filename,
		&mimeType,
		&fileSize,
		&width,
		&height,
		&aspect,
		&color,
		&isDuplicate,
		&originalID,
		&reason,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	img.Owner.Kind = registry.EntityKind(entityType)
	img.IsPrimary = isPrimary != 0
	img.Caption = strPtr(caption)
	img.Asset.OriginalURL = strPtr(originalURL)
	img.Asset.ThumbnailURL = strPtr(thumbnailURL)
	img.Asset.SmallURL = strPtr(smallURL)
	img.Asset.MediumURL = strPtr(mediumURL)
	img.Asset.LargeURL = strPtr(largeURL)
	img.Asset.XLargeURL = strPtr(xlargeURL)
	img.Asset.OriginalFilename = strPtr(filename)
	img.Asset.MimeType = strPtr(mimeType)
	img.Asset.FileSizeBytes = int64Ptr(fileSize)
	img.Asset.Width = intPtr(width)
	img.Asset.Height = intPtr(height)
	img.Asset.AspectRatio = floatPtr(aspect)
	img.Asset.DominantColor = strPtr(color)
	img.IsDuplicate = isDuplicate != 0
	img.OriginalImageID = strPtr(originalID)
	img.DuplicateReason = strPtr(reason)
	img.CreatedAt = parseTime(createdRaw)
	return &img, nil
}

// GetImage loads an image row by id.
func (t *Tx) GetImage(ctx context.Context, id string) (*registry.Image, error) {
	row := t.queryRow(ctx, "SELECT "+imageColumns+" FROM images WHERE id = ?", id)
	return scanOne("get image", row, scanImage)
}

// FindOriginalByStorageKey returns the originating (non-duplicate) row of an
// asset, if any.
func (t *Tx) FindOriginalByStorageKey(ctx context.Context, storageKey string) (*registry.Image, error) {
	row := t.queryRow(ctx,
		"SELECT "+imageColumns+" FROM images WHERE storage_key = ? AND is_duplicate = 0 ORDER BY created_at, id LIMIT 1",
		storageKey)
	return scanOne("find image by storage key", row, scanImage)
}

// FindOwnedImage returns the row associating storageKey with owner, if any.
func (t *Tx) FindOwnedImage(ctx context.Context, owner registry.EntityRef, storageKey string) (*registry.Image, error) {
	row := t.queryRow(ctx,
		"SELECT "+imageColumns+" FROM images WHERE entity_type = ? AND entity_id = ? AND storage_key = ? LIMIT 1",
		string(owner.Kind), owner.ID, storageKey)
	return scanOne("find owned image", row, scanImage)
}

// NextDisplayOrder returns one past the highest display order of owner's
// images, or zero when it has none.
func (t *Tx) NextDisplayOrder(ctx context.Context, owner registry.EntityRef) (int, error) {
	var next int
	err := t.queryRow(ctx,
		"SELECT COALESCE(MAX(display_order) + 1, 0) FROM images WHERE entity_type = ? AND entity_id = ?",
		string(owner.Kind), owner.ID).Scan(&next)
	if err != nil {
		return 0, classify("next display order", err)
	}
	return next, nil
}

// HasPrimary reports whether owner already has a primary image.
func (t *Tx) HasPrimary(ctx context.Context, owner registry.EntityRef) (bool, error) {
	var count int
	err := t.queryRow(ctx,
		"SELECT COUNT(1) FROM images WHERE entity_type = ? AND entity_id = ? AND is_primary = 1",
		string(owner.Kind), owner.ID).Scan(&count)
	if err != nil {
		return false, classify("count primary images", err)
	}
	return count > 0, nil
}

// DemotePrimary clears the primary flag on owner's images and returns the
// number of rows changed.
func (t *Tx) DemotePrimary(ctx context.Context, owner registry.EntityRef) (int64, error) {
	res, err := t.exec(ctx, "demote primary image",
		"UPDATE images SET is_primary = 0 WHERE entity_type = ? AND entity_id = ? AND is_primary = 1",
		string(owner.Kind), owner.ID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify("demote primary image", err)
	}
	return n, nil
}

// InsertImage stores an image row, assigning its id. Image type defaults to
// gallery and storage provider to cloudinary.
func (t *Tx) InsertImage(ctx context.Context, img *registry.Image) error {
	if !img.Owner.Kind.CanOwnImages() {
		return fmt.Errorf("insert image: entity type %q cannot own images", img.Owner.Kind)
	}
	img.ID = newID()
	if img.ImageType == "" {
		img.ImageType = registry.DefaultImageType
	}
	if img.Asset.StorageProvider == "" {
		img.Asset.StorageProvider = registry.DefaultStorageProvider
	}
	img.CreatedAt = t.now
	a := img.Asset
	_, err := t.exec(ctx, "insert image",
		`INSERT INTO images (`+imageColumns+`) VALUES (`+makePlaceholders(26)+`)`,
		img.ID,
		string(img.Owner.Kind),
		img.Owner.ID,
		img.ImageType,
		boolToInt(img.IsPrimary),
		img.DisplayOrder,
		nullable(img.Caption),
		a.StorageProvider,
		a.StorageKey,
		nullable(a.OriginalURL),
		nullable(a.ThumbnailURL),
		nullable(a.SmallURL),
		nullable(a.MediumURL),
		nullable(a.LargeURL),
		nullable(a.XLargeURL),
		nullable(a.OriginalFilename),
		nullable(a.MimeType),
		nullable(a.FileSizeBytes),
		nullable(a.Width),
		nullable(a.Height),
		nullable(a.AspectRatio),
		nullable(a.DominantColor),
		boolToInt(img.IsDuplicate),
		nullable(img.OriginalImageID),
		nullable(img.DuplicateReason),
		formatTime(t.now),
	)
	return err
}

const listImagesQuery = "SELECT " + imageColumns + " FROM images WHERE entity_type = ? AND entity_id = ? ORDER BY display_order, created_at, id"

// ListImages returns owner's images ordered by display order.
func (t *Tx) ListImages(ctx context.Context, owner registry.EntityRef) ([]registry.Image, error) {
	rows, err := t.query(ctx, "list images", listImagesQuery, string(owner.Kind), owner.ID)
	if err != nil {
		return nil, err
	}
	return scanAll("list images", rows, scanImage)
}

var entityTables = map[registry.EntityKind]string{
	registry.KindManufacturer: "manufacturers",
	registry.KindProductLine:  "product_lines",
	registry.KindModel:        "models",
	registry.KindGuitar:       "individual_guitars",
}

// EntityExists reports whether ref names a stored entity.
func (t *Tx) EntityExists(ctx context.Context, ref registry.EntityRef) (bool, error) {
	table, ok := entityTables[ref.Kind]
	if !ok {
		return false, fmt.Errorf("unknown entity type %q", ref.Kind)
	}
	var count int
	if err := t.queryRow(ctx, "SELECT COUNT(1) FROM "+table+" WHERE id = ?", ref.ID).Scan(&count); err != nil {
		return false, classify("check entity", err)
	}
	return count > 0, nil
}

// ListImages returns owner's images ordered by display order.
func (s *Store) ListImages(ctx context.Context, owner registry.EntityRef) ([]registry.Image, error) {
	rows, err := s.query(ctx, listImagesQuery, string(owner.Kind), owner.ID)
	if err != nil {
		return nil, classify("list images", err)
	}
	return scanAll("list images", rows, scanImage)
}
