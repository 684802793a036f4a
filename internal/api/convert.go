package api

import (
	"time"

	"gtreg/internal/ingest"
	"gtreg/internal/registry"
	"gtreg/internal/store"
)

// FromBatchResult converts an ingestion result to its API representation.
func FromBatchResult(batch *ingest.BatchResult) BatchResponse {
	if batch == nil {
		return BatchResponse{Submissions: []Submission{}}
	}
	dto := BatchResponse{
		BatchID:    batch.BatchID,
		StartedAt:  formatTime(batch.StartedAt),
		FinishedAt: formatTime(batch.FinishedAt),
		Totals: Totals{
			Submitted:   batch.Totals.Submitted,
			Succeeded:   batch.Totals.Succeeded,
			Failed:      batch.Totals.Failed,
			NeedsReview: batch.Totals.NeedsReview,
		},
		Counters:    fromCounters(batch.Counters),
		Submissions: make([]Submission, 0, len(batch.Submissions)),
	}
	for _, res := range batch.Submissions {
		dto.Submissions = append(dto.Submissions, FromSubmissionResult(res))
	}
	return dto
}

// FromSubmissionResult converts one submission outcome.
func FromSubmissionResult(res ingest.SubmissionResult) Submission {
	dto := Submission{
		Index:       res.Index,
		Status:      res.Status,
		Reason:      res.Reason,
		Error:       res.Error,
		Description: res.Description,
		Attempts:    res.Attempts,
	}
	for _, fe := range res.FieldErrors {
		dto.FieldErrors = append(dto.FieldErrors, FieldError{Path: fe.Path, Message: fe.Message})
	}
	for _, e := range res.Entities {
		dto.Entities = append(dto.Entities, Entity{
			Step:       e.Step,
			EntityType: string(e.Kind),
			ID:         e.ID,
			Action:     string(e.Action),
			Score:      e.Score,
			Reason:     e.Reason,
		})
	}
	if r := res.Review; r != nil {
		review := &Review{
			Step:       r.Step,
			EntityType: string(r.Kind),
			Name:       r.Name,
			Candidates: make([]Candidate, 0, len(r.Candidates)),
		}
		for _, c := range r.Candidates {
			review.Candidates = append(review.Candidates, Candidate{
				ID:             c.ID,
				Name:           c.Name,
				Score:          c.Score,
				LastResolvedAt: formatTime(c.LastResolvedAt),
			})
		}
		dto.Review = review
	}
	return dto
}

func fromCounters(c ingest.Counters) Counters {
	return Counters{
		ManufacturersInserted:  c.ManufacturersInserted,
		ManufacturersUpdated:   c.ManufacturersUpdated,
		ProductLinesInserted:   c.ProductLinesInserted,
		ProductLinesMatched:    c.ProductLinesMatched,
		ModelsInserted:         c.ModelsInserted,
		ModelsUpdated:          c.ModelsUpdated,
		GuitarsInserted:        c.GuitarsInserted,
		GuitarsUpdated:         c.GuitarsUpdated,
		SpecificationsInserted: c.SpecificationsInserted,
		ImagesAttached:         c.ImagesAttached,
	}
}

// FromImage converts a stored image to its API representation.
func FromImage(img registry.Image) Image {
	return Image{
		ID:              img.ID,
		EntityType:      string(img.Owner.Kind),
		EntityID:        img.Owner.ID,
		ImageType:       img.ImageType,
		IsPrimary:       img.IsPrimary,
		DisplayOrder:    img.DisplayOrder,
		Caption:         deref(img.Caption),
		StorageProvider: img.Asset.StorageProvider,
		StorageKey:      img.Asset.StorageKey,
		OriginalURL:     deref(img.Asset.OriginalURL),
		ThumbnailURL:    deref(img.Asset.ThumbnailURL),
		MimeType:        deref(img.Asset.MimeType),
		Width:           img.Asset.Width,
		Height:          img.Asset.Height,
		FileSizeBytes:   img.Asset.FileSizeBytes,
		AspectRatio:     img.Asset.AspectRatio,
		IsDuplicate:     img.IsDuplicate,
		OriginalImageID: deref(img.OriginalImageID),
		DuplicateReason: deref(img.DuplicateReason),
		CreatedAt:       formatTime(img.CreatedAt),
	}
}

// FromImages converts a list of images, never returning nil.
func FromImages(list []registry.Image) ImageListResponse {
	items := make([]Image, 0, len(list))
	for _, img := range list {
		items = append(items, FromImage(img))
	}
	return ImageListResponse{Items: items}
}

// FromDatabaseHealth converts a store health probe.
func FromDatabaseHealth(h store.DatabaseHealth, err error) HealthResponse {
	dto := HealthResponse{
		Status:        "ok",
		Driver:        h.Driver,
		Path:          h.Path,
		SchemaVersion: h.SchemaVersion,
		Error:         h.Error,
	}
	if err != nil || !h.DatabaseReadable {
		dto.Status = "unavailable"
		if dto.Error == "" && err != nil {
			dto.Error = err.Error()
		}
	}
	return dto
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
