package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// BatchResponse describes one ingestion run.
type BatchResponse struct {
	BatchID     string       `json:"batchId"`
	StartedAt   string       `json:"startedAt,omitempty"`
	FinishedAt  string       `json:"finishedAt,omitempty"`
	Totals      Totals       `json:"totals"`
	Counters    Counters     `json:"counters"`
	Submissions []Submission `json:"submissions"`
}

// Totals count submissions by outcome.
type Totals struct {
	Submitted   int `json:"submitted"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	NeedsReview int `json:"needsReview"`
}

// Counters tally the writes made by committed submissions.
type Counters struct {
	ManufacturersInserted  int `json:"manufacturersInserted"`
	ManufacturersUpdated   int `json:"manufacturersUpdated"`
	ProductLinesInserted   int `json:"productLinesInserted"`
	ProductLinesMatched    int `json:"productLinesMatched"`
	ModelsInserted         int `json:"modelsInserted"`
	ModelsUpdated          int `json:"modelsUpdated"`
	GuitarsInserted        int `json:"guitarsInserted"`
	GuitarsUpdated         int `json:"guitarsUpdated"`
	SpecificationsInserted int `json:"specificationsInserted"`
	ImagesAttached         int `json:"imagesAttached"`
}

// Submission is the outcome of one submission.
type Submission struct {
	Index       int          `json:"index"`
	Status      string       `json:"status"`
	Reason      string       `json:"reason,omitempty"`
	Error       string       `json:"error,omitempty"`
	Description string       `json:"description,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
	Entities    []Entity     `json:"entities,omitempty"`
	Review      *Review      `json:"review,omitempty"`
	Attempts    int          `json:"attempts,omitempty"`
}

// FieldError is one validation failure.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Entity is one entity a committed submission created, matched, or referenced.
type Entity struct {
	Step       string  `json:"step"`
	EntityType string  `json:"entityType"`
	ID         string  `json:"id"`
	Action     string  `json:"action"`
	Score      float64 `json:"score,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// Review names the entity that held a submission for manual adjudication.
type Review struct {
	Step       string      `json:"step"`
	EntityType string      `json:"entityType"`
	Name       string      `json:"name"`
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one stored entity scored against a proposal.
type Candidate struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Score          float64 `json:"score"`
	LastResolvedAt string  `json:"lastResolvedAt,omitempty"`
}

// Image describes one image association.
type Image struct {
	ID              string   `json:"id"`
	EntityType      string   `json:"entityType"`
	EntityID        string   `json:"entityId"`
	ImageType       string   `json:"imageType"`
	IsPrimary       bool     `json:"isPrimary"`
	DisplayOrder    int      `json:"displayOrder"`
	Caption         string   `json:"caption,omitempty"`
	StorageProvider string   `json:"storageProvider"`
	StorageKey      string   `json:"storageKey"`
	OriginalURL     string   `json:"originalUrl,omitempty"`
	ThumbnailURL    string   `json:"thumbnailUrl,omitempty"`
	MimeType        string   `json:"mimeType,omitempty"`
	Width           *int     `json:"width,omitempty"`
	Height          *int     `json:"height,omitempty"`
	FileSizeBytes   *int64   `json:"fileSizeBytes,omitempty"`
	AspectRatio     *float64 `json:"aspectRatio,omitempty"`
	IsDuplicate     bool     `json:"isDuplicate"`
	OriginalImageID string   `json:"originalImageId,omitempty"`
	DuplicateReason string   `json:"duplicateReason,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty"`
}

// ImageListResponse wraps the images of one entity.
type ImageListResponse struct {
	Items []Image `json:"items"`
}

// DuplicateRequest asks for an existing image asset to be associated with
// another entity.
type DuplicateRequest struct {
	EntityType string  `json:"entityType"`
	EntityID   string  `json:"entityId"`
	IsPrimary  bool    `json:"isPrimary"`
	Caption    *string `json:"caption,omitempty"`
	ImageType  string  `json:"imageType,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// DuplicateResponse returns the id of the new image row.
type DuplicateResponse struct {
	ImageID string `json:"imageId"`
}

// ErrorResponse is the body of every non-2xx HTTP response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// HealthResponse reports database reachability.
type HealthResponse struct {
	Status        string `json:"status"`
	Driver        string `json:"driver"`
	Path          string `json:"path,omitempty"`
	SchemaVersion int    `json:"schemaVersion,omitempty"`
	Error         string `json:"error,omitempty"`
}
