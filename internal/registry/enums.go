package registry

import "slices"

// EntityKind names the kinds of entities the registry stores.
type EntityKind string

const (
	KindManufacturer  EntityKind = "manufacturer"
	KindProductLine   EntityKind = "product_line"
	KindModel         EntityKind = "model"
	KindGuitar        EntityKind = "individual_guitar"
	KindSpecification EntityKind = "specification"
	KindImage         EntityKind = "image"
)

// ImageOwnerKinds lists the entity kinds an image may be associated with.
var ImageOwnerKinds = []EntityKind{KindManufacturer, KindProductLine, KindModel, KindGuitar}

// CanOwnImages reports whether images may be attached to entities of kind k.
func (k EntityKind) CanOwnImages() bool {
	return slices.Contains(ImageOwnerKinds, k)
}

// ManufacturerStatus is the business status of a manufacturer.
type ManufacturerStatus string

const (
	StatusActive   ManufacturerStatus = "active"
	StatusDefunct  ManufacturerStatus = "defunct"
	StatusAcquired ManufacturerStatus = "acquired"
)

var ManufacturerStatuses = []string{"active", "defunct", "acquired"}

// ProductionType classifies how a model was produced.
type ProductionType string

const ProductionMass ProductionType = "mass"

var ProductionTypes = []string{"mass", "limited", "custom", "prototype", "one-off"}

// SignificanceLevel grades an individual instrument's importance.
type SignificanceLevel string

const SignificanceNotable SignificanceLevel = "notable"

var SignificanceLevels = []string{"historic", "notable", "rare", "custom"}

// ConditionRating grades an instrument's physical condition.
type ConditionRating string

var ConditionRatings = []string{"mint", "excellent", "very_good", "good", "fair", "poor", "relic"}

// AttestationStatus is owned by the attestation subsystem. Ingestion reads it
// but never writes it.
type AttestationStatus string

const (
	AttestationPending  AttestationStatus = "pending"
	AttestationOfficial AttestationStatus = "official"
	AttestationRevoked  AttestationStatus = "revoked"
)

// DefaultCurrency applies when a model omits currency.
const DefaultCurrency = "USD"

// DefaultImageType applies when a photo omits image_type.
const DefaultImageType = "gallery"

// DefaultStorageProvider applies when a photo omits storage_provider.
const DefaultStorageProvider = "cloudinary"
