package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gtreg/internal/registry"
	"gtreg/internal/services"
)

const (
	minModelYear = 1900
	maxModelYear = 2030
)

// Split breaks an ingestion document into its submissions. The document is
// either a single submission object or an array of them, kept in order.
func Split(data []byte) ([]json.RawMessage, error) {
	switch kindOf(data) {
	case '{':
		return []json.RawMessage{json.RawMessage(bytes.TrimSpace(data))}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, services.Wrap(services.ErrValidation, "validator", "split", "malformed submission array", err)
		}
		return items, nil
	case 0:
		return nil, services.Wrap(services.ErrValidation, "validator", "split", "empty document", nil)
	default:
		return nil, services.Wrap(services.ErrValidation, "validator", "split", "document must be a submission object or an array of submissions", nil)
	}
}

// Validate checks one submission object and returns its typed form. On failure
// the returned error is a ValidationErrors listing every problem.
func Validate(raw json.RawMessage) (*Submission, error) {
	var errs ValidationErrors
	root, ok := decodeObject(raw, "", &errs)
	if !ok {
		return nil, errs
	}

	sub := &Submission{}
	if item, ok := root.take("manufacturer"); ok {
		sub.Manufacturer = parseManufacturer(item, "manufacturer", &errs)
	}
	if item, ok := root.take("model"); ok {
		sub.Model = parseModel(item, "model", &errs)
	}
	if item, ok := root.take("individual_guitar"); ok {
		sub.Guitar = parseGuitar(item, "individual_guitar", &errs)
	}
	root.finish()

	if len(errs) == 0 && sub.Manufacturer == nil && sub.Model == nil && sub.Guitar == nil {
		errs.add("", "submission must contain at least one of manufacturer, model, individual_guitar")
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return sub, nil
}

// AsValidationErrors extracts the field failures carried by err, if any.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func parseManufacturer(raw json.RawMessage, path string, errs *ValidationErrors) *Manufacturer {
	o, ok := decodeObject(raw, path, errs)
	if !ok {
		return nil
	}
	m := &Manufacturer{Name: o.requiredStr("name", 100)}
	m.DisplayName = o.str("display_name", false, 0, 50)
	m.Country = o.str("country", false, 0, 50)
	m.FoundedYear = o.intRange("founded_year", 1800, maxModelYear)
	m.Website = o.uri("website", 255)
	m.Status = typed[registry.ManufacturerStatus](o.enum("status", registry.ManufacturerStatuses))
	m.Notes = o.str("notes", false, 0, 0)
	m.LogoSource = o.str("logo_source", false, 0, 500)
	o.finish()
	return m
}

func parseModel(raw json.RawMessage, path string, errs *ValidationErrors) *Model {
	o, ok := decodeObject(raw, path, errs)
	if !ok {
		return nil
	}
	m := &Model{
		ManufacturerName: o.requiredStr("manufacturer_name", 100),
		ProductLineName:  o.str("product_line_name", false, 1, 100),
		Name:             o.requiredStr("name", 150),
	}
	if !o.present("year") {
		o.take("year")
		o.fail("year", "is required")
	} else if y := o.intRange("year", minModelYear, maxModelYear); y != nil {
		m.Year = *y
	}
	m.ProductionType = typed[registry.ProductionType](o.enum("production_type", registry.ProductionTypes))
	m.ProductionStartDate = o.date("production_start_date")
	m.ProductionEndDate = o.date("production_end_date")
	if m.ProductionStartDate != nil && m.ProductionEndDate != nil && *m.ProductionEndDate < *m.ProductionStartDate {
		o.fail("production_end_date", "must not be before production_start_date")
	}
	m.EstimatedProductionQuantity = o.intRange("estimated_production_quantity", 1, math.MaxInt32)
	m.MSRPOriginal = o.floatRange("msrp_original", 0, math.Inf(1))
	m.Currency = o.str("currency", false, 1, 3)
	m.Description = o.str("description", false, 0, 0)

	if specRaw, ok := o.take("specifications"); ok {
		switch kindOf(specRaw) {
		case '{':
			if spec := parseSpec(specRaw, o.at("specifications"), errs); spec != nil {
				m.Specifications = append(m.Specifications, *spec)
			}
		case '[':
			var items []json.RawMessage
			if err := json.Unmarshal(specRaw, &items); err != nil {
				o.fail("specifications", "malformed array")
			} else if len(items) == 0 {
				o.fail("specifications", "must not be an empty array")
			} else {
				for i, item := range items {
					if spec := parseSpec(item, indexPath(o.at("specifications"), i), errs); spec != nil {
						m.Specifications = append(m.Specifications, *spec)
					}
				}
			}
		default:
			o.fail("specifications", "must be an object or a non-empty array")
		}
	}
	m.Photos = parsePhotos(o, errs)
	o.finish()
	return m
}

func parseGuitar(raw json.RawMessage, path string, errs *ValidationErrors) *Guitar {
	o, ok := decodeObject(raw, path, errs)
	if !ok {
		return nil
	}
	g := &Guitar{}

	hasReference := o.present("model_reference")
	hasFallback := o.present("manufacturer_name_fallback") || o.present("model_name_fallback")
	switch {
	case hasReference && hasFallback:
		errs.add(path, "model_reference and fallback identification (manufacturer_name_fallback/model_name_fallback) are mutually exclusive")
	case !hasReference && !hasFallback:
		errs.add(path, "requires either model_reference or manufacturer_name_fallback")
	}

	if refRaw, ok := o.take("model_reference"); ok {
		g.Reference = parseReference(refRaw, o.at("model_reference"), errs)
	}
	fallback := registry.GuitarFallback{
		ManufacturerName: o.str("manufacturer_name_fallback", false, 1, 100),
		ModelName:        o.str("model_name_fallback", false, 1, 150),
		YearEstimate:     o.str("year_estimate", false, 0, 50),
	}
	g.Description = o.str("description", false, 0, 0)
	if hasFallback && !hasReference {
		if fallback.ManufacturerName == nil && !o.present("manufacturer_name_fallback") {
			o.fail("manufacturer_name_fallback", "is required in fallback identification")
		}
		if fallback.ModelName == nil && g.Description == nil {
			errs.add(path, "fallback identification requires model_name_fallback or description")
		}
		g.Fallback = &fallback
	} else if fallback.YearEstimate != nil {
		g.Fallback = &registry.GuitarFallback{YearEstimate: fallback.YearEstimate}
	}

	g.SerialNumber = o.str("serial_number", false, 0, 50)
	g.Nickname = o.str("nickname", false, 0, 50)
	g.ProductionDate = o.date("production_date")
	g.ProductionNumber = o.intRange("production_number", 1, math.MaxInt32)
	g.SignificanceLevel = typed[registry.SignificanceLevel](o.enum("significance_level", registry.SignificanceLevels))
	g.SignificanceNotes = o.str("significance_notes", false, 0, 0)
	g.CurrentEstimatedValue = o.floatRange("current_estimated_value", 0, math.Inf(1))
	g.LastValuationDate = o.date("last_valuation_date")
	g.ConditionRating = typed[registry.ConditionRating](o.enum("condition_rating", registry.ConditionRatings))
	g.Modifications = o.str("modifications", false, 0, 0)
	g.ProvenanceNotes = o.str("provenance_notes", false, 0, 0)
	if specRaw, ok := o.take("specifications"); ok {
		g.Specifications = parseSpec(specRaw, o.at("specifications"), errs)
	}
	g.Photos = parsePhotos(o, errs)
	o.finish()
	return g
}

func parseReference(raw json.RawMessage, path string, errs *ValidationErrors) *ModelReference {
	o, ok := decodeObject(raw, path, errs)
	if !ok {
		return nil
	}
	ref := &ModelReference{
		ManufacturerName: o.requiredStr("manufacturer_name", 100),
		ModelName:        o.requiredStr("model_name", 150),
	}
	yearRaw, ok := o.take("year")
	switch {
	case !ok:
		o.fail("year", "is required")
	case kindOf(yearRaw) == '"':
		// Kept as a literal: a string year is never equal to an integer model year.
		var literal string
		_ = json.Unmarshal(yearRaw, &literal)
		if literal == "" {
			o.fail("year", "must not be empty")
		}
		ref.Year = LiteralYear(literal)
	case kindOf(yearRaw) == '0':
		v, err := json.Number(bytes.TrimSpace(yearRaw)).Int64()
		if err != nil {
			o.fail("year", "must be an integer")
		} else if v < minModelYear || v > maxModelYear {
			o.fail("year", "must be between %d and %d", minModelYear, maxModelYear)
		} else {
			ref.Year = IntYear(int(v))
		}
	default:
		o.fail("year", "must be an integer or a string")
	}
	o.finish()
	return ref
}

func parseSpec(raw json.RawMessage, path string, errs *ValidationErrors) *registry.SpecAttrs {
	o, ok := decodeObject(raw, path, errs)
	if !ok {
		return nil
	}
	s := &registry.SpecAttrs{
		BodyWood:               o.str("body_wood", false, 0, 50),
		NeckWood:               o.str("neck_wood", false, 0, 50),
		FingerboardWood:        o.str("fingerboard_wood", false, 0, 50),
		ScaleLengthInches:      o.floatRange("scale_length_inches", 20, 30),
		NumFrets:               o.intRange("num_frets", 12, 36),
		NutWidthInches:         o.floatRange("nut_width_inches", 1.0, 2.5),
		NeckProfile:            o.str("neck_profile", false, 0, 50),
		BridgeType:             o.str("bridge_type", false, 0, 50),
		PickupConfiguration:    o.str("pickup_configuration", false, 0, 150),
		ElectronicsDescription: o.str("electronics_description", false, 0, 0),
		HardwareFinish:         o.str("hardware_finish", false, 0, 50),
		BodyFinish:             o.str("body_finish", false, 0, 0),
		WeightLbs:              o.floatRange("weight_lbs", 1, 20),
		CaseIncluded:           o.boolean("case_included"),
		CaseType:               o.str("case_type", false, 0, 50),
	}
	o.finish()
	return s
}

func parsePhotos(parent *object, errs *ValidationErrors) []Photo {
	items, ok := parent.array("photos")
	if !ok {
		return nil
	}
	photos := make([]Photo, 0, len(items))
	for i, item := range items {
		o, ok := decodeObject(item, indexPath(parent.at("photos"), i), errs)
		if !ok {
			continue
		}
		p := Photo{}
		p.StorageKey = o.requiredStr("storage_key", 500)
		if provider := o.str("storage_provider", false, 0, 50); provider != nil {
			p.StorageProvider = *provider
		}
		p.OriginalURL = o.uri("original_url", 0)
		p.ThumbnailURL = o.uri("thumbnail_url", 0)
		p.SmallURL = o.uri("small_url", 0)
		p.MediumURL = o.uri("medium_url", 0)
		p.LargeURL = o.uri("large_url", 0)
		p.XLargeURL = o.uri("xlarge_url", 0)
		p.OriginalFilename = o.str("original_filename", false, 0, 255)
		if mime := o.str("mime_type", false, 0, 100); mime != nil {
			if !bytes.HasPrefix([]byte(*mime), []byte("image/")) {
				o.fail("mime_type", "must be an image/* type")
			} else {
				p.MimeType = mime
			}
		}
		p.FileSizeBytes = o.int64Range("file_size_bytes", 0, math.MaxInt64)
		p.Width = o.intRange("width", 1, math.MaxInt32)
		p.Height = o.intRange("height", 1, math.MaxInt32)
		p.AspectRatio = o.floatRange("aspect_ratio", math.SmallestNonzeroFloat64, math.Inf(1))
		p.DominantColor = o.str("dominant_color", false, 0, 20)
		if imageType := o.str("image_type", false, 0, 50); imageType != nil {
			p.ImageType = *imageType
		}
		p.Caption = o.str("caption", false, 0, 0)
		if primary := o.boolean("is_primary"); primary != nil {
			p.IsPrimary = *primary
		}
		o.finish()
		photos = append(photos, p)
	}
	return photos
}

// Describe renders a short human label for a submission, used in logs.
func (s *Submission) Describe() string {
	switch {
	case s == nil:
		return "<nil>"
	case s.Guitar != nil && s.Guitar.Reference != nil:
		r := s.Guitar.Reference
		return fmt.Sprintf("guitar %s %s %s", r.ManufacturerName, r.ModelName, r.Year)
	case s.Guitar != nil && s.Guitar.SerialNumber != nil:
		return "guitar serial " + *s.Guitar.SerialNumber
	case s.Model != nil:
		return fmt.Sprintf("model %s %s %d", s.Model.ManufacturerName, s.Model.Name, s.Model.Year)
	case s.Manufacturer != nil:
		return "manufacturer " + s.Manufacturer.Name
	default:
		return "guitar"
	}
}
