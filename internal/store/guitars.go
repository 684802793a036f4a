package store

import (
	"context"
	"database/sql"

	"gtreg/internal/registry"
	"gtreg/internal/textutil"
)

const guitarColumns = "id, model_id, serial_number, manufacturer_name_fallback, model_name_fallback, year_estimate, description, nickname, production_date, production_number, significance_level, significance_notes, current_estimated_value, last_valuation_date, condition_rating, modifications, provenance_notes, attestation_status, attestation_uid, created_by, created_at, updated_at, last_resolved_at"

func scanGuitar(scanner rowScanner) (*registry.Guitar, error) {
	var (
		g                registry.Guitar
		modelID          sql.NullString
		serial           sql.NullString
		fallbackMaker    sql.NullString
		fallbackModel    sql.NullString
		yearEstimate     sql.NullString
		description      sql.NullString
		nickname         sql.NullString
		productionDate   sql.NullString
		productionNumber sql.NullInt64
		significance     sql.NullString
		significanceNote sql.NullString
		value            sql.NullFloat64
		valuationDate    sql.NullString
		condition        sql.NullString
		modifications    sql.NullString
		provenanceNotes  sql.NullString
		attestation      sql.NullString
		attestationUID   sql.NullString
		createdBy        sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		resolvedRaw      sql.NullString
	)
	if err := scanner.Scan(
		&g.ID,
		&modelID,
		&serial,
		&fallbackMaker,
		&fallbackModel,
		&yearEstimate,
		&description,
		&nickname,
		&productionDate,
		&productionNumber,
		&significance,
		&significanceNote,
		&value,
		&valuationDate,
		&condition,
		&modifications,
		&provenanceNotes,
		&attestation,
		&attestationUID,
		&createdBy,
		&createdRaw,
		&updatedRaw,
		&resolvedRaw,
	); err != nil {
		return nil, err
	}
	g.ModelID = strPtr(modelID)
	g.SerialNumber = strPtr(serial)
	g.Fallback = registry.GuitarFallback{
		ManufacturerName: strPtr(fallbackMaker),
		ModelName:        strPtr(fallbackModel),
		YearEstimate:     strPtr(yearEstimate),
	}
	g.Description = strPtr(description)
	g.Nickname = strPtr(nickname)
	g.ProductionDate = strPtr(productionDate)
	g.ProductionNumber = intPtr(productionNumber)
	g.SignificanceLevel = typedPtr[registry.SignificanceLevel](significance)
	g.SignificanceNotes = strPtr(significanceNote)
	g.CurrentEstimatedValue = floatPtr(value)
	g.LastValuationDate = strPtr(valuationDate)
	g.ConditionRating = typedPtr[registry.ConditionRating](condition)
	g.Modifications = strPtr(modifications)
	g.ProvenanceNotes = strPtr(provenanceNotes)
	g.Attestation.Status = typedPtr[registry.AttestationStatus](attestation)
	g.Attestation.UID = strPtr(attestationUID)
	g.CreatedBy = createdBy.String
	g.CreatedAt = parseTime(createdRaw)
	g.UpdatedAt = parseTime(updatedRaw)
	g.LastResolvedAt = parseTime(resolvedRaw)
	return &g, nil
}

// FindGuitarBySerial returns the guitar whose folded serial number equals key.
func (t *Tx) FindGuitarBySerial(ctx context.Context, key string) (*registry.Guitar, error) {
	row := t.queryRow(ctx, "SELECT "+guitarColumns+" FROM individual_guitars WHERE serial_key = ?", key)
	return scanOne("find guitar", row, scanGuitar)
}

// GetGuitar loads an individual guitar by id.
func (t *Tx) GetGuitar(ctx context.Context, id string) (*registry.Guitar, error) {
	row := t.queryRow(ctx, "SELECT "+guitarColumns+" FROM individual_guitars WHERE id = ?", id)
	return scanOne("get guitar", row, scanGuitar)
}

func serialKey(serial *string) any {
	if serial == nil {
		return nil
	}
	return textutil.FoldKey(*serial)
}

// InsertGuitar stores a new individual guitar. Significance defaults to
// notable.
func (t *Tx) InsertGuitar(ctx context.Context, g *registry.Guitar) error {
	g.ID = newID()
	if g.SignificanceLevel == nil {
		level := registry.SignificanceNotable
		g.SignificanceLevel = &level
	}
	g.Attestation = registry.Attestation{}
	g.CreatedAt, g.UpdatedAt, g.LastResolvedAt = t.now, t.now, t.now
	now := formatTime(t.now)
	_, err := t.exec(ctx, "insert guitar",
		`INSERT INTO individual_guitars (`+guitarColumns+`, serial_key) VALUES (`+makePlaceholders(24)+`)`,
		g.ID,
		nullable(g.ModelID),
		nullable(g.SerialNumber),
		nullable(g.Fallback.ManufacturerName),
		nullable(g.Fallback.ModelName),
		nullable(g.Fallback.YearEstimate),
		nullable(g.Description),
		nullable(g.Nickname),
		nullable(g.ProductionDate),
		nullable(g.ProductionNumber),
		nullableText(g.SignificanceLevel),
		nullable(g.SignificanceNotes),
		nullable(g.CurrentEstimatedValue),
		nullable(g.LastValuationDate),
		nullableText(g.ConditionRating),
		nullable(g.Modifications),
		nullable(g.ProvenanceNotes),
		nil,
		nil,
		g.CreatedBy,
		now,
		now,
		now,
		serialKey(g.SerialNumber),
	)
	return err
}

// UpdateGuitar writes the mutable attributes of g and marks it resolved.
// Serial number, model link, and attestation columns are never written.
func (t *Tx) UpdateGuitar(ctx context.Context, g *registry.Guitar) error {
	g.UpdatedAt, g.LastResolvedAt = t.now, t.now
	now := formatTime(t.now)
	_, err := t.exec(ctx, "update guitar",
		`UPDATE individual_guitars SET manufacturer_name_fallback = ?, model_name_fallback = ?,
			year_estimate = ?, description = ?, nickname = ?, production_date = ?,
			production_number = ?, significance_level = ?, significance_notes = ?,
			current_estimated_value = ?, last_valuation_date = ?, condition_rating = ?,
			modifications = ?, provenance_notes = ?, updated_at = ?, last_resolved_at = ?
		WHERE id = ?`,
		nullable(g.Fallback.ManufacturerName),
		nullable(g.Fallback.ModelName),
		nullable(g.Fallback.YearEstimate),
		nullable(g.Description),
		nullable(g.Nickname),
		nullable(g.ProductionDate),
		nullable(g.ProductionNumber),
		textOr(g.SignificanceLevel, registry.SignificanceNotable),
		nullable(g.SignificanceNotes),
		nullable(g.CurrentEstimatedValue),
		nullable(g.LastValuationDate),
		nullableText(g.ConditionRating),
		nullable(g.Modifications),
		nullable(g.ProvenanceNotes),
		now,
		now,
		g.ID,
	)
	return err
}
