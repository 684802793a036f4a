package store

import (
	"context"
	"database/sql"

	"gtreg/internal/registry"
	"gtreg/internal/textutil"
)

const productLineColumns = "id, manufacturer_id, name, created_by, created_at, updated_at, last_resolved_at"

func scanProductLine(scanner rowScanner) (*registry.ProductLine, error) {
	var (
		pl          registry.ProductLine
		createdBy   sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
		resolvedRaw sql.NullString
	)
	if err := scanner.Scan(&pl.ID, &pl.ManufacturerID, &pl.Name, &createdBy, &createdRaw, &updatedRaw, &resolvedRaw); err != nil {
		return nil, err
	}
	pl.CreatedBy = createdBy.String
	pl.CreatedAt = parseTime(createdRaw)
	pl.UpdatedAt = parseTime(updatedRaw)
	pl.LastResolvedAt = parseTime(resolvedRaw)
	return &pl, nil
}

// FindProductLine returns the product line of manufacturerID whose folded
// name equals key.
func (t *Tx) FindProductLine(ctx context.Context, manufacturerID, key string) (*registry.ProductLine, error) {
	row := t.queryRow(ctx, "SELECT "+productLineColumns+" FROM product_lines WHERE manufacturer_id = ? AND name_key = ?", manufacturerID, key)
	return scanOne("find product line", row, scanProductLine)
}

// ListProductLines returns the product lines of one manufacturer.
func (t *Tx) ListProductLines(ctx context.Context, manufacturerID string) ([]registry.ProductLine, error) {
	rows, err := t.query(ctx, "list product lines", "SELECT "+productLineColumns+" FROM product_lines WHERE manufacturer_id = ? ORDER BY id", manufacturerID)
	if err != nil {
		return nil, err
	}
	return scanAll("list product lines", rows, scanProductLine)
}

// InsertProductLine stores a new product line under its manufacturer.
func (t *Tx) InsertProductLine(ctx context.Context, pl *registry.ProductLine) error {
	pl.ID = newID()
	pl.CreatedAt, pl.UpdatedAt, pl.LastResolvedAt = t.now, t.now, t.now
	now := formatTime(t.now)
	_, err := t.exec(ctx, "insert product line",
		`INSERT INTO product_lines (`+productLineColumns+`, name_key) VALUES (`+makePlaceholders(8)+`)`,
		pl.ID, pl.ManufacturerID, pl.Name, pl.CreatedBy, now, now, now, textutil.FoldKey(pl.Name),
	)
	return err
}

func (t *Tx) TouchProductLine(ctx context.Context, id string) error {
	return t.touchResolved(ctx, "product_lines", id)
}

const modelColumns = "id, manufacturer_id, product_line_id, name, year, production_type, production_start_date, production_end_date, estimated_production_quantity, msrp_original, currency, description, attestation_status, attestation_uid, created_by, created_at, updated_at, last_resolved_at"

func scanModel(scanner rowScanner) (*registry.Model, error) {
	var (
		m              registry.Model
		productLineID  sql.NullString
		productionType sql.NullString
		startDate      sql.NullString
		endDate        sql.NullString
		quantity       sql.NullInt64
		msrp           sql.NullFloat64
		currency       sql.NullString
		description    sql.NullString
		attestation    sql.NullString
		attestationUID sql.NullString
		createdBy      sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
		resolvedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&m.ID,
		&m.ManufacturerID,
		&productLineID,
		&m.Name,
		&m.Year,
		&productionType,
		&startDate,
		&endDate,
		&quantity,
		&msrp,
		&currency,
		&description,
		&attestation,
		&attestationUID,
		&createdBy,
		&createdRaw,
		&updatedRaw,
		&resolvedRaw,
	); err != nil {
		return nil, err
	}
	m.ProductLineID = strPtr(productLineID)
	m.ProductionType = typedPtr[registry.ProductionType](productionType)
	m.ProductionStartDate = strPtr(startDate)
	m.ProductionEndDate = strPtr(endDate)
	m.EstimatedProductionQuantity = intPtr(quantity)
	m.MSRPOriginal = floatPtr(msrp)
	m.Currency = strPtr(currency)
	m.Description = strPtr(description)
	m.Attestation.Status = typedPtr[registry.AttestationStatus](attestation)
	m.Attestation.UID = strPtr(attestationUID)
	m.CreatedBy = createdBy.String
	m.CreatedAt = parseTime(createdRaw)
	m.UpdatedAt = parseTime(updatedRaw)
	m.LastResolvedAt = parseTime(resolvedRaw)
	return &m, nil
}

// FindModel returns the model matching the natural key exactly.
func (t *Tx) FindModel(ctx context.Context, manufacturerID, key string, year int) (*registry.Model, error) {
	row := t.queryRow(ctx, "SELECT "+modelColumns+" FROM models WHERE manufacturer_id = ? AND name_key = ? AND year = ?", manufacturerID, key, year)
	return scanOne("find model", row, scanModel)
}

// GetModel loads a model by id.
func (t *Tx) GetModel(ctx context.Context, id string) (*registry.Model, error) {
	row := t.queryRow(ctx, "SELECT "+modelColumns+" FROM models WHERE id = ?", id)
	return scanOne("get model", row, scanModel)
}

// ListModels returns the models of one manufacturer and year.
func (t *Tx) ListModels(ctx context.Context, manufacturerID string, year int) ([]registry.Model, error) {
	rows, err := t.query(ctx, "list models", "SELECT "+modelColumns+" FROM models WHERE manufacturer_id = ? AND year = ? ORDER BY id", manufacturerID, year)
	if err != nil {
		return nil, err
	}
	return scanAll("list models", rows, scanModel)
}

// InsertModel stores a new model. Production type defaults to mass and
// currency to USD. Attestation columns start empty.
func (t *Tx) InsertModel(ctx context.Context, m *registry.Model) error {
	m.ID = newID()
	if m.ProductionType == nil {
		pt := registry.ProductionMass
		m.ProductionType = &pt
	}
	if m.Currency == nil {
		currency := registry.DefaultCurrency
		m.Currency = &currency
	}
	m.Attestation = registry.Attestation{}
	m.CreatedAt, m.UpdatedAt, m.LastResolvedAt = t.now, t.now, t.now
	now := formatTime(t.now)
	_, err := t.exec(ctx, "insert model",
		`INSERT INTO models (`+modelColumns+`, name_key) VALUES (`+makePlaceholders(19)+`)`,
		m.ID,
		m.ManufacturerID,
		nullable(m.ProductLineID),
		m.Name,
		m.Year,
		nullableText(m.ProductionType),
		nullable(m.ProductionStartDate),
		nullable(m.ProductionEndDate),
		nullable(m.EstimatedProductionQuantity),
		nullable(m.MSRPOriginal),
		nullable(m.Currency),
		nullable(m.Description),
		nil,
		nil,
		m.CreatedBy,
		now,
		now,
		now,
		textutil.FoldKey(m.Name),
	)
	return err
}

// UpdateModel writes the mutable attributes of m and marks it resolved.
// Identity and attestation columns are never written.
func (t *Tx) UpdateModel(ctx context.Context, m *registry.Model) error {
	m.UpdatedAt, m.LastResolvedAt = t.now, t.now
	now := formatTime(t.now)
	_, err := t.exec(ctx, "update model",
		`UPDATE models SET product_line_id = ?, production_type = ?, production_start_date = ?,
			production_end_date = ?, estimated_production_quantity = ?, msrp_original = ?,
			currency = ?, description = ?, updated_at = ?, last_resolved_at = ?
		WHERE id = ?`,
		nullable(m.ProductLineID),
		textOr(m.ProductionType, registry.ProductionMass),
		nullable(m.ProductionStartDate),
		nullable(m.ProductionEndDate),
		nullable(m.EstimatedProductionQuantity),
		nullable(m.MSRPOriginal),
		textOr(m.Currency, registry.DefaultCurrency),
		nullable(m.Description),
		now,
		now,
		m.ID,
	)
	return err
}

func (t *Tx) TouchModel(ctx context.Context, id string) error {
	return t.touchResolved(ctx, "models", id)
}
