package store

import (
	"context"
	"database/sql"

	"gtreg/internal/registry"
	"gtreg/internal/textutil"
)

const manufacturerColumns = "id, name, display_name, country, founded_year, website, status, notes, logo_source, created_by, created_at, updated_at, last_resolved_at"

func scanManufacturer(scanner rowScanner) (*registry.Manufacturer, error) {
	var (
		m           registry.Manufacturer
		displayName sql.NullString
		country     sql.NullString
		founded     sql.NullInt64
		website     sql.NullString
		status      sql.NullString
		notes       sql.NullString
		logoSource  sql.NullString
		createdBy   sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
		resolvedRaw sql.NullString
	)
	if err := scanner.Scan(
		&m.ID,
		&m.Name,
		&displayName,
		&country,
		&founded,
		&website,
		&status,
		&notes,
		&logoSource,
		&createdBy,
		&createdRaw,
		&updatedRaw,
		&resolvedRaw,
	); err != nil {
		return nil, err
	}
	m.DisplayName = strPtr(displayName)
	m.Country = strPtr(country)
	m.FoundedYear = intPtr(founded)
	m.Website = strPtr(website)
	m.Status = typedPtr[registry.ManufacturerStatus](status)
	m.Notes = strPtr(notes)
	m.LogoSource = strPtr(logoSource)
	m.CreatedBy = createdBy.String
	m.CreatedAt = parseTime(createdRaw)
	m.UpdatedAt = parseTime(updatedRaw)
	m.LastResolvedAt = parseTime(resolvedRaw)
	return &m, nil
}

// FindManufacturer returns the manufacturer whose folded name equals key.
func (t *Tx) FindManufacturer(ctx context.Context, key string) (*registry.Manufacturer, error) {
	row := t.queryRow(ctx, "SELECT "+manufacturerColumns+" FROM manufacturers WHERE name_key = ?", key)
	return scanOne("find manufacturer", row, scanManufacturer)
}

// GetManufacturer loads a manufacturer by id.
func (t *Tx) GetManufacturer(ctx context.Context, id string) (*registry.Manufacturer, error) {
	row := t.queryRow(ctx, "SELECT "+manufacturerColumns+" FROM manufacturers WHERE id = ?", id)
	return scanOne("get manufacturer", row, scanManufacturer)
}

// ListManufacturers returns every manufacturer as fuzzy-match candidates.
func (t *Tx) ListManufacturers(ctx context.Context) ([]registry.Manufacturer, error) {
	rows, err := t.query(ctx, "list manufacturers", "SELECT "+manufacturerColumns+" FROM manufacturers ORDER BY id")
	if err != nil {
		return nil, err
	}
	return scanAll("list manufacturers", rows, scanManufacturer)
}

// InsertManufacturer stores a new manufacturer, assigning its id and
// provenance. Status defaults to active.
func (t *Tx) InsertManufacturer(ctx context.Context, m *registry.Manufacturer) error {
	m.ID = newID()
	if m.Status == nil {
		status := registry.StatusActive
		m.Status = &status
	}
	m.CreatedAt, m.UpdatedAt, m.LastResolvedAt = t.now, t.now, t.now
	now := formatTime(t.now)
	_, err := t.exec(ctx, "insert manufacturer",
		`INSERT INTO manufacturers (`+manufacturerColumns+`, name_key) VALUES (`+makePlaceholders(14)+`)`,
		m.ID,
		m.Name,
		nullable(m.DisplayName),
		nullable(m.Country),
		nullable(m.FoundedYear),
		nullable(m.Website),
		nullableText(m.Status),
		nullable(m.Notes),
		nullable(m.LogoSource),
		m.CreatedBy,
		now,
		now,
		now,
		textutil.FoldKey(m.Name),
	)
	return err
}

// UpdateManufacturer writes the mutable attributes of m and marks it resolved.
// The name is the identity and never changes.
func (t *Tx) UpdateManufacturer(ctx context.Context, m *registry.Manufacturer) error {
	m.UpdatedAt, m.LastResolvedAt = t.now, t.now
	now := formatTime(t.now)
	_, err := t.exec(ctx, "update manufacturer",
		`UPDATE manufacturers SET display_name = ?, country = ?, founded_year = ?, website = ?,
			status = ?, notes = ?, logo_source = ?, updated_at = ?, last_resolved_at = ?
		WHERE id = ?`,
		nullable(m.DisplayName),
		nullable(m.Country),
		nullable(m.FoundedYear),
		nullable(m.Website),
		textOr(m.Status, registry.StatusActive),
		nullable(m.Notes),
		nullable(m.LogoSource),
		now,
		now,
		m.ID,
	)
	return err
}

// TouchManufacturer records that a submission resolved to the manufacturer.
func (t *Tx) TouchManufacturer(ctx context.Context, id string) error {
	return t.touchResolved(ctx, "manufacturers", id)
}
