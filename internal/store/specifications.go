package store

import (
	"context"
	"database/sql"
	"fmt"

	"gtreg/internal/registry"
)

const specificationColumns = "id, model_id, individual_guitar_id, body_wood, neck_wood, fingerboard_wood, scale_length_inches, num_frets, nut_width_inches, neck_profile, bridge_type, pickup_configuration, electronics_description, hardware_finish, body_finish, weight_lbs, case_included, case_type, created_at"

func scanSpecification(scanner rowScanner) (*registry.Specification, error) {
	var (
		s           registry.Specification
		modelID     sql.NullString
		guitarID    sql.NullString
		bodyWood    sql.NullString
		neckWood    sql.NullString
		fingerboard sql.NullString
		scale       sql.NullFloat64
		frets       sql.NullInt64
		nut         sql.NullFloat64
		profile     sql.NullString
		bridge      sql.NullString
		pickups     sql.NullString
		electronics sql.NullString
		hardware    sql.NullString
		finish      sql.NullString
		weight      sql.NullFloat64
		caseIncl    sql.NullInt64
		caseType    sql.NullString
		createdRaw  sql.NullString
	)
	if err := scanner.Scan(
		&s.ID, &modelID, &guitarID, &bodyWood, &neckWood, &fingerboard, &scale, &frets, &nut,
		&profile, &bridge, &pickups, &electronics, &hardware, &finish, &weight, &caseIncl, &caseType,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	if modelID.Valid {
		s.Owner = registry.EntityRef{Kind: registry.KindModel, ID: modelID.String}
	} else {
		s.Owner = registry.EntityRef{Kind: registry.KindGuitar, ID: guitarID.String}
	}
	s.BodyWood = strPtr(bodyWood)
	s.NeckWood = strPtr(neckWood)
	s.FingerboardWood = strPtr(fingerboard)
	s.ScaleLengthInches = floatPtr(scale)
	s.NumFrets = intPtr(frets)
	s.NutWidthInches = floatPtr(nut)
	s.NeckProfile = strPtr(profile)
	s.BridgeType = strPtr(bridge)
	s.PickupConfiguration = strPtr(pickups)
	s.ElectronicsDescription = strPtr(electronics)
	s.HardwareFinish = strPtr(hardware)
	s.BodyFinish = strPtr(finish)
	s.WeightLbs = floatPtr(weight)
	s.CaseIncluded = boolPtr(caseIncl)
	s.CaseType = strPtr(caseType)
	s.CreatedAt = parseTime(createdRaw)
	return &s, nil
}

func specOwnerColumns(owner registry.EntityRef) (modelID, guitarID any, err error) {
	switch owner.Kind {
	case registry.KindModel:
		return owner.ID, nil, nil
	case registry.KindGuitar:
		return nil, owner.ID, nil
	default:
		return nil, nil, fmt.Errorf("specification owner must be a model or individual guitar, got %s", owner.Kind)
	}
}

// InsertSpecification stores a specification for exactly one model or guitar.
func (t *Tx) InsertSpecification(ctx context.Context, s *registry.Specification) error {
	modelID, guitarID, err := specOwnerColumns(s.Owner)
	if err != nil {
		return err
	}
	s.ID = newID()
	s.CreatedAt = t.now
	_, err = t.exec(ctx, "insert specification",
		`INSERT INTO specifications (`+specificationColumns+`) VALUES (`+makePlaceholders(19)+`)`,
		s.ID,
		modelID,
		guitarID,
		nullable(s.BodyWood),
		nullable(s.NeckWood),
		nullable(s.FingerboardWood),
		nullable(s.ScaleLengthInches),
		nullable(s.NumFrets),
		nullable(s.NutWidthInches),
		nullable(s.NeckProfile),
		nullable(s.BridgeType),
		nullable(s.PickupConfiguration),
		nullable(s.ElectronicsDescription),
		nullable(s.HardwareFinish),
		nullable(s.BodyFinish),
		nullable(s.WeightLbs),
		nullableBool(s.CaseIncluded),
		nullable(s.CaseType),
		formatTime(t.now),
	)
	return err
}

// ListSpecifications returns the specifications of one model or guitar in
// insertion order.
func (t *Tx) ListSpecifications(ctx context.Context, owner registry.EntityRef) ([]registry.Specification, error) {
	column := "model_id"
	if owner.Kind == registry.KindGuitar {
		column = "individual_guitar_id"
	}
	rows, err := t.query(ctx, "list specifications",
		"SELECT "+specificationColumns+" FROM specifications WHERE "+column+" = ? ORDER BY created_at, id", owner.ID)
	if err != nil {
		return nil, err
	}
	return scanAll("list specifications", rows, scanSpecification)
}
