package registry

// Merge returns a copy of a with every field supplied in update applied.
func (a ManufacturerAttrs) Merge(update ManufacturerAttrs) ManufacturerAttrs {
	a.DisplayName = pick(a.DisplayName, update.DisplayName)
	a.Country = pick(a.Country, update.Country)
	a.FoundedYear = pick(a.FoundedYear, update.FoundedYear)
	a.Website = pick(a.Website, update.Website)
	a.Status = pick(a.Status, update.Status)
	a.Notes = pick(a.Notes, update.Notes)
	a.LogoSource = pick(a.LogoSource, update.LogoSource)
	return a
}

// Empty reports whether no field is set.
func (a ManufacturerAttrs) Empty() bool {
	return a == ManufacturerAttrs{}
}

func (a ModelAttrs) Merge(update ModelAttrs) ModelAttrs {
	a.ProductionType = pick(a.ProductionType, update.ProductionType)
	a.ProductionStartDate = pick(a.ProductionStartDate, update.ProductionStartDate)
	a.ProductionEndDate = pick(a.ProductionEndDate, update.ProductionEndDate)
	a.EstimatedProductionQuantity = pick(a.EstimatedProductionQuantity, update.EstimatedProductionQuantity)
	a.MSRPOriginal = pick(a.MSRPOriginal, update.MSRPOriginal)
	a.Currency = pick(a.Currency, update.Currency)
	a.Description = pick(a.Description, update.Description)
	return a
}

func (a ModelAttrs) Empty() bool {
	return a == ModelAttrs{}
}

func (a GuitarAttrs) Merge(update GuitarAttrs) GuitarAttrs {
	a.Description = pick(a.Description, update.Description)
	a.Nickname = pick(a.Nickname, update.Nickname)
	a.ProductionDate = pick(a.ProductionDate, update.ProductionDate)
	a.ProductionNumber = pick(a.ProductionNumber, update.ProductionNumber)
	a.SignificanceLevel = pick(a.SignificanceLevel, update.SignificanceLevel)
	a.SignificanceNotes = pick(a.SignificanceNotes, update.SignificanceNotes)
	a.CurrentEstimatedValue = pick(a.CurrentEstimatedValue, update.CurrentEstimatedValue)
	a.LastValuationDate = pick(a.LastValuationDate, update.LastValuationDate)
	a.ConditionRating = pick(a.ConditionRating, update.ConditionRating)
	a.Modifications = pick(a.Modifications, update.Modifications)
	a.ProvenanceNotes = pick(a.ProvenanceNotes, update.ProvenanceNotes)
	return a
}

func (a GuitarAttrs) Empty() bool {
	return a == GuitarAttrs{}
}

func (f GuitarFallback) Merge(update GuitarFallback) GuitarFallback {
	f.ManufacturerName = pick(f.ManufacturerName, update.ManufacturerName)
	f.ModelName = pick(f.ModelName, update.ModelName)
	f.YearEstimate = pick(f.YearEstimate, update.YearEstimate)
	return f
}

func pick[T any](current, update *T) *T {
	if update != nil {
		return update
	}
	return current
}
