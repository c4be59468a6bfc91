package store

// Correction is the object representing a user override of an automatic
// suggestion. It is the strongest preference signal the aggregator consumes.
type Correction struct {
	ID                int32
	CreatorID         int32
	CorrectedCategory *string
	CorrectedPriority *string
	CreatedTs         int64
}

// FindCorrection is the find condition for correction.
type FindCorrection struct {
	CreatorID    *int32
	CreatedAfter *int64
	Limit        *int
}
