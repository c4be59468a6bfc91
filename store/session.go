package store

// DailySession is the object representing one daily check-in session.
type DailySession struct {
	ID             int32
	CreatorID      int32
	SessionDate    string // YYYY-MM-DD
	ReflectionWins string
	TopFocus       string
	CreatedTs      int64
}

// FindDailySession is the find condition for daily session.
type FindDailySession struct {
	CreatorID    *int32
	CreatedAfter *int64
	Limit        *int
}

// HasReflection returns true if the session recorded any reflection content.
func (s *DailySession) HasReflection() bool {
	return s.ReflectionWins != "" || s.TopFocus != ""
}
