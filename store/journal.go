package store

// Mood is the journaled mood value. Unrecognized values parse to MoodUnknown
// so callers always handle them through an explicit branch.
type Mood string

const (
	MoodHappy       Mood = "happy"
	MoodExcited     Mood = "excited"
	MoodStressed    Mood = "stressed"
	MoodOverwhelmed Mood = "overwhelmed"
	MoodCalm        Mood = "calm"
	MoodTired       Mood = "tired"
	MoodUnknown     Mood = "unknown"
)

// ParseMood maps a raw mood string onto the known set.
func ParseMood(raw string) Mood {
	switch Mood(raw) {
	case MoodHappy, MoodExcited, MoodStressed, MoodOverwhelmed, MoodCalm, MoodTired:
		return Mood(raw)
	default:
		return MoodUnknown
	}
}

func (m Mood) String() string {
	return string(m)
}

// JournalEntry is the object representing one mood-journal entry.
type JournalEntry struct {
	ID        int32
	CreatorID int32
	Mood      Mood
	Note      string
	CreatedTs int64
}

// FindJournalEntry is the find condition for journal entry.
type FindJournalEntry struct {
	CreatorID    *int32
	CreatedAfter *int64
	Limit        *int
}
