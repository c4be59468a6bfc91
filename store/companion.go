package store

// CompanionEventType is the kind of companion-interaction event. Unrecognized
// values parse to CompanionEventUnknown rather than being dropped silently.
type CompanionEventType string

const (
	CompanionEventTaskCompleted  CompanionEventType = "task_completed"
	CompanionEventStreakAchieved CompanionEventType = "streak_achieved"
	CompanionEventCheckIn        CompanionEventType = "check_in"
	CompanionEventEmotionShift   CompanionEventType = "emotion_shift"
	CompanionEventUnknown        CompanionEventType = "unknown"
)

// ParseCompanionEventType maps a raw event type string onto the known set.
func ParseCompanionEventType(raw string) CompanionEventType {
	switch CompanionEventType(raw) {
	case CompanionEventTaskCompleted, CompanionEventStreakAchieved, CompanionEventCheckIn, CompanionEventEmotionShift:
		return CompanionEventType(raw)
	default:
		return CompanionEventUnknown
	}
}

func (t CompanionEventType) String() string {
	return string(t)
}

// CompanionEvent is the object representing one companion-interaction event.
type CompanionEvent struct {
	ID        int32
	CreatorID int32
	EventType CompanionEventType
	Payload   string // JSON string
	CreatedTs int64
}

// FindCompanionEvent is the find condition for companion event.
type FindCompanionEvent struct {
	CreatorID    *int32
	CreatedAfter *int64
	Limit        *int
}

// EmotionalState is the companion's emotional snapshot. Each dimension is an
// integer in [0,100]; absent snapshots default every dimension to 50.
type EmotionalState struct {
	Joy       int `json:"joy"`
	Stress    int `json:"stress"`
	Fatigue   int `json:"fatigue"`
	Affection int `json:"affection"`
}

// DefaultEmotionalState returns the neutral 50/50/50/50 snapshot.
func DefaultEmotionalState() EmotionalState {
	return EmotionalState{Joy: 50, Stress: 50, Fatigue: 50, Affection: 50}
}

// CompanionState is the persisted per-user emotional snapshot.
type CompanionState struct {
	UserID    int32
	Joy       int
	Stress    int
	Fatigue   int
	Affection int
	UpdatedTs int64
}

// EmotionalState converts the persisted row into a snapshot value.
func (s *CompanionState) EmotionalState() EmotionalState {
	return EmotionalState{Joy: s.Joy, Stress: s.Stress, Fatigue: s.Fatigue, Affection: s.Affection}
}

// FindCompanionState is the find condition for companion state.
type FindCompanionState struct {
	UserID *int32
}

// UpsertCompanionState is the upsert request for companion state.
type UpsertCompanionState struct {
	UserID    int32
	Joy       int
	Stress    int
	Fatigue   int
	Affection int
}
