package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// StreakEntryType distinguishes the two kinds of streak history entries.
type StreakEntryType string

const (
	StreakDailySession     StreakEntryType = "daily_session"
	StreakCompletionStreak StreakEntryType = "completion_streak"
)

// StreakEntry is one entry in the profile's streak history.
type StreakEntry struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Type  StreakEntryType `json:"type"`
	Value int             `json:"value"`
}

// FocusPreferences holds user-maintained focus configuration. It is carried
// over between aggregation runs rather than recomputed.
type FocusPreferences struct {
	// SeasonalWeight maps a day-of-week rule name (e.g. "monday_reset",
	// "weekend_family") to the category it boosts.
	SeasonalWeight map[string]string `json:"seasonal_weight,omitempty"`
}

// MemoryProfilePayload is the aggregated behavioral model for one user.
// It is fully recomputed on every aggregation run; every weighted mapping
// holds values in [0,1] normalized against that run's own maximum.
type MemoryProfilePayload struct {
	CategoryPreferences     map[string]float64 `json:"category_preferences"`
	PriorityBias            map[string]float64 `json:"priority_bias"`
	WritingStyle            string             `json:"writing_style,omitempty"`
	TinyTaskThreshold       int                `json:"tiny_task_threshold"`
	EnergyPattern           map[string]float64 `json:"energy_pattern"`
	ProcrastinationTriggers []string           `json:"procrastination_triggers"`
	EmotionalTriggers       []string           `json:"emotional_triggers"`
	PositiveReinforcers     []string           `json:"positive_reinforcers"`
	StreakHistory           []StreakEntry      `json:"streak_history"`
	FocusPreferences        *FocusPreferences  `json:"focus_preferences,omitempty"`
	LastUpdated             string             `json:"last_updated"` // RFC3339
}

// Priority bucket keys for PriorityBias.
const (
	PriorityMust   = "must"
	PriorityShould = "should"
	PriorityCould  = "could"
)

// Energy pattern bucket keys.
const (
	EnergyMorning   = "morning"
	EnergyAfternoon = "afternoon"
	EnergyNight     = "night"
)

// Writing style classifications.
const (
	WritingStyleFormal  = "formal"
	WritingStyleCasual  = "casual"
	WritingStyleNeutral = "neutral"
)

// DefaultTinyTaskThreshold is the tiny-task character threshold used when a
// window contains no tiny tasks.
const DefaultTinyTaskThreshold = 5

// NewMemoryProfilePayload returns an empty payload with all defaults applied.
func NewMemoryProfilePayload() *MemoryProfilePayload {
	return &MemoryProfilePayload{
		CategoryPreferences: map[string]float64{},
		PriorityBias: map[string]float64{
			PriorityMust:   0.5,
			PriorityShould: 0.5,
			PriorityCould:  0.5,
		},
		TinyTaskThreshold:       DefaultTinyTaskThreshold,
		EnergyPattern:           map[string]float64{},
		ProcrastinationTriggers: []string{},
		EmotionalTriggers:       []string{},
		PositiveReinforcers:     []string{},
		StreakHistory:           []StreakEntry{},
	}
}

// Marshal serializes the payload to its persisted JSON form.
func (p *MemoryProfilePayload) Marshal() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal memory profile payload")
	}
	return string(raw), nil
}

// UnmarshalMemoryProfilePayload parses a persisted JSON payload.
func UnmarshalMemoryProfilePayload(raw string) (*MemoryProfilePayload, error) {
	payload := NewMemoryProfilePayload()
	if raw == "" {
		return payload, nil
	}
	if err := json.Unmarshal([]byte(raw), payload); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal memory profile payload")
	}
	return payload, nil
}

// MemoryProfile is the persisted per-user profile row.
type MemoryProfile struct {
	UserID    int32
	Payload   string // JSON string, see MemoryProfilePayload
	CreatedTs int64
	UpdatedTs int64
}

// FindMemoryProfile specifies the conditions for finding a memory profile.
type FindMemoryProfile struct {
	UserID *int32
}

// UpsertMemoryProfile specifies the data for upserting a memory profile.
// Upserts are keyed by user id with last-write-wins semantics.
type UpsertMemoryProfile struct {
	UserID  int32
	Payload string // JSON string
}
