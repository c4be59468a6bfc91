package selector

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindredapp/kindred/server/domino"
	"github.com/kindredapp/kindred/store"
)

type mockStore struct {
	tasks      []*store.Task
	profile    *store.MemoryProfile
	tasksErr   error
	profileErr error
}

func (m *mockStore) ListTasks(_ context.Context, _ *store.FindTask) ([]*store.Task, error) {
	if m.tasksErr != nil {
		return nil, m.tasksErr
	}
	return m.tasks, nil
}

func (m *mockStore) GetMemoryProfile(_ context.Context, _ *store.FindMemoryProfile) (*store.MemoryProfile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profile, nil
}

type mockProvider struct {
	state store.EmotionalState
	err   error
}

func (m *mockProvider) EmotionalSnapshot(_ context.Context, _ int32) (store.EmotionalState, error) {
	if m.err != nil {
		return store.EmotionalState{}, m.err
	}
	return m.state, nil
}

type mockAnalyzer struct {
	unlocks map[int32]int
	err     error
	calls   int
}

func (m *mockAnalyzer) RankUnlocks(_ context.Context, _ []domino.TaskRef) (map[int32]int, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.unlocks, nil
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

func int64Ptr(v int64) *int64 { return &v }

func newTask(id int32, title, category string) *store.Task {
	t := &store.Task{
		ID:        id,
		CreatorID: 1,
		Title:     title,
		CreatedTs: time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC).Unix(),
	}
	if category != "" {
		t.Category = strPtr(category)
	}
	return t
}

func newSelector(st *mockStore, provider *mockProvider, analyzer domino.Analyzer, now time.Time) *Selector {
	s := New(st, provider, analyzer, "Pip")
	s.now = func() time.Time { return now }
	return s
}

func TestParseCompanionMood(t *testing.T) {
	assert.Equal(t, MoodAmbitious, ParseCompanionMood("ambitious"))
	assert.Equal(t, MoodLowCognitive, ParseCompanionMood("low-cognitive"))
	assert.Equal(t, MoodMedium, ParseCompanionMood(""))
	assert.Equal(t, MoodMedium, ParseCompanionMood("frantic"))
}

func TestClassifyTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{hour: 5, want: "other"},
		{hour: 6, want: "morning"},
		{hour: 11, want: "morning"},
		{hour: 12, want: "earlyAfternoon"},
		{hour: 14, want: "earlyAfternoon"},
		{hour: 15, want: "lateAfternoon"},
		{hour: 16, want: "lateAfternoon"},
		{hour: 17, want: "evening"},
		{hour: 21, want: "evening"},
		{hour: 22, want: "other"},
		{hour: 0, want: "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyTimeOfDay(tt.hour), "hour %d", tt.hour)
	}
}

func TestCognitiveLoadScore(t *testing.T) {
	tests := []struct {
		name        string
		stress      int
		overdue     int
		recent      int
		highFatigue bool
		want        float64
	}{
		{name: "neutral stress only", stress: 50, want: 20},
		{name: "overdue pressure", stress: 50, overdue: 3, want: 35},
		{name: "recent additions", stress: 50, recent: 2, want: 26},
		{name: "fatigue penalty", stress: 50, highFatigue: true, want: 40},
		{name: "just under the elevated threshold", stress: 90, overdue: 3, recent: 2, want: 57},
		{name: "capped at one hundred", stress: 100, overdue: 20, recent: 20, highFatigue: true, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cognitiveLoadScore(tt.stress, tt.overdue, tt.recent, tt.highFatigue)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCountPressure(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	overdueTask := newTask(1, "pay the bill", "")
	overdueTask.ReminderTs = int64Ptr(now.Add(-time.Hour).Unix())

	futureReminder := newTask(2, "water plants", "")
	futureReminder.ReminderTs = int64Ptr(now.Add(time.Hour).Unix())

	recentTask := newTask(3, "new idea", "")
	recentTask.CreatedTs = now.Add(-10 * time.Minute).Unix()

	oldTask := newTask(4, "old chore", "")
	oldTask.CreatedTs = now.Add(-2 * time.Hour).Unix()

	overdue, recent := countPressure([]*store.Task{overdueTask, futureReminder, recentTask, oldTask}, now)
	assert.Equal(t, 1, overdue)
	assert.Equal(t, 1, recent)
}

func TestPartitionTasks(t *testing.T) {
	today := newTask(1, "write the quarterly planning document draft", "today") // 6 words, progress band
	todayTiny := newTask(2, "send invoice", "today")                            // 2 words, tiny
	upcoming := newTask(3, "plan the big autumn family trip", "someday")

	nearby := newTask(4, "pick up parcel", "errands")
	nearby.Latitude = floatPtr(52.51)
	nearby.Longitude = floatPtr(13.40)

	faraway := newTask(5, "visit museum", "errands")
	faraway.Latitude = floatPtr(53.00)
	faraway.Longitude = floatPtr(14.00)

	location := &LocationHint{Lat: 52.52, Lng: 13.41}
	pools := partitionTasks([]*store.Task{today, todayTiny, upcoming, nearby, faraway}, location)

	assert.Equal(t, []*store.Task{today, todayTiny}, pools.today)
	assert.Equal(t, []*store.Task{upcoming, nearby, faraway}, pools.upcoming)
	assert.Equal(t, []*store.Task{todayTiny, nearby, faraway}, pools.tiny)
	assert.Equal(t, []*store.Task{today}, pools.progress)
	assert.Equal(t, []*store.Task{nearby}, pools.locationRelevant)
}

func TestPartitionTasksWithoutLocation(t *testing.T) {
	located := newTask(1, "pick up parcel", "errands")
	located.Latitude = floatPtr(52.51)
	located.Longitude = floatPtr(13.40)

	pools := partitionTasks([]*store.Task{located}, nil)
	assert.Empty(t, pools.locationRelevant)
}

func TestMoodBoost(t *testing.T) {
	tests := []struct {
		name string
		task *store.Task
		mood CompanionMood
		want float64
	}{
		{
			name: "ambitious wants long today tasks",
			task: newTask(1, "rewrite the complete migration plan for the storage layer", "today"),
			mood: MoodAmbitious,
			want: 0.1,
		},
		{
			name: "ambitious ignores long tasks outside today",
			task: newTask(1, "rewrite the complete migration plan for the storage layer", "someday"),
			mood: MoodAmbitious,
			want: 0,
		},
		{
			name: "medium wants mid-length tasks",
			task: newTask(1, "review the two open pull requests", ""),
			mood: MoodMedium,
			want: 0.1,
		},
		{
			name: "simple wants short tasks",
			task: newTask(1, "call the dentist office", ""),
			mood: MoodSimple,
			want: 0.1,
		},
		{
			name: "low-cognitive wants tiny tasks",
			task: newTask(1, "water plants", ""),
			mood: MoodLowCognitive,
			want: 0.1,
		},
		{
			name: "low-cognitive rejects longer tasks",
			task: newTask(1, "review the two open pull requests", ""),
			mood: MoodLowCognitive,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, moodBoost(tt.task, tt.mood), 1e-9)
		})
	}
}

func TestSeasonalBoost(t *testing.T) {
	rules := map[string]string{
		"monday_reset":   "work",
		"weekend_family": "family",
	}
	workTask := newTask(1, "clear the inbox", "work")
	familyTask := newTask(2, "board game night", "family")

	monday := time.Monday
	saturday := time.Saturday
	wednesday := time.Wednesday

	assert.InDelta(t, 0.2, seasonalBoost(workTask, rules, monday), 1e-9)
	assert.InDelta(t, 0, seasonalBoost(familyTask, rules, monday), 1e-9)
	assert.InDelta(t, 0.2, seasonalBoost(familyTask, rules, saturday), 1e-9)
	assert.InDelta(t, 0, seasonalBoost(workTask, rules, saturday), 1e-9)
	assert.InDelta(t, 0, seasonalBoost(workTask, rules, wednesday), 1e-9)
	assert.InDelta(t, 0, seasonalBoost(workTask, nil, monday), 1e-9)
}

func TestTopByBoost(t *testing.T) {
	a := newTask(1, "a", "")
	b := newTask(2, "b", "")
	c := newTask(3, "c", "")
	d := newTask(4, "d", "")

	boosts := map[int32]float64{1: 0, 2: 0.3, 3: 0.3, 4: 0.1}
	got := topByBoost([]*store.Task{a, b, c, d}, func(t *store.Task) float64 {
		return boosts[t.ID]
	})

	// Stable: b before c on equal boost, capped at three.
	require.Len(t, got, 3)
	assert.Equal(t, []*store.Task{b, c, d}, got)
}

func TestSuggestMorningHighFatigue(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) // Monday morning
	st := &mockStore{tasks: []*store.Task{
		newTask(1, "send invoice", "today"),
		newTask(2, "draft the full renovation budget breakdown for autumn", "today"),
		newTask(3, "water plants", "someday"),
	}}
	provider := &mockProvider{state: store.EmotionalState{Joy: 40, Stress: 30, Fatigue: 85}}

	s := newSelector(st, provider, nil, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1, CompanionMood: MoodLowCognitive})
	require.NoError(t, err)

	assert.Equal(t, "morning_high_fatigue", suggestion.Context.ContextReason)
	require.Len(t, suggestion.SuggestedTasks, 2)
	assert.Equal(t, int32(1), suggestion.SuggestedTasks[0].ID)
	assert.Equal(t, int32(3), suggestion.SuggestedTasks[1].ID)
	assert.Contains(t, suggestion.Message, "Pip")
	assert.Contains(t, suggestion.Message, "tiny wins")
	assert.Equal(t, "morning", suggestion.Context.TimeOfDay)
	assert.Equal(t, 1, suggestion.Context.DayOfWeek) // Monday
	assert.Equal(t, 85, suggestion.Context.EmotionalState.Fatigue)
}

func TestSuggestMorningHighJoyDoesNotFireFatigueRule(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	st := &mockStore{tasks: []*store.Task{
		newTask(1, "send invoice", "today"),
	}}
	provider := &mockProvider{state: store.EmotionalState{Joy: 80, Stress: 20, Fatigue: 30}}

	s := newSelector(st, provider, nil, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1})
	require.NoError(t, err)

	// High joy alone gates neither the morning nor the afternoon rule.
	assert.Equal(t, "default_with_seasonal_and_mood", suggestion.Context.ContextReason)
}

func TestSuggestAfternoonHighJoy(t *testing.T) {
	now := time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC) // Wednesday early afternoon
	st := &mockStore{tasks: []*store.Task{
		newTask(1, "send invoice", "today"),
		newTask(2, "outline the next chapter of the thesis draft", "today"), // 8 words, progress band
		newTask(3, "water plants", "someday"),
	}}
	provider := &mockProvider{state: store.EmotionalState{Joy: 80, Stress: 20, Fatigue: 30}}

	s := newSelector(st, provider, nil, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1})
	require.NoError(t, err)

	assert.Equal(t, "afternoon_high_joy", suggestion.Context.ContextReason)
	require.Len(t, suggestion.SuggestedTasks, 1)
	assert.Equal(t, int32(2), suggestion.SuggestedTasks[0].ID)
	assert.Contains(t, suggestion.Message, "momentum")
}

func TestSuggestHighCognitiveLoad(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	st := &mockStore{tasks: []*store.Task{
		newTask(1, "file expenses", "today"),
		newTask(2, "book flights", "today"),
		newTask(3, "fix the bike", "someday"),
		newTask(4, "clean desk", "someday"),
	}}
	provider := &mockProvider{state: store.EmotionalState{Joy: 20, Stress: 100, Fatigue: 80}}
	analyzer := &mockAnalyzer{unlocks: map[int32]int{1: 0, 2: 5, 3: 2, 4: 9}}

	s := newSelector(st, provider, analyzer, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1})
	require.NoError(t, err)

	// stress 100 * 0.4 + fatigue penalty 20 = 60, elevated.
	assert.Equal(t, "high_cognitive_load", suggestion.Context.ContextReason)
	assert.InDelta(t, 60, suggestion.Context.CognitiveLoad, 1e-9)
	assert.Equal(t, 1, analyzer.calls)

	require.Len(t, suggestion.SuggestedTasks, 3)
	assert.Equal(t, int32(4), suggestion.SuggestedTasks[0].ID)
	assert.Equal(t, int32(2), suggestion.SuggestedTasks[1].ID)
	assert.Equal(t, int32(3), suggestion.SuggestedTasks[2].ID)
	assert.Contains(t, suggestion.Message, "unblock")
}

func TestSuggestDominoFailureFallsThrough(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	st := &mockStore{tasks: []*store.Task{
		newTask(1, "file expenses", "today"),
	}}
	provider := &mockProvider{state: store.EmotionalState{Joy: 20, Stress: 100, Fatigue: 80}}
	analyzer := &mockAnalyzer{err: errors.New("analyzer down")}

	s := newSelector(st, provider, analyzer, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, "default_with_seasonal_and_mood", suggestion.Context.ContextReason)
	require.Len(t, suggestion.SuggestedTasks, 1)
	assert.Equal(t, int32(1), suggestion.SuggestedTasks[0].ID)
}

func TestSuggestLocationRule(t *testing.T) {
	now := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC) // Friday evening
	nearby := newTask(1, "pick up parcel", "errands")
	nearby.Latitude = floatPtr(52.51)
	nearby.Longitude = floatPtr(13.40)
	st := &mockStore{tasks: []*store.Task{
		newTask(2, "clean desk", "today"),
		nearby,
	}}
	provider := &mockProvider{state: store.EmotionalState{Joy: 40, Stress: 20, Fatigue: 30}}

	s := newSelector(st, provider, nil, now)

	t.Run("named context", func(t *testing.T) {
		suggestion, err := s.Suggest(context.Background(), SuggestRequest{
			UserID:   1,
			Location: &LocationHint{Lat: 52.52, Lng: 13.41, Context: "errand_run"},
		})
		require.NoError(t, err)
		assert.Equal(t, "location_errand_run", suggestion.Context.ContextReason)
		require.Len(t, suggestion.SuggestedTasks, 1)
		assert.Equal(t, int32(1), suggestion.SuggestedTasks[0].ID)
		assert.Contains(t, suggestion.Message, "close to where you are")
	})

	t.Run("context defaults to nearby", func(t *testing.T) {
		suggestion, err := s.Suggest(context.Background(), SuggestRequest{
			UserID:   1,
			Location: &LocationHint{Lat: 52.52, Lng: 13.41},
		})
		require.NoError(t, err)
		assert.Equal(t, "location_nearby", suggestion.Context.ContextReason)
	})

	t.Run("no nearby tasks falls through to default", func(t *testing.T) {
		suggestion, err := s.Suggest(context.Background(), SuggestRequest{
			UserID:   1,
			Location: &LocationHint{Lat: 40.0, Lng: -70.0},
		})
		require.NoError(t, err)
		assert.Equal(t, "default_with_seasonal_and_mood", suggestion.Context.ContextReason)
	})
}

func TestSuggestDefaultWithSeasonalWeight(t *testing.T) {
	now := time.Date(2026, 8, 31, 19, 0, 0, 0, time.UTC) // Monday evening

	payload := store.NewMemoryProfilePayload()
	payload.FocusPreferences = &store.FocusPreferences{
		SeasonalWeight: map[string]string{"monday_reset": "work"},
	}
	raw, err := payload.Marshal()
	require.NoError(t, err)

	st := &mockStore{
		tasks: []*store.Task{
			newTask(1, "plan the big autumn family trip itinerary details now", "family"),
			newTask(2, "clear the inbox", "work"),
		},
		profile: &store.MemoryProfile{UserID: 1, Payload: raw},
	}
	provider := &mockProvider{state: store.EmotionalState{Joy: 40, Stress: 20, Fatigue: 30}}

	s := newSelector(st, provider, nil, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1, CompanionMood: MoodAmbitious})
	require.NoError(t, err)

	assert.Equal(t, "default_with_seasonal_and_mood", suggestion.Context.ContextReason)
	// No today pool, so upcoming is used; the seasonal rule lifts the work
	// task over the earlier family task.
	require.Len(t, suggestion.SuggestedTasks, 2)
	assert.Equal(t, int32(2), suggestion.SuggestedTasks[0].ID)
	assert.Equal(t, int32(1), suggestion.SuggestedTasks[1].ID)
	assert.Contains(t, suggestion.Message, "Evening check-in")
}

func TestSuggestEmptyTaskList(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	st := &mockStore{}
	provider := &mockProvider{state: store.EmotionalState{Joy: 50, Stress: 50, Fatigue: 50}}

	s := newSelector(st, provider, nil, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1})
	require.NoError(t, err)

	assert.Empty(t, suggestion.SuggestedTasks)
	assert.Equal(t, "Nothing urgent right now. Pip says enjoy the breathing room.", suggestion.Message)
}

func TestSuggestDegradesOnCollaboratorFailures(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	st := &mockStore{
		tasks:      []*store.Task{newTask(1, "clear the inbox", "today")},
		profileErr: errors.New("profile table gone"),
	}
	provider := &mockProvider{err: errors.New("companion offline")}

	s := newSelector(st, provider, nil, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1})
	require.NoError(t, err)

	// Defaults: neutral 50s, no seasonal rules.
	assert.Equal(t, 50, suggestion.Context.EmotionalState.Fatigue)
	assert.Equal(t, 50, suggestion.Context.EmotionalState.Joy)
	assert.Equal(t, "default_with_seasonal_and_mood", suggestion.Context.ContextReason)
	require.Len(t, suggestion.SuggestedTasks, 1)
}

func TestSuggestDefaultsMoodToMedium(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	st := &mockStore{tasks: []*store.Task{newTask(1, "clear the inbox", "today")}}
	provider := &mockProvider{state: store.DefaultEmotionalState()}

	s := newSelector(st, provider, nil, now)
	suggestion, err := s.Suggest(context.Background(), SuggestRequest{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, "medium", suggestion.Context.CompanionMood)
}
