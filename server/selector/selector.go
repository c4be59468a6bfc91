// Package selector picks which candidate tasks to surface for a user given
// their memory profile and live context.
package selector

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/kindredapp/kindred/server/companion"
	"github.com/kindredapp/kindred/server/domino"
	"github.com/kindredapp/kindred/store"
)

// CompanionMood is the discrete complexity band supplied per request.
type CompanionMood string

const (
	MoodAmbitious    CompanionMood = "ambitious"
	MoodMedium       CompanionMood = "medium"
	MoodSimple       CompanionMood = "simple"
	MoodLowCognitive CompanionMood = "low-cognitive"
)

// ParseCompanionMood maps a raw mood string onto the known bands, falling
// back to medium.
func ParseCompanionMood(raw string) CompanionMood {
	switch CompanionMood(raw) {
	case MoodAmbitious, MoodMedium, MoodSimple, MoodLowCognitive:
		return CompanionMood(raw)
	default:
		return MoodMedium
	}
}

// Selection reasons, in cascade order.
const (
	reasonMorningHighFatigue = "morning_high_fatigue"
	reasonAfternoonHighJoy   = "afternoon_high_joy"
	reasonHighCognitiveLoad  = "high_cognitive_load"
	reasonLocationPrefix     = "location_"
	reasonDefault            = "default_with_seasonal_and_mood"
)

// Time-of-day buckets.
const (
	timeMorning        = "morning"
	timeEarlyAfternoon = "earlyAfternoon"
	timeLateAfternoon  = "lateAfternoon"
	timeEvening        = "evening"
	timeOther          = "other"
)

const (
	maxSuggestions    = 3
	maxFetchedTasks   = 50
	maxDominoTasks    = 10
	tinyWordCount     = 5
	emotionalExtreme  = 70
	elevatedThreshold = 60

	// Seasonal weight rule names recognized in focus preferences.
	ruleMondayReset   = "monday_reset"
	ruleWeekendFamily = "weekend_family"

	categoryToday = "today"

	// Coarse proximity check in coordinate degrees, roughly 5 km. Euclidean
	// on purpose: behavior parity matters more than geodesic accuracy here.
	locationRadiusDegrees = 0.05
)

// LocationHint is the optional request location.
type LocationHint struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Context string  `json:"context,omitempty"`
}

// SuggestRequest is one selection request.
type SuggestRequest struct {
	UserID        int32
	CompanionMood CompanionMood
	Location      *LocationHint
}

// SuggestedTask is one surfaced task.
type SuggestedTask struct {
	ID       int32  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// EmotionalSnapshot is the slice of the companion state echoed back in
// diagnostics.
type EmotionalSnapshot struct {
	Fatigue int `json:"fatigue"`
	Joy     int `json:"joy"`
	Stress  int `json:"stress"`
}

// Context is the diagnostics object attached to every suggestion.
type Context struct {
	TimeOfDay      string            `json:"timeOfDay"`
	DayOfWeek      int               `json:"dayOfWeek"` // 0 = Sunday
	EmotionalState EmotionalSnapshot `json:"emotionalState"`
	CognitiveLoad  float64           `json:"cognitiveLoad"`
	CompanionMood  string            `json:"companionMood"`
	ContextReason  string            `json:"contextReason"`
}

// Suggestion is the selector's response.
type Suggestion struct {
	Message        string          `json:"message"`
	SuggestedTasks []SuggestedTask `json:"suggestedTasks"`
	Context        Context         `json:"context"`
}

// Store is the subset of store operations the selector depends on.
// *store.Store satisfies it; tests substitute an in-memory fake.
type Store interface {
	ListTasks(ctx context.Context, find *store.FindTask) ([]*store.Task, error)
	GetMemoryProfile(ctx context.Context, find *store.FindMemoryProfile) (*store.MemoryProfile, error)
}

// Selector composes profile, live context, and collaborators into task
// suggestions. It is stateless per request and safe for concurrent use.
type Selector struct {
	store         Store
	companion     companion.Provider
	analyzer      domino.Analyzer
	companionName string
	now           func() time.Time
}

// New creates a selector. analyzer may be nil when no domino endpoint is
// configured.
func New(st Store, provider companion.Provider, analyzer domino.Analyzer, companionName string) *Selector {
	return &Selector{
		store:         st,
		companion:     provider,
		analyzer:      analyzer,
		companionName: companionName,
		now:           time.Now,
	}
}

type scoredTask struct {
	task  *store.Task
	boost float64
}

// Suggest produces up to three suggested tasks, a guidance message, and
// request diagnostics.
func (s *Selector) Suggest(ctx context.Context, req SuggestRequest) (*Suggestion, error) {
	now := s.now()

	seasonalRules := s.loadSeasonalRules(ctx, req.UserID)
	emotional := s.loadEmotionalState(ctx, req.UserID)

	timeOfDay := classifyTimeOfDay(now.Hour())
	highFatigue := emotional.Fatigue >= emotionalExtreme
	highJoy := emotional.Joy >= emotionalExtreme

	tasks := s.fetchIncompleteTasks(ctx, req.UserID)

	overdueCount, recentCount := countPressure(tasks, now)
	cognitiveLoad := cognitiveLoadScore(emotional.Stress, overdueCount, recentCount, highFatigue)
	elevated := cognitiveLoad >= elevatedThreshold

	pools := partitionTasks(tasks, req.Location)

	var dominoRanked []*store.Task
	if elevated {
		dominoRanked = s.rankByUnlocks(ctx, tasks)
	}

	mood := req.CompanionMood
	if mood == "" {
		mood = MoodMedium
	}

	selected, reason := s.selectCascade(cascadeInput{
		now:          now,
		timeOfDay:    timeOfDay,
		highFatigue:  highFatigue,
		highJoy:      highJoy,
		elevated:     elevated,
		mood:         mood,
		location:     req.Location,
		pools:        pools,
		dominoRanked: dominoRanked,
	}, seasonalRules)

	suggested := make([]SuggestedTask, 0, len(selected))
	for _, t := range selected {
		suggested = append(suggested, SuggestedTask{
			ID:       t.ID,
			Title:    t.Title,
			Category: t.CategoryOrDefault(""),
		})
	}

	message := composeMessage(messageInput{
		reason:        reason,
		timeOfDay:     timeOfDay,
		companionName: s.companionName,
		suggested:     len(suggested),
		tinyCount:     len(pools.tiny),
		overdueCount:  overdueCount,
	})

	return &Suggestion{
		Message:        message,
		SuggestedTasks: suggested,
		Context: Context{
			TimeOfDay: timeOfDay,
			DayOfWeek: int(now.Weekday()),
			EmotionalState: EmotionalSnapshot{
				Fatigue: emotional.Fatigue,
				Joy:     emotional.Joy,
				Stress:  emotional.Stress,
			},
			CognitiveLoad: cognitiveLoad,
			CompanionMood: string(mood),
			ContextReason: reason,
		},
	}, nil
}

// loadSeasonalRules reads focus preferences off the persisted profile. A
// missing or malformed profile is a documented default, never an error.
func (s *Selector) loadSeasonalRules(ctx context.Context, userID int32) map[string]string {
	row, err := s.store.GetMemoryProfile(ctx, &store.FindMemoryProfile{UserID: &userID})
	if err != nil || row == nil {
		if err != nil {
			slog.Warn("failed to load memory profile, using defaults", "userId", userID, "error", err)
		}
		return nil
	}
	payload, err := store.UnmarshalMemoryProfilePayload(row.Payload)
	if err != nil {
		slog.Warn("failed to parse memory profile payload, using defaults", "userId", userID, "error", err)
		return nil
	}
	if payload.FocusPreferences == nil {
		return nil
	}
	return payload.FocusPreferences.SeasonalWeight
}

func (s *Selector) loadEmotionalState(ctx context.Context, userID int32) store.EmotionalState {
	emotional, err := s.companion.EmotionalSnapshot(ctx, userID)
	if err != nil {
		slog.Warn("failed to load emotional snapshot, using defaults", "userId", userID, "error", err)
		return store.DefaultEmotionalState()
	}
	return emotional
}

func (s *Selector) fetchIncompleteTasks(ctx context.Context, userID int32) []*store.Task {
	completed := false
	limit := maxFetchedTasks
	tasks, err := s.store.ListTasks(ctx, &store.FindTask{
		CreatorID:          &userID,
		Completed:          &completed,
		OrderByCreatedDesc: true,
		Limit:              &limit,
	})
	if err != nil {
		slog.Warn("failed to list tasks, using empty set", "userId", userID, "error", err)
		return nil
	}
	return tasks
}

func classifyTimeOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return timeMorning
	case hour >= 12 && hour < 15:
		return timeEarlyAfternoon
	case hour >= 15 && hour < 17:
		return timeLateAfternoon
	case hour >= 17 && hour < 22:
		return timeEvening
	default:
		return timeOther
	}
}

func countPressure(tasks []*store.Task, now time.Time) (overdue int, recent int) {
	recentCutoff := now.Add(-30 * time.Minute)
	for _, t := range tasks {
		if reminder := t.ReminderAt(); reminder != nil && reminder.Before(now) {
			overdue++
		}
		if t.CreatedAt().After(recentCutoff) {
			recent++
		}
	}
	return overdue, recent
}

func cognitiveLoadScore(stress, overdueCount, recentCount int, highFatigue bool) float64 {
	score := float64(stress)*0.4 + float64(overdueCount)*5 + float64(recentCount)*3
	if highFatigue {
		score += 20
	}
	return math.Min(score, 100)
}

type taskPools struct {
	today            []*store.Task
	upcoming         []*store.Task
	tiny             []*store.Task
	progress         []*store.Task
	locationRelevant []*store.Task
}

func partitionTasks(tasks []*store.Task, location *LocationHint) taskPools {
	pools := taskPools{}
	for _, t := range tasks {
		wordCount := t.TitleWordCount()

		if t.CategoryOrDefault("") == categoryToday {
			pools.today = append(pools.today, t)
			if wordCount > tinyWordCount && wordCount <= 10 {
				pools.progress = append(pools.progress, t)
			}
		} else {
			pools.upcoming = append(pools.upcoming, t)
		}

		if wordCount <= tinyWordCount {
			pools.tiny = append(pools.tiny, t)
		}

		if location != nil && t.HasLocation() {
			dLat := *t.Latitude - location.Lat
			dLng := *t.Longitude - location.Lng
			if math.Sqrt(dLat*dLat+dLng*dLng) < locationRadiusDegrees {
				pools.locationRelevant = append(pools.locationRelevant, t)
			}
		}
	}
	return pools
}

// rankByUnlocks asks the domino analyzer to rank up to maxDominoTasks tasks.
// Any failure degrades to an empty ranking; the error never propagates.
func (s *Selector) rankByUnlocks(ctx context.Context, tasks []*store.Task) []*store.Task {
	if s.analyzer == nil || len(tasks) == 0 {
		return nil
	}

	batch := tasks
	if len(batch) > maxDominoTasks {
		batch = batch[:maxDominoTasks]
	}
	refs := make([]domino.TaskRef, 0, len(batch))
	for _, t := range batch {
		refs = append(refs, domino.TaskRef{
			ID:       t.ID,
			Title:    t.Title,
			Category: t.CategoryOrDefault(""),
			Keywords: t.Keywords,
		})
	}

	unlocks, err := s.analyzer.RankUnlocks(ctx, refs)
	if err != nil {
		slog.Warn("domino analyzer unavailable, skipping unlock ranking", "error", err)
		return nil
	}

	ranked := make([]*store.Task, len(batch))
	copy(ranked, batch)
	sort.SliceStable(ranked, func(i, j int) bool {
		return unlocks[ranked[i].ID] > unlocks[ranked[j].ID]
	})
	return ranked
}

// moodBoost returns the +0.1 complexity-band boost for a task under the
// given companion mood.
func moodBoost(t *store.Task, mood CompanionMood) float64 {
	wordCount := t.TitleWordCount()
	inBand := false
	switch mood {
	case MoodAmbitious:
		inBand = wordCount > 8 && t.CategoryOrDefault("") == categoryToday
	case MoodMedium:
		inBand = wordCount >= 5 && wordCount <= 10
	case MoodSimple:
		inBand = wordCount <= 6
	case MoodLowCognitive:
		inBand = wordCount <= tinyWordCount
	}
	if inBand {
		return 0.1
	}
	return 0
}

// seasonalBoost returns the day-of-week category boost from the configured
// seasonal weight rules.
func seasonalBoost(t *store.Task, rules map[string]string, day time.Weekday) float64 {
	if len(rules) == 0 {
		return 0
	}
	category := t.CategoryOrDefault("")
	if day == time.Monday {
		if boosted, ok := rules[ruleMondayReset]; ok && boosted == category {
			return 0.2
		}
	}
	if day == time.Saturday || day == time.Sunday {
		if boosted, ok := rules[ruleWeekendFamily]; ok && boosted == category {
			return 0.2
		}
	}
	return 0
}

// topByBoost sorts tasks by boost descending (stable, so input order breaks
// ties) and returns up to maxSuggestions of them.
func topByBoost(tasks []*store.Task, boost func(*store.Task) float64) []*store.Task {
	scored := make([]scoredTask, 0, len(tasks))
	for _, t := range tasks {
		scored = append(scored, scoredTask{task: t, boost: boost(t)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].boost > scored[j].boost
	})

	top := make([]*store.Task, 0, maxSuggestions)
	for _, st := range scored {
		top = append(top, st.task)
		if len(top) >= maxSuggestions {
			break
		}
	}
	return top
}

type cascadeInput struct {
	now          time.Time
	timeOfDay    string
	highFatigue  bool
	highJoy      bool
	elevated     bool
	mood         CompanionMood
	location     *LocationHint
	pools        taskPools
	dominoRanked []*store.Task
}

// selectCascade evaluates the selection rules in fixed order; the first
// matching rule wins.
func (s *Selector) selectCascade(in cascadeInput, seasonalRules map[string]string) ([]*store.Task, string) {
	byMood := func(t *store.Task) float64 { return moodBoost(t, in.mood) }

	// (a) exhausted mornings get tiny wins.
	if in.timeOfDay == timeMorning && in.highFatigue && len(in.pools.tiny) > 0 {
		return topByBoost(in.pools.tiny, byMood), reasonMorningHighFatigue
	}

	// (b) joyful early afternoons push meaningful progress.
	if in.timeOfDay == timeEarlyAfternoon && in.highJoy && len(in.pools.progress) > 0 {
		return topByBoost(in.pools.progress, byMood), reasonAfternoonHighJoy
	}

	// (c) elevated cognitive load favors whatever unblocks the most.
	if in.elevated && len(in.dominoRanked) > 0 {
		ranked := in.dominoRanked
		if len(ranked) > maxSuggestions {
			ranked = ranked[:maxSuggestions]
		}
		return ranked, reasonHighCognitiveLoad
	}

	// (d) a supplied location surfaces nearby tasks.
	if in.location != nil && len(in.pools.locationRelevant) > 0 {
		context := in.location.Context
		if context == "" {
			context = "nearby"
		}
		return topByBoost(in.pools.locationRelevant, byMood), reasonLocationPrefix + context
	}

	// (e) default: today's pool weighted by mood and seasonal rules.
	pool := in.pools.today
	if len(pool) == 0 {
		pool = in.pools.upcoming
	}
	day := in.now.Weekday()
	totalBoost := func(t *store.Task) float64 {
		return moodBoost(t, in.mood) + seasonalBoost(t, seasonalRules, day)
	}
	return topByBoost(pool, totalBoost), reasonDefault
}
