// Package aggregator converts a user's recent behavioral history into a
// compact memory profile.
package aggregator

import (
	"context"
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/kindredapp/kindred/store"
)

const (
	categoryUncategorized = "uncategorized"

	maxProcrastinationTriggers = 10
	maxEmotionalTriggers       = 15
	maxPositiveReinforcers     = 20
	maxStreakHistory           = 50

	minCompletionStreak = 3

	// A completed task that sat for longer than this counts as procrastinated.
	procrastinationDelay = 7 * 24 * time.Hour
)

var (
	casualMarkers = []string{"like", "just", "maybe", "kinda", "sorta", "gonna", "wanna"}
	formalMarkers = []string{"please", "kindly", "would appreciate", "regarding", "pursuant"}

	casualPatterns = compileMarkerPatterns(casualMarkers)
	formalPatterns = compileMarkerPatterns(formalMarkers)
)

func compileMarkerPatterns(markers []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(markers))
	for _, marker := range markers {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(marker)+`\b`))
	}
	return patterns
}

// Store is the subset of store operations the aggregator depends on.
// *store.Store satisfies it; tests substitute an in-memory fake.
type Store interface {
	ListCorrections(ctx context.Context, find *store.FindCorrection) ([]*store.Correction, error)
	ListTasks(ctx context.Context, find *store.FindTask) ([]*store.Task, error)
	ListDailySessions(ctx context.Context, find *store.FindDailySession) ([]*store.DailySession, error)
	ListJournalEntries(ctx context.Context, find *store.FindJournalEntry) ([]*store.JournalEntry, error)
	ListCompanionEvents(ctx context.Context, find *store.FindCompanionEvent) ([]*store.CompanionEvent, error)
	GetMemoryProfile(ctx context.Context, find *store.FindMemoryProfile) (*store.MemoryProfile, error)
	UpsertMemoryProfile(ctx context.Context, upsert *store.UpsertMemoryProfile) (*store.MemoryProfile, error)
}

// Window is the snapshot of one user's behavioral streams over the lookback
// period, plus the previously persisted payload for config carry-over.
type Window struct {
	Corrections     []*store.Correction
	Tasks           []*store.Task
	Sessions        []*store.DailySession
	JournalEntries  []*store.JournalEntry
	CompanionEvents []*store.CompanionEvent

	// Previous holds the last persisted payload; only its user-maintained
	// focus preferences survive into the recomputed profile.
	Previous *store.MemoryProfilePayload
}

// Aggregator computes memory profiles from store data.
type Aggregator struct {
	store       Store
	window      time.Duration
	concurrency int
}

// New creates a profile aggregator with the given lookback window and
// batch concurrency bound.
func New(st Store, window time.Duration, concurrency int) *Aggregator {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Aggregator{
		store:       st,
		window:      window,
		concurrency: concurrency,
	}
}

// FetchWindow loads the five behavioral streams for one user.
func (a *Aggregator) FetchWindow(ctx context.Context, userID int32, now time.Time) (*Window, error) {
	since := now.Add(-a.window).Unix()

	corrections, err := a.store.ListCorrections(ctx, &store.FindCorrection{CreatorID: &userID, CreatedAfter: &since})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list corrections")
	}
	tasks, err := a.store.ListTasks(ctx, &store.FindTask{CreatorID: &userID, CreatedAfter: &since})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}
	sessions, err := a.store.ListDailySessions(ctx, &store.FindDailySession{CreatorID: &userID, CreatedAfter: &since})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list daily sessions")
	}
	journalEntries, err := a.store.ListJournalEntries(ctx, &store.FindJournalEntry{CreatorID: &userID, CreatedAfter: &since})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list journal entries")
	}
	companionEvents, err := a.store.ListCompanionEvents(ctx, &store.FindCompanionEvent{CreatorID: &userID, CreatedAfter: &since})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list companion events")
	}

	window := &Window{
		Corrections:     corrections,
		Tasks:           tasks,
		Sessions:        sessions,
		JournalEntries:  journalEntries,
		CompanionEvents: companionEvents,
	}

	existing, err := a.store.GetMemoryProfile(ctx, &store.FindMemoryProfile{UserID: &userID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get existing memory profile")
	}
	if existing != nil {
		previous, err := store.UnmarshalMemoryProfilePayload(existing.Payload)
		if err != nil {
			return nil, err
		}
		window.Previous = previous
	}

	return window, nil
}

// AggregateUser recomputes and persists the memory profile for one user.
func (a *Aggregator) AggregateUser(ctx context.Context, userID int32) (*store.MemoryProfilePayload, error) {
	window, err := a.FetchWindow(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	payload := ComputeProfile(window, time.Now())
	raw, err := payload.Marshal()
	if err != nil {
		return nil, err
	}

	if _, err := a.store.UpsertMemoryProfile(ctx, &store.UpsertMemoryProfile{
		UserID:  userID,
		Payload: raw,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to upsert memory profile")
	}
	return payload, nil
}

// ComputeProfile deterministically derives a memory profile from a window.
// It is pure with respect to its inputs: an unchanged window yields an
// identical payload modulo LastUpdated.
func ComputeProfile(window *Window, now time.Time) *store.MemoryProfilePayload {
	payload := store.NewMemoryProfilePayload()

	payload.CategoryPreferences = computeCategoryPreferences(window.Corrections, window.Tasks)
	payload.PriorityBias = computePriorityBias(window.Corrections, window.Tasks)
	payload.WritingStyle = computeWritingStyle(window.Tasks)
	payload.TinyTaskThreshold = computeTinyTaskThreshold(window.Tasks)
	payload.EnergyPattern = computeEnergyPattern(window.Tasks)
	payload.ProcrastinationTriggers = computeProcrastinationTriggers(window.Tasks)
	payload.EmotionalTriggers, payload.PositiveReinforcers = computeTriggerTags(window.JournalEntries, window.CompanionEvents)
	payload.StreakHistory = computeStreakHistory(window.Sessions, window.Tasks)

	// Focus preferences are user-maintained config, carried over untouched.
	if window.Previous != nil {
		payload.FocusPreferences = window.Previous.FocusPreferences
	}

	payload.LastUpdated = now.UTC().Format(time.RFC3339)
	return payload
}

// normalizeByMax rescales every value relative to the mapping's own maximum,
// floored at 1 to avoid division by zero, clamped into [0,1]. Scaling is
// relative by design: two windows with different raw magnitudes but the same
// relative ordering normalize identically.
func normalizeByMax(values map[string]float64) map[string]float64 {
	maxValue := 0.0
	for _, v := range values {
		if v > maxValue {
			maxValue = v
		}
	}
	denominator := math.Max(maxValue, 1)

	normalized := make(map[string]float64, len(values))
	for k, v := range values {
		normalized[k] = math.Min(v/denominator, 1)
	}
	return normalized
}

func computeCategoryPreferences(corrections []*store.Correction, tasks []*store.Task) map[string]float64 {
	weights := map[string]float64{}
	for _, c := range corrections {
		if c.CorrectedCategory != nil && *c.CorrectedCategory != "" {
			weights[*c.CorrectedCategory] += 0.15
		}
	}
	for _, t := range tasks {
		if t.Completed && t.Category != nil && *t.Category != "" {
			weights[*t.Category] += 0.05
		}
	}
	return normalizeByMax(weights)
}

func isRecognizedPriority(priority string) bool {
	return priority == store.PriorityMust || priority == store.PriorityShould || priority == store.PriorityCould
}

func computePriorityBias(corrections []*store.Correction, tasks []*store.Task) map[string]float64 {
	bias := map[string]float64{
		store.PriorityMust:   0.5,
		store.PriorityShould: 0.5,
		store.PriorityCould:  0.5,
	}

	for _, c := range corrections {
		if c.CorrectedPriority != nil && isRecognizedPriority(*c.CorrectedPriority) {
			bias[*c.CorrectedPriority] += 0.08
		}
	}

	// Completion rate per scheduled bucket nudges the bias toward what the
	// user actually finishes.
	completed := map[string]int{}
	total := map[string]int{}
	for _, t := range tasks {
		if t.ScheduledBucket == nil || !isRecognizedPriority(*t.ScheduledBucket) {
			continue
		}
		total[*t.ScheduledBucket]++
		if t.Completed {
			completed[*t.ScheduledBucket]++
		}
	}

	for key := range bias {
		rate := 0.5
		if total[key] > 0 {
			rate = float64(completed[key]) / float64(total[key])
		}
		bias[key] = math.Min(1, bias[key]+(rate-0.5)*0.2)
	}
	return bias
}

func computeWritingStyle(tasks []*store.Task) string {
	casualCount, formalCount := 0, 0
	nonEmptyTitles := 0
	for _, t := range tasks {
		if t.Title == "" {
			continue
		}
		nonEmptyTitles++
		for _, pattern := range casualPatterns {
			casualCount += len(pattern.FindAllStringIndex(t.Title, -1))
		}
		for _, pattern := range formalPatterns {
			formalCount += len(pattern.FindAllStringIndex(t.Title, -1))
		}
	}

	if nonEmptyTitles == 0 {
		return ""
	}
	switch {
	case float64(formalCount) > float64(casualCount)*1.5:
		return store.WritingStyleFormal
	case float64(casualCount) > float64(formalCount)*1.5:
		return store.WritingStyleCasual
	default:
		return store.WritingStyleNeutral
	}
}

func computeTinyTaskThreshold(tasks []*store.Task) int {
	totalLength, count := 0, 0
	for _, t := range tasks {
		if t.IsTinyTask {
			totalLength += len([]rune(t.Title))
			count++
		}
	}
	if count == 0 {
		return store.DefaultTinyTaskThreshold
	}
	return int(math.Round(float64(totalLength) / float64(count)))
}

func energyBucket(hour int) string {
	switch {
	case hour >= 6 && hour <= 11:
		return store.EnergyMorning
	case hour >= 12 && hour <= 17:
		return store.EnergyAfternoon
	default:
		return store.EnergyNight
	}
}

func computeEnergyPattern(tasks []*store.Task) map[string]float64 {
	weights := map[string]float64{}
	for _, t := range tasks {
		bucket := energyBucket(t.CreatedAt().Hour())
		if t.Completed {
			weights[bucket] += 0.1
		} else {
			weights[bucket] += 0.03
		}
	}
	return normalizeByMax(weights)
}

func computeProcrastinationTriggers(tasks []*store.Task) []string {
	triggers := []string{}
	seen := map[string]bool{}
	for _, t := range tasks {
		if !t.Completed || t.CompletedTs == nil {
			continue
		}
		if t.CompletedAt().Sub(t.CreatedAt()) <= procrastinationDelay {
			continue
		}
		category := t.CategoryOrDefault(categoryUncategorized)
		if seen[category] {
			continue
		}
		seen[category] = true
		triggers = append(triggers, category)
		if len(triggers) >= maxProcrastinationTriggers {
			break
		}
	}
	return triggers
}

func computeTriggerTags(entries []*store.JournalEntry, events []*store.CompanionEvent) ([]string, []string) {
	triggers := []string{}
	reinforcers := []string{}
	seenTrigger := map[string]bool{}
	seenReinforcer := map[string]bool{}

	addTrigger := func(tag string) {
		if !seenTrigger[tag] && len(triggers) < maxEmotionalTriggers {
			seenTrigger[tag] = true
			triggers = append(triggers, tag)
		}
	}
	addReinforcer := func(tag string) {
		if !seenReinforcer[tag] && len(reinforcers) < maxPositiveReinforcers {
			seenReinforcer[tag] = true
			reinforcers = append(reinforcers, tag)
		}
	}

	for _, entry := range entries {
		switch entry.Mood {
		case store.MoodStressed, store.MoodOverwhelmed:
			addTrigger(entry.Mood.String() + "_day")
		case store.MoodHappy, store.MoodExcited:
			addReinforcer(entry.Mood.String() + "_moment")
		case store.MoodCalm, store.MoodTired:
			// Neutral moods carry no tag.
		case store.MoodUnknown:
			// Unrecognized mood values are an explicit no-op, not a drop.
		}
	}

	for _, event := range events {
		switch event.EventType {
		case store.CompanionEventTaskCompleted:
			addReinforcer("task_completion")
		case store.CompanionEventStreakAchieved:
			addReinforcer("streak_milestone")
		case store.CompanionEventCheckIn, store.CompanionEventEmotionShift:
			// Not a reinforcer signal.
		case store.CompanionEventUnknown:
			// Unrecognized event types are an explicit no-op, not a drop.
		}
	}

	return triggers, reinforcers
}

func computeStreakHistory(sessions []*store.DailySession, tasks []*store.Task) []store.StreakEntry {
	entries := []store.StreakEntry{}

	for _, session := range sessions {
		if session.HasReflection() {
			entries = append(entries, store.StreakEntry{
				Date:  session.SessionDate,
				Type:  store.StreakDailySession,
				Value: 1,
			})
		}
	}

	entries = append(entries, completionStreaks(tasks)...)

	// Retain the most recent entries, truncating from the front.
	if len(entries) > maxStreakHistory {
		entries = entries[len(entries)-maxStreakHistory:]
	}
	return entries
}

// completionStreaks walks the distinct completion dates in ascending order
// and emits one entry per run of at least minCompletionStreak consecutive
// days, dated at the run's last day.
func completionStreaks(tasks []*store.Task) []store.StreakEntry {
	seen := map[string]bool{}
	dates := []time.Time{}
	for _, t := range tasks {
		if !t.Completed || t.CompletedTs == nil {
			continue
		}
		day := t.CompletedAt().UTC().Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	entries := []store.StreakEntry{}
	runLength := 0
	for i, day := range dates {
		if i > 0 && dates[i-1].AddDate(0, 0, 1).Equal(day) {
			runLength++
		} else {
			if runLength >= minCompletionStreak {
				entries = append(entries, store.StreakEntry{
					Date:  dates[i-1].Format("2006-01-02"),
					Type:  store.StreakCompletionStreak,
					Value: runLength,
				})
			}
			runLength = 1
		}
	}
	if runLength >= minCompletionStreak {
		entries = append(entries, store.StreakEntry{
			Date:  dates[len(dates)-1].Format("2006-01-02"),
			Type:  store.StreakCompletionStreak,
			Value: runLength,
		})
	}
	return entries
}
