package store

import (
	"strings"
	"time"
)

// Task is the object representing a user task.
type Task struct {
	ID              int32
	UID             string
	CreatorID       int32
	Title           string
	Category        *string
	ScheduledBucket *string
	Completed       bool
	CreatedTs       int64
	CompletedTs     *int64
	ReminderTs      *int64
	IsTinyTask      bool
	Latitude        *float64
	Longitude       *float64
	Keywords        []string
}

// FindTask is the find condition for task.
type FindTask struct {
	ID        *int32
	UID       *string
	CreatorID *int32

	// Completion filter
	Completed *bool

	// Time range filter on created_ts
	CreatedAfter *int64

	// Ordering and pagination
	OrderByCreatedDesc bool
	Limit              *int
	Offset             *int
}

// UpdateTask is the update request for task.
type UpdateTask struct {
	ID          int32
	Title       *string
	Category    *string
	Completed   *bool
	CompletedTs *int64
	ReminderTs  *int64
}

// DeleteTask is the delete request for task.
type DeleteTask struct {
	ID int32
}

// CreatedAt parses the task creation time to time.Time.
func (t *Task) CreatedAt() time.Time {
	return time.Unix(t.CreatedTs, 0)
}

// CompletedAt parses the task completion time to time.Time.
func (t *Task) CompletedAt() *time.Time {
	if t.CompletedTs == nil {
		return nil
	}
	ts := time.Unix(*t.CompletedTs, 0)
	return &ts
}

// ReminderAt parses the task reminder time to time.Time.
func (t *Task) ReminderAt() *time.Time {
	if t.ReminderTs == nil {
		return nil
	}
	ts := time.Unix(*t.ReminderTs, 0)
	return &ts
}

// CategoryOrDefault returns the task category, or the given fallback when unset.
func (t *Task) CategoryOrDefault(fallback string) string {
	if t.Category == nil || *t.Category == "" {
		return fallback
	}
	return *t.Category
}

// TitleWordCount returns the number of whitespace-separated words in the title.
func (t *Task) TitleWordCount() int {
	return len(strings.Fields(t.Title))
}

// HasLocation returns true if the task carries coordinates.
func (t *Task) HasLocation() bool {
	return t.Latitude != nil && t.Longitude != nil
}
