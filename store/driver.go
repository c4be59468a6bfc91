package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	DeleteUser(ctx context.Context, id int32) error

	// Task model related methods.
	CreateTask(ctx context.Context, create *Task) (*Task, error)
	ListTasks(ctx context.Context, find *FindTask) ([]*Task, error)
	UpdateTask(ctx context.Context, update *UpdateTask) error
	DeleteTask(ctx context.Context, delete *DeleteTask) error

	// Correction model related methods.
	CreateCorrection(ctx context.Context, create *Correction) (*Correction, error)
	ListCorrections(ctx context.Context, find *FindCorrection) ([]*Correction, error)

	// DailySession model related methods.
	CreateDailySession(ctx context.Context, create *DailySession) (*DailySession, error)
	ListDailySessions(ctx context.Context, find *FindDailySession) ([]*DailySession, error)

	// JournalEntry model related methods.
	CreateJournalEntry(ctx context.Context, create *JournalEntry) (*JournalEntry, error)
	ListJournalEntries(ctx context.Context, find *FindJournalEntry) ([]*JournalEntry, error)

	// CompanionEvent model related methods.
	CreateCompanionEvent(ctx context.Context, create *CompanionEvent) (*CompanionEvent, error)
	ListCompanionEvents(ctx context.Context, find *FindCompanionEvent) ([]*CompanionEvent, error)

	// CompanionState model related methods.
	UpsertCompanionState(ctx context.Context, upsert *UpsertCompanionState) (*CompanionState, error)
	GetCompanionState(ctx context.Context, find *FindCompanionState) (*CompanionState, error)

	// MemoryProfile model related methods.
	UpsertMemoryProfile(ctx context.Context, upsert *UpsertMemoryProfile) (*MemoryProfile, error)
	GetMemoryProfile(ctx context.Context, find *FindMemoryProfile) (*MemoryProfile, error)
	DeleteMemoryProfile(ctx context.Context, userID int32) error
}
