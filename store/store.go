package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/kindredapp/kindred/internal/profile"
	"github.com/kindredapp/kindred/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	memoryProfileCache  *cache.Cache // cache for memory profile rows
	companionStateCache *cache.Cache // cache for companion state rows
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:              driver,
		profile:             profile,
		cacheConfig:         cacheConfig,
		memoryProfileCache:  cache.New(cacheConfig),
		companionStateCache: cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.memoryProfileCache.Close()
	s.companionStateCache.Close()

	return s.driver.Close()
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

func (s *Store) DeleteUser(ctx context.Context, id int32) error {
	// A user deletion is the only path that removes a memory profile.
	if err := s.driver.DeleteMemoryProfile(ctx, id); err != nil {
		return err
	}
	s.memoryProfileCache.Delete(memoryProfileCacheKey(id))
	return s.driver.DeleteUser(ctx, id)
}

func (s *Store) CreateTask(ctx context.Context, create *Task) (*Task, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateTask(ctx, create)
}

func (s *Store) ListTasks(ctx context.Context, find *FindTask) ([]*Task, error) {
	return s.driver.ListTasks(ctx, find)
}

func (s *Store) UpdateTask(ctx context.Context, update *UpdateTask) error {
	return s.driver.UpdateTask(ctx, update)
}

func (s *Store) DeleteTask(ctx context.Context, delete *DeleteTask) error {
	return s.driver.DeleteTask(ctx, delete)
}

func (s *Store) CreateCorrection(ctx context.Context, create *Correction) (*Correction, error) {
	return s.driver.CreateCorrection(ctx, create)
}

func (s *Store) ListCorrections(ctx context.Context, find *FindCorrection) ([]*Correction, error) {
	return s.driver.ListCorrections(ctx, find)
}

func (s *Store) CreateDailySession(ctx context.Context, create *DailySession) (*DailySession, error) {
	return s.driver.CreateDailySession(ctx, create)
}

func (s *Store) ListDailySessions(ctx context.Context, find *FindDailySession) ([]*DailySession, error) {
	return s.driver.ListDailySessions(ctx, find)
}

func (s *Store) CreateJournalEntry(ctx context.Context, create *JournalEntry) (*JournalEntry, error) {
	return s.driver.CreateJournalEntry(ctx, create)
}

func (s *Store) ListJournalEntries(ctx context.Context, find *FindJournalEntry) ([]*JournalEntry, error) {
	return s.driver.ListJournalEntries(ctx, find)
}

func (s *Store) CreateCompanionEvent(ctx context.Context, create *CompanionEvent) (*CompanionEvent, error) {
	return s.driver.CreateCompanionEvent(ctx, create)
}

func (s *Store) ListCompanionEvents(ctx context.Context, find *FindCompanionEvent) ([]*CompanionEvent, error) {
	return s.driver.ListCompanionEvents(ctx, find)
}

func (s *Store) UpsertCompanionState(ctx context.Context, upsert *UpsertCompanionState) (*CompanionState, error) {
	state, err := s.driver.UpsertCompanionState(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.companionStateCache.Set(companionStateCacheKey(upsert.UserID), state)
	return state, nil
}

func (s *Store) GetCompanionState(ctx context.Context, find *FindCompanionState) (*CompanionState, error) {
	if find.UserID != nil {
		if cached, ok := s.companionStateCache.Get(companionStateCacheKey(*find.UserID)); ok {
			if state, ok := cached.(*CompanionState); ok {
				return state, nil
			}
		}
	}

	state, err := s.driver.GetCompanionState(ctx, find)
	if err != nil {
		return nil, err
	}
	if state != nil {
		s.companionStateCache.Set(companionStateCacheKey(state.UserID), state)
	}
	return state, nil
}

func (s *Store) UpsertMemoryProfile(ctx context.Context, upsert *UpsertMemoryProfile) (*MemoryProfile, error) {
	memoryProfile, err := s.driver.UpsertMemoryProfile(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.memoryProfileCache.Set(memoryProfileCacheKey(upsert.UserID), memoryProfile)
	return memoryProfile, nil
}

func (s *Store) GetMemoryProfile(ctx context.Context, find *FindMemoryProfile) (*MemoryProfile, error) {
	if find.UserID != nil {
		if cached, ok := s.memoryProfileCache.Get(memoryProfileCacheKey(*find.UserID)); ok {
			if memoryProfile, ok := cached.(*MemoryProfile); ok {
				return memoryProfile, nil
			}
		}
	}

	memoryProfile, err := s.driver.GetMemoryProfile(ctx, find)
	if err != nil {
		return nil, err
	}
	if memoryProfile != nil {
		s.memoryProfileCache.Set(memoryProfileCacheKey(memoryProfile.UserID), memoryProfile)
	}
	return memoryProfile, nil
}

func memoryProfileCacheKey(userID int32) string {
	return fmt.Sprintf("memory_profile:%d", userID)
}

func companionStateCacheKey(userID int32) string {
	return fmt.Sprintf("companion_state:%d", userID)
}
