// Package companion exposes the companion state to the rest of the core.
package companion

import (
	"context"

	"github.com/kindredapp/kindred/store"
)

// Provider supplies the companion's live emotional snapshot for a user.
type Provider interface {
	EmotionalSnapshot(ctx context.Context, userID int32) (store.EmotionalState, error)
}

// StoreProvider reads the persisted companion state.
type StoreProvider struct {
	store *store.Store
}

// NewStoreProvider creates a store-backed companion provider.
func NewStoreProvider(st *store.Store) *StoreProvider {
	return &StoreProvider{store: st}
}

// EmotionalSnapshot returns the latest persisted snapshot, defaulting every
// dimension to 50 when no row exists.
func (p *StoreProvider) EmotionalSnapshot(ctx context.Context, userID int32) (store.EmotionalState, error) {
	state, err := p.store.GetCompanionState(ctx, &store.FindCompanionState{UserID: &userID})
	if err != nil {
		return store.DefaultEmotionalState(), err
	}
	if state == nil {
		return store.DefaultEmotionalState(), nil
	}
	return state.EmotionalState(), nil
}
