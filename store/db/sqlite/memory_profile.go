package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kindredapp/kindred/store"
)

func (d *DB) UpsertMemoryProfile(ctx context.Context, upsert *store.UpsertMemoryProfile) (*store.MemoryProfile, error) {
	now := time.Now().Unix()

	stmt := `INSERT INTO memory_profile (user_id, payload, created_ts, updated_ts)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (user_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_ts = EXCLUDED.updated_ts
		RETURNING user_id, payload, created_ts, updated_ts`

	result := &store.MemoryProfile{}
	err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.Payload, now, now).Scan(
		&result.UserID,
		&result.Payload,
		&result.CreatedTs,
		&result.UpdatedTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert memory_profile: %w", err)
	}

	return result, nil
}

func (d *DB) GetMemoryProfile(ctx context.Context, find *store.FindMemoryProfile) (*store.MemoryProfile, error) {
	if find.UserID == nil {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT user_id, payload, created_ts, updated_ts FROM memory_profile WHERE user_id = ` + placeholder(1)

	result := &store.MemoryProfile{}
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&result.UserID,
		&result.Payload,
		&result.CreatedTs,
		&result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get memory_profile: %w", err)
	}

	return result, nil
}

func (d *DB) DeleteMemoryProfile(ctx context.Context, userID int32) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM memory_profile WHERE user_id = `+placeholder(1), userID); err != nil {
		return fmt.Errorf("failed to delete memory_profile: %w", err)
	}
	return nil
}

func (d *DB) UpsertCompanionState(ctx context.Context, upsert *store.UpsertCompanionState) (*store.CompanionState, error) {
	now := time.Now().Unix()

	stmt := `INSERT INTO companion_state (user_id, joy, stress, fatigue, affection, updated_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (user_id) DO UPDATE SET
			joy = EXCLUDED.joy,
			stress = EXCLUDED.stress,
			fatigue = EXCLUDED.fatigue,
			affection = EXCLUDED.affection,
			updated_ts = EXCLUDED.updated_ts
		RETURNING user_id, joy, stress, fatigue, affection, updated_ts`

	result := &store.CompanionState{}
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID, upsert.Joy, upsert.Stress, upsert.Fatigue, upsert.Affection, now,
	).Scan(
		&result.UserID,
		&result.Joy,
		&result.Stress,
		&result.Fatigue,
		&result.Affection,
		&result.UpdatedTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert companion_state: %w", err)
	}

	return result, nil
}

func (d *DB) GetCompanionState(ctx context.Context, find *store.FindCompanionState) (*store.CompanionState, error) {
	if find.UserID == nil {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT user_id, joy, stress, fatigue, affection, updated_ts FROM companion_state WHERE user_id = ` + placeholder(1)

	result := &store.CompanionState{}
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&result.UserID,
		&result.Joy,
		&result.Stress,
		&result.Fatigue,
		&result.Affection,
		&result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get companion_state: %w", err)
	}

	return result, nil
}
