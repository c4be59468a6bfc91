package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kindredapp/kindred/store"
)

// The four behavioral input streams (corrections, daily sessions, journal
// entries, companion events) share the same append-and-list access pattern.

func (d *DB) CreateCorrection(ctx context.Context, create *store.Correction) (*store.Correction, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stmt := `INSERT INTO correction (creator_id, corrected_category, corrected_priority, created_ts)
		VALUES (` + placeholders(4) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.CreatorID,
		create.CorrectedCategory,
		create.CorrectedPriority,
		create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create correction: %w", err)
	}

	return create, nil
}

func (d *DB) ListCorrections(ctx context.Context, find *store.FindCorrection) ([]*store.Correction, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT id, creator_id, corrected_category, corrected_priority, created_ts
		FROM correction
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, id ASC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Correction, 0)
	for rows.Next() {
		correction := &store.Correction{}
		if err := rows.Scan(
			&correction.ID,
			&correction.CreatorID,
			&correction.CorrectedCategory,
			&correction.CorrectedPriority,
			&correction.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		list = append(list, correction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}

	return list, nil
}

func (d *DB) CreateDailySession(ctx context.Context, create *store.DailySession) (*store.DailySession, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stmt := `INSERT INTO daily_session (creator_id, session_date, reflection_wins, top_focus, created_ts)
		VALUES (` + placeholders(5) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.CreatorID,
		create.SessionDate,
		create.ReflectionWins,
		create.TopFocus,
		create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create daily session: %w", err)
	}

	return create, nil
}

func (d *DB) ListDailySessions(ctx context.Context, find *store.FindDailySession) ([]*store.DailySession, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT id, creator_id, session_date, reflection_wins, top_focus, created_ts
		FROM daily_session
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, id ASC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.DailySession, 0)
	for rows.Next() {
		session := &store.DailySession{}
		if err := rows.Scan(
			&session.ID,
			&session.CreatorID,
			&session.SessionDate,
			&session.ReflectionWins,
			&session.TopFocus,
			&session.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily session: %w", err)
		}
		list = append(list, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily sessions: %w", err)
	}

	return list, nil
}

func (d *DB) CreateJournalEntry(ctx context.Context, create *store.JournalEntry) (*store.JournalEntry, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	if create.Mood == "" {
		create.Mood = store.MoodUnknown
	}

	stmt := `INSERT INTO journal_entry (creator_id, mood, note, created_ts)
		VALUES (` + placeholders(4) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.CreatorID,
		create.Mood.String(),
		create.Note,
		create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return create, nil
}

func (d *DB) ListJournalEntries(ctx context.Context, find *store.FindJournalEntry) ([]*store.JournalEntry, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT id, creator_id, mood, note, created_ts
		FROM journal_entry
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, id ASC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	list := make([]*store.JournalEntry, 0)
	for rows.Next() {
		entry := &store.JournalEntry{}
		var mood string
		if err := rows.Scan(
			&entry.ID,
			&entry.CreatorID,
			&mood,
			&entry.Note,
			&entry.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entry.Mood = store.ParseMood(mood)
		list = append(list, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal entries: %w", err)
	}

	return list, nil
}

func (d *DB) CreateCompanionEvent(ctx context.Context, create *store.CompanionEvent) (*store.CompanionEvent, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	if create.EventType == "" {
		create.EventType = store.CompanionEventUnknown
	}
	if create.Payload == "" {
		create.Payload = "{}"
	}

	stmt := `INSERT INTO companion_event (creator_id, event_type, payload, created_ts)
		VALUES (` + placeholders(4) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.CreatorID,
		create.EventType.String(),
		create.Payload,
		create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create companion event: %w", err)
	}

	return create, nil
}

func (d *DB) ListCompanionEvents(ctx context.Context, find *store.FindCompanionEvent) ([]*store.CompanionEvent, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT id, creator_id, event_type, payload, created_ts
		FROM companion_event
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, id ASC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companion events: %w", err)
	}
	defer rows.Close()

	list := make([]*store.CompanionEvent, 0)
	for rows.Next() {
		event := &store.CompanionEvent{}
		var eventType string
		if err := rows.Scan(
			&event.ID,
			&event.CreatorID,
			&eventType,
			&event.Payload,
			&event.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan companion event: %w", err)
		}
		event.EventType = store.ParseCompanionEventType(eventType)
		list = append(list, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companion events: %w", err)
	}

	return list, nil
}
