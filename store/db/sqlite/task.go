package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kindredapp/kindred/store"
)

func (d *DB) CreateTask(ctx context.Context, create *store.Task) (*store.Task, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	keywords, err := json.Marshal(create.Keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task keywords: %w", err)
	}

	stmt := `INSERT INTO task (
			uid, creator_id, title, category, scheduled_bucket, completed,
			created_ts, completed_ts, reminder_ts, is_tiny_task, latitude, longitude, keywords
		)
		VALUES (` + placeholders(13) + `)
		RETURNING id`

	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.CreatorID,
		create.Title,
		create.Category,
		create.ScheduledBucket,
		create.Completed,
		create.CreatedTs,
		create.CompletedTs,
		create.ReminderTs,
		create.IsTinyTask,
		create.Latitude,
		create.Longitude,
		string(keywords),
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return create, nil
}

func (d *DB) ListTasks(ctx context.Context, find *store.FindTask) ([]*store.Task, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Completed; v != nil {
		where, args = append(where, "completed = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT
			id, uid, creator_id, title, category, scheduled_bucket, completed,
			created_ts, completed_ts, reminder_ts, is_tiny_task, latitude, longitude, keywords
		FROM task
		WHERE ` + strings.Join(where, " AND ")
	if find.OrderByCreatedDesc {
		query += " ORDER BY created_ts DESC, id DESC"
	} else {
		query += " ORDER BY created_ts ASC, id ASC"
	}
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if find.Offset != nil {
			query += fmt.Sprintf(" OFFSET %d", *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Task, 0)
	for rows.Next() {
		task := &store.Task{}
		var keywords string
		if err := rows.Scan(
			&task.ID,
			&task.UID,
			&task.CreatorID,
			&task.Title,
			&task.Category,
			&task.ScheduledBucket,
			&task.Completed,
			&task.CreatedTs,
			&task.CompletedTs,
			&task.ReminderTs,
			&task.IsTinyTask,
			&task.Latitude,
			&task.Longitude,
			&keywords,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if keywords != "" {
			if err := json.Unmarshal([]byte(keywords), &task.Keywords); err != nil {
				return nil, fmt.Errorf("failed to unmarshal task keywords: %w", err)
			}
		}
		list = append(list, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateTask(ctx context.Context, update *store.UpdateTask) error {
	set, args := []string{}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Category; v != nil {
		set, args = append(set, "category = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Completed; v != nil {
		set, args = append(set, "completed = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.CompletedTs; v != nil {
		set, args = append(set, "completed_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.ReminderTs; v != nil {
		set, args = append(set, "reminder_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE task SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (d *DB) DeleteTask(ctx context.Context, delete *store.DeleteTask) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM task WHERE id = `+placeholder(1), delete.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
