package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jaekwang-park/todo-web/internal/model"
)

const todoColumns = `id, title, description, due_date, is_resolved, created_at, updated_at`

type PostgresTodoRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresTodo(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db, now: time.Now}
}

func (r *PostgresTodoRepository) Save(ctx context.Context, todo *model.Todo) error {
	stamped := *todo
	stamped.Stamp(r.now())

	if stamped.ID == 0 {
		query := `
			INSERT INTO todos (title, description, due_date, is_resolved, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + todoColumns

		row := r.db.QueryRowContext(ctx, query,
			stamped.Title, stamped.Description, nullTime(stamped.DueDate),
			stamped.IsResolved, stamped.CreatedAt, stamped.UpdatedAt,
		)
		created, err := scanTodo(row)
		if err != nil {
			return fmt.Errorf("failed to insert todo: %w", err)
		}
		*todo = created
		return nil
	}

	query := `
		UPDATE todos
		SET title = $1, description = $2, due_date = $3, is_resolved = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, query,
		stamped.Title, stamped.Description, nullTime(stamped.DueDate),
		stamped.IsResolved, stamped.UpdatedAt, stamped.ID,
	)
	updated, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update todo: %w", err)
	}
	*todo = updated
	return nil
}

func (r *PostgresTodoRepository) GetByID(ctx context.Context, id int64) (model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, err
	}
	return todo, nil
}

func (r *PostgresTodoRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresTodoRepository) List(ctx context.Context, params model.TodoListParams) ([]model.Todo, error) {
	orderBy, err := orderByClause(params.OrderBy)
	if err != nil {
		return nil, err
	}

	where, args := filterClause(params.TodoFilter)
	query := `SELECT ` + todoColumns + ` FROM todos` + where + ` ORDER BY ` + orderBy

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

func (r *PostgresTodoRepository) Count(ctx context.Context, filter model.TodoFilter) (int, error) {
	where, args := filterClause(filter)

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM todos`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}

func filterClause(filter model.TodoFilter) (string, []any) {
	if filter.IsResolved == nil {
		return "", nil
	}
	return ` WHERE is_resolved = $1`, []any{*filter.IsResolved}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTodo(row scannable) (model.Todo, error) {
	var t model.Todo
	var dueDate sql.NullTime
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &dueDate,
		&t.IsResolved, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	if dueDate.Valid {
		due := dueDate.Time
		t.DueDate = &due
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// ensure compile-time interface compliance
var _ TodoRepository = (*PostgresTodoRepository)(nil)
