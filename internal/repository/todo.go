package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jaekwang-park/todo-web/internal/model"
)

// ErrNotFound is returned when no todo has the requested ID.
var ErrNotFound = errors.New("todo not found")

type TodoRepository interface {
	// Save inserts the todo when its ID is zero and updates it otherwise.
	// Timestamps are assigned by Save; callers never set them.
	Save(ctx context.Context, todo *model.Todo) error
	GetByID(ctx context.Context, id int64) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params model.TodoListParams) ([]model.Todo, error)
	Count(ctx context.Context, filter model.TodoFilter) (int, error)
}

// orderByClause renders an ORDER BY list that both Postgres and SQLite accept.
// A null due_date sorts after every date ascending and before them descending.
func orderByClause(orders []model.TodoOrder) (string, error) {
	if len(orders) == 0 {
		orders = model.DefaultTodoOrder
	}

	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		if !o.Field.IsValid() {
			return "", fmt.Errorf("invalid sort field %q", o.Field)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		if o.Field == model.TodoSortDueDate {
			parts = append(parts, fmt.Sprintf("(due_date IS NULL) %s", dir))
		}
		parts = append(parts, fmt.Sprintf("%s %s", o.Field, dir))
	}
	if orders[len(orders)-1].Field != model.TodoSortID {
		parts = append(parts, "id ASC")
	}
	return strings.Join(parts, ", "), nil
}
