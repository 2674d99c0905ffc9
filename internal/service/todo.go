package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaekwang-park/todo-web/internal/form"
	"github.com/jaekwang-park/todo-web/internal/model"
	"github.com/jaekwang-park/todo-web/internal/repository"
)

// listOrder is the ordering of the todo list page: soonest due first,
// todos without a due date last, ties broken by creation time.
var listOrder = []model.TodoOrder{
	{Field: model.TodoSortDueDate},
	{Field: model.TodoSortCreatedAt},
}

type TodoService struct {
	repo repository.TodoRepository
	loc  *time.Location
}

// NewTodoService creates a TodoService. Zone-less due dates submitted
// through forms are interpreted in loc.
func NewTodoService(repo repository.TodoRepository, loc *time.Location) *TodoService {
	if loc == nil {
		loc = time.UTC
	}
	return &TodoService{repo: repo, loc: loc}
}

// Location returns the time zone used for form input and display.
func (s *TodoService) Location() *time.Location {
	return s.loc
}

func (s *TodoService) List(ctx context.Context) (model.TodoSummary, error) {
	todos, err := s.repo.List(ctx, model.TodoListParams{OrderBy: listOrder})
	if err != nil {
		return model.TodoSummary{}, fmt.Errorf("failed to list todos: %w", err)
	}
	return model.NewTodoSummary(todos), nil
}

func (s *TodoService) GetByID(ctx context.Context, id int64) (model.Todo, error) {
	todo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to get todo")
	}
	return todo, nil
}

// Create validates f and stores a new unresolved todo.
func (s *TodoService) Create(ctx context.Context, f form.TodoForm) (model.Todo, error) {
	fields, err := f.Validate(s.loc)
	if err != nil {
		return model.Todo{}, err
	}

	var todo model.Todo
	todo.Apply(fields)

	if err := s.repo.Save(ctx, &todo); err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// Update replaces the title, description and due date of an existing todo.
// The resolved flag is left as it is.
func (s *TodoService) Update(ctx context.Context, id int64, f form.TodoForm) (model.Todo, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to get todo for update")
	}

	fields, err := f.Validate(s.loc)
	if err != nil {
		return existing, err
	}

	existing.Apply(fields)
	if err := s.repo.Save(ctx, &existing); err != nil {
		return model.Todo{}, mapRepoError(err, "failed to update todo")
	}
	return existing, nil
}

// Delete removes a todo and returns it as it was before removal.
func (s *TodoService) Delete(ctx context.Context, id int64) (model.Todo, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to get todo for delete")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return model.Todo{}, mapRepoError(err, "failed to delete todo")
	}
	return existing, nil
}

func (s *TodoService) ToggleResolved(ctx context.Context, id int64) (model.Todo, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to get todo for toggle")
	}

	existing.IsResolved = !existing.IsResolved
	if err := s.repo.Save(ctx, &existing); err != nil {
		return model.Todo{}, mapRepoError(err, "failed to toggle todo")
	}
	return existing, nil
}

// Ping checks that the store answers queries.
func (s *TodoService) Ping(ctx context.Context) error {
	if _, err := s.repo.Count(ctx, model.TodoFilter{}); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return nil
}

func mapRepoError(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
