package model

import "time"

// TitleMaxLength is the maximum number of characters in a todo title.
const TitleMaxLength = 200

type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsResolved  bool       `json:"is_resolved"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t Todo) String() string {
	return t.Title
}

// IsOverdue reports whether the todo has a due date before now and is still open.
func (t Todo) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsResolved {
		return false
	}
	return now.After(*t.DueDate)
}

// Stamp applies the persistence timestamp rule for a save at now.
// A todo without an ID gets both timestamps; an existing one only gets
// UpdatedAt, which always moves strictly forward.
func (t *Todo) Stamp(now time.Time) {
	now = now.UTC().Truncate(time.Microsecond)
	if t.ID == 0 {
		t.CreatedAt = now
		t.UpdatedAt = now
		return
	}
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = now
}

// Apply copies the user-editable fields onto the todo.
func (t *Todo) Apply(f TodoFields) {
	t.Title = f.Title
	t.Description = f.Description
	t.DueDate = f.DueDate
}

// TodoFields holds validated user input for a todo.
type TodoFields struct {
	Title       string
	Description string
	DueDate     *time.Time
}

type TodoSortField string

const (
	TodoSortID         TodoSortField = "id"
	TodoSortTitle      TodoSortField = "title"
	TodoSortDueDate    TodoSortField = "due_date"
	TodoSortIsResolved TodoSortField = "is_resolved"
	TodoSortCreatedAt  TodoSortField = "created_at"
	TodoSortUpdatedAt  TodoSortField = "updated_at"
)

func (f TodoSortField) IsValid() bool {
	switch f {
	case TodoSortID, TodoSortTitle, TodoSortDueDate, TodoSortIsResolved, TodoSortCreatedAt, TodoSortUpdatedAt:
		return true
	}
	return false
}

type TodoOrder struct {
	Field TodoSortField
	Desc  bool
}

// DefaultTodoOrder is used when a listing does not name an ordering.
var DefaultTodoOrder = []TodoOrder{{Field: TodoSortCreatedAt, Desc: true}}

type TodoFilter struct {
	IsResolved *bool
}

type TodoListParams struct {
	TodoFilter
	OrderBy []TodoOrder
}

// TodoSummary is the list view of all todos with their status counts.
type TodoSummary struct {
	Todos         []Todo
	TotalCount    int
	ResolvedCount int
	PendingCount  int
}

// NewTodoSummary counts resolved and pending todos in todos.
func NewTodoSummary(todos []Todo) TodoSummary {
	s := TodoSummary{Todos: todos, TotalCount: len(todos)}
	for _, t := range todos {
		if t.IsResolved {
			s.ResolvedCount++
		} else {
			s.PendingCount++
		}
	}
	return s
}
