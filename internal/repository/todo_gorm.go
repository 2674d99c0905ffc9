package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jaekwang-park/todo-web/internal/model"
)

// todoRecord is the gorm mapping of the todos table. Timestamps are
// assigned by Save, so gorm's automatic tracking is switched off.
type todoRecord struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"not null"`
	DueDate     *time.Time `gorm:"index:todos_due_date_created_at_idx,priority:1"`
	IsResolved  bool       `gorm:"not null"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime:false;index:todos_due_date_created_at_idx,priority:2"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime:false"`
}

func (todoRecord) TableName() string {
	return "todos"
}

func toRecord(t model.Todo) todoRecord {
	rec := todoRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsResolved:  t.IsResolved,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		rec.DueDate = &due
	}
	return rec
}

func (r todoRecord) toModel() model.Todo {
	t := model.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IsResolved:  r.IsResolved,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		due := r.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// OpenSQLite opens a SQLite database through gorm and migrates the todos table.
// SQLite serialises writers, so the pool is limited to one connection; this also
// keeps a ":memory:" database alive for the lifetime of the handle.
func OpenSQLite(path string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&todoRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	return db, nil
}

type GormTodoRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormTodo(db *gorm.DB) *GormTodoRepository {
	return &GormTodoRepository{db: db, now: time.Now}
}

func (r *GormTodoRepository) Save(ctx context.Context, todo *model.Todo) error {
	stamped := *todo
	stamped.Stamp(r.now())
	rec := toRecord(stamped)

	if rec.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to insert todo: %w", err)
		}
		*todo = rec.toModel()
		return nil
	}

	result := r.db.WithContext(ctx).Model(&todoRecord{}).Where("id = ?", rec.ID).Updates(map[string]any{
		"title":       rec.Title,
		"description": rec.Description,
		"due_date":    rec.DueDate,
		"is_resolved": rec.IsResolved,
		"updated_at":  rec.UpdatedAt,
	})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	*todo = rec.toModel()
	return nil
}

func (r *GormTodoRepository) GetByID(ctx context.Context, id int64) (model.Todo, error) {
	var rec todoRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to find todo: %w", err)
	}
	return rec.toModel(), nil
}

func (r *GormTodoRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&todoRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTodoRepository) List(ctx context.Context, params model.TodoListParams) ([]model.Todo, error) {
	orderBy, err := orderByClause(params.OrderBy)
	if err != nil {
		return nil, err
	}

	var recs []todoRecord
	if err := r.filtered(ctx, params.TodoFilter).Order(orderBy).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]model.Todo, 0, len(recs))
	for _, rec := range recs {
		todos = append(todos, rec.toModel())
	}
	return todos, nil
}

func (r *GormTodoRepository) Count(ctx context.Context, filter model.TodoFilter) (int, error) {
	var n int64
	if err := r.filtered(ctx, filter).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return int(n), nil
}

func (r *GormTodoRepository) filtered(ctx context.Context, filter model.TodoFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&todoRecord{})
	if filter.IsResolved != nil {
		q = q.Where("is_resolved = ?", *filter.IsResolved)
	}
	return q
}

var _ TodoRepository = (*GormTodoRepository)(nil)
