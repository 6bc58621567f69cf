// Package todos provides database operations for todo items.
//
// Every multi-row query is scoped by owner through its user_id predicate.
// Single-row operations are keyed by ID only; ownership checks happen in
// the todos service before a mutation reaches this layer.
//
// # Usage
//
//	repo := todos.NewRepository(db)
//	items, err := repo.FindMany(userID, entities.TodoFilter{Order: entities.SortAsc})
package todos

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/tasktracker/internal/entities"
)

// Repository handles all todo database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new todos repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a todo. ID and timestamps are filled in on success.
func (r *Repository) Create(todo *entities.Todo) error {
	return r.db.Create(todo).Error
}

// FindByID retrieves a todo regardless of owner. Returns nil, nil if absent.
func (r *Repository) FindByID(id uint) (*entities.Todo, error) {
	var todo entities.Todo
	err := r.db.First(&todo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// Update applies patch to the todo and returns the stored result.
// Returns nil, nil if the todo no longer exists.
func (r *Repository) Update(id uint, patch entities.TodoPatch) (*entities.Todo, error) {
	if !patch.IsEmpty() {
		result := r.db.Model(&entities.Todo{ID: id}).Updates(patch.Columns())
		if result.Error != nil {
			return nil, result.Error
		}
	}
	return r.FindByID(id)
}

// Delete removes a todo by ID. Deleting a missing row is not an error.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Todo{}, id).Error
}

// FindMany lists the owner's todos ordered by creation time, ties broken by ID ascending.
func (r *Repository) FindMany(ownerID uint, filter entities.TodoFilter) ([]entities.Todo, error) {
	direction := "DESC"
	if filter.Order == entities.SortAsc {
		direction = "ASC"
	}

	todos := make([]entities.Todo, 0)
	err := scoped(r.db, ownerID, filter).
		Order("created_at " + direction).
		Order("id ASC").
		Find(&todos).Error
	return todos, err
}

// DeleteMany removes the owner's todos matching filter and returns how many were deleted.
func (r *Repository) DeleteMany(ownerID uint, filter entities.TodoFilter) (int64, error) {
	result := scoped(r.db, ownerID, filter).Delete(&entities.Todo{})
	return result.RowsAffected, result.Error
}

func scoped(db *gorm.DB, ownerID uint, filter entities.TodoFilter) *gorm.DB {
	query := db.Where("user_id = ?", ownerID)
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	return query
}
