// Package todos implements the todo use cases on top of a Store.
//
// Reads by ID are ownership-blind. Every mutation of a single todo first
// looks it up (ErrTodoNotFound) and then checks ownership (auth.ErrNotOwner)
// before the store is touched. List and bulk delete are scoped by owner in
// the store query itself.
package todos

import (
	"fmt"
	"strings"

	"github.com/mrlokans/tasktracker/internal/apperrors"
	"github.com/mrlokans/tasktracker/internal/auth"
	"github.com/mrlokans/tasktracker/internal/entities"
)

var (
	ErrTodoNotFound  = fmt.Errorf("todo %w", apperrors.ErrNotFound)
	ErrTitleRequired = fmt.Errorf("%w: title is required", apperrors.ErrValidation)
)

// Store persists todos. Lookups return nil, nil when the todo is absent.
type Store interface {
	Create(todo *entities.Todo) error
	FindByID(id uint) (*entities.Todo, error)
	Update(id uint, patch entities.TodoPatch) (*entities.Todo, error)
	Delete(id uint) error
	FindMany(ownerID uint, filter entities.TodoFilter) ([]entities.Todo, error)
	DeleteMany(ownerID uint, filter entities.TodoFilter) (int64, error)
}

// DecisionObserver is notified of every ownership decision.
type DecisionObserver interface {
	ObserveOwnership(decision string)
}

// Service manages a user's todos.
type Service struct {
	store    Store
	observer DecisionObserver
}

// NewService creates a todo service. observer may be nil.
func NewService(store Store, observer DecisionObserver) *Service {
	return &Service{store: store, observer: observer}
}

// Create stores a new incomplete todo owned by ownerID.
func (s *Service) Create(title string, ownerID uint) (*entities.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	todo := &entities.Todo{UserID: ownerID, Title: title}
	if err := s.store.Create(todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// List returns the owner's todos.
func (s *Service) List(ownerID uint, filter entities.TodoFilter) ([]entities.Todo, error) {
	if filter.Order == "" {
		filter.Order = entities.SortDesc
	}

	todos, err := s.store.FindMany(ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// FindByID returns a todo without checking ownership.
func (s *Service) FindByID(id uint) (*entities.Todo, error) {
	todo, err := s.store.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

// Get returns a todo only if callerID owns it.
func (s *Service) Get(id, callerID uint) (*entities.Todo, error) {
	return s.owned(id, callerID)
}

// Update applies patch to a todo owned by callerID.
func (s *Service) Update(id uint, patch entities.TodoPatch, callerID uint) (*entities.Todo, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		patch.Title = &title
	}

	if _, err := s.owned(id, callerID); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	if updated == nil {
		return nil, ErrTodoNotFound
	}
	return updated, nil
}

// Delete removes a todo owned by callerID and returns it as it was before deletion.
func (s *Service) Delete(id, callerID uint) (*entities.Todo, error) {
	todo, err := s.owned(id, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(id); err != nil {
		return nil, fmt.Errorf("failed to delete todo: %w", err)
	}
	return todo, nil
}

// DeleteAllCompleted removes every completed todo of the owner and returns the count.
func (s *Service) DeleteAllCompleted(ownerID uint) (int64, error) {
	completed := true
	count, err := s.store.DeleteMany(ownerID, entities.TodoFilter{Completed: &completed})
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed todos: %w", err)
	}
	return count, nil
}

// owned looks the todo up and then applies the ownership guard.
func (s *Service) owned(id, callerID uint) (*entities.Todo, error) {
	todo, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	decision := auth.Authorize(todo.UserID, callerID)
	if s.observer != nil {
		s.observer.ObserveOwnership(string(decision))
	}
	if decision == auth.Denied {
		return nil, auth.ErrNotOwner
	}
	return todo, nil
}
