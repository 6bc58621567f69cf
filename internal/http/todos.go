package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/tasktracker/internal/apperrors"
	"github.com/mrlokans/tasktracker/internal/audit"
	"github.com/mrlokans/tasktracker/internal/auth"
	"github.com/mrlokans/tasktracker/internal/entities"
)

// TodoService is the subset of todos.Service used by the controller.
type TodoService interface {
	Create(title string, ownerID uint) (*entities.Todo, error)
	List(ownerID uint, filter entities.TodoFilter) ([]entities.Todo, error)
	Get(id, callerID uint) (*entities.Todo, error)
	Update(id uint, patch entities.TodoPatch, callerID uint) (*entities.Todo, error)
	Delete(id, callerID uint) (*entities.Todo, error)
	DeleteAllCompleted(ownerID uint) (int64, error)
}

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Title string `json:"title" binding:"required,max=512"`
}

// UpdateTodoRequest is the body of PATCH /todos/:id. Omitted fields are unchanged.
type UpdateTodoRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=512"`
	Completed *bool   `json:"completed"`
}

type TodosController struct {
	service TodoService
	audit   *audit.Service
}

// NewTodosController creates the todo controller. auditService may be nil.
func NewTodosController(service TodoService, auditService *audit.Service) *TodosController {
	return &TodosController{
		service: service,
		audit:   auditService,
	}
}

// RegisterRoutes mounts the todo endpoints on an already authenticated group.
func (tc *TodosController) RegisterRoutes(group gin.IRouter) {
	group.POST("/todos", tc.CreateTodo)
	group.GET("/todos", tc.ListTodos)
	group.DELETE("/todos", tc.DeleteCompleted)
	group.GET("/todos/:id", tc.GetTodo)
	group.PATCH("/todos/:id", tc.UpdateTodo)
	group.DELETE("/todos/:id", tc.DeleteTodo)
}

// CreateTodo creates a todo owned by the caller
// POST /todos
func (tc *TodosController) CreateTodo(c *gin.Context) {
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	todo, err := tc.service.Create(req.Title, auth.GetUserID(c))
	if err != nil {
		respondDomainError(c, err, "create todo")
		return
	}
	respondCreated(c, todo)
}

// ListTodos returns the caller's todos
// GET /todos?completed=true|false&orderBy=asc|desc
func (tc *TodosController) ListTodos(c *gin.Context) {
	completed, ok := parseOptionalBool(c, "completed")
	if !ok {
		return
	}

	filter := entities.TodoFilter{Completed: completed}
	switch order := entities.SortOrder(c.Query("orderBy")); order {
	case "":
	case entities.SortAsc, entities.SortDesc:
		filter.Order = order
	default:
		respondBadRequest(c, "invalid orderBy: expected asc or desc")
		return
	}

	todos, err := tc.service.List(auth.GetUserID(c), filter)
	if err != nil {
		respondDomainError(c, err, "list todos")
		return
	}
	if todos == nil {
		todos = []entities.Todo{}
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodo returns a single todo owned by the caller
// GET /todos/:id
func (tc *TodosController) GetTodo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	todo, err := tc.service.Get(id, auth.GetUserID(c))
	if err != nil {
		tc.respondTodoError(c, err, "todo_read", id)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodo applies a partial update
// PATCH /todos/:id
func (tc *TodosController) UpdateTodo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	patch := entities.TodoPatch{Title: req.Title, Completed: req.Completed}
	if patch.IsEmpty() {
		respondBadRequest(c, "nothing to update")
		return
	}

	todo, err := tc.service.Update(id, patch, auth.GetUserID(c))
	if err != nil {
		tc.respondTodoError(c, err, "todo_update", id)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo removes a single todo owned by the caller
// DELETE /todos/:id
func (tc *TodosController) DeleteTodo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	todo, err := tc.service.Delete(id, userID)
	if err != nil {
		tc.respondTodoError(c, err, "todo_delete", id)
		return
	}

	if tc.audit != nil {
		tc.audit.LogDelete(userID, "todo", todo.ID, todo.Title, audit.RequestInfoFrom(c))
	}
	respondSuccess(c, "todo deleted")
}

// DeleteCompleted removes every completed todo of the caller
// DELETE /todos
func (tc *TodosController) DeleteCompleted(c *gin.Context) {
	userID := auth.GetUserID(c)
	count, err := tc.service.DeleteAllCompleted(userID)
	if err != nil {
		respondDomainError(c, err, "delete completed todos")
		return
	}

	if tc.audit != nil && count > 0 {
		tc.audit.LogBulkDelete(userID, "todo", count, audit.RequestInfoFrom(c))
	}
	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

// respondTodoError records ownership denials before mapping the error.
func (tc *TodosController) respondTodoError(c *gin.Context, err error, action string, id uint) {
	if tc.audit != nil && errors.Is(err, apperrors.ErrForbidden) {
		tc.audit.LogDenied(auth.GetUserID(c), action, "todo", id, audit.RequestInfoFrom(c))
	}
	respondDomainError(c, err, action)
}
