// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── users/           # User lookup and creation (credential store)
//	├── todos/           # Todo CRUD, owner-scoped queries
//	└── audit/           # Audit event persistence and retention
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./tasktracker.db")
//
//	usersRepo := users.NewRepository(db.DB)
//	todosRepo := todos.NewRepository(db.DB)
//
//	user, err := usersRepo.FindByEmail("a@x.com")
//	items, err := todosRepo.FindMany(user.ID, entities.TodoFilter{})
//
// # Lookups
//
// Single-row lookups (FindByEmail, FindByID) return (nil, nil) when the row
// does not exist. Deciding whether absence is an error belongs to the services.
//
// # Interface Implementations
//
//   - users.Repository: implements auth.UserStore
//   - todos.Repository: implements todos.Store
//   - audit.Repository: implements tasks.AuditEventCleaner
package database
