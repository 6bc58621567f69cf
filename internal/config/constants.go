package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./tasktracker.db"

	// DefaultBcryptCost is the bcrypt work factor used for password hashing
	DefaultBcryptCost = 10
)
