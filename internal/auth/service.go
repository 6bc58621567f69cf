package auth

import (
	"errors"
	"fmt"

	"github.com/mrlokans/tasktracker/internal/apperrors"
	"github.com/mrlokans/tasktracker/internal/entities"
)

var (
	ErrUserNotFound  = fmt.Errorf("user %w", apperrors.ErrNotFound)
	ErrUserExists    = fmt.Errorf("user %w", apperrors.ErrConflict)
	ErrWrongPassword = fmt.Errorf("wrong password: %w", apperrors.ErrInvalidCredentials)
)

// UserStore is the credential store the service reads and writes.
// Lookups return nil, nil when no user matches.
type UserStore interface {
	FindByEmail(email string) (*entities.User, error)
	CreateUser(email, passwordHash string) (*entities.User, error)
}

// Service registers users, validates credentials and issues session tokens.
type Service struct {
	users  UserStore
	hasher *Hasher
	tokens *TokenIssuer
}

// NewService creates a new authentication service.
func NewService(users UserStore, hasher *Hasher, tokens *TokenIssuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a user after checking the email is not taken.
func (s *Service) Register(email, password string) (*entities.User, error) {
	existing, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(email, passwordHash)
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// ValidateCredentials checks an email/password pair and returns the identity
// claims to embed in a token. The stored hash never leaves this method.
func (s *Service) ValidateCredentials(email, password string) (*Claims, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !s.hasher.CheckPassword(password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	return &Claims{UserID: user.ID, Email: user.Email}, nil
}

// Login validates credentials and issues a signed session token.
// The claims embedded in the token are returned alongside it.
func (s *Service) Login(email, password string) (string, *Claims, error) {
	claims, err := s.ValidateCredentials(email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(claims.UserID, claims.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, claims, nil
}

// Verify resolves a session token into its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}
