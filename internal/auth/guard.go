package auth

import (
	"fmt"

	"github.com/mrlokans/tasktracker/internal/apperrors"
)

var ErrNotOwner = fmt.Errorf("%w: you don't have permission", apperrors.ErrForbidden)

// Decision is the outcome of an ownership check.
type Decision string

const (
	Allowed Decision = "allowed"
	Denied  Decision = "denied"
)

// Authorize allows the caller only when it owns the resource.
func Authorize(ownerID, callerID uint) Decision {
	if ownerID == callerID {
		return Allowed
	}
	return Denied
}

// RequireOwner returns ErrNotOwner unless callerID owns the resource.
func RequireOwner(ownerID, callerID uint) error {
	if Authorize(ownerID, callerID) == Denied {
		return ErrNotOwner
	}
	return nil
}
