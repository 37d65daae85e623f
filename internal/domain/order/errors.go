package order

import (
	"fmt"

	"github.com/storefront/console/internal/domain/shared"
)

// InvalidTransitionError is returned when a requested status is not reachable
// from the order's current status. It is a client-side validation error.
type InvalidTransitionError struct {
	From Status
	To   Status
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("cannot change status to %s", e.To)
	}
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

// Is reports shared.ErrValidation
func (e *InvalidTransitionError) Is(target error) bool {
	return target == shared.ErrValidation
}

// DomainError converts the error into a coded domain error for transport
func (e *InvalidTransitionError) DomainError() *shared.DomainError {
	return shared.NewDomainError(shared.CodeValidation, e.Error())
}

// ErrOrderNotFound reports that an order no longer exists in the order store
func ErrOrderNotFound(id string) *shared.DomainError {
	return shared.NewNotFoundError("order", id)
}
