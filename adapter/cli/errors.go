package cli

import (
	"errors"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/locking"
)

// Exit codes by error class.
const (
	exitFailure    = 1
	exitValidation = 2
	exitNotFound   = 3
	exitConflict   = 4
	exitBusy       = 5
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return exitValidation
	case errors.Is(err, domain.ErrNotFound):
		return exitNotFound
	case errors.Is(err, domain.ErrConflict):
		return exitConflict
	case errors.Is(err, locking.ErrNotAcquired):
		return exitBusy
	default:
		return exitFailure
	}
}
