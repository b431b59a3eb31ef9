package services

import (
	"errors"

	"challenge-streak-system/stores"
)

// Error taxonomy surfaced to the HTTP layer. Handlers translate these with
// errors.Is; everything else is a 500. NotFound originates at the store
// boundary and is re-exported so callers need only one vocabulary.
var (
	ErrNotFound   = stores.ErrNotFound
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)
