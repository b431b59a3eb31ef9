package stores

import "errors"

// ErrNotFound is the store-boundary translation of a missing row. Callers
// work against this sentinel; gorm errors never leave the package.
var ErrNotFound = errors.New("record not found")
