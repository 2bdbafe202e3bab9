package models

import "errors"

// Custom errors
var (
	ErrCatalogueNotFound = errors.New("match catalogue not found")
	ErrSnapshotNotFound  = errors.New("live snapshot not found")
)
