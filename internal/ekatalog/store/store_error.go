package store

import "fmt"

// StorageError wraps a filesystem failure on a collection. Callers are
// expected to treat it as recoverable: readers fall back to cached data,
// writers surface it as a 500.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
