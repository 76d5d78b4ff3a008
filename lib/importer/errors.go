package importer

import "fmt"

// NotFoundError means the catalog has no record for the requested
// external id.
type NotFoundError struct {
	ExternalID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("importer: no catalog record for external id %d", e.ExternalID)
}

// PersistenceError means the store failed while looking up or
// committing an aggregate.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("importer: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
