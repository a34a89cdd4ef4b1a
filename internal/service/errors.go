package service

import "fmt"

// ValidationError is a local precondition failure. It is raised before any
// call leaves the process, so the cache and the ledger service are untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
