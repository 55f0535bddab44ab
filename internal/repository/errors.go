package repository

import (
	"errors"
	"fmt"

	"pastelaria-service/internal/lifecycle"
)

// ErrNotFound indicates that no record with the id exists in the scope the operation requires
var ErrNotFound = errors.New("record not found")

// NotFoundError carries the lookup that failed
type NotFoundError struct {
	Kind  string
	ID    uint
	Scope lifecycle.Scope
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found in %s scope", e.Kind, e.ID, e.Scope)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFoundKind reports whether err is a NotFoundError for the given kind
func IsNotFoundKind(err error, kind string) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Kind == kind
}
