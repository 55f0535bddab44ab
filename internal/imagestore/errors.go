package imagestore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBinaryContent indicates a payload that is not genuine base64-encoded binary data
	ErrInvalidBinaryContent = errors.New("invalid binary content")

	// ErrObjectNotFound indicates the backend holds no object under the key
	ErrObjectNotFound = errors.New("object not found")
)

// ContentError represents an error related to an image operation
type ContentError struct {
	Op  string
	Ref Reference
	Err error
}

func (e *ContentError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("image operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("image operation %s failed for %s: %v", e.Op, e.Ref, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}
