package models

import (
	"errors"
	"fmt"
)

// ErrProductNotFound is returned by repositories and services when the
// requested product id does not exist.
var ErrProductNotFound = errors.New("product not found")

// ValidationError reports a missing or invalid field on a create or
// update request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}
