// Package errs defines the error taxonomy shared across the Taller API.
// Every store or domain failure is classified into exactly one of these
// kinds so handlers can map it to an HTTP status without string matching.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflict indicates a uniqueness violation, e.g. a folio allocation
// transaction that could not commit after exhausting its retries.
var ErrConflict = errors.New("conflict")

// ErrTransient indicates a network or store failure that is safe to retry.
var ErrTransient = errors.New("transient store error")

// ErrPermission indicates the caller is not authenticated or not allowed
// to perform the operation.
var ErrPermission = errors.New("permission denied")

// ValidationError reports required fields missing from a submitted record.
// It enumerates every missing field, not just the first.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind string // "report", "technician", "area", ...
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsTransient reports whether err is (or wraps) ErrTransient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsConflict reports whether err is (or wraps) ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsPermission reports whether err is (or wraps) ErrPermission.
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission)
}
