package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Event errors
	ErrEventNotFound = errors.New("event not found")
	ErrOutOfCapacity = errors.New("no remaining seats")

	// Curation errors
	ErrInvalidTrendingRank = errors.New("trending rank must be a positive integer")
	ErrUploadFailed        = errors.New("image upload failed")

	// General errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabaseError = errors.New("database error")
)

// ValidationError reports every missing or malformed field of a request.
// It is raised before any gateway call is made.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
