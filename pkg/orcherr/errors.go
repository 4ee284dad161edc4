// Package orcherr defines the orchestrator's error categories and a wrapper
// type that carries enough context (category, offending key/argument,
// underlying cause) for both CLI-facing messages and errors.Is matching.
package orcherr

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per category in the error handling design.
var (
	ErrIllegalOption   = errors.New("illegal option")
	ErrMissingArgument = errors.New("missing argument")
	ErrNotConfigured   = errors.New("not configured")
	ErrNotConnected    = errors.New("not connected")
	ErrFailedToWatch   = errors.New("failed to watch")
	ErrFailedToGetAll  = errors.New("failed to get all")
	ErrFailedToGet     = errors.New("failed to get")
	ErrFailedToPut     = errors.New("failed to put")
)

// Category names one of the sentinel error kinds.
type Category string

const (
	CategoryIllegalOption   Category = "illegal_option"
	CategoryMissingArgument Category = "missing_argument"
	CategoryNotConfigured   Category = "not_configured"
	CategoryNotConnected    Category = "not_connected"
	CategoryFailedToWatch   Category = "failed_to_watch"
	CategoryFailedToGetAll  Category = "failed_to_get_all"
	CategoryFailedToGet     Category = "failed_to_get"
	CategoryFailedToPut     Category = "failed_to_put"
)

var sentinels = map[Category]error{
	CategoryIllegalOption:   ErrIllegalOption,
	CategoryMissingArgument: ErrMissingArgument,
	CategoryNotConfigured:   ErrNotConfigured,
	CategoryNotConnected:    ErrNotConnected,
	CategoryFailedToWatch:   ErrFailedToWatch,
	CategoryFailedToGetAll:  ErrFailedToGetAll,
	CategoryFailedToGet:     ErrFailedToGet,
	CategoryFailedToPut:     ErrFailedToPut,
}

// StoreError wraps a category, the offending argument/key, and the
// underlying cause (if any) so a single type can both render a
// human-readable message and support errors.Is against the category's
// sentinel.
type StoreError struct {
	Category Category
	Detail   string // offending flag, argument, or store key
	Cause    error  // underlying transport error, nil for CLI-parse categories
}

func (e *StoreError) Error() string {
	// The CLI's two parse-error categories have a fixed, capitalized wire
	// format (§6 of the spec); every other category renders lowercase,
	// Go-idiomatic error text.
	switch e.Category {
	case CategoryIllegalOption:
		return fmt.Sprintf("Illegal option: %s", e.Detail)
	case CategoryMissingArgument:
		return fmt.Sprintf("Missing argument: %s", e.Detail)
	}

	msg := sentinels[e.Category].Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return sentinels[e.Category]
}

// New builds a StoreError for the given category.
func New(category Category, detail string, cause error) *StoreError {
	return &StoreError{Category: category, Detail: detail, Cause: cause}
}

// IllegalOption builds the CLI's "Illegal option: <arg>" error.
func IllegalOption(arg string) error {
	return New(CategoryIllegalOption, arg, nil)
}

// MissingArgument builds the CLI's "Missing argument: <arg>" error.
func MissingArgument(arg string) error {
	return New(CategoryMissingArgument, arg, nil)
}
