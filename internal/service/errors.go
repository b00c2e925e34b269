// Package service implements the booking workflow: event approval,
// performance applications, booking lifecycle, the scheduling conflict
// check and the fan-out that turns a published event into booking
// requests.
//
// Authorization and missing records are reported as errors
// (ErrForbidden, ErrNotFound).  A call that is allowed but not valid for
// the current state returns Result{Success: false} and changes nothing.
package service

import (
	"errors"
	"strings"

	"github.com/iliyamo/stagebook/internal/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries every field violation found in an input.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// notFound maps a repository miss onto ErrNotFound and passes any other
// error through.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
