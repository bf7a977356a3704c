package services

import "fmt"

// Service error taxonomy. Validation and ownership errors surface to the
// client immediately; generation failures degrade locally except in the
// interview question path, where a session cannot proceed without questions.

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type InvalidInputError struct {
	Message string
	Fields  map[string]string
}

func (e *InvalidInputError) Error() string { return e.Message }

// NotReadyError: an EXAM session whose status is not yet ready.
type NotReadyError struct{ Message string }

func (e *NotReadyError) Error() string { return e.Message }

// UnavailableError: a PRACTICE/INTERVIEW session outside created/ready.
type UnavailableError struct{ Message string }

func (e *UnavailableError) Error() string { return e.Message }

// MissingInputError: a required generation input is absent, e.g. an
// interview session without a CV.
type MissingInputError struct{ Message string }

func (e *MissingInputError) Error() string { return e.Message }

type NoQuestionsError struct{ Message string }

func (e *NoQuestionsError) Error() string { return e.Message }

type NoAnswersError struct{ Message string }

func (e *NoAnswersError) Error() string { return e.Message }

// GenerationError: the AI response was malformed or missing its contract key.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *GenerationError) Unwrap() error { return e.Err }
