package grading

import "errors"

var (
	// ErrMalformedQuestion indicates the question has no placeholder where one is required.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrCollaboratorFailure wraps classifier or encoder failures.
	ErrCollaboratorFailure = errors.New("collaborator failure")
	// ErrInvalidNumber indicates a numeric answer could not be parsed.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrUnsupportedModality indicates no evaluator exists for the requested modality.
	ErrUnsupportedModality = errors.New("unsupported modality")
	// ErrSemanticUnavailable indicates semantic grading was requested without a classifier and encoder.
	ErrSemanticUnavailable = errors.New("semantic evaluator unavailable")
)
