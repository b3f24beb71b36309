package assessment

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRating = errors.New("rating out of range")
	ErrNoQuestions   = errors.New("ai returned no questions")
)

// ValidationError names the question whose rating fell outside 1..5.
type ValidationError struct {
	QuestionID string
	Rating     int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %q: rating %d must be between %d and %d", e.QuestionID, e.Rating, MinRating, MaxRating)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRating
}

// FailureKind classifies why the AI path could not be used.
type FailureKind string

const (
	FailureTimeout      FailureKind = "timeout"
	FailureTransport    FailureKind = "transport"
	FailureStatus       FailureKind = "status"
	FailureMalformed    FailureKind = "malformed"
	FailureServiceError FailureKind = "service_error"
	FailureUnavailable  FailureKind = "unavailable"
	FailurePanic        FailureKind = "panic"
)

// AugmentationFailure is the only error an AI service is expected to return. The engine
// always recovers from it by falling back to the deterministic path.
type AugmentationFailure struct {
	Kind FailureKind
	Err  error
}

func (f *AugmentationFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("augmentation failed: %s", f.Kind)
	}
	return fmt.Sprintf("augmentation failed (%s): %v", f.Kind, f.Err)
}

func (f *AugmentationFailure) Unwrap() error { return f.Err }

// NewFailure wraps err as an AugmentationFailure of the given kind.
func NewFailure(kind FailureKind, err error) *AugmentationFailure {
	return &AugmentationFailure{Kind: kind, Err: err}
}

// AsFailure normalizes any error into an AugmentationFailure. Errors that are not already
// classified are treated as transport failures.
func AsFailure(err error) *AugmentationFailure {
	if err == nil {
		return nil
	}
	var f *AugmentationFailure
	if errors.As(err, &f) {
		return f
	}
	return NewFailure(FailureTransport, err)
}
