package types

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline component a failure originated in.
type Stage string

const (
	StageScript   Stage = "script"
	StageTTS      Stage = "tts"
	StageImage    Stage = "image"
	StageCaptions Stage = "captions"
	StageAssembly Stage = "assembly"
	StagePublish  Stage = "publish"
)

// ValidationError rejects a malformed request before any external call.
// Retrying the same request will not succeed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// GenerationError is a stage failure surfaced after component-level retries
// are exhausted. Retryable indicates whether resubmitting the whole request
// might succeed (transient upstream trouble) or not (structural defect).
type GenerationError struct {
	Stage        Stage
	SegmentIndex int // -1 when the failure is not tied to one segment
	Retryable    bool
	Err          error
}

func (e *GenerationError) Error() string {
	if e.SegmentIndex >= 0 {
		return fmt.Sprintf("%s failed for segment %d: %v", e.Stage, e.SegmentIndex, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError wraps err as a request-level stage failure.
func NewGenerationError(stage Stage, retryable bool, err error) *GenerationError {
	return &GenerationError{Stage: stage, SegmentIndex: -1, Retryable: retryable, Err: err}
}

// NewSegmentError wraps err as a stage failure tied to one segment.
func NewSegmentError(stage Stage, index int, retryable bool, err error) *GenerationError {
	return &GenerationError{Stage: stage, SegmentIndex: index, Retryable: retryable, Err: err}
}

// TransientError marks a failure worth retrying at the component level
// (network trouble, rate limits, 5xx responses).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so the retry policy keeps attempting it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err (or anything it wraps) is retryable at
// the component level.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
