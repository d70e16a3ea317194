package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidModelOutput    = errors.New("invalid model output")
	ErrModelLoad             = errors.New("model load failed")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)

// InvalidModelOutputError reports a classifier output of unexpected width,
// which means the wrong model or version is being served. Fails the request,
// not the process.
type InvalidModelOutputError struct {
	Width  int
	Reason string
}

func (e *InvalidModelOutputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid model output: %s", e.Reason)
	}
	return fmt.Sprintf("invalid model output: got %d values, want %d or %d", e.Width, EmotionCount, 2*EmotionCount)
}

func (e *InvalidModelOutputError) Is(target error) bool {
	return target == ErrInvalidModelOutput
}

// ModelLoadError reports that the classifier or tokenizer could not be
// loaded at startup. The process must not begin serving.
type ModelLoadError struct {
	Component string
	Err       error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Component, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

func (e *ModelLoadError) Is(target error) bool {
	return target == ErrModelLoad
}
