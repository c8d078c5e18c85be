package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedURL    = errors.New("unsupported url")
	ErrNoPlayableContent = errors.New("no playable content")
	ErrQueueFull         = errors.New("queue full")
)

// Stage identifies where in the acquisition pipeline a failure happened.
type Stage string

const (
	StageValidate Stage = "validate"
	StageResolve  Stage = "resolve"
	StageFetch    Stage = "fetch"
	StageUpload   Stage = "upload"
	StagePersist  Stage = "persist"
)

// StageError wraps a pipeline failure with the stage it occurred in and a
// machine-readable code suitable for API responses and logs.
type StageError struct {
	Stage Stage
	Code  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Code)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
